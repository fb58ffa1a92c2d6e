package share

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, l *Link) error
	GetByToken(ctx context.Context, token string) (*Link, error)
	ListByUser(ctx context.Context, userID int64) ([]*Link, error)
	// RecordView bumps the view counter and the last-viewed timestamp.
	RecordView(ctx context.Context, id int64, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, l *Link) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Link, error) {
	var link Link
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLinkNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*Link, error) {
	var links []*Link
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&links).Error
	return links, err
}

func (r *repository) RecordView(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Link{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"views":          gorm.Expr("views + 1"),
			"last_viewed_at": at,
		}).Error
}
