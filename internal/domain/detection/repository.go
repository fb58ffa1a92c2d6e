package detection

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, r *Result) error
	GetByID(ctx context.Context, id int64) (*Result, error)
	// FindByUserAndHash returns the oldest matching row; first match wins.
	FindByUserAndHash(ctx context.Context, userID int64, hash string) (*Result, error)
	ListByUser(ctx context.Context, userID int64, f HistoryFilter) ([]*Result, error)
}

// HistoryFilter narrows history queries. Zero values mean "no constraint".
type HistoryFilter struct {
	MediaClass MediaClass
	Verdict    Verdict
	Since      time.Time
	Until      time.Time
	Limit      int
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, result *Result) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Result, error) {
	var result Result
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) FindByUserAndHash(ctx context.Context, userID int64, hash string) (*Result, error) {
	var result Result
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND content_hash = ?", userID, hash).
		Order("created_at ASC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64, f HistoryFilter) ([]*Result, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if f.MediaClass != "" {
		q = q.Where("media_class = ?", f.MediaClass)
	}
	if f.Verdict != "" {
		q = q.Where("verdict = ?", f.Verdict)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("created_at <= ?", f.Until)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var results []*Result
	err := q.Order("created_at DESC").Find(&results).Error
	return results, err
}
