package share

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JUP-iter/vidaryproject/internal/domain/detection"
)

// ResultSource is the slice of the detection repository this module needs.
type ResultSource interface {
	GetByID(ctx context.Context, id int64) (*detection.Result, error)
}

type Service struct {
	repo    Repository
	results ResultSource
}

func NewService(repo Repository, results ResultSource) *Service {
	return &Service{repo: repo, results: results}
}

// Create issues a share link for one of the caller's results. ttl of zero
// means the link never expires.
func (s *Service) Create(ctx context.Context, userID, resultID int64, ttl time.Duration) (*Link, error) {
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result.UserID != userID {
		return nil, ErrNotOwner
	}

	link := &Link{
		UserID:    userID,
		ResultID:  resultID,
		Token:     uuid.NewString(),
		CreatedAt: time.Now(),
	}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		link.ExpiresAt = &expires
	}

	if err := s.repo.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// View resolves a token to its result and counts the access. Every read
// through here bumps the view counter, expired links are refused.
func (s *Service) View(ctx context.Context, token string) (*Link, *detection.Result, error) {
	link, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if link.ExpiresAt != nil && time.Now().After(*link.ExpiresAt) {
		return nil, nil, ErrLinkExpired
	}

	result, err := s.results.GetByID(ctx, link.ResultID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	if err := s.repo.RecordView(ctx, link.ID, now); err != nil {
		return nil, nil, err
	}
	link.Views++
	link.LastViewedAt = &now

	return link, result, nil
}

// Stats returns a link's counters to its owner.
func (s *Service) Stats(ctx context.Context, userID int64, token string) (*Link, error) {
	link, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if link.UserID != userID {
		return nil, ErrLinkNotFound
	}
	return link, nil
}

func (s *Service) ListByUser(ctx context.Context, userID int64) ([]*Link, error) {
	return s.repo.ListByUser(ctx, userID)
}
