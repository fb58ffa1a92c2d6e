package share

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/JUP-iter/vidaryproject/internal/database"
	"github.com/JUP-iter/vidaryproject/internal/domain/detection"
)

func setupService(t *testing.T) (*Service, *detection.Result) {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&detection.Result{}, &Link{}))

	resultRepo := detection.NewRepository(db)
	result := &detection.Result{
		UserID:     1,
		FileName:   "photo.png",
		MediaClass: detection.MediaImage,
		Verdict:    detection.VerdictAI,
		Confidence: decimal.RequireFromString("0.9530"),
		CreatedAt:  time.Now(),
	}
	require.NoError(t, resultRepo.Create(context.Background(), result))

	return NewService(NewRepository(db), resultRepo), result
}

func TestCreateIssuesUniqueTokens(t *testing.T) {
	svc, result := setupService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, 1, result.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, first.Token)
	require.Nil(t, first.ExpiresAt)

	second, err := svc.Create(ctx, 1, result.ID, 0)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)
}

func TestCreateRejectsForeignResult(t *testing.T) {
	svc, result := setupService(t)

	_, err := svc.Create(context.Background(), 42, result.ID, 0)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestViewCountsMonotonically(t *testing.T) {
	svc, result := setupService(t)
	ctx := context.Background()

	link, err := svc.Create(ctx, 1, result.ID, 0)
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		viewed, res, err := svc.View(ctx, link.Token)
		require.NoError(t, err)
		require.Equal(t, i, viewed.Views)
		require.NotNil(t, viewed.LastViewedAt)
		require.Equal(t, result.ID, res.ID)
	}

	stats, err := svc.Stats(ctx, 1, link.Token)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.Views)
}

func TestViewExpiredLink(t *testing.T) {
	svc, result := setupService(t)
	ctx := context.Background()

	link, err := svc.Create(ctx, 1, result.ID, time.Nanosecond)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	_, _, err = svc.View(ctx, link.Token)
	require.ErrorIs(t, err, ErrLinkExpired)
}

func TestViewUnknownToken(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.View(context.Background(), "nope")
	require.ErrorIs(t, err, ErrLinkNotFound)
}

func TestStatsHiddenFromOtherUsers(t *testing.T) {
	svc, result := setupService(t)
	ctx := context.Background()

	link, err := svc.Create(ctx, 1, result.ID, 0)
	require.NoError(t, err)

	_, err = svc.Stats(ctx, 99, link.Token)
	require.ErrorIs(t, err, ErrLinkNotFound)
}
