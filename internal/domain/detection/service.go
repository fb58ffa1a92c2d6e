package detection

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/JUP-iter/vidaryproject/internal/storage"
)

// AudioMode selects the upstream audio route.
type AudioMode string

const (
	AudioVoice AudioMode = "voice"
	AudioMusic AudioMode = "music"
)

// AnalyzeInput is one submission. Content carries the raw bytes when the
// client sent them inline; SourceURL points at a previously-uploaded object
// that the service fetches itself.
type AnalyzeInput struct {
	FileName    string
	ContentType string
	Content     []byte
	SourceURL   string
	AudioMode   AudioMode
}

// Analysis is the uniform outcome returned to handlers.
type Analysis struct {
	Result   *Result
	FileURL  string
	CacheHit bool
}

// Service orchestrates validation, dedup, the upstream call, storage and
// persistence. All collaborators are injected; the service holds no state
// of its own beyond them.
type Service struct {
	repo     Repository
	store    storage.Store
	detector Detector
	fetch    *http.Client
}

func NewService(repo Repository, store storage.Store, detector Detector) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		detector: detector,
		fetch:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// Analyze runs the full pipeline for one submission.
func (s *Service) Analyze(ctx context.Context, userID int64, class MediaClass, in AnalyzeInput) (*Analysis, error) {
	content := in.Content
	if len(content) == 0 && in.SourceURL != "" {
		fetched, err := s.fetchSource(ctx, class, in.SourceURL)
		if err != nil {
			return nil, err
		}
		content = fetched
	}

	if err := validate(class, in.ContentType, content); err != nil {
		return nil, err
	}

	hash := hashContent(content)

	if cached := s.lookupDuplicate(ctx, userID, hash); cached != nil {
		return s.fromCache(ctx, cached), nil
	}

	route := routeFor(class, in.AudioMode)

	started := time.Now()
	raw, err := s.detector.Detect(ctx, route, in.FileName, content, in.ContentType)
	elapsed := time.Since(started)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.PlanRestricted() {
			return nil, fmt.Errorf("%w: %s", ErrPlanRestricted, "this media type requires a plan upgrade")
		}
		log.Printf("detection: upstream call failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	normalized, err := Normalize(route, raw)
	if err != nil {
		log.Printf("detection: normalize failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailed, err)
	}

	var storageKey, fileURL string
	if class != MediaText {
		obj, err := s.store.Put(ctx, storage.ObjectKey(in.FileName), bytes.NewReader(content), int64(len(content)), in.ContentType)
		if err != nil {
			log.Printf("detection: storage put failed: %v", err)
			return nil, fmt.Errorf("store content: %w", err)
		}
		storageKey = obj.Key
		fileURL = obj.URL
	}

	result := &Result{
		UserID:            userID,
		FileName:          in.FileName,
		MediaClass:        class,
		SizeBytes:         int64(len(content)),
		ContentHash:       hash,
		StorageKey:        storageKey,
		Verdict:           normalized.Verdict,
		Confidence:        normalized.Confidence,
		DetectedGenerator: normalized.Generator,
		GeneratorScores:   normalized.Scores,
		RawResponse:       raw,
		ProcessingMS:      elapsed.Milliseconds(),
		CreatedAt:         time.Now(),
	}

	if err := s.repo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	return &Analysis{Result: result, FileURL: fileURL}, nil
}

// CheckDuplicate reports whether identical content was analyzed before by
// this user, without calling upstream.
func (s *Service) CheckDuplicate(ctx context.Context, userID int64, content []byte) (*Result, bool) {
	cached := s.lookupDuplicate(ctx, userID, hashContent(content))
	return cached, cached != nil
}

func (s *Service) GetResult(ctx context.Context, userID, id int64) (*Result, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.UserID != userID {
		return nil, ErrResultNotFound
	}
	return result, nil
}

func (s *Service) History(ctx context.Context, userID int64, f HistoryFilter) ([]*Result, error) {
	return s.repo.ListByUser(ctx, userID, f)
}

// FileURL re-derives a reachable URL for a stored result, or "" for text.
func (s *Service) FileURL(ctx context.Context, result *Result) string {
	if result.StorageKey == "" {
		return ""
	}
	obj, err := s.store.SignedGetURL(ctx, result.StorageKey)
	if err != nil {
		log.Printf("detection: sign url for %s failed: %v", result.StorageKey, err)
		return ""
	}
	return obj.URL
}

// lookupDuplicate is fail-open: a broken lookup means "no duplicate" so the
// detection can still proceed uncached.
func (s *Service) lookupDuplicate(ctx context.Context, userID int64, hash string) *Result {
	cached, err := s.repo.FindByUserAndHash(ctx, userID, hash)
	if err != nil {
		if !errors.Is(err, ErrResultNotFound) {
			log.Printf("detection: dedup lookup failed, proceeding uncached: %v", err)
		}
		return nil
	}
	return cached
}

// fromCache synthesizes a cache-hit analysis from a stored row. The upstream
// call and the storage write are both skipped; only a fresh signed URL is
// derived when the original content was stored.
func (s *Service) fromCache(ctx context.Context, cached *Result) *Analysis {
	dup := *cached
	dup.Duplicate = true
	dup.ProcessingMS = 0
	return &Analysis{
		Result:   &dup,
		FileURL:  s.FileURL(ctx, cached),
		CacheHit: true,
	}
}

func (s *Service) fetchSource(ctx context.Context, class MediaClass, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, &ValidationError{Reason: ErrEmptyContent, Message: "invalid source url"}
	}

	resp, err := s.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch source: status %d", resp.StatusCode)
	}

	// Read at most one byte past the class ceiling; validate rejects the
	// oversized read with the proper client error.
	content, err := io.ReadAll(io.LimitReader(resp.Body, fetchLimit(class)+1))
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	return content, nil
}

func fetchLimit(class MediaClass) int64 {
	if limit, ok := sizeLimits[class]; ok {
		return limit
	}
	// Text: worst case four bytes per rune.
	return MaxTextChars * 4
}

func routeFor(class MediaClass, mode AudioMode) Route {
	switch class {
	case MediaImage:
		return RouteImage
	case MediaAudio:
		if mode == AudioMusic {
			return RouteMusic
		}
		return RouteVoice
	case MediaVideo:
		return RouteVideo
	default:
		return RouteText
	}
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
