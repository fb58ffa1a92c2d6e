package detection

import (
	"encoding/json"
	"time"
)

type AnalyzeRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data,omitempty"`     // base64-encoded inline payload
	FileURL     string `json:"file_url,omitempty"` // previously-uploaded URL, fetched server-side
	AudioMode   string `json:"audio_mode,omitempty"`
}

type AnalyzeTextRequest struct {
	Text string `json:"text" binding:"required"`
}

type CheckDuplicateRequest struct {
	Data string `json:"data,omitempty"`
	Text string `json:"text,omitempty"`
}

// ResultResponse is the wire shape for a detection result. Confidence is a
// string fixed to 4 decimal places so it round-trips without float drift.
type ResultResponse struct {
	ID                int64              `json:"id"`
	FileName          string             `json:"file_name,omitempty"`
	MediaClass        MediaClass         `json:"media_class"`
	SizeBytes         int64              `json:"size_bytes"`
	Verdict           Verdict            `json:"verdict"`
	Confidence        string             `json:"confidence"`
	DetectedGenerator *string            `json:"detected_generator"`
	GeneratorScores   map[string]float64 `json:"generator_scores,omitempty"`
	ProcessingMS      int64              `json:"processing_ms"`
	CacheHit          bool               `json:"cache_hit"`
	FileURL           string             `json:"file_url,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
}

func toResultResponse(r *Result, fileURL string, cacheHit bool) ResultResponse {
	resp := ResultResponse{
		ID:                r.ID,
		FileName:          r.FileName,
		MediaClass:        r.MediaClass,
		SizeBytes:         r.SizeBytes,
		Verdict:           r.Verdict,
		Confidence:        r.Confidence.StringFixed(4),
		DetectedGenerator: r.DetectedGenerator,
		ProcessingMS:      r.ProcessingMS,
		CacheHit:          cacheHit,
		FileURL:           fileURL,
		CreatedAt:         r.CreatedAt,
	}
	if len(r.GeneratorScores) > 0 {
		_ = json.Unmarshal(r.GeneratorScores, &resp.GeneratorScores)
	}
	return resp
}
