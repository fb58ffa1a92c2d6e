package detection

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// MediaClass partitions submissions by the kind of content analyzed.
type MediaClass string

const (
	MediaImage MediaClass = "image"
	MediaAudio MediaClass = "audio"
	MediaVideo MediaClass = "video"
	MediaText  MediaClass = "text"
)

// Verdict is the binary classification outcome.
type Verdict string

const (
	VerdictAI    Verdict = "ai"
	VerdictHuman Verdict = "human"
)

// Result is one persisted detection outcome. Rows are created once per
// successful upstream call and never mutated afterwards.
type Result struct {
	ID         int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     int64      `gorm:"column:user_id;index:idx_results_user_hash,priority:1" json:"user_id"`
	FileName   string     `gorm:"column:file_name" json:"file_name"`
	MediaClass MediaClass `gorm:"column:media_class" json:"media_class"`
	SizeBytes  int64      `gorm:"column:size_bytes" json:"size_bytes"`

	// ContentHash is the SHA-256 of the exact submitted bytes. Indexed
	// together with user_id for the dedup lookup; deliberately not unique.
	ContentHash string `gorm:"column:content_hash;index:idx_results_user_hash,priority:2" json:"content_hash"`
	StorageKey  string `gorm:"column:storage_key" json:"storage_key,omitempty"`

	Verdict           Verdict         `gorm:"column:verdict" json:"verdict"`
	Confidence        decimal.Decimal `gorm:"column:confidence;type:numeric(5,4)" json:"confidence"`
	DetectedGenerator *string         `gorm:"column:detected_generator" json:"detected_generator"`
	GeneratorScores   json.RawMessage `gorm:"column:generator_scores;type:jsonb" json:"generator_scores,omitempty"`

	// RawResponse keeps the upstream payload verbatim for audit.
	RawResponse json.RawMessage `gorm:"column:raw_response;type:jsonb" json:"-"`

	ProcessingMS int64     `gorm:"column:processing_ms" json:"processing_ms"`
	Duplicate    bool      `gorm:"column:duplicate" json:"duplicate"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Result) TableName() string { return "detection_results" }
