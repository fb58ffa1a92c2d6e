package detection

import (
	"fmt"
	"unicode/utf8"
)

const (
	MaxImageBytes = 10 << 20
	MaxAudioBytes = 50 << 20
	MaxVideoBytes = 100 << 20
	MaxTextChars  = 50000
)

// allowedMimeTypes lists the accepted MIME types per media class. Text is
// raw bytes and has no MIME allow-list.
var allowedMimeTypes = map[MediaClass][]string{
	MediaImage: {"image/jpeg", "image/png", "image/webp"},
	MediaAudio: {"audio/mpeg", "audio/wav", "audio/x-m4a", "audio/mp4"},
	MediaVideo: {"video/mp4", "video/quicktime", "video/webm"},
}

var sizeLimits = map[MediaClass]int64{
	MediaImage: MaxImageBytes,
	MediaAudio: MaxAudioBytes,
	MediaVideo: MaxVideoBytes,
}

// ValidationError is a client-fault rejection, surfaced verbatim.
type ValidationError struct {
	Reason  error // one of the sentinel errors above
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Reason }

// validate enforces the per-media-class allow-list and size ceiling before
// any network call is made.
func validate(class MediaClass, contentType string, content []byte) error {
	if len(content) == 0 {
		return &ValidationError{Reason: ErrEmptyContent, Message: "no content submitted"}
	}

	if class == MediaText {
		if chars := utf8.RuneCount(content); chars > MaxTextChars {
			return &ValidationError{
				Reason:  ErrTextTooLong,
				Message: fmt.Sprintf("text is %d characters, limit is %d", chars, MaxTextChars),
			}
		}
		return nil
	}

	allowed, ok := allowedMimeTypes[class]
	if !ok {
		return &ValidationError{Reason: ErrUnsupportedMediaType, Message: fmt.Sprintf("unknown media class %q", class)}
	}

	match := false
	for _, mt := range allowed {
		if contentType == mt {
			match = true
			break
		}
	}
	if !match {
		return &ValidationError{
			Reason:  ErrUnsupportedMediaType,
			Message: fmt.Sprintf("%s is not supported for %s, allowed types: %v", contentType, class, allowed),
		}
	}

	if limit := sizeLimits[class]; int64(len(content)) > limit {
		return &ValidationError{
			Reason:  ErrFileTooLarge,
			Message: fmt.Sprintf("file is %d bytes, %s limit is %d bytes", len(content), class, limit),
		}
	}
	return nil
}
