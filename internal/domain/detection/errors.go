package detection

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("media type is not supported")
	ErrFileTooLarge         = errors.New("file exceeds the size limit for this media class")
	ErrTextTooLong          = errors.New("text exceeds the character limit")
	ErrEmptyContent         = errors.New("no content submitted")
	ErrResultNotFound       = errors.New("detection result not found")
	ErrPlanRestricted       = errors.New("detection requires a plan upgrade")
	ErrUpstreamFailed       = errors.New("detection service is unavailable")
)
