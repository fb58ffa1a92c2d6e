package share

import "errors"

var (
	ErrLinkNotFound = errors.New("share link not found")
	ErrLinkExpired  = errors.New("share link has expired")
	ErrNotOwner     = errors.New("result belongs to another user")
)
