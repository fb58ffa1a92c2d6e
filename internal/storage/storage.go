package storage

import (
	"context"
	"errors"
	"io"

	"github.com/JUP-iter/vidaryproject/internal/config"
)

// MaxUploadSize is the server-enforced ceiling for browser-posted uploads.
const MaxUploadSize = 120 << 20 // 120 MB

var ErrNotConfigured = errors.New("object storage is not configured")

// Object is a stored blob reference: its bucket key and a reachable URL.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// PresignedPost describes a browser-postable upload form: the POST target,
// the form fields that must accompany the file, and the URL the object will
// be reachable at once uploaded.
type PresignedPost struct {
	Key     string            `json:"key"`
	URL     string            `json:"url"`
	Fields  map[string]string `json:"fields"`
	FileURL string            `json:"fileUrl"`
}

// Store abstracts over the two storage backends. Implementations must be safe
// for concurrent use; the handle is shared across requests.
type Store interface {
	// Put uploads content under key. size may be -1 when unknown; the
	// reader is streamed, never buffered whole.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error)

	// SignedGetURL returns a time-limited read URL for an existing key.
	SignedGetURL(ctx context.Context, key string) (*Object, error)

	// PresignPost issues a browser-postable upload form for key, with a
	// content-length range enforced server-side.
	PresignPost(ctx context.Context, key string) (*PresignedPost, error)
}

// New selects backends from configuration: the proxy when its URL is set, the
// direct bucket client when credentials are present. With both configured the
// proxy is tried first and the bucket client acts as fallback for Put.
func New(cfg config.StorageConfig) (Store, error) {
	var proxy *ProxyStore
	if cfg.ProxyURL != "" {
		proxy = NewProxyStore(cfg.ProxyURL, cfg.ProxyToken)
	}

	var direct *MinioStore
	if cfg.Endpoint != "" && cfg.AccessKey != "" && cfg.SecretKey != "" && cfg.Bucket != "" {
		var err error
		direct, err = NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	if proxy == nil && direct == nil {
		return nil, ErrNotConfigured
	}
	if proxy == nil {
		return direct, nil
	}
	if direct == nil {
		return proxy, nil
	}
	return &fallbackStore{proxy: proxy, direct: direct}, nil
}

// fallbackStore prefers the proxy and falls back to the direct bucket client
// when the proxy fails hard. Streaming Put cannot be replayed after the
// reader has been partially consumed, so fallback applies only to readers
// that can be reset.
type fallbackStore struct {
	proxy  Store
	direct Store
}

func (s *fallbackStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	seeker, seekable := r.(io.Seeker)

	obj, err := s.proxy.Put(ctx, key, r, size, contentType)
	if err == nil {
		return obj, nil
	}
	if !seekable {
		return nil, err
	}
	if _, serr := seeker.Seek(0, io.SeekStart); serr != nil {
		return nil, err
	}
	return s.direct.Put(ctx, key, r, size, contentType)
}

func (s *fallbackStore) SignedGetURL(ctx context.Context, key string) (*Object, error) {
	obj, err := s.proxy.SignedGetURL(ctx, key)
	if err == nil {
		return obj, nil
	}
	return s.direct.SignedGetURL(ctx, key)
}

func (s *fallbackStore) PresignPost(ctx context.Context, key string) (*PresignedPost, error) {
	post, err := s.proxy.PresignPost(ctx, key)
	if err == nil {
		return post, nil
	}
	return s.direct.PresignPost(ctx, key)
}
