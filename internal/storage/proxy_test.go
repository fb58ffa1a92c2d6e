package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JUP-iter/vidaryproject/internal/config"
)

// proxyFixture is an in-memory storage proxy speaking the bearer-token API.
type proxyFixture struct {
	mu      sync.Mutex
	objects map[string][]byte
	token   string
	fail    bool // force 500s on /upload
	puts    int
}

func newProxyFixture(token string) *proxyFixture {
	return &proxyFixture{objects: make(map[string][]byte), token: token}
}

func (p *proxyFixture) handler(baseURL func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/files/") {
			p.mu.Lock()
			data, ok := p.objects[strings.TrimPrefix(r.URL.Path, "/files/")]
			p.mu.Unlock()
			if !ok {
				http.NotFound(w, r)
				return
			}
			_, _ = w.Write(data)
			return
		}

		if r.Header.Get("Authorization") != "Bearer "+p.token {
			http.Error(w, "bad token", http.StatusUnauthorized)
			return
		}

		switch r.URL.Path {
		case "/upload":
			if p.fail {
				http.Error(w, "proxy exploded", http.StatusInternalServerError)
				return
			}
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			key := r.FormValue("key")
			file, _, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			data, _ := io.ReadAll(file)
			p.mu.Lock()
			p.objects[key] = data
			p.puts++
			p.mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]string{
				"key": key,
				"url": baseURL() + "/files/" + key,
			})
		case "/sign":
			key := r.URL.Query().Get("key")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"key": key,
				"url": baseURL() + "/files/" + key,
			})
		case "/presign":
			key := r.URL.Query().Get("key")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"key":     key,
				"url":     baseURL() + "/upload",
				"fields":  map[string]string{"key": key},
				"fileUrl": baseURL() + "/files/" + key,
			})
		default:
			http.NotFound(w, r)
		}
	}
}

func startProxy(t *testing.T, fixture *proxyFixture) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(fixture.handler(func() string { return srv.URL }))
	t.Cleanup(srv.Close)
	return srv
}

func TestProxyStorePutThenGetRoundTrips(t *testing.T) {
	fixture := newProxyFixture("secret-token")
	srv := startProxy(t, fixture)
	store := NewProxyStore(srv.URL, "secret-token")

	content := []byte("exact bytes, in and out")
	ctx := context.Background()

	put, err := store.Put(ctx, "uploads/roundtrip.bin", bytes.NewReader(content), int64(len(content)), "application/octet-stream")
	require.NoError(t, err)
	require.Equal(t, "uploads/roundtrip.bin", put.Key)

	obj, err := store.SignedGetURL(ctx, "uploads/roundtrip.bin")
	require.NoError(t, err)

	// Dereferencing the returned URL serves the exact bytes stored.
	resp, err := http.Get(obj.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, content, served)
}

func TestProxyStoreRejectsBadToken(t *testing.T) {
	fixture := newProxyFixture("right-token")
	srv := startProxy(t, fixture)
	store := NewProxyStore(srv.URL, "wrong-token")

	_, err := store.Put(context.Background(), "k", strings.NewReader("x"), 1, "text/plain")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}

func TestProxyStorePresignPost(t *testing.T) {
	fixture := newProxyFixture("tok")
	srv := startProxy(t, fixture)
	store := NewProxyStore(srv.URL, "tok")

	post, err := store.PresignPost(context.Background(), "uploads/direct.png")
	require.NoError(t, err)
	require.Equal(t, "uploads/direct.png", post.Key)
	require.NotEmpty(t, post.URL)
	require.Equal(t, "uploads/direct.png", post.Fields["key"])
	require.Contains(t, post.FileURL, "/files/uploads/direct.png")
}

func TestNewRequiresAtLeastOneBackend(t *testing.T) {
	_, err := New(config.StorageConfig{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

// recordingStore is a minimal direct backend standing in for the bucket
// client in fallback tests.
type recordingStore struct {
	objects map[string][]byte
	puts    int
}

func (s *recordingStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (*Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.objects[key] = data
	s.puts++
	return &Object{Key: key, URL: "https://direct.test/" + key}, nil
}

func (s *recordingStore) SignedGetURL(_ context.Context, key string) (*Object, error) {
	if _, ok := s.objects[key]; !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return &Object{Key: key, URL: "https://direct.test/" + key}, nil
}

func (s *recordingStore) PresignPost(_ context.Context, key string) (*PresignedPost, error) {
	return &PresignedPost{Key: key, URL: "https://direct.test/post"}, nil
}

func TestFallbackStorePrefersProxy(t *testing.T) {
	fixture := newProxyFixture("tok")
	srv := startProxy(t, fixture)

	direct := &recordingStore{objects: make(map[string][]byte)}
	store := &fallbackStore{proxy: NewProxyStore(srv.URL, "tok"), direct: direct}

	content := []byte("goes through the proxy")
	obj, err := store.Put(context.Background(), "k1", bytes.NewReader(content), int64(len(content)), "text/plain")
	require.NoError(t, err)
	require.Contains(t, obj.URL, srv.URL)
	require.Equal(t, 1, fixture.puts)
	require.Zero(t, direct.puts)
}

func TestFallbackStoreFallsBackOnProxyFailure(t *testing.T) {
	fixture := newProxyFixture("tok")
	fixture.fail = true
	srv := startProxy(t, fixture)

	direct := &recordingStore{objects: make(map[string][]byte)}
	store := &fallbackStore{proxy: NewProxyStore(srv.URL, "tok"), direct: direct}

	content := []byte("lands in the bucket instead")
	obj, err := store.Put(context.Background(), "k2", bytes.NewReader(content), int64(len(content)), "text/plain")
	require.NoError(t, err)
	require.Contains(t, obj.URL, "direct.test")
	require.Equal(t, 1, direct.puts)
	require.Equal(t, content, direct.objects["k2"])
}

func TestFallbackStoreCannotReplayUnseekableStream(t *testing.T) {
	fixture := newProxyFixture("tok")
	fixture.fail = true
	srv := startProxy(t, fixture)

	direct := &recordingStore{objects: make(map[string][]byte)}
	store := &fallbackStore{proxy: NewProxyStore(srv.URL, "tok"), direct: direct}

	// io.Pipe readers cannot seek; the proxy error must surface.
	pr, pw := io.Pipe()
	go func() {
		_, _ = pw.Write([]byte("streamed"))
		_ = pw.Close()
	}()

	_, err := store.Put(context.Background(), "k3", pr, -1, "application/octet-stream")
	require.Error(t, err)
	require.Zero(t, direct.puts)
}
