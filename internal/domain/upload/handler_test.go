package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/JUP-iter/vidaryproject/internal/storage"
)

type fakeStore struct {
	objects  map[string][]byte
	lastType string
	lastSize int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, key string, r io.Reader, size int64, contentType string) (*storage.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.objects[key] = data
	s.lastType = contentType
	s.lastSize = size
	return &storage.Object{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (s *fakeStore) SignedGetURL(_ context.Context, key string) (*storage.Object, error) {
	if _, ok := s.objects[key]; !ok {
		return nil, fmt.Errorf("no such key %s", key)
	}
	return &storage.Object{Key: key, URL: "https://cdn.test/" + key}, nil
}

func (s *fakeStore) PresignPost(_ context.Context, key string) (*storage.PresignedPost, error) {
	return &storage.PresignedPost{
		Key:     key,
		URL:     "https://cdn.test/post",
		Fields:  map[string]string{"key": key},
		FileURL: "https://cdn.test/" + key,
	}, nil
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newFakeStore()
	router := gin.New()
	RegisterRoutes(router, NewHandler(store))
	return router, store
}

func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fieldName, fileName))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestUploadStreamsFileToStorage(t *testing.T) {
	router, store := setupRouter(t)

	content := []byte("payload bytes for the bucket")
	body, contentType := multipartBody(t, "file", "my photo.png", "image/png", content)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		FileURL string `json:"fileUrl"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Contains(t, payload.FileURL, "uploads/")
	require.Contains(t, payload.FileURL, "my_photo.png")

	require.Len(t, store.objects, 1)
	for key, stored := range store.objects {
		require.True(t, strings.HasPrefix(key, "uploads/"))
		require.Equal(t, content, stored)
	}
	require.Equal(t, "image/png", store.lastType)
	require.Equal(t, int64(-1), store.lastSize)
}

func TestUploadSniffsMissingContentType(t *testing.T) {
	router, store := setupRouter(t)

	// PNG magic bytes with no declared type.
	content := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0x0}, 64)...)
	body, contentType := multipartBody(t, "file", "mystery.bin", "", content)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "image/png", store.lastType)
	for _, stored := range store.objects {
		require.Equal(t, content, stored)
	}
}

func TestUploadRejectsMissingFileField(t *testing.T) {
	router, _ := setupRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "not a file"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Contains(t, resp.Body.String(), "no file field")
}

func TestUploadRejectsNonPost(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestUploadPreflight(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/upload", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusNoContent, resp.Code)
	require.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, resp.Header().Get("Access-Control-Allow-Methods"), "POST")
	require.Empty(t, resp.Body.Bytes())
}

func TestPresignEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newFakeStore()

	router := gin.New()
	group := router.Group("/api/v1")
	RegisterAPIRoutes(group, NewHandler(store))

	reqBody := bytes.NewBufferString(`{"file_name":"big video.mp4"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/storage/presign", reqBody)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Data storage.PresignedPost `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Contains(t, payload.Data.Key, "big_video.mp4")
	require.NotEmpty(t, payload.Data.URL)
}
