package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// ProxyStore talks to a storage proxy service over its bearer-token HTTP API.
// The proxy owns the bucket; this client only moves bytes and asks for URLs.
type ProxyStore struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewProxyStore(baseURL, token string) *ProxyStore {
	return &ProxyStore{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}
}

type proxyObjectResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type proxyPresignResponse struct {
	Key     string            `json:"key"`
	URL     string            `json:"url"`
	Fields  map[string]string `json:"fields"`
	FileURL string            `json:"fileUrl"`
}

// Put streams the content to the proxy's upload endpoint as a multipart form.
// The multipart writer feeds a pipe, so the request body is produced in
// lockstep with the reader and nothing is buffered whole.
func (s *ProxyStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (*Object, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		var err error
		defer func() { pw.CloseWithError(err) }()

		if err = mw.WriteField("key", key); err != nil {
			return
		}
		var part io.Writer
		part, err = mw.CreateFormFile("file", key)
		if err != nil {
			return
		}
		if _, err = io.Copy(part, r); err != nil {
			return
		}
		err = mw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token)
	if contentType != "" {
		req.Header.Set("X-Content-Type", contentType)
	}

	var out proxyObjectResponse
	if err := s.do(req, &out); err != nil {
		return nil, err
	}
	if out.Key == "" {
		out.Key = key
	}
	return &Object{Key: out.Key, URL: out.URL}, nil
}

func (s *ProxyStore) SignedGetURL(ctx context.Context, key string) (*Object, error) {
	u := fmt.Sprintf("%s/sign?key=%s", s.baseURL, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	var out proxyObjectResponse
	if err := s.do(req, &out); err != nil {
		return nil, err
	}
	return &Object{Key: key, URL: out.URL}, nil
}

func (s *ProxyStore) PresignPost(ctx context.Context, key string) (*PresignedPost, error) {
	u := fmt.Sprintf("%s/presign?key=%s", s.baseURL, url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	var out proxyPresignResponse
	if err := s.do(req, &out); err != nil {
		return nil, err
	}
	return &PresignedPost{
		Key:     key,
		URL:     out.URL,
		Fields:  out.Fields,
		FileURL: out.FileURL,
	}, nil
}

func (s *ProxyStore) do(req *http.Request, out any) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("storage proxy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("storage proxy: %s returned %d: %s", req.URL.Path, resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
