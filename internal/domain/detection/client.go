package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/JUP-iter/vidaryproject/internal/config"
)

// Route is an upstream endpoint path. Each media class (and each audio mode)
// has its own route with its own response shape.
type Route string

const (
	RouteImage Route = "image"
	RouteVoice Route = "audio/voice"
	RouteMusic Route = "audio/music"
	RouteVideo Route = "video"
	RouteText  Route = "text"
)

// Detector calls the external AI-content-detection API and returns the raw
// response payload. Normalization happens at the caller.
type Detector interface {
	Detect(ctx context.Context, route Route, fileName string, content []byte, contentType string) (json.RawMessage, error)
}

// APIError is a non-2xx upstream answer, kept with enough context to
// classify it (plan restriction vs. everything else).
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("detection api: status %d: %s", e.StatusCode, e.Body)
}

// PlanRestricted reports whether the upstream rejected the call because the
// account's plan does not cover it.
func (e *APIError) PlanRestricted() bool {
	if e.StatusCode == http.StatusPaymentRequired {
		return true
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "plan") || strings.Contains(body, "upgrade")
}

// Client is the HTTP client for the detection API. Binary media is sent as a
// multipart form, text as a JSON body, both against {base}/v1/reports/{route}.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(cfg config.DetectionConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

func (c *Client) Detect(ctx context.Context, route Route, fileName string, content []byte, contentType string) (json.RawMessage, error) {
	if route == RouteText {
		return c.detectText(ctx, string(content))
	}
	return c.detectBinary(ctx, route, fileName, content, contentType)
}

func (c *Client) detectBinary(ctx context.Context, route Route, fileName string, content []byte, contentType string) (json.RawMessage, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="object"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.routeURL(route), &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req)
}

func (c *Client) detectText(ctx context.Context, text string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.routeURL(RouteText), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *Client) routeURL(route Route) string {
	return fmt.Sprintf("%s/v1/reports/%s", c.baseURL, route)
}

func (c *Client) send(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("detection api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
