// Package backend is the HTTP client for the external video processing
// service: uploads, metadata probes, processing jobs and previews.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"thirdcoast.systems/cutroom/pkg/editsettings"
)

const (
	DefaultBaseURL       = "http://localhost:5001"
	DefaultUploadTimeout = 30 * time.Minute

	// DefaultClipPreviewSeconds is the length of a short clip preview.
	DefaultClipPreviewSeconds = 5
)

var ErrNoSource = errors.New("no source video selected")

// Mode selects how the source video reaches the backend.
type Mode string

const (
	ModeUpload Mode = "upload"
	ModeLocal  Mode = "local"
)

// ParseMode validates a mode string.
func ParseMode(v string) (Mode, bool) {
	switch Mode(strings.ToLower(strings.TrimSpace(v))) {
	case ModeUpload:
		return ModeUpload, true
	case ModeLocal:
		return ModeLocal, true
	}
	return "", false
}

// Source identifies the video being edited: an uploaded file's
// server-assigned name, or a path on the backend's filesystem.
type Source struct {
	Mode     Mode   `json:"mode"`
	Filename string `json:"filename,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

// IsLocal reports whether requests should use the local-path endpoints.
func (s Source) IsLocal() bool {
	return s.Mode == ModeLocal && s.FilePath != ""
}

// Empty reports whether there is nothing to preview or process.
func (s Source) Empty() bool {
	return s.Filename == "" && s.FilePath == ""
}

type Client struct {
	baseURL string
	http    *http.Client
	upload  *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the client used for JSON requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithUploadTimeout overrides the upload timeout. Zero keeps the default.
func WithUploadTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.upload.Timeout = d
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		upload: &http.Client{
			Timeout: DefaultUploadTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves a server-relative path such as "/downloads/x.mp4".
// Absolute URLs are returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// UploadsURL is where the backend serves an uploaded original.
func (c *Client) UploadsURL(filename string) string {
	return c.baseURL + "/uploads/" + url.PathEscape(filename)
}

// CacheBust appends a t=<unix ms> query parameter so an image element
// reloads even when the path is unchanged.
func CacheBust(raw string, now time.Time) string {
	u, err := url.Parse(raw)
	if err != nil {
		sep := "?"
		if strings.Contains(raw, "?") {
			sep = "&"
		}
		return raw + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
	}
	q := u.Query()
	q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

type sourceRequest struct {
	Filename string `json:"filename,omitempty"`
	FilePath string `json:"filePath,omitempty"`
}

type settingsRequest struct {
	sourceRequest
	editsettings.Settings
}

func requestFor(src Source, s editsettings.Settings) settingsRequest {
	req := settingsRequest{Settings: s.Clone()}
	if src.IsLocal() {
		req.FilePath = src.FilePath
	} else {
		req.Filename = src.Filename
	}
	return req
}

// Info probes an uploaded file.
func (c *Client) Info(ctx context.Context, filename string) (*VideoInfo, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoSource
	}
	var out VideoInfo
	if err := c.postJSON(ctx, "/api/info", sourceRequest{Filename: filename}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LocalInfo probes a file by path on the backend host.
func (c *Client) LocalInfo(ctx context.Context, filePath string) (*VideoInfo, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, ErrNoSource
	}
	var out VideoInfo
	if err := c.postJSON(ctx, "/api/local-info", sourceRequest{FilePath: filePath}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Process runs the full job and returns the absolute download URL.
func (c *Client) Process(ctx context.Context, src Source, s editsettings.Settings) (string, error) {
	if src.Empty() {
		return "", ErrNoSource
	}
	path := "/api/process"
	if src.IsLocal() {
		path = "/api/process-local"
	}

	var out struct {
		DownloadURL string `json:"downloadUrl"`
	}
	if err := c.postJSON(ctx, path, requestFor(src, s), &out); err != nil {
		return "", err
	}
	if out.DownloadURL == "" {
		return "", fmt.Errorf("backend: %s returned no downloadUrl", path)
	}
	return c.URL(out.DownloadURL), nil
}

// ClipPreview renders the first seconds of an uploaded file with the given
// settings and returns the absolute clip URL.
func (c *Client) ClipPreview(ctx context.Context, filename string, s editsettings.Settings, seconds float64) (string, error) {
	if filename == "" {
		return "", ErrNoSource
	}
	if seconds <= 0 {
		seconds = DefaultClipPreviewSeconds
	}

	body := struct {
		settingsRequest
		Duration float64 `json:"duration"`
	}{
		settingsRequest: requestFor(Source{Mode: ModeUpload, Filename: filename}, s),
		Duration:        seconds,
	}

	var out struct {
		PreviewURL string `json:"previewUrl"`
	}
	if err := c.postJSON(ctx, "/api/preview", body, &out); err != nil {
		return "", err
	}
	if out.PreviewURL == "" {
		return "", errors.New("backend: /api/preview returned no previewUrl")
	}
	return c.URL(out.PreviewURL), nil
}

// FramePreview renders a single frame at timestamp (seconds) and returns
// the absolute frame URL.
func (c *Client) FramePreview(ctx context.Context, src Source, timestamp float64, s editsettings.Settings) (string, error) {
	if src.Empty() {
		return "", ErrNoSource
	}
	path := "/api/frame-preview"
	if src.IsLocal() {
		path = "/api/local-frame-preview"
	}

	body := struct {
		settingsRequest
		Timestamp float64 `json:"timestamp"`
	}{
		settingsRequest: requestFor(src, s),
		Timestamp:       timestamp,
	}

	var out struct {
		FrameURL string `json:"frameUrl"`
	}
	if err := c.postJSON(ctx, path, body, &out); err != nil {
		return "", err
	}
	if out.FrameURL == "" {
		return "", fmt.Errorf("backend: %s returned no frameUrl", path)
	}
	return c.URL(out.FrameURL), nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("backend: encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", path, err)
	}
	return nil
}

// readLimited reads a bounded amount of an error body.
func readLimited(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, 16*1024))
	return b
}
