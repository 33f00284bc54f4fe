package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"sync"
)

// UploadField is the multipart form field carrying the video.
const UploadField = "video"

// Progress reports how much of an upload has been handed to the transport.
type Progress struct {
	Sent    int64
	Total   int64 // -1 when unknown
	Percent int   // 0-100, never decreases
}

// SizeHinter is implemented by readers that know roughly how many bytes
// they will yield. Upload uses the hint for progress only.
type SizeHinter interface {
	SizeHint() int64
}

type hintedReader struct {
	io.Reader
	n int64
}

func (h *hintedReader) SizeHint() int64 { return h.n }

// WithSizeHint attaches an approximate length to r, such as a request's
// Content-Length around a multipart file part.
func WithSizeHint(r io.Reader, n int64) io.Reader {
	return &hintedReader{Reader: r, n: n}
}

// Upload streams r to /api/upload as multipart form data and returns the
// server-assigned filename. size may be -1 when unknown. Without a
// SizeHinter the percentage then stays at 0 until the upload completes; with
// one it tracks the hint but holds below 100 until the server accepts.
// onProgress may be nil.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader, size int64, onProgress func(Progress)) (string, error) {
	prefix, suffix, contentType, err := multipartEnvelope(name)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	pr := &progressReader{r: r, total: size, report: onProgress}
	if h, ok := r.(SizeHinter); ok && size < 0 {
		pr.hint = h.SizeHint()
	}
	body := io.MultiReader(bytes.NewReader(prefix), pr, bytes.NewReader(suffix))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", body)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if size >= 0 {
		req.ContentLength = int64(len(prefix)) + size + int64(len(suffix))
	}

	resp, err := c.upload.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", ErrUploadTimeout
		}
		return "", fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(resp)
		if resp.StatusCode == http.StatusRequestEntityTooLarge {
			return "", fmt.Errorf("%w: %w", ErrFileTooLarge, apiErr)
		}
		return "", fmt.Errorf("upload failed: %w", apiErr)
	}

	var out struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("upload failed: decode response: %w", err)
	}
	if out.Filename == "" {
		return "", errors.New("upload failed: backend returned no filename")
	}

	pr.finish()
	return out.Filename, nil
}

// multipartEnvelope renders the bytes that surround the file content so the
// body length is known up front and the file itself is streamed.
func multipartEnvelope(name string) (prefix, suffix []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if _, err := mw.CreateFormFile(UploadField, name); err != nil {
		return nil, nil, "", err
	}
	prefix = bytes.Clone(buf.Bytes())
	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, nil, "", err
	}
	suffix = bytes.Clone(buf.Bytes())
	return prefix, suffix, mw.FormDataContentType(), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

type progressReader struct {
	mu      sync.Mutex
	r       io.Reader
	total   int64
	hint    int64
	sent    int64
	percent int
	report  func(Progress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *progressReader) advance(n int64) {
	p.mu.Lock()
	p.sent += n
	pct := p.percent
	switch {
	case p.total > 0:
		pct = int(p.sent * 100 / p.total)
		if pct > 100 {
			pct = 100
		}
	case p.hint > 0:
		pct = int(min(p.sent*100/p.hint, 99))
	}
	if pct < p.percent {
		pct = p.percent
	}
	changed := pct != p.percent
	p.percent = pct
	prog := Progress{Sent: p.sent, Total: p.total, Percent: pct}
	p.mu.Unlock()

	if changed && p.report != nil {
		p.report(prog)
	}
}

// finish reports 100% once the server has accepted the upload.
func (p *progressReader) finish() {
	p.mu.Lock()
	if p.percent == 100 {
		p.mu.Unlock()
		return
	}
	p.percent = 100
	prog := Progress{Sent: p.sent, Total: p.total, Percent: 100}
	p.mu.Unlock()

	if p.report != nil {
		p.report(prog)
	}
}
