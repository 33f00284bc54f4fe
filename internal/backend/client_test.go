package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"thirdcoast.systems/cutroom/pkg/editsettings"
)

// recordingServer captures decoded JSON bodies per path.
type recordingServer struct {
	mu     sync.Mutex
	bodies map[string][]map[string]any
}

func newRecordingServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body map[string]any)) (*httptest.Server, *recordingServer) {
	t.Helper()
	rec := &recordingServer{bodies: map[string][]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		rec.mu.Lock()
		rec.bodies[r.URL.Path] = append(rec.bodies[r.URL.Path], body)
		rec.mu.Unlock()
		handler(w, r, body)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func (r *recordingServer) last(path string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bodies[path]
	if len(b) == 0 {
		return nil
	}
	return b[len(b)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_BaseURL(t *testing.T) {
	require.Equal(t, DefaultBaseURL, NewClient("").BaseURL())
	require.Equal(t, "http://example.test:9000", NewClient(" http://example.test:9000/ ").BaseURL())

	c := NewClient("http://h")
	require.Equal(t, "http://h/downloads/a.mp4", c.URL("/downloads/a.mp4"))
	require.Equal(t, "http://h/frames/a.jpg", c.URL("frames/a.jpg"))
	require.Equal(t, "https://cdn/x.jpg", c.URL("https://cdn/x.jpg"))
	require.Equal(t, "http://h/uploads/my%20clip.mp4", c.UploadsURL("my clip.mp4"))
}

func TestCacheBust(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	require.Equal(t, "http://h/f.jpg?t=1700000000123", CacheBust("http://h/f.jpg", now))
	require.Equal(t, "http://h/f.jpg?a=1&t=1700000000123", CacheBust("http://h/f.jpg?a=1", now))
	require.Equal(t, "http://h/f.jpg?t=1700000000123", CacheBust("http://h/f.jpg?t=5", now))
}

func TestFramePreview_UploadedSource(t *testing.T) {
	srv, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		writeJSON(w, 200, map[string]string{"frameUrl": "/frames/abc.jpg"})
	})

	s := editsettings.Default()
	s.Filters = []string{"vintage"}
	s.Brightness = 0.2

	c := NewClient(srv.URL)
	u, err := c.FramePreview(context.Background(), Source{Mode: ModeUpload, Filename: "abc.mp4"}, 12.5, s)
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/frames/abc.jpg", u)

	body := rec.last("/api/frame-preview")
	require.NotNil(t, body)
	assert.Equal(t, "abc.mp4", body["filename"])
	assert.NotContains(t, body, "filePath")
	assert.Equal(t, 12.5, body["timestamp"])
	assert.Equal(t, 0.2, body["brightness"])
	assert.Equal(t, "mp4", body["format"])
	assert.Equal(t, []any{"vintage"}, body["filters"])
	assert.Equal(t, "", body["noise_reduction"])
}

func TestFramePreview_LocalSource(t *testing.T) {
	srv, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		writeJSON(w, 200, map[string]string{"frameUrl": "/frames/local.jpg"})
	})

	c := NewClient(srv.URL)
	_, err := c.FramePreview(context.Background(), Source{Mode: ModeLocal, FilePath: "/media/a.mkv"}, 0, editsettings.Default())
	require.NoError(t, err)

	body := rec.last("/api/local-frame-preview")
	require.NotNil(t, body)
	assert.Equal(t, "/media/a.mkv", body["filePath"])
	assert.NotContains(t, body, "filename")
	assert.Nil(t, rec.last("/api/frame-preview"))
}

func TestFramePreview_LocalModeWithoutPathUsesFilename(t *testing.T) {
	srv, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		writeJSON(w, 200, map[string]string{"frameUrl": "/f.jpg"})
	})

	c := NewClient(srv.URL)
	_, err := c.FramePreview(context.Background(), Source{Mode: ModeLocal, Filename: "up.mp4"}, 1, editsettings.Default())
	require.NoError(t, err)
	require.NotNil(t, rec.last("/api/frame-preview"))
}

func TestFramePreview_NoSource(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.FramePreview(context.Background(), Source{}, 0, editsettings.Default())
	require.ErrorIs(t, err, ErrNoSource)
}

func TestProcess_ErrorBodyVerbatim(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		writeJSON(w, 500, map[string]string{"error": "FFmpeg failed", "details": "Invalid filter graph"})
	})

	c := NewClient(srv.URL)
	_, err := c.Process(context.Background(), Source{Mode: ModeUpload, Filename: "a.mp4"}, editsettings.Default())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, 500, apiErr.Status)
	require.Equal(t, "FFmpeg failed", apiErr.Message)
	require.Equal(t, "Invalid filter graph", apiErr.Details)
	require.Equal(t, "FFmpeg failed: Invalid filter graph", apiErr.Error())
}

func TestProcess_ErrorWithoutDetails(t *testing.T) {
	srv, _ := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		w.WriteHeader(502)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	c := NewClient(srv.URL)
	_, err := c.Process(context.Background(), Source{Mode: ModeLocal, FilePath: "/x.mp4"}, editsettings.Default())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Bad Gateway", apiErr.Message)
	require.Equal(t, "Unknown error", apiErr.DetailsOrUnknown())
}

func TestProcess_Success(t *testing.T) {
	srv, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		writeJSON(w, 200, map[string]string{"downloadUrl": "/download/out.webm"})
	})

	s := editsettings.Default()
	s.Format = editsettings.FormatWebM
	s.Stabilization = true

	c := NewClient(srv.URL)
	u, err := c.Process(context.Background(), Source{Mode: ModeLocal, FilePath: "/v/in.mov"}, s)
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/download/out.webm", u)

	body := rec.last("/api/process-local")
	require.Equal(t, "/v/in.mov", body["filePath"])
	require.Equal(t, "webm", body["format"])
	require.Equal(t, true, body["stabilization"])
}

func TestClipPreview(t *testing.T) {
	srv, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		writeJSON(w, 200, map[string]string{"previewUrl": "/previews/p.mp4"})
	})

	c := NewClient(srv.URL)
	u, err := c.ClipPreview(context.Background(), "a.mp4", editsettings.Default(), 0)
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/previews/p.mp4", u)
	require.Equal(t, float64(DefaultClipPreviewSeconds), rec.last("/api/preview")["duration"])

	_, err = c.ClipPreview(context.Background(), "", editsettings.Default(), 0)
	require.ErrorIs(t, err, ErrNoSource)
}

func TestInfo(t *testing.T) {
	srv, rec := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		if r.URL.Path == "/api/local-info" {
			writeJSON(w, 404, map[string]string{"error": "File not found"})
			return
		}
		_, _ = io.WriteString(w, `{
			"format": {"filename": "a.mp4", "format_name": "mov,mp4", "duration": "125.5", "size": "1048576"},
			"streams": [
				{"index": 0, "codec_type": "audio", "codec_name": "aac", "channels": 2},
				{"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"}
			]
		}`)
	})

	c := NewClient(srv.URL)
	info, err := c.Info(context.Background(), "a.mp4")
	require.NoError(t, err)
	require.Equal(t, "a.mp4", rec.last("/api/info")["filename"])
	require.Equal(t, 125.5, info.Duration())
	require.Equal(t, int64(1048576), info.Size())
	require.Equal(t, "h264", info.PrimaryVideo().CodecName)
	require.Equal(t, "1920x1080", info.Resolution())
	require.InDelta(t, 29.97, info.FPS(), 0.01)

	_, err = c.LocalInfo(context.Background(), "/nope.mp4")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "File not found", apiErr.Message)
	require.Equal(t, "/nope.mp4", rec.last("/api/local-info")["filePath"])
}

func TestUpload_ProgressAndFilename(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 256*1024)

	var (
		mu      sync.Mutex
		gotName string
		gotLen  int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile(UploadField)
		if err != nil || r.URL.Path != "/api/upload" {
			w.WriteHeader(400)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		mu.Lock()
		gotName = hdr.Filename
		gotLen = len(data)
		mu.Unlock()
		writeJSON(w, 200, map[string]string{"filename": "1700000000_clip.mp4"})
	}))
	t.Cleanup(srv.Close)

	var updates []Progress
	c := NewClient(srv.URL)
	name, err := c.Upload(context.Background(), "clip.mp4", bytes.NewReader(payload), int64(len(payload)), func(p Progress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)
	require.Equal(t, "1700000000_clip.mp4", name)
	mu.Lock()
	require.Equal(t, "clip.mp4", gotName)
	require.Equal(t, len(payload), gotLen)
	mu.Unlock()

	require.NotEmpty(t, updates)
	for i := 1; i < len(updates); i++ {
		require.GreaterOrEqual(t, updates[i].Percent, updates[i-1].Percent)
	}
	require.Equal(t, 100, updates[len(updates)-1].Percent)
	require.Equal(t, int64(len(payload)), updates[len(updates)-1].Sent)
}

func TestUpload_UnknownSizeEndsAt100(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, 200, map[string]string{"filename": "f.mp4"})
	}))
	t.Cleanup(srv.Close)

	var last Progress
	c := NewClient(srv.URL)
	_, err := c.Upload(context.Background(), "f.mp4", strings.NewReader("abc"), -1, func(p Progress) { last = p })
	require.NoError(t, err)
	require.Equal(t, 100, last.Percent)
}

func TestUpload_SizeHintReportsIntermediateProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(w, 200, map[string]string{"filename": "f.mp4"})
	}))
	t.Cleanup(srv.Close)

	tests := []struct {
		name string
		hint int64
	}{
		{"hint above payload", 2000},
		{"hint below payload", 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := bytes.Repeat([]byte("x"), 1000)
			r := io.MultiReader(bytes.NewReader(payload[:250]), bytes.NewReader(payload[250:500]), bytes.NewReader(payload[500:]))

			var updates []Progress
			c := NewClient(srv.URL)
			_, err := c.Upload(context.Background(), "f.mp4", WithSizeHint(r, tt.hint), -1, func(p Progress) {
				updates = append(updates, p)
			})
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(updates), 2)

			for i, u := range updates[:len(updates)-1] {
				assert.Greater(t, u.Percent, 0, "update %d", i)
				assert.Less(t, u.Percent, 100, "update %d", i)
				assert.Equal(t, int64(-1), u.Total)
			}
			for i := 1; i < len(updates); i++ {
				require.GreaterOrEqual(t, updates[i].Percent, updates[i-1].Percent)
			}
			require.Equal(t, 100, updates[len(updates)-1].Percent)
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "File too large"})
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	_, err := c.Upload(context.Background(), "big.mp4", strings.NewReader("abc"), 3, nil)
	require.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUpload_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := NewClient(srv.URL, WithUploadTimeout(50*time.Millisecond))
	_, err := c.Upload(context.Background(), "slow.mp4", strings.NewReader("abc"), 3, nil)
	require.ErrorIs(t, err, ErrUploadTimeout)
}

func TestParseMode(t *testing.T) {
	m, ok := ParseMode("Local")
	require.True(t, ok)
	require.Equal(t, ModeLocal, m)
	_, ok = ParseMode("ftp")
	require.False(t, ok)
}

func TestBrowserPlayable(t *testing.T) {
	require.True(t, BrowserPlayable("/a/b.MP4"))
	require.True(t, BrowserPlayable("clip.webm"))
	require.False(t, BrowserPlayable("movie.mkv"))
	require.False(t, BrowserPlayable("noext"))
}
