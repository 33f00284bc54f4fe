package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const probeJSON = `{
  "format": {"format_name": "mov,mp4,m4a", "duration": "125.5", "size": "1048576", "bit_rate": "2500000"},
  "streams": [
    {"index": 0, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080, "r_frame_rate": "30000/1001"},
    {"index": 1, "codec_type": "audio", "codec_name": "aac", "sample_rate": "48000", "channels": 2}
  ]
}`

type backendStub struct {
	mu       sync.Mutex
	requests map[string]map[string]any
	uploaded []byte
}

func (b *backendStub) last(path string) map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[path]
}

func newBackendStub(t *testing.T) (*backendStub, *httptest.Server) {
	t.Helper()
	stub := &backendStub{requests: make(map[string]map[string]any)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/api/upload" {
			f, hdr, err := r.FormFile("video")
			if err != nil {
				w.WriteHeader(400)
				_, _ = io.WriteString(w, `{"error":"No file"}`)
				return
			}
			data, _ := io.ReadAll(f)
			stub.mu.Lock()
			stub.uploaded = data
			stub.mu.Unlock()
			_, _ = io.WriteString(w, `{"filename":"1700000000_`+hdr.Filename+`"}`)
			return
		}

		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		stub.mu.Lock()
		stub.requests[r.URL.Path] = body
		stub.mu.Unlock()

		switch r.URL.Path {
		case "/api/info", "/api/local-info":
			if body["filePath"] == "/nope.mp4" {
				w.WriteHeader(404)
				_, _ = io.WriteString(w, `{"error":"File not found"}`)
				return
			}
			_, _ = io.WriteString(w, probeJSON)
		case "/api/process", "/api/process-local":
			if body["format"] == "avi" {
				w.WriteHeader(500)
				_, _ = io.WriteString(w, `{"error":"Processing failed","details":"encoder exited with status 1"}`)
				return
			}
			_, _ = io.WriteString(w, `{"downloadUrl":"/download/processed_1.mp4"}`)
		case "/api/frame-preview", "/api/local-frame-preview":
			_, _ = io.WriteString(w, `{"frameUrl":"/frames/frame_1.jpg"}`)
		default:
			w.WriteHeader(404)
		}
	}))
	t.Cleanup(srv.Close)
	return stub, srv
}

func runCLI(t *testing.T, backendURL string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--backend", backendURL}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestFiltersCommand(t *testing.T) {
	out, _, err := runCLI(t, "http://127.0.0.1:1", "filters")
	require.NoError(t, err)
	assert.Contains(t, out, "Color Style")
	assert.Contains(t, out, "vintage")
	assert.Contains(t, out, "Projector Fix")
}

func TestFiltersCommand_JSON(t *testing.T) {
	out, _, err := runCLI(t, "http://127.0.0.1:1", "--json", "filters")
	require.NoError(t, err)

	var groups []struct {
		Group struct {
			Name string `json:"name"`
		} `json:"group"`
		Presets []struct {
			ID string `json:"id"`
		} `json:"presets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &groups))
	require.Len(t, groups, 8)
	require.Equal(t, "vintage", groups[0].Presets[0].ID)
}

func TestDefaultsCommand(t *testing.T) {
	out, _, err := runCLI(t, "http://127.0.0.1:1", "defaults")
	require.NoError(t, err)
	assert.Contains(t, out, "--volume")
	assert.Contains(t, out, "0.0 to 3.0, step 0.1")
	assert.Contains(t, out, "--noise-reduction")
	assert.Contains(t, out, "(none), light, medium, heavy")
}

func TestInfoCommand_Local(t *testing.T) {
	stub, srv := newBackendStub(t)

	out, _, err := runCLI(t, srv.URL, "info", "--local", "/media/in.mp4")
	require.NoError(t, err)
	assert.Equal(t, "/media/in.mp4", stub.last("/api/local-info")["filePath"])
	assert.Contains(t, out, "2:05")
	assert.Contains(t, out, "1.0 MiB")
	assert.Contains(t, out, "2.5 Mb/s")
	assert.Contains(t, out, "1920x1080")
	assert.Contains(t, out, "29.97 fps")
	assert.Contains(t, out, "48000 Hz, 2 ch")
}

func TestInfoCommand_Uploaded(t *testing.T) {
	stub, srv := newBackendStub(t)

	out, _, err := runCLI(t, srv.URL, "--json", "info", "1700000000_in.mp4")
	require.NoError(t, err)
	assert.Equal(t, "1700000000_in.mp4", stub.last("/api/info")["filename"])
	assert.Contains(t, out, `"codec_name": "h264"`)
}

func TestInfoCommand_Errors(t *testing.T) {
	_, srv := newBackendStub(t)

	_, _, err := runCLI(t, srv.URL, "info")
	require.Error(t, err)

	_, _, err = runCLI(t, srv.URL, "info", "--local", "/nope.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File not found")
}

func TestBackendFromEnvironment(t *testing.T) {
	stub, srv := newBackendStub(t)
	t.Setenv("BACKEND_URL", srv.URL)

	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"info", "--local", "/media/in.mp4"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "/media/in.mp4", stub.last("/api/local-info")["filePath"])

	t.Setenv("BACKEND_URL", "not a url")
	cmd = newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"filters"})
	require.Error(t, cmd.Execute())

	// An explicit flag wins over the environment.
	cmd = newRootCommand()
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--backend", srv.URL, "--timeout", "1m", "filters"})
	require.NoError(t, cmd.Execute())
}

func writeVideo(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0x42}, size), 0o644))
	return path
}

func TestUploadCommand(t *testing.T) {
	stub, srv := newBackendStub(t)
	path := writeVideo(t, 32*1024)

	out, _, err := runCLI(t, srv.URL, "upload", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded as 1700000000_clip.mp4")
	assert.Contains(t, out, srv.URL+"/uploads/1700000000_clip.mp4")
	assert.Contains(t, out, "1920x1080")

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.Len(t, stub.uploaded, 32*1024)
}

func TestUploadCommand_MissingFile(t *testing.T) {
	_, srv := newBackendStub(t)
	_, _, err := runCLI(t, srv.URL, "upload", filepath.Join(t.TempDir(), "missing.mp4"))
	require.Error(t, err)
}

func TestProcessCommand_Local(t *testing.T) {
	stub, srv := newBackendStub(t)

	out, stderr, err := runCLI(t, srv.URL, "process", "--local", "/media/in.mp4",
		"--volume", "9", "--stabilization", "--noise-reduction", "medium",
		"--filter", "vintage", "--filter", "enhance", "--filter", "sepia")
	require.NoError(t, err)
	assert.Contains(t, out, "Download: "+srv.URL+"/download/processed_1.mp4")
	assert.Contains(t, stderr, "vintage dropped")

	got := stub.last("/api/process-local")
	require.NotNil(t, got)
	assert.Equal(t, "/media/in.mp4", got["filePath"])
	assert.Equal(t, 3.0, got["volume"])
	assert.Equal(t, true, got["stabilization"])
	assert.Equal(t, "medium", got["noise_reduction"])
	assert.Equal(t, []any{"enhance", "sepia"}, got["filters"])
}

func TestProcessCommand_Upload(t *testing.T) {
	stub, srv := newBackendStub(t)
	path := writeVideo(t, 4096)

	out, _, err := runCLI(t, srv.URL, "--json", "process", path, "--speed", "2")
	require.NoError(t, err)

	var res struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, srv.URL+"/download/processed_1.mp4", res.URL)

	got := stub.last("/api/process")
	assert.Equal(t, "1700000000_clip.mp4", got["filename"])
	assert.Equal(t, 2.0, got["speed"])
}

func TestProcessCommand_Errors(t *testing.T) {
	stub, srv := newBackendStub(t)

	_, _, err := runCLI(t, srv.URL, "process", "--local", "/media/in.mp4", "--format", "gif")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "--format"))

	_, _, err = runCLI(t, srv.URL, "process", "--local", "/media/in.mp4", "--filter", "bogus")
	require.Error(t, err)
	assert.Nil(t, stub.last("/api/local-info"), "bad flags fail before the source is touched")

	_, _, err = runCLI(t, srv.URL, "process", "--local", "/media/in.mp4", "--format", "avi")
	require.Error(t, err)
	assert.Equal(t, "Processing failed: encoder exited with status 1", err.Error())
}

func TestFrameCommand(t *testing.T) {
	stub, srv := newBackendStub(t)

	out, _, err := runCLI(t, srv.URL, "frame", "--local", "/media/in.mp4", "--at", "500", "--brightness", "0.25")
	require.NoError(t, err)
	assert.Contains(t, out, "Frame at 2:05: "+srv.URL+"/frames/frame_1.jpg?t=")

	got := stub.last("/api/local-frame-preview")
	require.NotNil(t, got)
	assert.Equal(t, 125.5, got["timestamp"])
	assert.Equal(t, 0.25, got["brightness"])
}
