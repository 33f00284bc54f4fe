package static

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/cutroom/static"
)

// CachedFileInfo holds metadata for a static file used in HTTP cache headers.
type CachedFileInfo struct {
	ETag         string
	Size         int64
	LastModified time.Time
}

// StaticCache manages in-memory metadata for static assets.
type StaticCache struct {
	fileLock sync.RWMutex
	entries  map[string]CachedFileInfo
	fs       fs.FS
	started  time.Time
}

// NewStaticCache scans the embedded filesystem and computes ETag and Last-Modified for each file.
func NewStaticCache() (*StaticCache, error) {
	return newStaticCache(static.FS)
}

func newStaticCache(fsys fs.FS) (*StaticCache, error) {
	c := &StaticCache{
		entries: make(map[string]CachedFileInfo),
		fs:      fsys,
		started: time.Now().UTC().Truncate(time.Second),
	}

	c.fileLock.Lock()
	defer c.fileLock.Unlock()

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}

		// embed.FS reports a zero mod time; use process start instead.
		modTime := info.ModTime()
		if modTime.IsZero() {
			modTime = c.started
		}

		c.entries[path] = CachedFileInfo{
			ETag:         fmt.Sprintf("\"%x\"", h.Sum(nil)),
			Size:         info.Size(),
			LastModified: modTime,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the cached metadata for path.
func (s *StaticCache) Lookup(path string) (CachedFileInfo, bool) {
	s.fileLock.RLock()
	defer s.fileLock.RUnlock()
	ci, ok := s.entries[path]
	return ci, ok
}

// ServeStaticFile serves files below prefix from the embedded filesystem.
func (s *StaticCache) ServeStaticFile(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return s.serve(c, strings.TrimPrefix(c.Request().URL.Path, prefix))
	}
}

// ServeFileOr serves path when it is embedded and otherwise redirects to
// fallbackURL. Vendored third-party bundles use it.
func (s *StaticCache) ServeFileOr(path, fallbackURL string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := s.Lookup(path); !ok {
			return c.Redirect(http.StatusFound, fallbackURL)
		}
		return s.serve(c, path)
	}
}

func (s *StaticCache) serve(c echo.Context, path string) error {
	ci, ok := s.Lookup(path)
	if !ok {
		return echo.ErrNotFound
	}

	// If client has up-to-date version, return 304
	if inm := c.Request().Header.Get("If-None-Match"); inm != "" && inm == ci.ETag {
		return c.NoContent(http.StatusNotModified)
	}
	if ims := c.Request().Header.Get(echo.HeaderIfModifiedSince); ims != "" {
		if t, err := time.Parse(http.TimeFormat, ims); err == nil && !ci.LastModified.After(t) {
			return c.NoContent(http.StatusNotModified)
		}
	}

	// dist/ assets are not fingerprinted, so the browser revalidates them.
	ext := filepath.Ext(path)
	switch ext {
	case ".html", ".css", ".js":
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, must-revalidate")
	default:
		c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600, stale-while-revalidate=300")
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return echo.ErrNotFound
	}
	defer f.Close()

	c.Response().Header().Set("ETag", ci.ETag)
	c.Response().Header().Set(echo.HeaderLastModified, ci.LastModified.Format(http.TimeFormat))

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.Stream(http.StatusOK, contentType, f)
}
