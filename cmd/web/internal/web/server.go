package web

import (
	"context"
	"log/slog"
	"math"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/api/editor_api"
	"thirdcoast.systems/cutroom/cmd/web/handlers/pages"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/cutroom/cmd/web/templates"
	assets "thirdcoast.systems/cutroom/static"
)

type Webserver struct {
	*echo.Echo
	sessionManager *auth.SessionManager
	editors        *editors.Registry
	staticCache    *static.StaticCache
	uploadLimit    int64
}

// NewWebserver wires the editor API. uploadLimit caps upload bodies; every
// other request is limited to 2M.
func NewWebserver(ctx context.Context, sessionManager *auth.SessionManager, registry *editors.Registry, uploadLimit uint64) (*Webserver, error) {
	e := echo.New()

	limit := int64(math.MaxInt64)
	if uploadLimit < math.MaxInt64 {
		limit = int64(uploadLimit)
	}

	staticCache, err := static.NewStaticCache()
	if err != nil {
		return nil, err
	}

	webserver := &Webserver{
		Echo:           e,
		sessionManager: sessionManager,
		editors:        registry,
		staticCache:    staticCache,
		uploadLimit:    limit,
	}

	if err := webserver.registerRoutes(); err != nil {
		return nil, err
	}

	if err := webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	return webserver, nil
}

const uploadPath = "/api/editor/upload"

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: "2M",
		Skipper: func(c echo.Context) bool {
			return c.Path() == uploadPath
		},
	}))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/api/editor/stream"
		},
	}))
	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			switch c.Path() {
			case "/api/editor/stream", "/healthz":
				return true
			default:
				return false
			}
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	return nil
}

func (s *Webserver) registerRoutes() error {
	editorGroup := s.Group("/api/editor")
	editorGroup.GET("/state", editor_api.HandleState(s.sessionManager, s.editors))
	editorGroup.GET("/filters", editor_api.HandleCatalog(s.sessionManager, s.editors))
	editorGroup.GET("/stream", editor_api.HandleStream(s.sessionManager, s.editors))

	// Source selection
	editorGroup.POST("/upload", editor_api.HandleUpload(s.sessionManager, s.editors, s.uploadLimit))
	editorGroup.POST("/local", editor_api.HandleLocal(s.sessionManager, s.editors))
	editorGroup.POST("/mode", editor_api.HandleMode(s.sessionManager, s.editors))

	// Settings
	editorGroup.POST("/settings", editor_api.HandleSetSetting(s.sessionManager, s.editors))
	editorGroup.PUT("/settings", editor_api.HandleReplaceSettings(s.sessionManager, s.editors))
	editorGroup.POST("/settings/reset", editor_api.HandleResetSettings(s.sessionManager, s.editors))
	editorGroup.POST("/filters/clear", editor_api.HandleClearFilters(s.sessionManager, s.editors))
	editorGroup.POST("/filters/:id/toggle", editor_api.HandleToggleFilter(s.sessionManager, s.editors))

	// Previews and processing
	editorGroup.POST("/live-preview", editor_api.HandleLivePreview(s.sessionManager, s.editors))
	editorGroup.POST("/time", editor_api.HandleTime(s.sessionManager, s.editors))
	editorGroup.POST("/preview", editor_api.HandleRefreshPreview(s.sessionManager, s.editors))
	editorGroup.POST("/clip-preview", editor_api.HandleClipPreview(s.sessionManager, s.editors))
	editorGroup.POST("/process", editor_api.HandleProcess(s.sessionManager, s.editors))

	// Editor page and assets
	s.GET("/", pages.HandleEditorPage(s.sessionManager, s.editors))
	s.GET(templates.DatastarPath, s.staticCache.ServeFileOr("dist/datastar.js", assets.DatastarCDN))
	s.GET("/static/*", s.staticCache.ServeStaticFile("/static/"))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	return nil
}
