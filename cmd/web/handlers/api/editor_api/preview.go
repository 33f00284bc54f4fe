package editor_api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
)

type urlResponse struct {
	URL string `json:"url"`
}

// HandleLivePreview turns debounced frame previews on or off.
func HandleLivePreview(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		type Signals struct {
			Enabled bool `json:"enabled"`
		}
		signals := &Signals{}
		if err := datastar.ReadSignals(c.Request(), signals); err != nil {
			return common.ErrBadRequest("invalid body")
		}
		coord.SetLivePreview(signals.Enabled)
		return c.JSON(http.StatusOK, coord.Snapshot().Preview)
	}
}

// HandleTime moves the playhead. scrub marks player time updates, which
// wait longer before previewing than slider seeks.
func HandleTime(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		type Signals struct {
			Time  *float64 `json:"time"`
			Scrub bool     `json:"scrub"`
		}
		signals := &Signals{}
		if err := datastar.ReadSignals(c.Request(), signals); err != nil {
			return common.ErrBadRequest("invalid body")
		}
		if signals.Time == nil {
			return common.ErrBadRequest("time is required")
		}

		if signals.Scrub {
			coord.UpdateVideoTime(*signals.Time)
		} else {
			coord.SeekTo(*signals.Time)
		}
		return c.JSON(http.StatusOK, coord.Snapshot().Preview)
	}
}

// HandleRefreshPreview renders the current frame immediately.
func HandleRefreshPreview(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		u, err := coord.RefreshPreview(c.Request().Context())
		if err != nil {
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, urlResponse{URL: u})
	}
}

// HandleClipPreview renders a short clip of an uploaded source.
func HandleClipPreview(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		u, err := coord.GenerateClipPreview(c.Request().Context())
		if err != nil {
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, urlResponse{URL: u})
	}
}

// HandleProcess runs the full processing job and returns the download URL.
func HandleProcess(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		u, err := coord.Process(c.Request().Context())
		if err != nil {
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, urlResponse{URL: u})
	}
}
