package editor_api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/pkg/editsettings"
)

// HandleSetSetting applies a single {key, value} edit. Numeric values are
// clamped to their input range.
func HandleSetSetting(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		type Signals struct {
			Key   string `json:"key"`
			Value any    `json:"value"`
		}
		signals := &Signals{}
		if err := datastar.ReadSignals(c.Request(), signals); err != nil {
			return common.ErrBadRequest("invalid body")
		}
		if signals.Key == "" {
			return common.ErrBadRequest("key is required")
		}

		if err := coord.SetSetting(signals.Key, signals.Value); err != nil {
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, coord.Settings())
	}
}

// HandleReplaceSettings swaps in a full settings document. Out-of-range
// values are rejected rather than clamped.
func HandleReplaceSettings(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		s := editsettings.Default()
		if err := datastar.ReadSignals(c.Request(), &s); err != nil {
			return common.ErrBadRequest("invalid body")
		}
		if s.Filters == nil {
			s.Filters = []string{}
		}
		if err := coord.ReplaceSettings(s); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, common.ErrorBody{Error: err.Error()})
		}
		return c.JSON(http.StatusOK, coord.Settings())
	}
}

// HandleResetSettings restores the defaults.
func HandleResetSettings(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		coord.ResetSettings()
		return c.JSON(http.StatusOK, coord.Settings())
	}
}
