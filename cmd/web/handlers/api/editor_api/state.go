// package editor_api provides the editor session API handlers.
package editor_api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
)

// HandleState returns the session's current state as JSON.
func HandleState(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, coord.Snapshot())
	}
}

type catalogResponse struct {
	Groups []filters.GroupPresets `json:"groups"`
	Params []editsettings.Param   `json:"params"`
	Active []string               `json:"active"`
}

// HandleCatalog lists the preset filters by group along with the setting
// descriptors and the session's active presets.
func HandleCatalog(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, catalogResponse{
			Groups: filters.ByGroup(),
			Params: editsettings.Params,
			Active: coord.Settings().Filters,
		})
	}
}
