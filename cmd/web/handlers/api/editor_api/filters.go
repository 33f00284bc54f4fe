package editor_api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
)

type filtersResponse struct {
	Active []string `json:"active"`
}

// HandleToggleFilter flips the preset named by :id.
func HandleToggleFilter(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		active, err := coord.ToggleFilter(c.Param("id"))
		if err != nil {
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, filtersResponse{Active: active})
	}
}

// HandleClearFilters turns every preset off.
func HandleClearFilters(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}
		coord.ClearFilters()
		return c.JSON(http.StatusOK, filtersResponse{Active: []string{}})
	}
}
