// Package pages serves the server-rendered HTML pages.
package pages

import (
	"encoding/json"
	"log/slog"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/cmd/web/templates"
	"thirdcoast.systems/cutroom/internal/editor"
	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
)

// pageSignals seeds the page with the session state plus the scratch
// signals the controls post back.
func pageSignals(st editor.State) (string, error) {
	b, err := json.Marshal(map[string]any{
		"editor":   st,
		"key":      "",
		"value":    nil,
		"filePath": "",
		"enabled":  st.Preview.LivePreview,
		"time":     st.Preview.CurrentTime,
		"scrub":    false,
	})
	return string(b), err
}

// HandleEditorPage renders the editor for the caller's session, creating
// the session on first visit.
func HandleEditorPage(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, id, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		st := coord.Snapshot()
		signals, err := pageSignals(st)
		if err != nil {
			slog.Error("failed to encode editor signals", "editor_id", id, "error", err)
			return common.ErrInternal("failed to render editor")
		}

		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
		return templates.Editor(templates.EditorPage{
			State:   st,
			Params:  editsettings.Params,
			Groups:  filters.ByGroup(),
			Signals: signals,
		}).Render(c.Request().Context(), c.Response())
	}
}
