package common

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/internal/editor"
)

// RequireEditor resolves the caller's editor session, issuing a session
// cookie on first contact.
func RequireEditor(c echo.Context, sm *auth.SessionManager, reg *editors.Registry) (*editor.Coordinator, string, error) {
	id, created, err := sm.EnsureSession(c.Response().Writer, c.Request())
	if err != nil {
		slog.Error("failed to save session", "error", err)
		return nil, "", ErrInternal("session unavailable")
	}
	if created {
		slog.Debug("issued editor session", "editor_id", id)
	}
	return reg.GetOrCreate(id), id, nil
}
