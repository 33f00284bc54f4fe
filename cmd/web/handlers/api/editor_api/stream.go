package editor_api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/internal/editor"
)

// stateSignals is the signal tree patched into the page.
func stateSignals(st editor.State) ([]byte, error) {
	return json.Marshal(map[string]any{"editor": st})
}

// HandleStream returns an SSE handler that patches the editor signals on
// every state change.
func HandleStream(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, id, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		if !reg.AcquireStream(id) {
			return common.ErrTooManyRequests("too many open editor streams")
		}
		defer reg.ReleaseStream(id)

		resp := c.Response()
		flusher, ok := resp.Writer.(http.Flusher)
		if !ok {
			return common.ErrInternal("streaming unsupported")
		}

		states, unsubscribe := coord.Subscribe()
		defer unsubscribe()

		common.SetSSEHeaders(c)
		sse := datastar.NewSSE(resp, c.Request())

		initial, err := stateSignals(coord.Snapshot())
		if err != nil {
			return err
		}
		_ = sse.PatchSignals(initial)
		flusher.Flush()

		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-c.Request().Context().Done():
				return nil
			case st, ok := <-states:
				if !ok {
					return nil
				}
				b, err := stateSignals(st)
				if err != nil {
					slog.Warn("failed to encode editor state", "editor_id", id, "error", err)
					continue
				}
				if err := sse.PatchSignals(b); err != nil {
					return nil
				}
				flusher.Flush()
			case <-ticker.C:
				if err := common.WriteKeepalive(c, flusher); err != nil {
					return nil
				}
			}
		}
	}
}
