package common

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SetSSEHeaders sets headers needed for SSE that datastar.NewSSE() does NOT set.
// datastar already sets Content-Type, Cache-Control, and Connection.
// This only adds X-Accel-Buffering for nginx/reverse proxy compatibility.
func SetSSEHeaders(c echo.Context) {
	c.Response().Header().Set("X-Accel-Buffering", "no")
}

// WriteKeepalive sends an SSE comment so idle proxies keep the stream open.
func WriteKeepalive(c echo.Context, flusher http.Flusher) error {
	if _, err := fmt.Fprint(c.Response(), ": keepalive\n\n"); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
