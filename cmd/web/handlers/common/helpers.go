package common

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/internal/editor"
	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
)

// ErrorBody is the JSON shape of every editor API error, matching what the
// processing backend returns.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteError maps coordinator and backend errors to a status and writes
// them as JSON. Backend messages are passed through verbatim.
func WriteError(c echo.Context, err error) error {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrFileTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorBody{Error: "File too large"})
	case errors.As(err, &apiErr):
		return c.JSON(http.StatusBadGateway, ErrorBody{Error: apiErr.Message, Details: apiErr.DetailsOrUnknown()})
	case errors.Is(err, backend.ErrUploadTimeout):
		return c.JSON(http.StatusGatewayTimeout, ErrorBody{Error: "Upload timeout"})
	case errors.Is(err, backend.ErrNoSource),
		errors.Is(err, editor.ErrClipNeedsUpload),
		errors.Is(err, editsettings.ErrUnknownKey),
		errors.Is(err, editsettings.ErrInvalidValue),
		errors.Is(err, filters.ErrUnknownPreset),
		errors.Is(err, filters.ErrGroupConflict):
		return c.JSON(http.StatusBadRequest, ErrorBody{Error: err.Error()})
	case errors.Is(err, editor.ErrBusy):
		return c.JSON(http.StatusConflict, ErrorBody{Error: err.Error()})
	case errors.Is(err, editor.ErrStalePreview):
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, editor.ErrClosed):
		return c.JSON(http.StatusGone, ErrorBody{Error: err.Error()})
	}
	return c.JSON(http.StatusBadGateway, ErrorBody{Error: err.Error()})
}
