package editor_api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/starfederation/datastar-go/datastar"
	"thirdcoast.systems/cutroom/cmd/web/auth"
	"thirdcoast.systems/cutroom/cmd/web/handlers/common"
	"thirdcoast.systems/cutroom/cmd/web/internal/editors"
	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/internal/editor"
	"thirdcoast.systems/cutroom/pkg/utils/filename"
)

type sourceResponse struct {
	Filename string             `json:"filename,omitempty"`
	Info     *backend.VideoInfo `json:"info,omitempty"`
	State    editor.State       `json:"state"`
}

// HandleUpload streams the multipart "video" field through to the
// processing backend without buffering it on disk. maxBytes of 0 disables
// the size limit.
func HandleUpload(sm *auth.SessionManager, reg *editors.Registry, maxBytes int64) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, id, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		req := c.Request()
		if maxBytes > 0 {
			req.Body = http.MaxBytesReader(c.Response().Writer, req.Body, maxBytes)
		}
		mr, err := req.MultipartReader()
		if err != nil {
			return common.ErrBadRequest("expected multipart form data")
		}

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				return common.ErrBadRequest("missing " + backend.UploadField + " file")
			}
			if err != nil {
				return uploadReadError(c, err)
			}
			if part.FormName() != backend.UploadField || part.FileName() == "" {
				_ = part.Close()
				continue
			}

			name := filename.UploadName(part.FileName())
			// The part's exact length is unknown; the request length bounds it.
			var body io.Reader = part
			if req.ContentLength > 0 {
				body = backend.WithSizeHint(part, req.ContentLength)
			}
			stored, err := coord.SelectUpload(req.Context(), name, body, -1, nil)
			_ = part.Close()
			if err != nil {
				var tooBig *http.MaxBytesError
				if errors.As(err, &tooBig) {
					return c.JSON(http.StatusRequestEntityTooLarge, common.ErrorBody{Error: "File too large"})
				}
				return common.WriteError(c, err)
			}

			slog.Info("editor upload", "editor_id", id, "name", name, "filename", stored)
			return c.JSON(http.StatusOK, sourceResponse{Filename: stored, State: coord.Snapshot()})
		}
	}
}

func uploadReadError(c echo.Context, err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return c.JSON(http.StatusRequestEntityTooLarge, common.ErrorBody{Error: "File too large"})
	}
	return common.ErrBadRequest("invalid multipart body")
}

// HandleLocal selects a file on the processing host by path.
func HandleLocal(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		type Signals struct {
			FilePath string `json:"filePath"`
		}
		signals := &Signals{}
		if err := datastar.ReadSignals(c.Request(), signals); err != nil {
			return common.ErrBadRequest("invalid body")
		}
		if strings.TrimSpace(signals.FilePath) == "" {
			return common.ErrBadRequest("filePath is required")
		}

		info, err := coord.SelectLocal(c.Request().Context(), signals.FilePath)
		if err != nil {
			var apiErr *backend.APIError
			if errors.As(err, &apiErr) {
				return c.JSON(http.StatusBadGateway, common.ErrorBody{
					Error:   "Failed to access local file: " + apiErr.Message,
					Details: apiErr.Details,
				})
			}
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, sourceResponse{Info: info, State: coord.Snapshot()})
	}
}

// HandleMode switches between upload and local sources.
func HandleMode(sm *auth.SessionManager, reg *editors.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		coord, _, err := common.RequireEditor(c, sm, reg)
		if err != nil {
			return err
		}

		type Signals struct {
			Mode string `json:"mode"`
		}
		signals := &Signals{}
		if err := datastar.ReadSignals(c.Request(), signals); err != nil {
			return common.ErrBadRequest("invalid body")
		}
		mode, ok := backend.ParseMode(signals.Mode)
		if !ok {
			return common.ErrBadRequest("mode must be upload or local")
		}
		if err := coord.SetMode(mode); err != nil {
			return common.WriteError(c, err)
		}
		return c.JSON(http.StatusOK, coord.Snapshot())
	}
}
