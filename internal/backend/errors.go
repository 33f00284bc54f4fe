package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrFileTooLarge  = errors.New("file too large")
	ErrUploadTimeout = errors.New("upload timeout")
)

// APIError is a non-2xx reply. Message and Details come from the backend's
// {error, details} body and are kept verbatim.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
	Details string `json:"details"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", e.Status)
	}
	if e.Details == "" {
		return msg
	}
	return msg + ": " + e.Details
}

// DetailsOrUnknown mirrors what the editor shows when the backend sent none.
func (e *APIError) DetailsOrUnknown() string {
	if e.Details == "" {
		return "Unknown error"
	}
	return e.Details
}

func decodeAPIError(resp *http.Response) error {
	body := readLimited(resp.Body)
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil {
		// Proxies answer with plain text or HTML pages.
		apiErr.Details = ""
		apiErr.Message = strings.TrimSpace(string(body))
		if strings.HasPrefix(apiErr.Message, "<") {
			apiErr.Message = ""
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
