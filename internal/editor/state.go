package editor

import (
	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/pkg/editsettings"
)

// PreviewState is what the player and frame panes show. It is cleared
// whenever a new source is selected.
type PreviewState struct {
	PreviewURL      string  `json:"previewUrl"`
	FramePreviewURL string  `json:"framePreviewUrl"`
	CurrentTime     float64 `json:"currentVideoTime"`
	LivePreview     bool    `json:"livePreviewEnabled"`
	Loading         bool    `json:"previewLoading"`
}

// State is a point-in-time copy of a coordinator, safe to render or encode.
type State struct {
	Source         backend.Source        `json:"source"`
	Settings       editsettings.Settings `json:"settings"`
	Preview        PreviewState          `json:"preview"`
	Info           *backend.VideoInfo    `json:"info,omitempty"`
	Duration       float64               `json:"duration"`
	Uploading      bool                  `json:"uploading"`
	UploadProgress int                   `json:"uploadProgress"`
	Processing     bool                  `json:"processing"`
	ProcessedURL   string                `json:"processedUrl"`
}

// HasSource reports whether there is a video to preview or process.
func (s State) HasSource() bool {
	return !s.Source.Empty()
}

func (s State) clone() State {
	out := s
	out.Settings = s.Settings.Clone()
	return out
}
