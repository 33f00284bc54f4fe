package backend

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// VideoInfo is the ffprobe-shaped metadata returned by /api/info and
// /api/local-info. ffprobe encodes most format numbers as strings.
type VideoInfo struct {
	Format  FormatInfo   `json:"format"`
	Streams []StreamInfo `json:"streams"`
}

type FormatInfo struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
}

type StreamInfo struct {
	Index      int    `json:"index"`
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	RFrameRate string `json:"r_frame_rate,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
}

// Duration returns the container duration in seconds, 0 if unknown.
func (v *VideoInfo) Duration() float64 {
	if v == nil {
		return 0
	}
	d, _ := strconv.ParseFloat(strings.TrimSpace(v.Format.Duration), 64)
	return d
}

// Size returns the file size in bytes, 0 if unknown.
func (v *VideoInfo) Size() int64 {
	if v == nil {
		return 0
	}
	n, _ := strconv.ParseInt(strings.TrimSpace(v.Format.Size), 10, 64)
	return n
}

// PrimaryVideo returns the first video stream, falling back to the first
// stream of any kind.
func (v *VideoInfo) PrimaryVideo() *StreamInfo {
	if v == nil || len(v.Streams) == 0 {
		return nil
	}
	for i := range v.Streams {
		if v.Streams[i].CodecType == "video" {
			return &v.Streams[i]
		}
	}
	return &v.Streams[0]
}

// Resolution renders "WxH" for the primary video stream.
func (v *VideoInfo) Resolution() string {
	s := v.PrimaryVideo()
	if s == nil || s.Width == 0 || s.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// FPS parses the primary stream's r_frame_rate ("30000/1001").
func (v *VideoInfo) FPS() float64 {
	s := v.PrimaryVideo()
	if s == nil {
		return 0
	}
	num, den, ok := strings.Cut(s.RFrameRate, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

var browserPlayable = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".ogg":  {},
}

// BrowserPlayable reports whether a browser <video> element can play the
// file directly. Other containers still get frame previews.
func BrowserPlayable(path string) bool {
	_, ok := browserPlayable[strings.ToLower(filepath.Ext(path))]
	return ok
}
