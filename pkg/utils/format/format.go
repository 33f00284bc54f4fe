package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes returns a human-readable byte size (e.g. "1.5 GiB").
func Bytes(b int64) string {
	if b < 0 {
		return ""
	}
	return humanize.IBytes(uint64(b))
}

// Bitrate formats a bits-per-second value such as ffprobe's bit_rate string.
// Unparseable input is returned unchanged.
func Bitrate(raw string) string {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || n <= 0 {
		return raw
	}
	v, prefix := humanize.ComputeSI(n)
	return fmt.Sprintf("%.1f %sb/s", v, prefix)
}

// FPS renders a frame rate with at most two decimals ("29.97", "25").
func FPS(fps float64) string {
	if fps <= 0 {
		return ""
	}
	s := strconv.FormatFloat(fps, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Truncate returns s truncated to max characters with "..." suffix.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// JobDuration formats a time.Duration as a human-readable string
// (e.g. "3.2 seconds", "1.5 minutes", "2.0 hours").
func JobDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1f seconds", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}
