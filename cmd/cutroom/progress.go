package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"thirdcoast.systems/cutroom/pkg/utils/format"
)

// newUploadBar returns a percentage bar on terminals and nil otherwise.
func newUploadBar(w io.Writer, name string, size int64) *progressbar.ProgressBar {
	if !isTerminal(w) {
		return nil
	}
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Uploading "+format.Truncate(name, 32)+" ("+format.Bytes(size)+")"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(w, "\n") }),
	)
}
