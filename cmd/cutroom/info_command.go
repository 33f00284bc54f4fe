package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"thirdcoast.systems/cutroom/internal/backend"
	"thirdcoast.systems/cutroom/pkg/utils/format"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var localPath string

	cmd := &cobra.Command{
		Use:   "info [uploaded-filename]",
		Short: "Show container and stream details for an uploaded file or a path on the processing host",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()

			var (
				info *backend.VideoInfo
				err  error
			)
			switch {
			case strings.TrimSpace(localPath) != "":
				info, err = client.LocalInfo(cmd.Context(), localPath)
			case len(args) == 1:
				info, err = client.Info(cmd.Context(), args[0])
			default:
				return errors.New("info needs an uploaded filename or --local <path>")
			}
			if err != nil {
				return fmt.Errorf("probe: %w", err)
			}

			if ctx.jsonOutput {
				return writeJSON(cmd, info)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderInfo(info))
			return nil
		},
	}
	cmd.Flags().StringVar(&localPath, "local", "", "Path of the video on the processing host")
	return cmd
}

func renderInfo(info *backend.VideoInfo) string {
	summary := [][]string{
		{"Container", info.Format.FormatName},
		{"Duration", format.Duration(info.Duration())},
		{"Size", format.Bytes(info.Size())},
		{"Bitrate", format.Bitrate(info.Format.BitRate)},
	}
	if res := info.Resolution(); res != "" {
		summary = append(summary, []string{"Resolution", res})
	}
	if fps := format.FPS(info.FPS()); fps != "" {
		summary = append(summary, []string{"Frame rate", fps + " fps"})
	}

	var b strings.Builder
	b.WriteString(renderTable([]string{"Field", "Value"}, summary, nil))

	if len(info.Streams) == 0 {
		return b.String()
	}
	rows := make([][]string, 0, len(info.Streams))
	for _, s := range info.Streams {
		rows = append(rows, []string{strconv.Itoa(s.Index), s.CodecType, s.CodecName, streamDetails(s)})
	}
	b.WriteString("\n")
	b.WriteString(renderTable([]string{"#", "Type", "Codec", "Details"}, rows, []columnAlignment{alignRight}))
	return b.String()
}

func streamDetails(s backend.StreamInfo) string {
	switch s.CodecType {
	case "video":
		if s.Width > 0 && s.Height > 0 {
			return fmt.Sprintf("%dx%d", s.Width, s.Height)
		}
	case "audio":
		parts := make([]string, 0, 2)
		if s.SampleRate != "" {
			parts = append(parts, s.SampleRate+" Hz")
		}
		if s.Channels > 0 {
			parts = append(parts, strconv.Itoa(s.Channels)+" ch")
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
