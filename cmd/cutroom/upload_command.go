package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a video to the processing backend and print its stored filename",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := ctx.coordinator(cmd)
			defer coord.Close()

			if err := ctx.selectSource(cmd, coord, args[0], false); err != nil {
				return err
			}

			st := coord.Snapshot()
			if ctx.jsonOutput {
				return writeJSON(cmd, map[string]any{
					"filename":   st.Source.Filename,
					"previewUrl": st.Preview.PreviewURL,
					"info":       st.Info,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploaded as %s\n", st.Source.Filename)
			fmt.Fprintf(out, "Preview: %s\n", st.Preview.PreviewURL)
			if st.Info != nil {
				fmt.Fprintln(out, renderInfo(st.Info))
			}
			return nil
		},
	}
}
