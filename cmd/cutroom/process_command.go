package main

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"thirdcoast.systems/cutroom/internal/editor"
	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
	"thirdcoast.systems/cutroom/pkg/utils/format"
)

// settingsFlags exposes every setting as a flag plus a repeatable --filter.
type settingsFlags struct {
	filters []string
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func (f *settingsFlags) register(cmd *cobra.Command) {
	def := editsettings.Default()
	fs := cmd.Flags()
	for _, p := range editsettings.Params {
		name := flagName(p.Key)
		switch p.Type {
		case editsettings.ParamRange:
			v, _ := def.Get(p.Key)
			fs.Float64(name, cast.ToFloat64(v), fmt.Sprintf("%s (%s to %s)", p.Label, p.FmtNum(p.Min), p.FmtNum(p.Max)))
		case editsettings.ParamSelect:
			values := make([]string, 0, len(p.Options))
			for _, o := range p.Options {
				if o.Value != "" {
					values = append(values, o.Value)
				}
			}
			fs.String(name, p.DefaultVal, fmt.Sprintf("%s (%s)", p.Label, strings.Join(values, ", ")))
		case editsettings.ParamToggle:
			fs.Bool(name, false, p.Label)
		}
	}
	fs.StringSliceVar(&f.filters, "filter", nil, "Preset filter id, repeatable (see `cutroom filters`)")
}

// apply copies the flags that were set onto coord. Out-of-range numbers are
// clamped. Filters are toggled in order, so a later preset replaces an
// earlier one from the same exclusive group.
func (f *settingsFlags) apply(cmd *cobra.Command, coord *editor.Coordinator) error {
	fs := cmd.Flags()
	for _, p := range editsettings.Params {
		name := flagName(p.Key)
		if !fs.Changed(name) {
			continue
		}

		var (
			v   any
			err error
		)
		switch p.Type {
		case editsettings.ParamRange:
			v, err = fs.GetFloat64(name)
		case editsettings.ParamSelect:
			v, err = fs.GetString(name)
		case editsettings.ParamToggle:
			v, err = fs.GetBool(name)
		}
		if err != nil {
			return err
		}
		if err := coord.SetSetting(p.Key, v); err != nil {
			return fmt.Errorf("--%s: %w", name, err)
		}
	}

	var requested []string
	for _, id := range f.filters {
		id = strings.TrimSpace(id)
		if id == "" || slices.Contains(requested, id) {
			continue
		}
		requested = append(requested, id)
		if _, err := coord.ToggleFilter(id); err != nil {
			return fmt.Errorf("--filter: %w", err)
		}
	}

	active := coord.Settings().Filters
	for _, id := range requested {
		if !slices.Contains(active, id) {
			g, _ := filters.GroupOf(id)
			fmt.Fprintf(cmd.ErrOrStderr(), "note: %s dropped, only one %s preset can be active\n", id, g.Name)
		}
	}
	return nil
}

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var (
		local    bool
		settings settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Apply settings and filters to a video and print the download URL",
		Long: "Uploads <file> (or uses it as a path on the processing host with --local), " +
			"applies the given settings and preset filters, and runs a full processing job.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := ctx.coordinator(cmd)
			defer coord.Close()

			if err := settings.apply(cmd, coord); err != nil {
				return err
			}
			s := coord.Settings()
			if err := editsettings.Validate(s); err != nil {
				return err
			}

			if err := ctx.selectSource(cmd, coord, args[0], local); err != nil {
				return err
			}

			start := time.Now()
			url, err := coord.Process(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			if ctx.jsonOutput {
				return writeJSON(cmd, map[string]any{
					"url":      url,
					"settings": s,
					"seconds":  elapsed.Seconds(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed in %s\n", format.JobDuration(elapsed))
			if len(s.Filters) > 0 {
				labels := make([]string, 0, len(s.Filters))
				for _, id := range s.Filters {
					labels = append(labels, filters.Label(id))
				}
				fmt.Fprintf(out, "Filters: %s\n", strings.Join(labels, ", "))
			}
			fmt.Fprintf(out, "Download: %s\n", url)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Treat <file> as a path on the processing host")
	settings.register(cmd)
	return cmd
}

func newFrameCommand(ctx *commandContext) *cobra.Command {
	var (
		local    bool
		at       float64
		settings settingsFlags
	)

	cmd := &cobra.Command{
		Use:   "frame <file>",
		Short: "Render a single preview frame with the given settings and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord := ctx.coordinator(cmd)
			defer coord.Close()

			if err := settings.apply(cmd, coord); err != nil {
				return err
			}
			if err := ctx.selectSource(cmd, coord, args[0], local); err != nil {
				return err
			}

			coord.SeekTo(at)
			url, err := coord.RefreshPreview(cmd.Context())
			if err != nil {
				return err
			}

			st := coord.Snapshot()
			if ctx.jsonOutput {
				return writeJSON(cmd, map[string]any{
					"url":  url,
					"time": st.Preview.CurrentTime,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Frame at %s: %s\n", format.Duration(st.Preview.CurrentTime), url)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Treat <file> as a path on the processing host")
	cmd.Flags().Float64Var(&at, "at", 0, "Timestamp in seconds, clamped to the video duration")
	settings.register(cmd)
	return cmd
}
