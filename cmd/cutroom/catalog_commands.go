package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"thirdcoast.systems/cutroom/pkg/editsettings"
	"thirdcoast.systems/cutroom/pkg/filters"
	"thirdcoast.systems/cutroom/pkg/utils/format"
)

func newFiltersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the preset filters by group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := filters.ByGroup()
			if ctx.jsonOutput {
				return writeJSON(cmd, groups)
			}

			rows := make([][]string, 0, len(filters.Catalog))
			for _, g := range groups {
				for i, p := range g.Presets {
					group, pick := "", ""
					if i == 0 {
						group = g.Group.Name
						pick = "any"
						if g.Group.Exclusive {
							pick = "one"
						}
					}
					rows = append(rows, []string{group, pick, p.ID, p.Name, format.Truncate(p.Description, 40)})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Group", "Pick", "ID", "Name", "Description"}, rows, nil))
			return nil
		},
	}
}

func newDefaultsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "List every setting with its default and allowed values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if ctx.jsonOutput {
				return writeJSON(cmd, editsettings.Params)
			}

			rows := make([][]string, 0, len(editsettings.Params))
			for _, p := range editsettings.Params {
				rows = append(rows, []string{"--" + flagName(p.Key), p.Label, p.DefaultVal, allowedValues(p)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Flag", "Setting", "Default", "Allowed"}, rows, nil))
			return nil
		},
	}
}

func allowedValues(p editsettings.Param) string {
	switch p.Type {
	case editsettings.ParamRange:
		return fmt.Sprintf("%s to %s, step %s", p.FmtNum(p.Min), p.FmtNum(p.Max), p.FmtNum(p.Step))
	case editsettings.ParamSelect:
		values := make([]string, 0, len(p.Options))
		for _, o := range p.Options {
			if o.Value == "" {
				values = append(values, "(none)")
				continue
			}
			values = append(values, o.Value)
		}
		return strings.Join(values, ", ")
	case editsettings.ParamToggle:
		return "true, false"
	}
	return ""
}
