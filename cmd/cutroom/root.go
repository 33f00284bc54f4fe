package main

import (
	"github.com/spf13/cobra"

	"thirdcoast.systems/cutroom/internal/config"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "cutroom",
		Short:         "Probe, preview and process videos through the processing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.backendURL, "backend", config.DefaultBackendURL, "Processing backend origin (env BACKEND_URL)")
	rootCmd.PersistentFlags().DurationVar(&ctx.uploadTimeout, "timeout", config.DefaultUploadTimeout, "Upload timeout (env UPLOAD_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOutput, "json", false, "Write JSON instead of tables")

	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newUploadCommand(ctx))
	rootCmd.AddCommand(newProcessCommand(ctx))
	rootCmd.AddCommand(newFrameCommand(ctx))
	rootCmd.AddCommand(newFiltersCommand(ctx))
	rootCmd.AddCommand(newDefaultsCommand(ctx))

	return rootCmd
}
