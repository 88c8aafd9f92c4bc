package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var serverFlag string

	ctx := newCommandContext(&configFlag, &serverFlag)

	rootCmd := &cobra.Command{
		Use:           "curator",
		Short:         "Operator console for the content curation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Control service URL (overrides configuration)")

	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newWhoamiCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newSourcesCommand(ctx))
	rootCmd.AddCommand(newPostsCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))

	return rootCmd
}
