package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/workspace"
)

func newSourcesCommand(ctx *commandContext) *cobra.Command {
	sourcesCmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage collection sources",
	}

	sourcesCmd.AddCommand(newSourcesListCommand(ctx))
	sourcesCmd.AddCommand(newSourcesAddCommand(ctx))

	return sourcesCmd
}

func newSourcesListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered source pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				sources := ws.Sync.Snapshot().Sources
				if jsonOut {
					return writeJSON(cmd, sources)
				}
				if len(sources) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sources registered; add one with `curator sources add`.")
					return nil
				}
				rows := make([][]string, 0, len(sources))
				for _, s := range sources {
					rows = append(rows, []string{
						fmt.Sprintf("%d", s.ID),
						platformLabel(s.Platform),
						s.Handle,
						yesNo(s.Enabled),
						formatTime(s.CreatedAt),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Platform", "Handle", "Enabled", "Added"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newSourcesAddCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "add <handle>",
		Short: "Register a new source page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, ok := workspace.ParsePlatform(platformFlag)
			if !ok {
				return fmt.Errorf("unknown platform %q (expected instagram or facebook)", platformFlag)
			}
			handle := strings.TrimSpace(args[0])
			if handle == "" {
				return fmt.Errorf("source handle is required")
			}

			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				source, err := ws.Control.AddSource(runCtx, platform, handle, !disabled)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s source %q (id %d)\n",
					platformLabel(source.Platform), source.Handle, source.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&platformFlag, "platform", "P", "instagram", "Source platform (instagram or facebook)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Register the source without enabling collection")
	return cmd
}
