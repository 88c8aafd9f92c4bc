package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var auto bool
	var manual bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Trigger a pipeline run now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if auto && manual {
				return fmt.Errorf("--auto and --manual are mutually exclusive")
			}

			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				// A mode flag overrides the workspace default for this
				// session only; the persisted config is untouched.
				if auto {
					ws.Sync.SetRunMode(true)
				}
				if manual {
					ws.Sync.SetRunMode(false)
				}

				effectiveAuto := ws.Sync.EffectiveAuto()
				jobID, err := ws.Control.RunNow(runCtx, effectiveAuto)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Enqueued pipeline job %d (%s)\n", jobID, runModeLabel(effectiveAuto, ws.Sync.Overridden()))
				fmt.Fprintln(out, "Follow progress with `curator logs --follow` or `curator status --watch`.")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&auto, "auto", false, "Publish approved content without waiting for approval")
	cmd.Flags().BoolVar(&manual, "manual", false, "Hold generated content for operator approval")
	return cmd
}
