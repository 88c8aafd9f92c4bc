package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"curator/internal/syncer"
	"curator/internal/workspace"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var follow bool
	var limit int

	show := func(cmd *cobra.Command, args []string) error {
		return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
			if follow {
				return followLogs(cmd, runCtx, ws)
			}

			logs := ws.Sync.Snapshot().Logs
			if limit > 0 && len(logs) > limit {
				logs = logs[:limit]
			}
			if jsonOut {
				return writeJSON(cmd, logs)
			}
			if len(logs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No log events.")
				return nil
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			// Fetched newest first; print oldest first so the tail is
			// the latest event.
			for i := len(logs) - 1; i >= 0; i-- {
				printLogEvent(out, logs[i], colorize)
			}
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show pipeline log events",
		RunE:  show,
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	cmd.PersistentFlags().BoolVarP(&follow, "follow", "f", false, "Keep printing new events until interrupted")
	cmd.PersistentFlags().IntVarP(&limit, "limit", "n", 50, "Maximum number of events to show (0 for all)")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show pipeline log events",
		RunE:  show,
	})
	cmd.AddCommand(newLogsClearCommand(ctx))
	return cmd
}

func newLogsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all pipeline log events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				if err := ws.Control.ClearLogs(runCtx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logs cleared")
				return nil
			})
		},
	}
}

func followLogs(cmd *cobra.Command, runCtx context.Context, ws *workspaceSession) error {
	followCtx, stop := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ws.Sync.Start(followCtx); err != nil {
		return err
	}
	defer ws.Sync.Stop()

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	var lastSeen int64
	emit := func() {
		logs := ws.Sync.Snapshot().Logs
		for i := len(logs) - 1; i >= 0; i-- {
			if logs[i].ID <= lastSeen {
				continue
			}
			printLogEvent(out, logs[i], colorize)
			lastSeen = logs[i].ID
		}
	}
	emit()

	for {
		select {
		case <-followCtx.Done():
			return nil
		case <-ws.Sync.Updates():
			if ws.Sync.SessionExpired() {
				return syncer.ErrSessionExpired
			}
			emit()
		}
	}
}

func printLogEvent(out io.Writer, event workspace.LogEvent, colorize bool) {
	kind := statusInfo
	switch event.Level {
	case "success":
		kind = statusOK
	case "warning":
		kind = statusWarn
	case "error":
		kind = statusError
	}
	line := fmt.Sprintf("%s  %-7s  %s", formatTime(event.CreatedAt), event.Level, event.Message)
	if event.JobID != nil {
		line += fmt.Sprintf(" (job %d)", *event.JobID)
	}
	if colorize {
		if color := statusKindColor(kind); color != "" {
			line = color + line + ansiReset
		}
	}
	fmt.Fprintln(out, line)
}
