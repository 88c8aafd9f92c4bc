package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"curator/internal/snapshot"
	"curator/internal/syncer"
	"curator/internal/workspace"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var watch bool
	var cached bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the workspace dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cached {
				if watch {
					return fmt.Errorf("--cached and --watch are mutually exclusive")
				}
				return runCachedStatus(cmd, ctx, jsonOut)
			}
			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				if watch {
					return watchStatus(cmd, runCtx, ws)
				}
				return printStatus(cmd, ws.Sync.Snapshot(), ws.Sync.EffectiveAuto(), false, jsonOut)
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep the dashboard live until interrupted")
	cmd.Flags().BoolVar(&cached, "cached", false, "Render the last synced snapshot without contacting the server")
	return cmd
}

func runCachedStatus(cmd *cobra.Command, ctx *commandContext, jsonOut bool) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cache, err := snapshot.Open(cfg.SnapshotDBPath())
	if err != nil {
		return err
	}
	defer cache.Close()

	snap, savedAt, found, err := cache.Load(cmd.Context())
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no cached snapshot yet; run 'curator status' while the control service is reachable")
	}

	if jsonOut {
		return writeJSON(cmd, snap)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cached snapshot from %s\n\n", formatTime(savedAt))
	writeDashboard(out, snap, !snap.Config.ApprovalRequired, false, shouldColorize(out))
	return nil
}

func watchStatus(cmd *cobra.Command, runCtx context.Context, ws *workspaceSession) error {
	watchCtx, stop := signal.NotifyContext(runCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ws.Sync.Start(watchCtx); err != nil {
		return err
	}
	defer ws.Sync.Stop()

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)

	render := func() {
		if colorize {
			fmt.Fprint(out, "\x1b[2J\x1b[H")
		}
		writeDashboard(out, ws.Sync.Snapshot(), ws.Sync.EffectiveAuto(), ws.Sync.Overridden(), colorize)
		fmt.Fprintf(out, "\nLive view, refreshing every %s. Press Ctrl+C to exit.\n", ws.Sync.Interval())
	}
	render()

	for {
		select {
		case <-watchCtx.Done():
			return nil
		case <-ws.Sync.Updates():
			if ws.Sync.SessionExpired() {
				return syncer.ErrSessionExpired
			}
			render()
		}
	}
}

func printStatus(cmd *cobra.Command, snap syncer.Snapshot, effectiveAuto, overridden, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd, struct {
			syncer.Snapshot
			EffectiveAuto bool `json:"effective_auto"`
		}{Snapshot: snap, EffectiveAuto: effectiveAuto})
	}
	out := cmd.OutOrStdout()
	writeDashboard(out, snap, effectiveAuto, overridden, shouldColorize(out))
	return nil
}

func writeDashboard(out io.Writer, snap syncer.Snapshot, effectiveAuto, overridden, colorize bool) {
	lines := make([]string, 0, 32)

	lines = append(lines, renderSectionHeader("Workspace", colorize)...)
	lines = append(lines,
		renderStatusLine("Operator", statusInfo, snap.Identity.Email, colorize),
		renderStatusLine("Workspace", statusInfo, snap.Identity.WorkspaceName, colorize),
		renderStatusLine("Synced", statusInfo, formatTime(snap.LoadedAt), colorize),
	)

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Pipeline", colorize)...)
	modeKind := statusOK
	if effectiveAuto {
		modeKind = statusWarn
	}
	lines = append(lines,
		renderStatusLine("Run mode", modeKind, runModeLabel(effectiveAuto, overridden), colorize),
		renderStatusLine("Interval", statusInfo, fmt.Sprintf("every %d days", snap.Config.IntervalDays), colorize),
		renderStatusLine("Selection", statusInfo, fmt.Sprintf("top %d of up to %d candidates", snap.Config.PickTopN, snap.Config.MaxCandidates), colorize),
		renderStatusLine("Sources", statusInfo, formatCount("registered", len(snap.Sources)), colorize),
		renderStatusLine("Last run", statusInfo, formatTimePtr(snap.Stats.LastRunAt), colorize),
	)

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Candidates", colorize)...)
	counts := workspace.CountByStatus(snap.Candidates)
	for _, status := range workspace.AllStatuses() {
		if counts[status] == 0 {
			continue
		}
		kind := statusInfo
		switch status {
		case workspace.StatusPublished:
			kind = statusOK
		case workspace.StatusFailed:
			kind = statusError
		case workspace.StatusAwaitingApproval:
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(statusLabel(status), kind, fmt.Sprintf("%d", counts[status]), colorize))
	}
	if len(snap.Candidates) == 0 {
		lines = append(lines, renderStatusLine("Candidates", statusInfo, "none yet", colorize))
	}

	pending := workspace.PendingApproval(snap.Candidates)
	if len(pending) > 0 {
		lines = append(lines, "")
		lines = append(lines, renderSectionHeader("Awaiting Approval", colorize)...)
		for _, c := range pending {
			title := ""
			if c.Generated != nil {
				title = truncate(c.Generated.TitleEN, 48)
			}
			lines = append(lines, renderStatusLine(fmt.Sprintf("#%d", c.ID), statusWarn, title, colorize))
		}
	}

	fmt.Fprintln(out, strings.Join(lines, "\n"))
}
