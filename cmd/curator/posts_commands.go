package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/workspace"
)

func newPostsCommand(ctx *commandContext) *cobra.Command {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Review and approve candidate posts",
	}

	postsCmd.AddCommand(newPostsListCommand(ctx))
	postsCmd.AddCommand(newPostsShowCommand(ctx))
	postsCmd.AddCommand(newPostsApproveCommand(ctx))

	return postsCmd
}

func newPostsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var statusFilter string
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter workspace.Status
			if pendingOnly {
				filter = workspace.StatusAwaitingApproval
			} else if statusFilter != "" {
				parsed, ok := workspace.ParseStatus(statusFilter)
				if !ok {
					return fmt.Errorf("unknown status %q (known: %s)", statusFilter, knownStatuses())
				}
				filter = parsed
			}

			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				candidates := ws.Sync.Snapshot().Candidates
				if filter != "" {
					filtered := candidates[:0:0]
					for _, c := range candidates {
						if c.Status == filter {
							filtered = append(filtered, c)
						}
					}
					candidates = filtered
				}

				if jsonOut {
					return writeJSON(cmd, candidates)
				}
				if len(candidates) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching candidates.")
					return nil
				}
				rows := make([][]string, 0, len(candidates))
				for _, c := range candidates {
					title := ""
					if c.Generated != nil {
						title = truncate(c.Generated.TitleEN, 40)
					}
					rows = append(rows, []string{
						fmt.Sprintf("%d", c.ID),
						platformLabel(c.Platform),
						c.MediaType,
						statusLabel(c.Status),
						fmt.Sprintf("%d", c.EngagementScore),
						title,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Platform", "Media", "Status", "Score", "Title"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	cmd.Flags().StringVarP(&statusFilter, "status", "s", "", "Only show candidates with this status")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Only show candidates awaiting approval")
	return cmd
}

func newPostsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a candidate post in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseCandidateID(args[0])
			if err != nil {
				return err
			}

			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				candidate, found := findCandidate(ws.Sync.Snapshot().Candidates, id)
				if !found {
					return fmt.Errorf("candidate %d not found", id)
				}
				if jsonOut {
					return writeJSON(cmd, candidate)
				}
				printCandidate(cmd, candidate)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newPostsApproveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <id>...",
		Short: "Approve candidates for publishing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseCandidateID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				out := cmd.OutOrStdout()
				var failed int
				for _, id := range ids {
					if err := ws.Control.Approve(runCtx, id); err != nil {
						failed++
						fmt.Fprintf(out, "Approve %d: %v\n", id, err)
						continue
					}
					fmt.Fprintf(out, "Approved candidate %d\n", id)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d approvals failed", failed, len(ids))
				}
				return nil
			})
		},
	}

	return cmd
}

func printCandidate(cmd *cobra.Command, c workspace.Candidate) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Candidate #%d\n", c.ID)
	fmt.Fprintf(out, "  Platform:   %s\n", platformLabel(c.Platform))
	fmt.Fprintf(out, "  Status:     %s\n", statusLabel(c.Status))
	fmt.Fprintf(out, "  Media:      %s\n", c.MediaType)
	if c.MediaURL != "" {
		fmt.Fprintf(out, "  Media URL:  %s\n", c.MediaURL)
	}
	fmt.Fprintf(out, "  Original:   %s\n", c.OriginalURL)
	fmt.Fprintf(out, "  Engagement: %d\n", c.EngagementScore)
	fmt.Fprintf(out, "  Posted:     %s\n", formatTimePtr(c.PostedAtSource))
	fmt.Fprintf(out, "  Collected:  %s\n", formatTime(c.CreatedAt))
	if c.CaptionRaw != "" {
		fmt.Fprintf(out, "  Caption:    %s\n", truncate(c.CaptionRaw, 120))
	}
	if c.Generated != nil {
		fmt.Fprintln(out, "  Generated content:")
		fmt.Fprintf(out, "    Title:    %s\n", c.Generated.TitleEN)
		fmt.Fprintf(out, "    Caption:  %s\n", c.Generated.CaptionEN)
		if len(c.Generated.HashtagsEN) > 0 {
			fmt.Fprintf(out, "    Hashtags: %s\n", strings.Join(c.Generated.HashtagsEN, " "))
		}
	}
}

func parseCandidateID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid candidate id %q", arg)
	}
	return id, nil
}

func findCandidate(candidates []workspace.Candidate, id int64) (workspace.Candidate, bool) {
	for _, c := range candidates {
		if c.ID == id {
			return c, true
		}
	}
	return workspace.Candidate{}, false
}

func knownStatuses() string {
	statuses := workspace.AllStatuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
