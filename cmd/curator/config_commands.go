package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/workspace"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Workspace and client configuration",
	}

	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigSetCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand())

	return configCmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the workspace pipeline configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				cfg := ws.Sync.Snapshot().Config
				if jsonOut {
					return writeJSON(cmd, cfg)
				}
				printWorkspaceConfig(cmd, cfg, ws.Sync.EffectiveAuto(), ws.Sync.Overridden())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of text")
	return cmd
}

func newConfigSetCommand(ctx *commandContext) *cobra.Command {
	var approvalRequired bool
	var intervalDays int
	var maxCandidates int
	var pickTopN int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update the workspace pipeline configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("approval-required") && !flags.Changed("interval-days") &&
				!flags.Changed("max-candidates") && !flags.Changed("pick-top-n") {
				return fmt.Errorf("nothing to change; pass at least one setting flag")
			}

			return ctx.withWorkspace(cmd, func(runCtx context.Context, ws *workspaceSession) error {
				cfg := ws.Sync.Snapshot().Config
				if flags.Changed("approval-required") {
					cfg.ApprovalRequired = approvalRequired
				}
				if flags.Changed("interval-days") {
					cfg.IntervalDays = intervalDays
				}
				if flags.Changed("max-candidates") {
					cfg.MaxCandidates = maxCandidates
				}
				if flags.Changed("pick-top-n") {
					cfg.PickTopN = pickTopN
				}

				saved, err := ws.Control.SaveConfig(runCtx, cfg)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "Configuration saved")
				if saved.PickTopN > saved.MaxCandidates {
					fmt.Fprintf(out, "Note: pick_top_n (%d) exceeds max_candidates (%d); the pipeline will never fill a full pick.\n",
						saved.PickTopN, saved.MaxCandidates)
				}
				printWorkspaceConfig(cmd, saved, ws.Sync.EffectiveAuto(), ws.Sync.Overridden())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&approvalRequired, "approval-required", true, "Require operator approval before publishing")
	cmd.Flags().IntVar(&intervalDays, "interval-days", 0, "Days between scheduled pipeline runs")
	cmd.Flags().IntVar(&maxCandidates, "max-candidates", 0, "Maximum candidates collected per run")
	cmd.Flags().IntVar(&pickTopN, "pick-top-n", 0, "Candidates promoted to generation per run")
	return cmd
}

func printWorkspaceConfig(cmd *cobra.Command, cfg workspace.Config, effectiveAuto, overridden bool) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Approval required: %s\n", yesNo(cfg.ApprovalRequired))
	fmt.Fprintf(out, "Run interval:      every %d days\n", cfg.IntervalDays)
	fmt.Fprintf(out, "Max candidates:    %d\n", cfg.MaxCandidates)
	fmt.Fprintf(out, "Pick top N:        %d\n", cfg.PickTopN)
	fmt.Fprintf(out, "Run mode:          %s\n", runModeLabel(effectiveAuto, overridden))
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample client configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to point base_url at your control service, then run `curator login`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the client configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load("")
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Control service: %s\n", cfg.Remote.BaseURL)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
