package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"curator/internal/api"
	"curator/internal/config"
	"curator/internal/control"
	"curator/internal/logging"
	"curator/internal/session"
	"curator/internal/snapshot"
	"curator/internal/syncer"
)

type commandContext struct {
	configFlag *string
	serverFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, serverFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		serverFlag: serverFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.serverFlag != nil {
			if server := strings.TrimSpace(*c.serverFlag); server != "" {
				cfg.Remote.BaseURL = server
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
		})
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) sessionStore() (*session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return session.NewStore(cfg.TokenPath()), nil
}

// apiClient builds a control service client backed by the stored
// session credential.
func (c *commandContext) apiClient() (*api.Client, *session.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	store := session.NewStore(cfg.TokenPath())
	client, err := api.New(cfg.Remote.BaseURL, store, cfg.RequestTimeout(), c.ensureLogger())
	if err != nil {
		return nil, nil, err
	}
	return client, store, nil
}

// workspaceSession bundles everything a workspace-scoped command needs:
// a verified synchronization controller, the mutation controller, and
// the local snapshot cache it persists into.
type workspaceSession struct {
	Sync    *syncer.Controller
	Control *control.Controller
	Cache   *snapshot.Store
}

// withWorkspace verifies the session, performs the initial load, and
// hands the live workspace view to fn. The snapshot cache receives every
// state the controller accepts, so the offline view stays current.
func (c *commandContext) withWorkspace(cmd *cobra.Command, fn func(context.Context, *workspaceSession) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, store, err := c.apiClient()
	if err != nil {
		return err
	}
	logger := c.ensureLogger()

	cache, err := snapshot.Open(cfg.SnapshotDBPath())
	if err != nil {
		return err
	}
	defer cache.Close()

	sync := syncer.New(client, store, syncer.Options{
		Interval: cfg.PollInterval(),
		Persist: func(snap syncer.Snapshot) {
			if err := cache.Replace(context.Background(), snap); err != nil {
				logger.Debug("snapshot cache write failed", "error", err)
			}
		},
		Logger: logger,
	})
	defer sync.Stop()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := sync.InitialLoad(ctx); err != nil {
		return err
	}

	ws := &workspaceSession{
		Sync:    sync,
		Control: control.New(client, sync, logger),
		Cache:   cache,
	}
	return fn(ctx, ws)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
