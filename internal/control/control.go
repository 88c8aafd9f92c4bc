package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"curator/internal/api"
	"curator/internal/logging"
	"curator/internal/syncer"
	"curator/internal/workspace"
)

// Client is the mutating slice of the API client.
type Client interface {
	Run(ctx context.Context, autoPublish bool) (api.RunResult, error)
	Approve(ctx context.Context, candidateID int64) error
	SaveConfig(ctx context.Context, cfg workspace.Config) (workspace.Config, error)
	AddSource(ctx context.Context, platform workspace.Platform, handle string, enabled bool) (workspace.Source, error)
	ClearLogs(ctx context.Context) error
}

// Refresher triggers out-of-band re-fetches on the sync controller.
type Refresher interface {
	Refresh(ctx context.Context, resources ...syncer.Resource) error
}

// Controller wires mutations to their follow-up refreshes. Local state
// is never updated optimistically; the view reconverges only through a
// fresh fetch of the server's authoritative state.
type Controller struct {
	client  Client
	refresh Refresher
	logger  *slog.Logger
}

// New constructs a mutation controller.
func New(client Client, refresh Refresher, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{client: client, refresh: refresh, logger: logger}
}

// RunNow enqueues one pipeline run with the resolved effective mode.
// Every invocation enqueues a separate job; callers that fire twice get
// two jobs. After enqueueing, the run's progress shows up in the logs,
// so those are refreshed along with the stats.
func (c *Controller) RunNow(ctx context.Context, effectiveAuto bool) (int64, error) {
	result, err := c.client.Run(ctx, effectiveAuto)
	if err != nil {
		return 0, err
	}
	c.logger.Info("pipeline run enqueued",
		logging.Int64("job_id", result.EnqueuedJobID),
		logging.Bool("auto_publish", effectiveAuto))
	if err := c.refresh.Refresh(ctx, syncer.ResourceLogs, syncer.ResourceStats); err != nil {
		return result.EnqueuedJobID, fmt.Errorf("run enqueued as job %d, but refreshing the view failed: %w", result.EnqueuedJobID, err)
	}
	return result.EnqueuedJobID, nil
}

// Approve asks the server to approve a candidate. Whether the candidate
// is actually awaiting approval is the server's decision; the client
// re-fetches candidates afterwards regardless of outcome so the local
// view reconverges either way.
func (c *Controller) Approve(ctx context.Context, candidateID int64) error {
	approveErr := c.client.Approve(ctx, candidateID)

	if refreshErr := c.refresh.Refresh(ctx, syncer.ResourceCandidates, syncer.ResourceStats); refreshErr != nil {
		if approveErr == nil {
			return refreshErr
		}
		c.logger.Warn("refresh after approve failed", logging.Error(refreshErr))
	}
	return approveErr
}

// SaveConfig persists the workspace config. The follow-up refresh pulls
// the stored value back and resets the in-session run mode override.
func (c *Controller) SaveConfig(ctx context.Context, cfg workspace.Config) (workspace.Config, error) {
	if cfg.IntervalDays < 0 || cfg.MaxCandidates < 0 || cfg.PickTopN < 0 {
		return workspace.Config{}, errors.New("config values must not be negative")
	}
	saved, err := c.client.SaveConfig(ctx, cfg)
	if err != nil {
		return workspace.Config{}, err
	}
	if err := c.refresh.Refresh(ctx, syncer.ResourceConfig); err != nil {
		return saved, err
	}
	return saved, nil
}

// AddSource registers a new source page. The server also writes a log
// event for the addition, so logs are refreshed alongside sources.
func (c *Controller) AddSource(ctx context.Context, platform workspace.Platform, handle string, enabled bool) (workspace.Source, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return workspace.Source{}, errors.New("source handle must not be empty")
	}
	source, err := c.client.AddSource(ctx, platform, handle, enabled)
	if err != nil {
		return workspace.Source{}, err
	}
	if err := c.refresh.Refresh(ctx, syncer.ResourceSources, syncer.ResourceLogs); err != nil {
		return source, err
	}
	return source, nil
}

// ClearLogs drops all server-side log events and re-fetches so the
// local list reflects the (now empty) server state.
func (c *Controller) ClearLogs(ctx context.Context) error {
	if err := c.client.ClearLogs(ctx); err != nil {
		return err
	}
	return c.refresh.Refresh(ctx, syncer.ResourceLogs)
}
