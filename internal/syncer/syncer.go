package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"curator/internal/api"
	"curator/internal/logging"
	"curator/internal/workspace"
)

// ErrSessionExpired is returned when the control service rejects the
// stored credential. The credential has already been cleared by the time
// callers see it.
var ErrSessionExpired = errors.New("session expired; run 'curator login' to sign in again")

// Client is the slice of the API client the controller needs. Tests
// substitute fakes.
type Client interface {
	Me(ctx context.Context) (api.Identity, error)
	FetchConfig(ctx context.Context) (workspace.Config, error)
	ListSources(ctx context.Context) ([]workspace.Source, error)
	FetchStats(ctx context.Context) (workspace.Stats, error)
	ListLogs(ctx context.Context) ([]workspace.LogEvent, error)
	ListCandidates(ctx context.Context) ([]workspace.Candidate, error)
}

// Session is the credential lifecycle the controller drives on
// authentication failure.
type Session interface {
	Clear() error
}

// Resource names one independently refreshable slot of the snapshot.
type Resource string

const (
	ResourceConfig     Resource = "config"
	ResourceSources    Resource = "sources"
	ResourceStats      Resource = "stats"
	ResourceLogs       Resource = "logs"
	ResourceCandidates Resource = "candidates"
)

// LiveResources are the slots refreshed on every poll cycle.
var LiveResources = []Resource{ResourceLogs, ResourceCandidates, ResourceStats}

// Snapshot is the local view of server state. Collections are replaced
// wholesale on every refresh.
type Snapshot struct {
	Identity   api.Identity
	Config     workspace.Config
	Sources    []workspace.Source
	Stats      workspace.Stats
	Logs       []workspace.LogEvent
	Candidates []workspace.Candidate
	LoadedAt   time.Time
}

func (s Snapshot) clone() Snapshot {
	cp := s
	cp.Sources = append([]workspace.Source(nil), s.Sources...)
	cp.Logs = append([]workspace.LogEvent(nil), s.Logs...)
	cp.Candidates = append([]workspace.Candidate(nil), s.Candidates...)
	return cp
}

// Options configures a Controller.
type Options struct {
	// Interval between poll cycles. Required for Start.
	Interval time.Duration
	// Persist, when set, receives a copy of the snapshot after every
	// successful slot replacement.
	Persist func(Snapshot)
	Logger  *slog.Logger
}

// Controller orchestrates initial load, periodic polling, and
// mutation-triggered refresh.
type Controller struct {
	client  Client
	session Session
	logger  *slog.Logger
	opts    Options

	mu      sync.Mutex
	snap    Snapshot
	runMode workspace.RunMode
	loaded  bool
	stopped bool

	running atomic.Bool
	expired atomic.Bool

	// swallowed counts poll-cycle failures that were dropped without
	// surfacing to the operator. Observability hook only.
	swallowed atomic.Uint64

	updates chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a controller. session must not be nil; the controller
// clears it when the server rejects the credential.
func New(client Client, session Session, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Controller{
		client:  client,
		session: session,
		logger:  logger,
		opts:    opts,
		updates: make(chan struct{}, 1),
	}
}

// InitialLoad verifies the session and fetches every resource once. The
// batch is all-or-nothing: failure of any one call fails the load. Only
// an authentication failure clears the credential.
func (c *Controller) InitialLoad(ctx context.Context) error {
	identity, err := c.client.Me(ctx)
	if err != nil {
		return c.classify(err)
	}

	var (
		cfg        workspace.Config
		sources    []workspace.Source
		stats      workspace.Stats
		logs       []workspace.LogEvent
		candidates []workspace.Candidate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = c.client.FetchConfig(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sources, err = c.client.ListSources(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = c.client.FetchStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = c.client.ListLogs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		candidates, err = c.client.ListCandidates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.classify(err)
	}

	c.mu.Lock()
	c.snap = Snapshot{
		Identity:   identity,
		Config:     cfg,
		Sources:    sources,
		Stats:      stats,
		Logs:       logs,
		Candidates: candidates,
		LoadedAt:   time.Now().UTC(),
	}
	c.runMode.ResetFromConfig(cfg)
	c.loaded = true
	snap := c.snap.clone()
	c.mu.Unlock()

	c.persist(snap)
	c.notify()
	return nil
}

// Start begins periodic polling of the live resources. InitialLoad must
// have succeeded first.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.loaded
	c.stopped = false
	c.mu.Unlock()

	if !loaded {
		return errors.New("cannot start polling before a successful initial load")
	}
	if c.expired.Load() {
		return ErrSessionExpired
	}
	if c.running.Load() {
		return errors.New("sync controller already running")
	}
	if c.opts.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.opts.Interval)
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.running.Store(true)

	c.wg.Add(1)
	go c.loop()
	return nil
}

// Stop tears the poll loop down. No snapshot write is applied after Stop
// returns; in-flight fetches have their results discarded.
func (c *Controller) Stop() {
	if !c.running.Load() {
		return
	}
	c.mu.Lock()
	c.stopped = true
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.running.Store(false)
}

func (c *Controller) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			if c.expired.Load() {
				return
			}
			// Cycles are fired without waiting for the previous batch;
			// a slow fetch may interleave with the next cycle and each
			// slot is overwritten by whichever response lands last.
			go c.pollOnce(c.ctx)
		}
	}
}

func (c *Controller) pollOnce(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		logs, err := c.client.ListLogs(ctx)
		if err != nil {
			c.swallow(ResourceLogs, err)
			return
		}
		c.apply(func(s *Snapshot) { s.Logs = logs })
	}()
	go func() {
		defer wg.Done()
		candidates, err := c.client.ListCandidates(ctx)
		if err != nil {
			c.swallow(ResourceCandidates, err)
			return
		}
		c.apply(func(s *Snapshot) { s.Candidates = candidates })
	}()
	go func() {
		defer wg.Done()
		stats, err := c.client.FetchStats(ctx)
		if err != nil {
			c.swallow(ResourceStats, err)
			return
		}
		c.apply(func(s *Snapshot) { s.Stats = stats })
	}()
	wg.Wait()
}

// Refresh re-fetches the named resources immediately, independent of the
// poll timer. Mutations call it so the operator sees their effect
// without waiting a full interval. Unlike poll cycles, errors surface.
func (c *Controller) Refresh(ctx context.Context, resources ...Resource) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, resource := range resources {
		switch resource {
		case ResourceConfig:
			g.Go(func() error {
				cfg, err := c.client.FetchConfig(gctx)
				if err != nil {
					return err
				}
				c.apply(func(s *Snapshot) { s.Config = cfg })
				c.mu.Lock()
				c.runMode.ResetFromConfig(cfg)
				c.mu.Unlock()
				return nil
			})
		case ResourceSources:
			g.Go(func() error {
				sources, err := c.client.ListSources(gctx)
				if err != nil {
					return err
				}
				c.apply(func(s *Snapshot) { s.Sources = sources })
				return nil
			})
		case ResourceStats:
			g.Go(func() error {
				stats, err := c.client.FetchStats(gctx)
				if err != nil {
					return err
				}
				c.apply(func(s *Snapshot) { s.Stats = stats })
				return nil
			})
		case ResourceLogs:
			g.Go(func() error {
				logs, err := c.client.ListLogs(gctx)
				if err != nil {
					return err
				}
				c.apply(func(s *Snapshot) { s.Logs = logs })
				return nil
			})
		case ResourceCandidates:
			g.Go(func() error {
				candidates, err := c.client.ListCandidates(gctx)
				if err != nil {
					return err
				}
				c.apply(func(s *Snapshot) { s.Candidates = candidates })
				return nil
			})
		default:
			return fmt.Errorf("unknown resource %q", resource)
		}
	}
	if err := g.Wait(); err != nil {
		return c.classify(err)
	}
	return nil
}

// Snapshot returns a copy of the current local view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.clone()
}

// EffectiveAuto resolves the run mode the next pipeline run should use.
func (c *Controller) EffectiveAuto() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runMode.EffectiveAuto()
}

// SetRunMode records an in-session override. It holds until the config
// is next loaded or saved.
func (c *Controller) SetRunMode(auto bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runMode.Set(auto)
}

// Overridden reports whether an in-session run mode override is active.
func (c *Controller) Overridden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runMode.Overridden()
}

// Interval returns the configured poll interval.
func (c *Controller) Interval() time.Duration {
	return c.opts.Interval
}

// SessionExpired reports whether the controller hit an authentication
// failure and cleared the credential.
func (c *Controller) SessionExpired() bool {
	return c.expired.Load()
}

// SwallowedPolls returns how many poll-cycle failures were dropped.
func (c *Controller) SwallowedPolls() uint64 {
	return c.swallowed.Load()
}

// Updates signals (coalesced) whenever a snapshot slot was replaced.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

// apply replaces part of the snapshot unless the controller was stopped
// or the session expired. The guard keeps a late response from
// resurrecting the view after a teardown or redirect decision.
func (c *Controller) apply(mutate func(*Snapshot)) {
	c.mu.Lock()
	if c.stopped || c.expired.Load() {
		c.mu.Unlock()
		return
	}
	mutate(&c.snap)
	snap := c.snap.clone()
	c.mu.Unlock()

	c.persist(snap)
	c.notify()
}

func (c *Controller) swallow(resource Resource, err error) {
	c.swallowed.Add(1)
	if api.IsAuth(err) {
		c.expireSession()
		return
	}
	c.logger.Debug("poll failed", "resource", string(resource), logging.Error(err))
}

// classify maps an authentication failure to the terminal
// ErrSessionExpired path (clearing the credential) and passes everything
// else through untouched.
func (c *Controller) classify(err error) error {
	if err == nil {
		return nil
	}
	if api.IsAuth(err) {
		c.expireSession()
		return ErrSessionExpired
	}
	return err
}

func (c *Controller) expireSession() {
	if c.expired.Swap(true) {
		return
	}
	if err := c.session.Clear(); err != nil {
		c.logger.Warn("clear session after auth failure", logging.Error(err))
	}
	c.logger.Warn("control service rejected credentials; session cleared")
	c.notify()
}

func (c *Controller) persist(snap Snapshot) {
	if c.opts.Persist != nil {
		c.opts.Persist(snap)
	}
}

func (c *Controller) notify() {
	select {
	case c.updates <- struct{}{}:
	default:
	}
}
