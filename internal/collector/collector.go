package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/lukeswitz/wardragon-analytics/internal/eventbus"
	"github.com/lukeswitz/wardragon-analytics/internal/registry"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// Config holds the collector's tunables, sourced from config.ProgramConfig.
type Config struct {
	FastInterval   time.Duration
	SlowInterval   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	StaleThreshold time.Duration
}

type kitTasks struct {
	cancel    context.CancelFunc
	health    *KitHealth
	fastJobID uuid.UUID
	slowJobID uuid.UUID
}

// Collector is the supervisor: one fast task and one slow task per enabled
// kit, reacting to registry events so kits are added/removed without a
// restart. It generalizes the one-job-per-entity pattern to a pair of jobs
// per kit, each independently cancellable.
type Collector struct {
	cfg       Config
	client    *Client
	store     Store
	registry  *registry.Registry
	scheduler gocron.Scheduler

	mu   sync.Mutex
	kits map[string]*kitTasks
}

// New builds a Collector. The scheduler is created but not started; call
// Start once the registry has been loaded.
func New(cfg Config, store Store, reg *registry.Registry) (*Collector, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("collector: creating scheduler: %w", err)
	}
	return &Collector{
		cfg:       cfg,
		client:    NewClient(cfg.RequestTimeout, cfg.MaxRetries),
		store:     store,
		registry:  reg,
		scheduler: s,
		kits:      make(map[string]*kitTasks),
	}, nil
}

// Start schedules a task pair for every currently enabled kit, subscribes
// to registry events for kits added/removed/updated afterward, and starts
// the scheduler. ctx is the process-wide shutdown context; every spawned
// kit task derives its own cancelable child from it.
func (c *Collector) Start(ctx context.Context) error {
	for _, k := range c.registry.ListKits("") {
		if k.Enabled && !k.Removed {
			c.spawnKit(ctx, k.Kit)
		}
	}

	events := c.registry.Bus().Subscribe(16)
	go c.watchRegistry(ctx, events)

	c.scheduler.Start()
	log.Infof("collector: started with %d kit(s) scheduled", len(c.kits))
	return nil
}

func (c *Collector) watchRegistry(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ctx, ev)
		}
	}
}

// handleEvent reacts to a registry mutation within one scheduler tick:
// added/updated kits get a fresh task pair (any existing pair is cancelled
// first so a URL/credential change respawns cleanly); removed kits lose
// theirs.
func (c *Collector) handleEvent(ctx context.Context, ev eventbus.Event) {
	switch ev.Type {
	case eventbus.KitAdded, eventbus.KitUpdated:
		c.cancelKit(ev.KitID)
		kits := c.registry.ListKits(ev.KitID)
		if len(kits) == 0 {
			return
		}
		k := kits[0]
		if k.Enabled && !k.Removed {
			c.spawnKit(ctx, k.Kit)
		}
	case eventbus.KitRemoved:
		c.cancelKit(ev.KitID)
	}
}

func (c *Collector) spawnKit(ctx context.Context, k schema.Kit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.kits[k.KitID]; exists {
		return
	}

	kitCtx, cancel := context.WithCancel(ctx)
	health := NewKitHealth(k.KitID, c.cfg.InitialBackoff, c.cfg.MaxBackoff, c.cfg.StaleThreshold)
	poller := NewPoller(k, c.client, c.store, c.registry, health)

	fastJob, err := c.scheduler.NewJob(
		gocron.DurationJob(c.cfg.FastInterval),
		gocron.NewTask(func() {
			if err := poller.FastCycle(kitCtx); err != nil {
				log.Debugf("collector: %s: fast cycle: %v", k.KitID, err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Errorf("collector: %s: scheduling fast task: %v", k.KitID, err)
		cancel()
		return
	}

	slowJob, err := c.scheduler.NewJob(
		gocron.DurationJob(c.cfg.SlowInterval),
		gocron.NewTask(func() {
			if err := poller.StatusCycle(kitCtx); err != nil {
				log.Debugf("collector: %s: status cycle: %v", k.KitID, err)
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Errorf("collector: %s: scheduling status task: %v", k.KitID, err)
		_ = c.scheduler.RemoveJob(fastJob.ID())
		cancel()
		return
	}

	c.kits[k.KitID] = &kitTasks{cancel: cancel, health: health, fastJobID: fastJob.ID(), slowJobID: slowJob.ID()}
	log.Infof("collector: %s: tasks scheduled (fast=%s, slow=%s)", k.KitID, c.cfg.FastInterval, c.cfg.SlowInterval)
}

func (c *Collector) cancelKit(kitID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.kits[kitID]
	if !ok {
		return
	}
	delete(c.kits, kitID)
	t.cancel()
	if err := c.scheduler.RemoveJob(t.fastJobID); err != nil {
		log.Debugf("collector: %s: removing fast job: %v", kitID, err)
	}
	if err := c.scheduler.RemoveJob(t.slowJobID); err != nil {
		log.Debugf("collector: %s: removing slow job: %v", kitID, err)
	}
	log.Infof("collector: %s: tasks cancelled", kitID)
}

// Stats returns a snapshot of per-kit collector statistics, for the admin
// surface and /debug/health.
func (c *Collector) Stats() map[string]schema.KitStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	out := make(map[string]schema.KitStats, len(c.kits))
	for id, t := range c.kits {
		out[id] = t.health.Snapshot(now)
	}
	return out
}

// Shutdown cancels every kit task and stops the scheduler, returning an
// error if the scheduler does not drain within deadline.
func (c *Collector) Shutdown(deadline time.Duration) error {
	c.mu.Lock()
	for _, t := range c.kits {
		t.cancel()
	}
	c.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.scheduler.Shutdown() }()

	select {
	case err := <-done:
		return err
	case <-time.After(deadline):
		return fmt.Errorf("collector: shutdown exceeded %s deadline", deadline)
	}
}
