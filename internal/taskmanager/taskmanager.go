// Package taskmanager runs the aggregator's background jobs: retention for
// the three raw observation tables, scheduled on one gocron.Scheduler
// shared by every Register* call.
package taskmanager

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/lukeswitz/wardragon-analytics/internal/repository"
	"github.com/lukeswitz/wardragon-analytics/pkg/archive"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

// Retention periods from the storage contract: 30 days for the two raw
// high-volume tables, 90 for system health. drones_hourly ages out via its
// own TimescaleDB continuous-aggregate retention policy, set at migration
// time, not here.
const (
	DronesRetention       = 30 * 24 * time.Hour
	SignalsRetention      = 30 * 24 * time.Hour
	SystemHealthRetention = 90 * 24 * time.Hour
)

var retentionRunAt = gocron.NewAtTime(4, 0, 0)

// Manager owns the scheduler and the single DB/archiver every registered
// job writes through.
type Manager struct {
	scheduler gocron.Scheduler
	db        *repository.DB
	archiver  repository.Archiver
}

// New builds a Manager. archiver may be nil, in which case retention always
// falls back to a plain drop with no S3 export.
func New(db *repository.DB, archiver repository.Archiver) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: s, db: db, archiver: archiver}, nil
}

// Start registers the retention jobs for drones, signals, and system_health
// and starts the scheduler.
func (m *Manager) Start() error {
	if _, err := m.registerRetention("drones", DronesRetention); err != nil {
		return err
	}
	if _, err := m.registerRetention("signals", SignalsRetention); err != nil {
		return err
	}
	if _, err := m.registerRetention("system_health", SystemHealthRetention); err != nil {
		return err
	}
	m.scheduler.Start()
	log.Info("taskmanager: retention jobs registered and scheduler started")
	return nil
}

func (m *Manager) registerRetention(table string, retain time.Duration) (gocron.Job, error) {
	return m.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(retentionRunAt)),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := m.db.RunRetention(ctx, table, retain, m.archiver); err != nil {
				log.Errorf("taskmanager: retention failed for %s: %v", table, err)
				return
			}
			log.Infof("taskmanager: retention ran for %s (retain=%s)", table, retain)
		}),
	)
}

// Shutdown stops the scheduler, waiting up to deadline for in-flight jobs.
func (m *Manager) Shutdown(deadline time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- m.scheduler.Shutdown() }()

	select {
	case err := <-done:
		return err
	case <-time.After(deadline):
		return context.DeadlineExceeded
	}
}
