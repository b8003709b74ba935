package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/api"
	"github.com/lukeswitz/wardragon-analytics/internal/collector"
	"github.com/lukeswitz/wardragon-analytics/internal/config"
	"github.com/lukeswitz/wardragon-analytics/internal/eventbus"
	"github.com/lukeswitz/wardragon-analytics/internal/registry"
	"github.com/lukeswitz/wardragon-analytics/internal/repository"
	"github.com/lukeswitz/wardragon-analytics/internal/taskmanager"
	"github.com/lukeswitz/wardragon-analytics/pkg/archive"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
)

var (
	db      *repository.DB
	reg     *registry.Registry
	coll    *collector.Collector
	tasks   *taskmanager.Manager
	restAPI *api.RestApi
	httpSrv *http.Server
)

// buildArchiver returns an S3-backed Archiver when archival is configured,
// or nil, meaning retention falls back to a plain drop with no export.
func buildArchiver() (repository.Archiver, error) {
	if !config.Keys.Archive.Enabled {
		return nil, nil
	}
	return archive.NewS3Store(archive.S3StoreConfig{
		Bucket: config.Keys.Archive.Bucket,
		Prefix: config.Keys.Archive.Prefix,
		Region: config.Keys.Archive.Region,
	})
}

// driverFromURL guesses the SQL dialect from a DATABASE_URL: anything
// carrying a postgres scheme talks to TimescaleDB, everything else is
// treated as a sqlite3 file path for local/test deployments.
func driverFromURL(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return "postgres"
	}
	return "sqlite3"
}

// serverInit wires storage, the kit registry, the collector, the retention
// task manager, and the REST API together: config-dependent packages first,
// then the things that depend on them.
func serverInit() error {
	var err error
	db, err = repository.Connect(driverFromURL(config.Keys.DatabaseURL), config.Keys.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.MigrateUp(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	reg = registry.New(db, eventbus.New())

	if err := reg.Load(context.Background()); err != nil {
		return fmt.Errorf("loading kit registry: %w", err)
	}

	kf, err := config.LoadKitsFile(config.Keys.KitsConfig)
	if err != nil {
		return fmt.Errorf("loading kits file: %w", err)
	}
	if err := reg.ReloadFromConfig(context.Background(), kf); err != nil {
		return fmt.Errorf("seeding kits from config: %w", err)
	}

	coll, err = collector.New(collector.Config{
		FastInterval:   config.Keys.PollIntervalFast,
		SlowInterval:   config.Keys.PollIntervalStatus,
		RequestTimeout: config.Keys.RequestTimeout,
		MaxRetries:     config.Keys.MaxRetries,
		InitialBackoff: config.Keys.InitialBackoff,
		MaxBackoff:     config.Keys.MaxBackoff,
		StaleThreshold: config.Keys.StaleThreshold,
	}, db, reg)
	if err != nil {
		return fmt.Errorf("building collector: %w", err)
	}

	archiver, err := buildArchiver()
	if err != nil {
		return fmt.Errorf("building archiver: %w", err)
	}

	tasks, err = taskmanager.New(db, archiver)
	if err != nil {
		return fmt.Errorf("building task manager: %w", err)
	}

	restAPI = api.New(db, reg, coll)
	return nil
}

func serverStart() error {
	if err := coll.Start(context.Background()); err != nil {
		return fmt.Errorf("starting collector: %w", err)
	}
	if err := tasks.Start(); err != nil {
		return fmt.Errorf("starting task manager: %w", err)
	}

	handler := restAPI.Handler(config.Keys.CORSOrigins)
	httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Keys.HTTPPort),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Infof("wardragon-aggregator: listening on %s", httpSrv.Addr)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving http: %w", err)
	}
	return nil
}

func serverShutdown() {
	const shutdownDeadline = 15 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), shutdownDeadline)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warnf("wardragon-aggregator: http shutdown: %v", err)
	}

	if err := coll.Shutdown(shutdownDeadline); err != nil {
		log.Warnf("wardragon-aggregator: collector shutdown: %v", err)
	}
	if err := tasks.Shutdown(shutdownDeadline); err != nil {
		log.Warnf("wardragon-aggregator: task manager shutdown: %v", err)
	}

	if err := db.Close(); err != nil {
		log.Warnf("wardragon-aggregator: closing database: %v", err)
	}
}
