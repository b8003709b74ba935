package collector

import (
	"context"
	"sync"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/internal/metrics"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// Store is the subset of *repository.DB a poller writes through.
type Store interface {
	UpsertDrones(ctx context.Context, batch []*schema.DroneObservation) (int, error)
	UpsertSignals(ctx context.Context, batch []*schema.SignalObservation) (int, error)
	UpsertHealth(ctx context.Context, batch []*schema.KitHealthSample) (int, error)
}

// SeenMarker is the subset of *registry.Registry a poller updates on
// every successful cycle.
type SeenMarker interface {
	MarkSeen(ctx context.Context, kitID string, when time.Time)
}

// Poller drives one kit's poll cycles: fetch, normalize, upsert, and feed
// the result into that kit's KitHealth.
type Poller struct {
	kit    schema.Kit
	client *Client
	store  Store
	seen   SeenMarker
	health *KitHealth
}

// NewPoller returns a Poller for kit, writing through store and reporting
// outcomes to health and seen.
func NewPoller(kit schema.Kit, client *Client, store Store, seen SeenMarker, health *KitHealth) *Poller {
	return &Poller{kit: kit, client: client, store: store, seen: seen, health: health}
}

// FastCycle requests /drones and /signals concurrently. Per spec, failure
// of one fast endpoint does not fail the other; the cycle as a whole
// succeeds if at least one endpoint produced usable data.
func (p *Poller) FastCycle(ctx context.Context) error {
	now := time.Now().UTC()
	if !p.health.ShouldPoll(now) {
		log.Debugf("collector: %s: fast cycle skipped, backoff not elapsed", p.kit.KitID)
		return nil
	}

	var wg sync.WaitGroup
	var droneErr, signalErr error
	var drones []*schema.DroneObservation
	var signals []*schema.SignalObservation

	wg.Add(2)
	go func() {
		defer wg.Done()
		drones, droneErr = p.fetchDrones(ctx, now)
	}()
	go func() {
		defer wg.Done()
		signals, signalErr = p.fetchSignals(ctx, now)
	}()
	wg.Wait()

	if droneErr != nil && signalErr != nil {
		return p.fail(droneErr)
	}

	var upsertErr error
	if len(drones) > 0 {
		if n, err := p.store.UpsertDrones(ctx, drones); err != nil {
			log.Warnf("collector: %s: upserting drones: %v", p.kit.KitID, err)
			upsertErr = err
		} else {
			metrics.RowsUpsertedTotal.WithLabelValues("drones", p.kit.KitID).Add(float64(n))
		}
	}
	if len(signals) > 0 {
		if n, err := p.store.UpsertSignals(ctx, signals); err != nil {
			log.Warnf("collector: %s: upserting signals: %v", p.kit.KitID, err)
			upsertErr = err
		} else {
			metrics.RowsUpsertedTotal.WithLabelValues("signals", p.kit.KitID).Add(float64(n))
		}
	}
	if upsertErr != nil {
		return p.fail(upsertErr)
	}

	metrics.KitPollsTotal.WithLabelValues(p.kit.KitID, "success").Inc()
	metrics.KitBackoffSeconds.WithLabelValues(p.kit.KitID).Set(0)
	p.health.RecordSuccess(now)
	p.seen.MarkSeen(ctx, p.kit.KitID, now)
	return nil
}

func (p *Poller) fetchDrones(ctx context.Context, receivedAt time.Time) ([]*schema.DroneObservation, error) {
	var raw []rawDroneRecord
	if err := p.client.GetJSON(ctx, p.kit.BaseURL, "/drones", &raw); err != nil {
		return nil, err
	}

	out := make([]*schema.DroneObservation, 0, len(raw))
	for _, r := range raw {
		if obs, ok := normalizeDrone(r, p.kit.KitID, receivedAt); ok {
			out = append(out, obs)
		}
	}
	return out, nil
}

func (p *Poller) fetchSignals(ctx context.Context, receivedAt time.Time) ([]*schema.SignalObservation, error) {
	var raw []rawSignalRecord
	if err := p.client.GetJSON(ctx, p.kit.BaseURL, "/signals", &raw); err != nil {
		return nil, err
	}

	out := make([]*schema.SignalObservation, 0, len(raw))
	for _, r := range raw {
		if obs, ok := normalizeSignal(r, p.kit.KitID, receivedAt); ok {
			out = append(out, obs)
		}
	}
	return out, nil
}

// StatusCycle requests /status. Unlike the fast endpoints there is only
// one source of truth here, so any failure fails the cycle outright.
func (p *Poller) StatusCycle(ctx context.Context) error {
	now := time.Now().UTC()
	if !p.health.ShouldPoll(now) {
		log.Debugf("collector: %s: status cycle skipped, backoff not elapsed", p.kit.KitID)
		return nil
	}

	var raw rawStatusRecord
	if err := p.client.GetJSON(ctx, p.kit.BaseURL, "/status", &raw); err != nil {
		return p.fail(err)
	}

	sample := normalizeHealth(raw, p.kit.KitID, now)
	n, err := p.store.UpsertHealth(ctx, []*schema.KitHealthSample{sample})
	if err != nil {
		log.Warnf("collector: %s: upserting health: %v", p.kit.KitID, err)
		return p.fail(err)
	}
	metrics.RowsUpsertedTotal.WithLabelValues("system_health", p.kit.KitID).Add(float64(n))

	metrics.KitPollsTotal.WithLabelValues(p.kit.KitID, "success").Inc()
	metrics.KitBackoffSeconds.WithLabelValues(p.kit.KitID).Set(0)
	p.health.RecordSuccess(now)
	p.seen.MarkSeen(ctx, p.kit.KitID, now)
	return nil
}

func (p *Poller) fail(err error) error {
	kind := apperr.KindUpstreamTransient
	if ae := apperr.As(err); ae != nil {
		kind = ae.Kind
	}
	backoff := p.health.RecordFailure(kind, err)
	metrics.KitPollsTotal.WithLabelValues(p.kit.KitID, "failure").Inc()
	metrics.KitBackoffSeconds.WithLabelValues(p.kit.KitID).Set(backoff.Seconds())
	log.Warnf("collector: %s: cycle failed, next attempt in %s: %v", p.kit.KitID, backoff, err)
	return err
}
