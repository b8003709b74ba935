// Package registry is the authoritative, mutable set of kits: the admin
// surface and startup config both funnel through it, and it is the source
// of truth the collector watches for add/remove/update events.
package registry

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/config"
	"github.com/lukeswitz/wardragon-analytics/internal/eventbus"
	"github.com/lukeswitz/wardragon-analytics/pkg/log"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// KitStore is the persistence surface the registry needs; satisfied by
// *repository.DB in production and a fake in tests.
type KitStore interface {
	InsertKit(ctx context.Context, k *schema.Kit) error
	GetKit(ctx context.Context, kitID string) (*schema.Kit, error)
	ListKits(ctx context.Context, kitID string) ([]*schema.Kit, error)
	RemoveKit(ctx context.Context, kitID string) error
	TouchLastSeen(ctx context.Context, kitID string, now time.Time) error
}

// ErrDuplicateKit is returned by AddKit when the derived or supplied kit_id
// already exists.
var ErrDuplicateKit = fmt.Errorf("registry: kit already exists")

// Registry holds the live, in-memory view of kits mirrored from the store,
// broadcasting changes on Bus so the collector can react without polling.
type Registry struct {
	mu    sync.RWMutex
	kits  map[string]*schema.Kit
	store KitStore
	bus   *eventbus.Bus
	http  *http.Client
}

// New returns a Registry backed by store, broadcasting through bus.
func New(store KitStore, bus *eventbus.Bus) *Registry {
	return &Registry{
		kits:  make(map[string]*schema.Kit),
		store: store,
		bus:   bus,
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Bus returns the registry's event bus, for subscribers set up before the
// collector is wired.
func (r *Registry) Bus() *eventbus.Bus {
	return r.bus
}

// Load populates the in-memory view from the store at startup.
func (r *Registry) Load(ctx context.Context) error {
	kits, err := r.store.ListKits(ctx, "")
	if err != nil {
		return fmt.Errorf("registry: loading kits: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range kits {
		r.kits[k.KitID] = k
	}
	return nil
}

// ListKits returns a snapshot of the registry, annotated with derived
// status, optionally filtered to one kit_id.
func (r *Registry) ListKits(kitID string) []schema.KitWithStatus {
	now := time.Now()
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schema.KitWithStatus, 0, len(r.kits))
	for id, k := range r.kits {
		if kitID != "" && id != kitID {
			continue
		}
		out = append(out, schema.KitWithStatus{Kit: *k, Status: k.DerivedStatus(now)})
	}
	return out
}

// AddKit probes apiURL, assigns/derives a kit_id from the probe response
// (falling back to apiURL itself if the kit reports none), persists the kit,
// and emits a KitAdded event. It fails if the URL is unreachable or the
// resulting kit_id already exists. enabled controls whether the collector
// picks it up immediately; a kit added with enabled=false is stored but not
// polled, and the registry has no operation that enables it afterwards.
func (r *Registry) AddKit(ctx context.Context, apiURL, name, location string, enabled bool) (*schema.Kit, error) {
	result, err := r.ProbeURL(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("registry: probe failed for %s: %w", apiURL, err)
	}

	kitID := result.ReportedKitID
	if kitID == "" {
		kitID = apiURL
	}

	r.mu.Lock()
	if _, exists := r.kits[kitID]; exists {
		r.mu.Unlock()
		return nil, ErrDuplicateKit
	}
	r.mu.Unlock()

	k := &schema.Kit{
		KitID:     kitID,
		Name:      name,
		BaseURL:   apiURL,
		Enabled:   enabled,
		CreatedAt: time.Now(),
	}
	if location != "" {
		k.Location = &location
	}

	if err := r.store.InsertKit(ctx, k); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.kits[kitID] = k
	r.mu.Unlock()

	r.bus.Publish(eventbus.Event{Type: eventbus.KitAdded, KitID: kitID, Time: time.Now()})
	log.Infof("registry: added kit %s (%s)", kitID, apiURL)
	return k, nil
}

// RemoveKit marks a kit removed in the store and the in-memory view, then
// emits a KitRemoved event. Historical observations are untouched.
func (r *Registry) RemoveKit(ctx context.Context, kitID string) error {
	if err := r.store.RemoveKit(ctx, kitID); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.kits, kitID)
	r.mu.Unlock()

	r.bus.Publish(eventbus.Event{Type: eventbus.KitRemoved, KitID: kitID, Time: time.Now()})
	log.Infof("registry: removed kit %s", kitID)
	return nil
}

// ReloadFromConfig union-merges the kits listed in the startup config file
// into the registry. Duplicates resolve to the existing registry entry
// unless the config explicitly marks itself authoritative by being the
// very first load (an empty registry).
func (r *Registry) ReloadFromConfig(ctx context.Context, kf *config.KitsFile) error {
	for _, entry := range kf.Kits {
		kitID := entry.KitID
		if kitID == "" {
			kitID = entry.APIURL
		}

		r.mu.RLock()
		_, exists := r.kits[kitID]
		r.mu.RUnlock()
		if exists {
			continue
		}

		k := &schema.Kit{
			KitID:     kitID,
			Name:      entry.Name,
			BaseURL:   entry.APIURL,
			Enabled:   entry.IsEnabled(),
			CreatedAt: time.Now(),
		}
		if entry.Location != "" {
			k.Location = &entry.Location
		}

		if err := r.store.InsertKit(ctx, k); err != nil {
			log.Warnf("registry: skipping config kit %s: %v", kitID, err)
			continue
		}

		r.mu.Lock()
		r.kits[kitID] = k
		r.mu.Unlock()

		r.bus.Publish(eventbus.Event{Type: eventbus.KitAdded, KitID: kitID, Time: time.Now()})
	}
	return nil
}

// MarkSeen records a successful poll: updates in-memory LastSeen and
// persists it to the store under the greatest(existing, incoming) rule.
func (r *Registry) MarkSeen(ctx context.Context, kitID string, when time.Time) {
	r.mu.Lock()
	if k, ok := r.kits[kitID]; ok {
		if k.LastSeen == nil || when.After(*k.LastSeen) {
			k.LastSeen = &when
		}
	}
	r.mu.Unlock()

	if err := r.store.TouchLastSeen(ctx, kitID, when); err != nil {
		log.Warnf("registry: failed to persist last_seen for %s: %v", kitID, err)
	}
}
