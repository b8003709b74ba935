// Package schema defines the persisted entities of the aggregator: kits,
// drone and signal observations, kit-health samples, and the derived-view
// row shapes returned by the pattern engine. Optional fields use pointer
// types so that "absent" round-trips distinctly from a zero value.
package schema

import "time"

// KitStatus is the derived reachability state of a kit, computed from
// LastSeen and the current wall-clock time rather than stored directly.
type KitStatus string

const (
	KitStatusOnline  KitStatus = "online"
	KitStatusStale   KitStatus = "stale"
	KitStatusOffline KitStatus = "offline"
	KitStatusUnknown KitStatus = "unknown"
)

const (
	onlineThreshold = 30 * time.Second
	staleThreshold  = 120 * time.Second
)

// Kit is a configured sensor: identity, reachability, and admin metadata.
// Historical drone/signal/health rows referencing a removed kit are kept;
// Removed marks the kit itself as gone from the live registry.
type Kit struct {
	KitID     string     `db:"kit_id" json:"kit_id"`
	Name      string     `db:"name" json:"name"`
	Location  *string    `db:"location" json:"location,omitempty"`
	BaseURL   string     `db:"base_url" json:"base_url"`
	Enabled   bool       `db:"enabled" json:"enabled"`
	Removed   bool       `db:"removed" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	LastSeen  *time.Time `db:"last_seen" json:"last_seen,omitempty"`
}

// DerivedStatus computes the kit's current status from LastSeen as of now.
// A nil LastSeen (never successfully polled) is always unknown, regardless
// of the enabled flag.
func (k *Kit) DerivedStatus(now time.Time) KitStatus {
	if k.LastSeen == nil {
		return KitStatusUnknown
	}
	age := now.Sub(*k.LastSeen)
	switch {
	case age < onlineThreshold:
		return KitStatusOnline
	case age < staleThreshold:
		return KitStatusStale
	default:
		return KitStatusOffline
	}
}

// KitWithStatus is a Kit annotated with its derived status, the shape
// returned by list_kits.
type KitWithStatus struct {
	Kit
	Status KitStatus `json:"status"`
}
