package collector

import (
	"math"
	"sync"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

// State is one of the per-kit health states. Stale is derived, not stored:
// it is computed on read from lastSeen rather than assigned on transition.
type State string

const (
	StateUnknown State = "unknown"
	StateOnline  State = "online"
	StateStale   State = "stale"
	StateOffline State = "offline"
	StateError   State = "error"
)

// KitHealth tracks one kit's poll outcomes and derives its current backoff
// and health state. A KindUpstreamFatal failure (4xx, bad payload) lands in
// StateError; a KindUpstreamTransient failure (timeout, 5xx) lands in
// StateOffline; both still count toward the same backoff counter.
type KitHealth struct {
	kitID          string
	initialBackoff time.Duration
	maxBackoff     time.Duration
	staleThreshold time.Duration

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	totalPolls          uint64
	successfulPolls     uint64
	failedPolls         uint64
	lastSeen            time.Time
	lastAttempt         time.Time
	lastError           string
}

// NewKitHealth returns a KitHealth starting in StateUnknown, as required
// before the first poll attempt completes.
func NewKitHealth(kitID string, initialBackoff, maxBackoff, staleThreshold time.Duration) *KitHealth {
	return &KitHealth{
		kitID:          kitID,
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		staleThreshold: staleThreshold,
		state:          StateUnknown,
	}
}

// RecordSuccess resets the failure counter and marks the kit online.
func (h *KitHealth) RecordSuccess(at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.totalPolls++
	h.successfulPolls++
	h.consecutiveFailures = 0
	h.lastSeen = at
	h.lastAttempt = at
	h.state = StateOnline
	h.lastError = ""
}

// RecordFailure increments the failure counter, transitions to offline or
// error depending on kind, and returns the delay before the next poll
// attempt: min(initialBackoff * 2^consecutiveFailures, maxBackoff).
func (h *KitHealth) RecordFailure(kind apperr.Kind, err error) time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.totalPolls++
	h.failedPolls++
	h.consecutiveFailures++
	h.lastAttempt = time.Now()
	if err != nil {
		h.lastError = err.Error()
	}
	if kind == apperr.KindUpstreamFatal {
		h.state = StateError
	} else {
		h.state = StateOffline
	}
	return h.backoffLocked()
}

func (h *KitHealth) backoffLocked() time.Duration {
	backoff := time.Duration(float64(h.initialBackoff) * math.Pow(2, float64(h.consecutiveFailures)))
	if backoff > h.maxBackoff || backoff <= 0 {
		return h.maxBackoff
	}
	return backoff
}

// Backoff returns the delay that would apply to the next poll attempt
// given the current consecutive-failure count.
func (h *KitHealth) Backoff() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.consecutiveFailures == 0 {
		return 0
	}
	return h.backoffLocked()
}

// ShouldPoll reports whether a poll attempt at now is due. It is always true
// absent a failure streak; after one, it stays false until now reaches
// lastAttempt+backoff, so the configured backoff delay is actually honored
// rather than just recorded.
func (h *KitHealth) ShouldPoll(now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.consecutiveFailures == 0 {
		return true
	}
	return !now.Before(h.lastAttempt.Add(h.backoffLocked()))
}

// DerivedState reports Stale when the kit was last online more than
// staleThreshold ago, overriding an otherwise-online state; Stale is
// informational and never widens backoff by itself.
func (h *KitHealth) DerivedState(now time.Time) State {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateOnline && !h.lastSeen.IsZero() && now.Sub(h.lastSeen) > h.staleThreshold {
		return StateStale
	}
	return h.state
}

// Snapshot returns the per-kit statistics the registry and /debug/health
// surface expose.
func (h *KitHealth) Snapshot(now time.Time) schema.KitStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	var rate float64
	if h.totalPolls > 0 {
		rate = float64(h.successfulPolls) / float64(h.totalPolls)
	}

	return schema.KitStats{
		KitID:               h.kitID,
		TotalPolls:          h.totalPolls,
		SuccessfulPolls:     h.successfulPolls,
		FailedPolls:         h.failedPolls,
		ConsecutiveFailures: h.consecutiveFailures,
		LastError:           h.lastError,
		CurrentBackoff:      h.backoffLocked(),
		SuccessRate:         rate,
	}
}
