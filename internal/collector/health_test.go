package collector

import (
	"errors"
	"testing"
	"time"

	"github.com/lukeswitz/wardragon-analytics/internal/apperr"
)

func TestKitHealthStartsUnknown(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	if got := h.DerivedState(time.Now()); got != StateUnknown {
		t.Fatalf("got %v, want unknown", got)
	}
}

func TestKitHealthSuccessTransitionsOnline(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	h.RecordSuccess(time.Now())
	if got := h.DerivedState(time.Now()); got != StateOnline {
		t.Fatalf("got %v, want online", got)
	}
}

func TestKitHealthFailureTransitionsOffline(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	h.RecordFailure(apperr.KindUpstreamTransient, errors.New("boom"))
	if got := h.DerivedState(time.Now()); got != StateOffline {
		t.Fatalf("got %v, want offline", got)
	}
}

func TestKitHealthFatalFailureTransitionsError(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	h.RecordFailure(apperr.KindUpstreamFatal, errors.New("404"))
	if got := h.DerivedState(time.Now()); got != StateError {
		t.Fatalf("got %v, want error", got)
	}
}

func TestKitHealthBackoffDoublesAndCaps(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 4*time.Second, time.Minute)
	b1 := h.RecordFailure(apperr.KindUpstreamTransient, errors.New("1"))
	if b1 != 2*time.Second {
		t.Fatalf("got %v, want 2s", b1)
	}
	b2 := h.RecordFailure(apperr.KindUpstreamTransient, errors.New("2"))
	if b2 != 4*time.Second {
		t.Fatalf("got %v, want 4s", b2)
	}
	b3 := h.RecordFailure(apperr.KindUpstreamTransient, errors.New("3"))
	if b3 != 4*time.Second {
		t.Fatalf("got %v, want capped at 4s", b3)
	}
}

func TestKitHealthSuccessResetsConsecutiveFailures(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	h.RecordFailure(apperr.KindUpstreamTransient, errors.New("1"))
	h.RecordFailure(apperr.KindUpstreamTransient, errors.New("2"))
	h.RecordSuccess(time.Now())

	snap := h.Snapshot(time.Now())
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("got %d, want 0", snap.ConsecutiveFailures)
	}
}

func TestKitHealthStaleDerivedFromLastSeen(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	h.RecordSuccess(time.Now().Add(-2 * time.Minute))
	if got := h.DerivedState(time.Now()); got != StateStale {
		t.Fatalf("got %v, want stale", got)
	}
}

func TestKitHealthSnapshotSuccessRate(t *testing.T) {
	h := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	h.RecordSuccess(time.Now())
	h.RecordFailure(apperr.KindUpstreamTransient, errors.New("boom"))

	snap := h.Snapshot(time.Now())
	if snap.TotalPolls != 2 || snap.SuccessfulPolls != 1 || snap.FailedPolls != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.SuccessRate != 0.5 {
		t.Fatalf("got %v, want 0.5", snap.SuccessRate)
	}
}
