package schema

import (
	"testing"
	"time"
)

func TestDerivedStatusUnknown(t *testing.T) {
	k := &Kit{KitID: "k1"}
	if got := k.DerivedStatus(time.Now()); got != KitStatusUnknown {
		t.Errorf("expected unknown status with nil LastSeen, got %s", got)
	}
}

func TestDerivedStatusOnline(t *testing.T) {
	now := time.Now()
	seen := now.Add(-10 * time.Second)
	k := &Kit{KitID: "k1", LastSeen: &seen}

	if got := k.DerivedStatus(now); got != KitStatusOnline {
		t.Errorf("expected online status, got %s", got)
	}
}

func TestDerivedStatusStale(t *testing.T) {
	now := time.Now()
	seen := now.Add(-90 * time.Second)
	k := &Kit{KitID: "k1", LastSeen: &seen}

	if got := k.DerivedStatus(now); got != KitStatusStale {
		t.Errorf("expected stale status, got %s", got)
	}
}

func TestDerivedStatusOffline(t *testing.T) {
	now := time.Now()
	seen := now.Add(-200 * time.Second)
	k := &Kit{KitID: "k1", LastSeen: &seen}

	if got := k.DerivedStatus(now); got != KitStatusOffline {
		t.Errorf("expected offline status, got %s", got)
	}
}
