package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type fakeStore struct {
	drones  []*schema.DroneObservation
	signals []*schema.SignalObservation
	health  []*schema.KitHealthSample
}

func (f *fakeStore) UpsertDrones(_ context.Context, batch []*schema.DroneObservation) (int, error) {
	f.drones = append(f.drones, batch...)
	return len(batch), nil
}

func (f *fakeStore) UpsertSignals(_ context.Context, batch []*schema.SignalObservation) (int, error) {
	f.signals = append(f.signals, batch...)
	return len(batch), nil
}

func (f *fakeStore) UpsertHealth(_ context.Context, batch []*schema.KitHealthSample) (int, error) {
	f.health = append(f.health, batch...)
	return len(batch), nil
}

type fakeSeenMarker struct {
	kitID string
	when  time.Time
}

func (f *fakeSeenMarker) MarkSeen(_ context.Context, kitID string, when time.Time) {
	f.kitID = kitID
	f.when = when
}

func newTestKit(baseURL string) schema.Kit {
	return schema.Kit{KitID: "kit-1", Name: "test", BaseURL: baseURL, Enabled: true}
}

func TestFastCycleUpsertsBothEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/drones", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"drone_id":"drone-a","lat":37.0,"lon":-122.0}]`))
	})
	mux.HandleFunc("/signals", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"freq_mhz":5800}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &fakeStore{}
	seen := &fakeSeenMarker{}
	health := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	poller := NewPoller(newTestKit(srv.URL), NewClient(2*time.Second, 1), store, seen, health)

	err := poller.FastCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, store.drones, 1)
	require.Len(t, store.signals, 1)
	require.Equal(t, "kit-1", seen.kitID)
	require.Equal(t, StateOnline, health.DerivedState(time.Now()))
}

func TestFastCycleSucceedsWithOnlyOneEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/drones", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"drone_id":"drone-a"}]`))
	})
	mux.HandleFunc("/signals", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &fakeStore{}
	seen := &fakeSeenMarker{}
	health := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	poller := NewPoller(newTestKit(srv.URL), NewClient(2*time.Second, 0), store, seen, health)

	err := poller.FastCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, store.drones, 1)
	require.Len(t, store.signals, 0)
}

func TestFastCycleFailsWhenBothEndpointsFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/drones", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/signals", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &fakeStore{}
	seen := &fakeSeenMarker{}
	health := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	poller := NewPoller(newTestKit(srv.URL), NewClient(2*time.Second, 0), store, seen, health)

	err := poller.FastCycle(context.Background())
	require.Error(t, err)
	require.Equal(t, StateError, health.DerivedState(time.Now()))
}

func TestStatusCycleUpsertsHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cpu_percent":42.0,"gps":{"lat":1.0,"lon":2.0}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &fakeStore{}
	seen := &fakeSeenMarker{}
	health := NewKitHealth("kit-1", time.Second, 300*time.Second, time.Minute)
	poller := NewPoller(newTestKit(srv.URL), NewClient(2*time.Second, 1), store, seen, health)

	err := poller.StatusCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, store.health, 1)
	require.Equal(t, 42.0, *store.health[0].CPUPercent)
}
