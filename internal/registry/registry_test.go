package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukeswitz/wardragon-analytics/internal/eventbus"
	"github.com/lukeswitz/wardragon-analytics/pkg/schema"
)

type fakeStore struct {
	kits map[string]*schema.Kit
}

func newFakeStore() *fakeStore {
	return &fakeStore{kits: make(map[string]*schema.Kit)}
}

func (f *fakeStore) InsertKit(_ context.Context, k *schema.Kit) error {
	if _, exists := f.kits[k.KitID]; exists {
		return ErrDuplicateKit
	}
	cp := *k
	f.kits[k.KitID] = &cp
	return nil
}

func (f *fakeStore) GetKit(_ context.Context, kitID string) (*schema.Kit, error) {
	k, ok := f.kits[kitID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return k, nil
}

func (f *fakeStore) ListKits(_ context.Context, kitID string) ([]*schema.Kit, error) {
	var out []*schema.Kit
	for id, k := range f.kits {
		if kitID != "" && id != kitID {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}

func (f *fakeStore) RemoveKit(_ context.Context, kitID string) error {
	if _, ok := f.kits[kitID]; !ok {
		return fmt.Errorf("not found")
	}
	delete(f.kits, kitID)
	return nil
}

func (f *fakeStore) TouchLastSeen(_ context.Context, kitID string, when time.Time) error {
	if k, ok := f.kits[kitID]; ok {
		k.LastSeen = &when
	}
	return nil
}

func TestAddKitProbesAndRegisters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"kit_id":"kit-field-1"}`))
	}))
	defer srv.Close()

	reg := New(newFakeStore(), eventbus.New())
	ch := reg.Bus().Subscribe(1)

	k, err := reg.AddKit(context.Background(), srv.URL, "North Fence", "perimeter-north", true)
	require.NoError(t, err)
	require.Equal(t, "kit-field-1", k.KitID)

	select {
	case ev := <-ch:
		require.Equal(t, eventbus.KitAdded, ev.Type)
		require.Equal(t, "kit-field-1", ev.KitID)
	case <-time.After(time.Second):
		t.Fatal("expected a KitAdded event")
	}

	kits := reg.ListKits("")
	require.Len(t, kits, 1)
}

func TestAddKitFailsOnUnreachable(t *testing.T) {
	reg := New(newFakeStore(), eventbus.New())
	_, err := reg.AddKit(context.Background(), "http://127.0.0.1:1", "", "", true)
	require.Error(t, err)
}

func TestRemoveKitUnknown(t *testing.T) {
	reg := New(newFakeStore(), eventbus.New())
	err := reg.RemoveKit(context.Background(), "nope")
	require.Error(t, err)
}
