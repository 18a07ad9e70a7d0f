package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolmesh/gatefed/internal/gateway"
)

type fakeRegistry struct {
	mu         sync.Mutex
	gateways   []gateway.Gateway
	toggled    map[string]bool
	seenCalls  int
	toggleErrs map[string]error
}

func (f *fakeRegistry) List(ctx context.Context, includeInactive bool) ([]gateway.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]gateway.Gateway, len(f.gateways))
	copy(out, f.gateways)
	return out, nil
}

func (f *fakeRegistry) Toggle(ctx context.Context, id string, enabled bool) (gateway.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggled == nil {
		f.toggled = make(map[string]bool)
	}
	f.toggled[id] = enabled
	for i := range f.gateways {
		if f.gateways[i].ID == id {
			f.gateways[i].Status.Enabled = enabled
		}
	}
	return gateway.Gateway{ID: id, Status: gateway.Status{Enabled: enabled}}, nil
}

func (f *fakeRegistry) MarkSeen(ctx context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seenCalls++
}

type alwaysLeader struct{}

func (alwaysLeader) TryAcquire(ctx context.Context) (bool, error) { return true, nil }
func (alwaysLeader) Refresh(ctx context.Context) error            { return nil }
func (alwaysLeader) Release(ctx context.Context) error            { return nil }
func (alwaysLeader) IsLeader() bool                               { return true }

type neverLeader struct{}

func (neverLeader) TryAcquire(ctx context.Context) (bool, error) { return false, nil }
func (neverLeader) Refresh(ctx context.Context) error            { return nil }
func (neverLeader) Release(ctx context.Context) error            { return nil }
func (neverLeader) IsLeader() bool                               { return false }

func TestProbeSuccessClearsFailuresAndMarksSeen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := &fakeRegistry{gateways: []gateway.Gateway{{ID: "g1", Name: "g1", URL: srv.URL, Status: gateway.Status{Enabled: true}}}}
	m := New(reg, alwaysLeader{}, Config{Interval: time.Hour, ProbeTimeout: time.Second, FailureThreshold: 3})

	m.cycle(context.Background())

	assert.Equal(t, 0, m.FailureCount("g1"))
	assert.Equal(t, 1, reg.seenCalls)
}

func TestAutoDeactivatesAfterThreshold(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := &fakeRegistry{gateways: []gateway.Gateway{{ID: "g1", Name: "g1", URL: srv.URL, Status: gateway.Status{Enabled: true}}}}
	m := New(reg, alwaysLeader{}, Config{Interval: time.Hour, ProbeTimeout: time.Second, FailureThreshold: 3})

	m.cycle(context.Background())
	assert.Equal(t, 1, m.FailureCount("g1"))
	m.cycle(context.Background())
	assert.Equal(t, 2, m.FailureCount("g1"))
	m.cycle(context.Background())

	assert.Equal(t, 0, m.FailureCount("g1"), "counter resets to 0 on the commit that deactivates")
	require.Contains(t, reg.toggled, "g1")
	assert.False(t, reg.toggled["g1"])
}

func TestThresholdDisabledNeverDeactivates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := &fakeRegistry{gateways: []gateway.Gateway{{ID: "g1", Name: "g1", URL: srv.URL, Status: gateway.Status{Enabled: true}}}}
	m := New(reg, alwaysLeader{}, Config{Interval: time.Hour, ProbeTimeout: time.Second, FailureThreshold: -1})

	for i := 0; i < 10; i++ {
		m.cycle(context.Background())
	}

	assert.Empty(t, reg.toggled)
}

func TestNonLeaderSkipsCycle(t *testing.T) {
	reg := &fakeRegistry{gateways: []gateway.Gateway{{ID: "g1", URL: "http://unused.invalid"}}}
	m := New(reg, neverLeader{}, Config{Interval: 20 * time.Millisecond, ProbeTimeout: time.Second, FailureThreshold: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	assert.Equal(t, 0, reg.seenCalls)
	assert.Empty(t, reg.toggled)
}

func TestSingleSuccessClearsFailuresMidStreak(t *testing.T) {
	var fail bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := &fakeRegistry{gateways: []gateway.Gateway{{ID: "g1", URL: srv.URL, Status: gateway.Status{Enabled: true}}}}
	m := New(reg, alwaysLeader{}, Config{Interval: time.Hour, ProbeTimeout: time.Second, FailureThreshold: 3})

	fail = true
	m.cycle(context.Background())
	m.cycle(context.Background())
	assert.Equal(t, 2, m.FailureCount("g1"))

	fail = false
	m.cycle(context.Background())
	assert.Equal(t, 0, m.FailureCount("g1"))
}
