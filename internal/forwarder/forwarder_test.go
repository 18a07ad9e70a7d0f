package forwarder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolmesh/gatefed/internal/forwarder"
	"github.com/toolmesh/gatefed/internal/gateway"
)

type fakeMarker struct {
	mu   sync.Mutex
	seen []string
}

func (f *fakeMarker) MarkSeen(ctx context.Context, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
}

func TestForwardRejectsDisabledGatewayWithoutHTTPCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	f := forwarder.New(srv.Client(), forwarder.Credentials{}, nil)
	gw := gateway.Gateway{ID: "g1", URL: srv.URL, Status: gateway.Status{Enabled: false}}

	_, err := f.Forward(context.Background(), gw, "tools/list", nil)

	var rejected *gateway.ForwardingRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "g1", rejected.GatewayID)
	assert.False(t, called, "forward must not issue any request for a disabled gateway")
}

func TestForwardSendsEnvelopeAndMarksSeen(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	var gotAuth, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"ok": true}})
	}))
	defer srv.Close()

	marker := &fakeMarker{}
	f := forwarder.New(srv.Client(), forwarder.Credentials{BasicAuthUser: "svc", BasicAuthPassword: "secret"}, marker)
	gw := gateway.Gateway{ID: "g1", URL: srv.URL, Status: gateway.Status{Enabled: true}}

	result, err := f.Forward(context.Background(), gw, "tools/call", map[string]any{"name": "search"})
	require.NoError(t, err)

	assert.Equal(t, "/rpc", gotPath)
	assert.Equal(t, "2.0", gotBody["jsonrpc"])
	assert.Equal(t, float64(1), gotBody["id"])
	assert.Equal(t, "tools/call", gotBody["method"])
	assert.Equal(t, map[string]any{"ok": true}, result)
	assert.Equal(t, []string{"g1"}, marker.seen)

	// Authorization and X-API-Key carry the literal "user:password" string,
	// not a base64-encoded credential, per spec.md §6.
	assert.Equal(t, "Basic svc:secret", gotAuth)
	assert.Equal(t, "svc:secret", gotAPIKey)
}

func TestForwardWrapsTransportFailure(t *testing.T) {
	f := forwarder.New(http.DefaultClient, forwarder.Credentials{}, nil)
	gw := gateway.Gateway{ID: "g1", URL: "http://127.0.0.1:1", Status: gateway.Status{Enabled: true}}

	_, err := f.Forward(context.Background(), gw, "tools/list", nil)

	var unavailable *gateway.UpstreamUnavailableError
	require.ErrorAs(t, err, &unavailable)
}

func TestForwardWrapsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "tool not found"}})
	}))
	defer srv.Close()

	f := forwarder.New(srv.Client(), forwarder.Credentials{}, nil)
	gw := gateway.Gateway{ID: "g1", URL: srv.URL, Status: gateway.Status{Enabled: true}}

	_, err := f.Forward(context.Background(), gw, "tools/call", nil)

	var upstreamErr *gateway.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "tool not found", upstreamErr.Message)
}
