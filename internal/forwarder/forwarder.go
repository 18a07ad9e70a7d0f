// Package forwarder sends JSON-RPC calls to a gateway's /rpc endpoint on
// behalf of the control plane (C7).
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/toolmesh/gatefed/internal/gateway"
)

// Credentials are the process-level service credentials the forwarder
// presents upstream. These identify the local control plane, not the
// gateway's own stored auth (used only by the connector and health probe).
type Credentials struct {
	BasicAuthUser     string
	BasicAuthPassword string
}

// SeenMarker records a successful forward against the registry. last_seen
// updates on the hot path may be coalesced; callers that do not need this
// may pass nil.
type SeenMarker interface {
	MarkSeen(ctx context.Context, id string)
}

// Forwarder implements the Request Forwarder component.
type Forwarder struct {
	client      *http.Client
	credentials Credentials
	marker      SeenMarker
}

// New builds a Forwarder. client must not be nil; marker may be nil.
func New(client *http.Client, credentials Credentials, marker SeenMarker) *Forwarder {
	return &Forwarder{client: client, credentials: credentials, marker: marker}
}

type rpcError struct {
	Message string `json:"message"`
}

type rpcResponse struct {
	Result any       `json:"result"`
	Error  *rpcError `json:"error"`
}

// Forward sends method/params to gw as a JSON-RPC 2.0 envelope. Disabled
// gateways are rejected without any outbound request (P9). The call uses a
// hardcoded request id of 1, matching this being a one-shot, non-pipelined
// forward rather than a multiplexed session.
func (f *Forwarder) Forward(ctx context.Context, gw gateway.Gateway, method string, params any) (any, error) {
	if !gw.Status.Enabled {
		return nil, &gateway.ForwardingRejectedError{GatewayID: gw.ID}
	}

	envelope := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
	}
	if params != nil {
		envelope["params"] = params
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("forwarder: marshal envelope: %w", err)
	}

	url := strings.TrimRight(gw.URL, "/") + "/rpc"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &gateway.UpstreamUnavailableError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	token := f.credentials.BasicAuthUser + ":" + f.credentials.BasicAuthPassword
	req.Header.Set("Authorization", "Basic "+token)
	req.Header.Set("X-API-Key", token)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &gateway.UpstreamUnavailableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &gateway.UpstreamUnavailableError{URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}
	if decoded.Error != nil {
		return nil, &gateway.UpstreamError{Message: decoded.Error.Message}
	}

	if f.marker != nil {
		f.marker.MarkSeen(ctx, gw.ID)
	}
	return decoded.Result, nil
}
