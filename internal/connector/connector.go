// Package connector opens a one-shot streaming session to an upstream
// gateway and returns the capabilities and tool descriptors it advertises.
package connector

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolmesh/gatefed/internal/auth"
	"github.com/toolmesh/gatefed/internal/gateway"
	"github.com/toolmesh/gatefed/pkg/log"
)

const clientName = "gatefed"
const clientVersion = "1.0.0"
const protocolVersion = "2024-11-05"

// Connector probes upstream gateways over the MCP streaming transport.
type Connector struct{}

// New returns a Connector ready to probe gateways.
func New() *Connector {
	return &Connector{}
}

// Probe opens a session to url, performs the protocol handshake, lists the
// gateway's tools, and returns its capability map and tool descriptors. The
// underlying client and transport are closed on every exit path. Any
// transport or protocol failure is wrapped as UpstreamUnavailableError.
func (c *Connector) Probe(ctx context.Context, url string, authType string, authValue map[string]string) (map[string]any, []gateway.ToolDescriptor, error) {
	headers, err := auth.Encode(authType, authValue)
	if err != nil {
		return nil, nil, &gateway.UpstreamUnavailableError{URL: url, Err: err}
	}

	var opts []transport.ClientOption
	if len(headers) > 0 {
		flat := make(map[string]string, len(headers))
		for k := range headers {
			flat[k] = headers.Get(k)
		}
		opts = append(opts, transport.WithHeaders(flat))
	}

	mcpClient, err := client.NewSSEMCPClient(url, opts...)
	if err != nil {
		return nil, nil, &gateway.UpstreamUnavailableError{URL: url, Err: fmt.Errorf("create client: %w", err)}
	}
	defer mcpClient.Close()

	if err := mcpClient.Start(ctx); err != nil {
		return nil, nil, &gateway.UpstreamUnavailableError{URL: url, Err: fmt.Errorf("start transport: %w", err)}
	}

	initResult, err := mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: protocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    clientName,
				Version: clientVersion,
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		return nil, nil, &gateway.UpstreamUnavailableError{URL: url, Err: fmt.Errorf("initialize: %w", err)}
	}

	toolsResult, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, nil, &gateway.UpstreamUnavailableError{URL: url, Err: fmt.Errorf("list_tools: %w", err)}
	}

	capabilities := capabilitiesOf(initResult)
	descriptors := make([]gateway.ToolDescriptor, 0, len(toolsResult.Tools))
	for _, t := range toolsResult.Tools {
		descriptors = append(descriptors, gateway.ToolDescriptor{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: schemaToMap(t.InputSchema),
		})
	}

	log.WithComponent("connector").Debug().
		Str("url", url).
		Int("tool_count", len(descriptors)).
		Msg("probe succeeded")

	return capabilities, descriptors, nil
}

// capabilitiesOf folds the server's declared capabilities and identity into
// a plain map, recording the upstream implementation under "server" so the
// registry can surface it without a second round trip.
func capabilitiesOf(res *mcp.InitializeResult) map[string]any {
	caps := map[string]any{
		"server": map[string]any{
			"name":    res.ServerInfo.Name,
			"version": res.ServerInfo.Version,
		},
	}
	if res.Capabilities.Tools != nil {
		caps["tools"] = map[string]any{"listChanged": res.Capabilities.Tools.ListChanged}
	}
	if res.Capabilities.Resources != nil {
		caps["resources"] = map[string]any{
			"subscribe":   res.Capabilities.Resources.Subscribe,
			"listChanged": res.Capabilities.Resources.ListChanged,
		}
	}
	if res.Capabilities.Prompts != nil {
		caps["prompts"] = map[string]any{"listChanged": res.Capabilities.Prompts.ListChanged}
	}
	if res.Capabilities.Logging != nil {
		caps["logging"] = map[string]any{}
	}
	return caps
}

func schemaToMap(schema mcp.ToolInputSchema) map[string]any {
	out := map[string]any{
		"type": schema.Type,
	}
	if schema.Properties != nil {
		out["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}
