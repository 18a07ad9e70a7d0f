// Package model holds the persisted domain shapes shared by the gateway
// registry and its store, so neither package has to import the other just
// to describe a row.
package model

import "time"

// Status is the structured liveness record for a Gateway or Tool. It
// replaces a prior single boolean is_active; Reachable is recorded for
// future health signals but not yet consulted by any decision.
type Status struct {
	Enabled   bool `json:"enabled"`
	Reachable bool `json:"reachable"`
}

// Gateway is a unit of federation: an upstream endpoint exposing a
// tool-invocation surface, discovered once at registration and probed
// periodically thereafter.
type Gateway struct {
	ID           string
	Name         string
	URL          string
	Description  string
	Capabilities map[string]any
	AuthType     string
	AuthValue    map[string]string
	Status       Status
	LastSeen     time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Tool is a callable surface exposed by a Gateway, learned via the upstream
// connector at registration or re-probe time.
type Tool struct {
	ID              string
	Name            string
	URL             string
	Description     string
	IntegrationType string
	RequestType     string
	Headers         map[string]string
	InputSchema     map[string]any
	JSONPathFilter  string
	AuthType        string
	AuthValue       map[string]string
	GatewayID       string
	Status          Status
}

// ToolDescriptor is what the upstream connector returns for a discovered
// tool, before it is attached to a gateway and assigned an ID.
type ToolDescriptor struct {
	Name            string
	Description     string
	IntegrationType string
	RequestType     string
	Headers         map[string]string
	InputSchema     map[string]any
	JSONPathFilter  string
}
