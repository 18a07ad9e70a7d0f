package gateway

import "github.com/toolmesh/gatefed/internal/model"

// Status, Gateway, Tool, and ToolDescriptor are the persisted domain shapes.
// They live in internal/model so internal/store can describe its rows
// without importing this package back; callers keep using them as
// gateway.Status/Gateway/Tool/ToolDescriptor via these aliases.
type Status = model.Status
type Gateway = model.Gateway
type Tool = model.Tool
type ToolDescriptor = model.ToolDescriptor

// RegisterInput is the payload accepted by Registry.Register.
type RegisterInput struct {
	Name        string
	URL         string
	Description string
	AuthType    string
	AuthValue   map[string]string
}

// UpdatePatch carries only the fields the caller wants to change; a nil
// pointer or entry means "leave unchanged".
type UpdatePatch struct {
	Name        *string
	URL         *string
	Description *string
	AuthType    *string
	AuthValue   map[string]string
}
