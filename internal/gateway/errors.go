package gateway

import "fmt"

// NotFoundError is raised when a gateway id is absent, or present but
// disabled and the caller did not ask for inactive gateways.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("gateway not found: %s", e.ID)
}

// NameConflictError is raised on a unique-name violation, carrying enough of
// the existing row for the caller to decide how to proceed.
type NameConflictError struct {
	Name            string
	ExistingID      string
	ExistingEnabled bool
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("gateway name %q already registered (id=%s, enabled=%v)", e.Name, e.ExistingID, e.ExistingEnabled)
}

// UpstreamUnavailableError wraps a transport or protocol failure reaching a
// gateway, whether during discovery or forwarding.
type UpstreamUnavailableError struct {
	URL string
	Err error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable at %s: %v", e.URL, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// UpstreamError is raised when a gateway answers but its response carries a
// protocol-level error envelope.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s", e.Message)
}

// ForwardingRejectedError is raised when a forward is attempted against a
// disabled gateway.
type ForwardingRejectedError struct {
	GatewayID string
}

func (e *ForwardingRejectedError) Error() string {
	return fmt.Sprintf("forwarding rejected: gateway %s is disabled", e.GatewayID)
}

// ConfigurationError signals invalid or missing configuration discovered at
// startup or during a leader-election transition (e.g. an unreachable raft
// peer set).
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
