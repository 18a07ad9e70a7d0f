// Package api exposes the federation service's operational HTTP surface:
// /health, /ready, and /metrics. Gateway and tool operations are library
// calls (internal/gateway, internal/forwarder); neither this package nor
// cmd/gatefed serves them over HTTP.
package api
