// Package log provides structured JSON/console logging for gatefed, built on
// zerolog. Initialize once via log.Init, then derive component loggers with
// log.WithComponent or the domain-specific helpers (WithGatewayID, WithToolID).
package log
