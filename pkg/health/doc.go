/*
Package health provides pluggable health check mechanisms used to probe
upstream gateways.

This package implements three checker strategies behind one interface: HTTP,
TCP, and Exec. gatefed's health-check loop (internal/health) uses
HTTPChecker exclusively, since a gateway is reached over HTTP; TCPChecker
and ExecChecker are kept as the same strategy family for completeness and
for any deployment that fronts a gateway with a bare TCP listener or a
local probe script.

# Checker Interface

	type Checker interface {
		Check(ctx context.Context) Result
		Type() CheckType
	}

Result reports success, a message, and how long the check took. Status
tracks consecutive failures/successes over time and implements hysteresis:
several failures are required before flipping to unhealthy, and the
StartPeriod field gives a newly registered gateway a grace period before
its first probe counts against it.

# HTTP Health Checks

	checker := health.NewHTTPChecker("https://gateway.example.com/health")
	checker.WithMethod("GET").
		WithHeader("Authorization", "Bearer "+token).
		WithStatusRange(200, 299).
		WithTimeout(5 * time.Second)

	result := checker.Check(ctx)
	if !result.Healthy {
		// internal/health increments the gateway's consecutive-failure count
	}

# Design Patterns

Strategy: HTTPChecker, TCPChecker, and ExecChecker all implement Checker,
so callers select a probe mechanism without branching on check type.

Builder: checkers expose fluent With* methods for optional configuration,
keeping constructors to a single required argument.

Hysteresis: Status.Update requires config.Retries consecutive failures
before reporting unhealthy, and a single success resets the streak —
this is what keeps a transient network blip from deactivating a gateway.

# See Also

  - internal/health - drives the periodic probe cycle against registered
    gateways and acts on consecutive failures
*/
package health
