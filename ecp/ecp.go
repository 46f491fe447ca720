// Package ecp implements the Electrolux Connectivity Platform cloud protocol
// used by Frigidaire appliances.
//
// This package is not designed to be accessed by end users, all interaction
// should occur via the Client in the frigidaire package.
package ecp

import (
	"github.com/marekbrz/frigidaire/common"
)

// Engine ties the protocol components together for a single client instance:
// the session manager, request gateway, appliance registry and polling
// scheduler all share one configuration, one transport and one attempt
// counter.
type Engine struct {
	cfg       *common.Config
	session   *Session
	gateway   *Gateway
	registry  *Registry
	scheduler *Scheduler
}

// New wires up a protocol engine from the supplied configuration and
// transport.  Defaults are applied to the configuration, including device
// fingerprint generation.  Credentials are not validated until the first
// authentication attempt.
func New(cfg *common.Config, transport common.Transport) *Engine {
	cfg.ApplyDefaults()

	counter := newRetryCounter(cfg.MaxRetries)
	session := newSession(cfg, transport, counter)
	gateway := newGateway(cfg, transport, session, counter)
	registry := newRegistry(cfg, gateway)
	scheduler := newScheduler(registry, cfg.PollingInterval)

	e := &Engine{
		cfg:       cfg,
		session:   session,
		gateway:   gateway,
		registry:  registry,
		scheduler: scheduler,
	}

	// A session-invalid response anywhere forces full re-discovery
	gateway.onSessionExpired = e.reset
	registry.onStale = e.reset

	return e
}

// Session returns the engine's session manager
func (e *Engine) Session() *Session {
	return e.session
}

// Gateway returns the engine's request gateway
func (e *Engine) Gateway() *Gateway {
	return e.gateway
}

// Registry returns the engine's appliance registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Scheduler returns the engine's polling scheduler
func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// OnSessionExpired registers a callback fired after the engine discards its
// session and registry state
func (e *Engine) OnSessionExpired(fn func()) {
	e.gateway.onExpiredNotify = fn
}

// OnNewAppliance registers a callback fired for each appliance found during
// enumeration
func (e *Engine) OnNewAppliance(fn func(*common.Appliance)) {
	e.registry.onNewAppliance = fn
}

// OnTelemetryUpdated registers a callback fired after each successful
// telemetry refresh
func (e *Engine) OnTelemetryUpdated(fn func(string, common.Telemetry)) {
	e.registry.onTelemetryUpdated = fn
}

// reset discards the session key and all cached appliance state, forcing
// authentication and enumeration on the next operation
func (e *Engine) reset() {
	common.Log.Debugf(`resetting session and appliance registry`)
	e.session.Invalidate()
	e.registry.Reset()
}

// Close stops all polling timers.  The engine may not be reused afterwards.
func (e *Engine) Close() error {
	e.scheduler.StopAll()
	return nil
}
