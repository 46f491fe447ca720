// Copyright 2024 marekbrz
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE file

// Package frigidaire provides a simple Go interface to the Frigidaire cloud
// appliance API.
//
// Also included in cmd/frigidaire is a small CLI utility that allows
// interacting with your registered appliances.
package frigidaire

import (
	"github.com/marekbrz/frigidaire/common"
	"github.com/marekbrz/frigidaire/ecp"
)

const (
	// VERSION of this library
	VERSION = `0.0.1`
)

// NewClient returns a pointer to a new Client and any error that occurred
// during the initial appliance discovery, using the default HTTP transport.
func NewClient(cfg *common.Config) (*Client, error) {
	return NewClientWithTransport(cfg, ecp.NewHTTPTransport())
}

// NewClientWithTransport returns a pointer to a new Client backed by the
// supplied transport, and any error that occurred during the initial
// appliance discovery.  Intended for tests and callers with bespoke HTTP
// needs.
func NewClientWithTransport(cfg *common.Config, transport common.Transport) (*Client, error) {
	c := &Client{
		cfg:           cfg,
		engine:        ecp.New(cfg, transport),
		subscriptions: make(map[string]*common.Subscription),
	}
	c.engine.OnNewAppliance(func(app *common.Appliance) {
		c.publish(common.EventNewAppliance{Appliance: app})
	})
	c.engine.OnTelemetryUpdated(func(serial string, telemetry common.Telemetry) {
		c.publish(common.EventTelemetryUpdated{SerialNumber: serial, Telemetry: telemetry})
	})
	c.engine.OnSessionExpired(func() {
		c.publish(common.EventSessionExpired{})
	})
	err := c.discover()
	return c, err
}

// SetLogger allows assigning a custom levelled logger that conforms to the
// common.Logger interface.  To capture logs generated during client creation,
// this should be called before creating a Client.  Defaults to
// common.StubLogger, which does no logging at all.
func SetLogger(logger common.Logger) {
	common.SetLogger(logger)
}
