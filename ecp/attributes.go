package ecp

import (
	"fmt"
	"time"

	"github.com/marekbrz/frigidaire/common"
)

// Fixed identity fields of the command envelope, a protocol constant of the
// vendor API
const (
	commandSource        = `RP1`
	commandDestination   = `AC1`
	commandOperationMode = `EXE`
	commandVersion       = `ad`
)

type commandComponent struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

type commandEnvelope struct {
	Timestamp     int64              `json:"timestamp"`
	Source        string             `json:"source"`
	Components    []commandComponent `json:"components"`
	OperationMode string             `json:"operationMode"`
	Destination   string             `json:"destination"`
	Version       string             `json:"version"`
}

// ReadAttribute looks up an attribute by vendor code in the appliance's
// cached telemetry.  The setpoint and measured temperature codes are
// composite: their numeric value lives at a fixed index inside the nested
// container list rather than in the top-level numeric field.
func (e *Engine) ReadAttribute(serial, code string) (float64, error) {
	if !e.registry.TelemetryPopulated() {
		return 0, common.ErrTelemetryNotReady
	}

	app, err := e.registry.Find(serial)
	if err != nil {
		return 0, err
	}

	e.registry.mu.RLock()
	attr, ok := app.Telemetry.Get(code)
	e.registry.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf(`%w: %s on appliance %s`, common.ErrAttributeNotFound, code, app.SerialNumber)
	}

	if code == common.AttrTemp || code == common.AttrSetpoint {
		if len(attr.Containers) < 2 {
			return 0, fmt.Errorf(`%w: %s has no container value`, common.ErrAttributeNotFound, code)
		}
		return attr.Containers[1].NumberValue, nil
	}
	return attr.NumberValue, nil
}

// HasAttribute reports whether the appliance's telemetry carries the given
// code.  Some attributes (clean air, filter status) are simply absent on
// hardware without the capability.
func (e *Engine) HasAttribute(serial, code string) bool {
	app, err := e.registry.Find(serial)
	if err != nil {
		return false
	}
	e.registry.mu.RLock()
	defer e.registry.mu.RUnlock()
	if app.Telemetry == nil {
		return false
	}
	_, ok := app.Telemetry.Get(code)
	return ok
}

// WriteAttribute builds a command envelope for the attribute and dispatches
// it to the appliance via the command endpoint, returning the raw response
// body.  The setpoint code requires the vendor's fixed four-component
// container shape; every other code sends a single name/value component.
func (e *Engine) WriteAttribute(app *common.Appliance, code string, value interface{}) ([]byte, error) {
	components := []commandComponent{{Name: code, Value: value}}
	if code == common.AttrSetpoint {
		components = []commandComponent{
			{Name: code, Value: `Container`},
			{Name: `1`, Value: value},
			{Name: `3`, Value: 0},
			{Name: `0`, Value: 1},
		}
	}

	body := commandEnvelope{
		Timestamp:     time.Now().Unix(),
		Source:        commandSource,
		Components:    components,
		OperationMode: commandOperationMode,
		Destination:   commandDestination,
		Version:       commandVersion,
	}

	return e.gateway.Post(app, `/commander/remote/sendjson`, nil, body)
}
