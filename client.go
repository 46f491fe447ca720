package frigidaire

import (
	"math"
	"sync"

	"github.com/marekbrz/frigidaire/common"
	"github.com/marekbrz/frigidaire/ecp"
)

// Client provides a simple interface for interacting with Frigidaire
// appliances.  Client can not be instantiated manually or it will not
// function - always use NewClient() to obtain a Client instance.
//
// All attribute accessors are thin call-throughs to the engine's generic
// read/write primitives, supplying only the attribute code and any
// value-shape quirk.
type Client struct {
	cfg           *common.Config
	engine        *ecp.Engine
	subscriptions map[string]*common.Subscription
	closed        bool
	sync.RWMutex
}

// discover performs the initial enumeration and telemetry fetch.  Quietly
// abandoned calls are not treated as fatal here - the polling cycle picks
// them up.
func (c *Client) discover() error {
	appliances, err := c.engine.Registry().Appliances()
	if err != nil {
		return err
	}
	for _, app := range appliances {
		if _, err := c.engine.Registry().RefreshTelemetry(app.SerialNumber); err != nil {
			common.Log.Warnf(`initial telemetry fetch for %s failed: %v`, app.SerialNumber, err)
		}
	}
	return nil
}

// Appliances returns all appliances registered to the account
func (c *Client) Appliances() ([]*common.Appliance, error) {
	return c.engine.Registry().Appliances()
}

// Appliance looks up an appliance by serial number.  An empty serial selects
// the first appliance.
func (c *Client) Appliance(serial string) (*common.Appliance, error) {
	return c.engine.Registry().Find(serial)
}

// TelemetryPopulated reports whether every appliance has a telemetry
// snapshot.  Attribute accessors fail with common.ErrTelemetryNotReady until
// this holds.
func (c *Client) TelemetryPopulated() bool {
	return c.engine.Registry().TelemetryPopulated()
}

// Refresh fetches fresh telemetry for the appliance immediately, outside the
// polling schedule
func (c *Client) Refresh(serial string) error {
	_, err := c.engine.Registry().RefreshTelemetry(serial)
	return err
}

// StartPolling begins the recurring telemetry refresh for every known
// appliance, at the configured interval plus per-timer jitter
func (c *Client) StartPolling() error {
	appliances, err := c.engine.Registry().Appliances()
	if err != nil {
		return err
	}
	for _, app := range appliances {
		c.engine.Scheduler().Start(app.SerialNumber)
	}
	return nil
}

// StopPolling cancels all polling timers
func (c *Client) StopPolling() {
	c.engine.Scheduler().StopAll()
}

// HasAttribute reports whether the appliance's telemetry carries the given
// vendor attribute code
func (c *Client) HasAttribute(serial, code string) bool {
	return c.engine.HasAttribute(serial, code)
}

// ReadAttribute reads the numeric value of any vendor attribute code from
// cached telemetry
func (c *Client) ReadAttribute(serial, code string) (float64, error) {
	return c.engine.ReadAttribute(serial, code)
}

// WriteAttribute sends a command setting any vendor attribute code, returning
// the service's raw response body
func (c *Client) WriteAttribute(serial, code string, value interface{}) ([]byte, error) {
	if !c.engine.Registry().TelemetryPopulated() {
		return nil, common.ErrTelemetryNotReady
	}
	app, err := c.engine.Registry().Find(serial)
	if err != nil {
		return nil, err
	}
	return c.engine.WriteAttribute(app, code, value)
}

// GetMode returns the appliance's operating mode, one of the Mode* constants
func (c *Client) GetMode(serial string) (int, error) {
	return c.readInt(serial, common.AttrMode)
}

// SetMode changes the appliance's operating mode
func (c *Client) SetMode(serial string, mode int) error {
	_, err := c.WriteAttribute(serial, common.AttrMode, mode)
	return err
}

// GetCoolingState returns whether the compressor is currently running
func (c *Client) GetCoolingState(serial string) (int, error) {
	return c.readInt(serial, common.AttrCoolingState)
}

// GetFanMode returns the fan speed, one of the Fan* constants
func (c *Client) GetFanMode(serial string) (int, error) {
	return c.readInt(serial, common.AttrFanMode)
}

// SetFanMode changes the fan speed
func (c *Client) SetFanMode(serial string, mode int) error {
	_, err := c.WriteAttribute(serial, common.AttrFanMode, mode)
	return err
}

// GetTemp returns the target temperature setpoint
func (c *Client) GetTemp(serial string) (float64, error) {
	return c.engine.ReadAttribute(serial, common.AttrSetpoint)
}

// SetTemp changes the target temperature setpoint, rounded to the nearest
// whole degree as the service requires
func (c *Client) SetTemp(serial string, temp float64) error {
	_, err := c.WriteAttribute(serial, common.AttrSetpoint, int(math.Round(temp)))
	return err
}

// GetRoomTemp returns the measured room temperature.  Returns zero without
// error when room temperature reads are disabled in the configuration, as
// some hardware reports garbage for this attribute.
func (c *Client) GetRoomTemp(serial string) (float64, error) {
	if c.cfg.DisableRoomTemp {
		return 0, nil
	}
	return c.engine.ReadAttribute(serial, common.AttrTemp)
}

// GetUnit returns the configured temperature unit, Celsius or Fahrenheit
func (c *Client) GetUnit(serial string) (int, error) {
	return c.readInt(serial, common.AttrUnit)
}

// ChangeUnits switches the appliance between Celsius and Fahrenheit
func (c *Client) ChangeUnits(serial string, unit int) error {
	_, err := c.WriteAttribute(serial, common.AttrUnit, unit)
	return err
}

// GetCleanAir returns the clean air (ionizer) state.  Appliances without the
// capability simply lack the attribute; those report CleanAirOff rather than
// an error.
func (c *Client) GetCleanAir(serial string) (int, error) {
	if !c.TelemetryPopulated() {
		return 0, common.ErrTelemetryNotReady
	}
	// an unknown appliance is an error, only an absent attribute defaults
	if _, err := c.engine.Registry().Find(serial); err != nil {
		return 0, err
	}
	if !c.HasAttribute(serial, common.AttrCleanAir) {
		common.Log.Debugf(`no clean air attribute on %s, reporting off`, serial)
		return common.CleanAirOff, nil
	}
	return c.readInt(serial, common.AttrCleanAir)
}

// SetCleanAir changes the clean air state.  A no-op on appliances without
// the capability.
func (c *Client) SetCleanAir(serial string, mode int) error {
	if !c.TelemetryPopulated() {
		return common.ErrTelemetryNotReady
	}
	if _, err := c.engine.Registry().Find(serial); err != nil {
		return err
	}
	if !c.HasAttribute(serial, common.AttrCleanAir) {
		common.Log.Debugf(`no clean air attribute on %s, skipping`, serial)
		return nil
	}
	_, err := c.WriteAttribute(serial, common.AttrCleanAir, mode)
	return err
}

// GetFilter returns the filter status.  Appliances that do not report filter
// health report FilterGood rather than an error.
func (c *Client) GetFilter(serial string) (int, error) {
	if !c.TelemetryPopulated() {
		return 0, common.ErrTelemetryNotReady
	}
	if _, err := c.engine.Registry().Find(serial); err != nil {
		return 0, err
	}
	if !c.HasAttribute(serial, common.AttrFilter) {
		common.Log.Debugf(`no filter attribute on %s, reporting good`, serial)
		return common.FilterGood, nil
	}
	return c.readInt(serial, common.AttrFilter)
}

func (c *Client) readInt(serial, code string) (int, error) {
	value, err := c.engine.ReadAttribute(serial, code)
	if err != nil {
		return 0, err
	}
	return int(value), nil
}

// NewSubscription returns a new *common.Subscription for receiving events
// from this client
func (c *Client) NewSubscription() (*common.Subscription, error) {
	c.RLock()
	closed := c.closed
	c.RUnlock()
	if closed {
		return nil, common.ErrClosed
	}
	sub := common.NewSubscription(c)
	c.Lock()
	c.subscriptions[sub.ID()] = sub
	c.Unlock()
	return sub, nil
}

// CloseSubscription is a callback for handling the closing of subscriptions
func (c *Client) CloseSubscription(sub *common.Subscription) error {
	c.RLock()
	_, ok := c.subscriptions[sub.ID()]
	c.RUnlock()
	if !ok {
		return common.ErrNotFound
	}
	c.Lock()
	delete(c.subscriptions, sub.ID())
	c.Unlock()
	return nil
}

// publish pushes an event to all subscribers
func (c *Client) publish(event interface{}) {
	c.RLock()
	subs := make(map[string]*common.Subscription, len(c.subscriptions))
	for id, sub := range c.subscriptions {
		subs[id] = sub
	}
	c.RUnlock()

	for _, sub := range subs {
		if err := sub.Write(event); err != nil {
			common.Log.Warnf(`failed publishing event to subscription %s: %v`, sub.ID(), err)
		}
	}
}

// Close signals the termination of this client, stops all polling timers and
// cleans up resources
func (c *Client) Close() error {
	c.Lock()
	if c.closed {
		c.Unlock()
		return common.ErrClosed
	}
	c.closed = true
	subs := make([]*common.Subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, sub)
	}
	c.Unlock()

	// Stop the polling timers before tearing down subscriptions, so an
	// in-flight tick cannot publish to a closed subscription
	if err := c.engine.Close(); err != nil {
		return err
	}
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			common.Log.Warnf(`failed closing subscription %s: %v`, sub.ID(), err)
		}
	}
	return nil
}
