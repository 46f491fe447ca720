package ecp

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/marekbrz/frigidaire/common"
)

// Registry holds the enumerated appliance list and each appliance's cached
// telemetry snapshot.  The list is populated lazily on first use and cached
// for the process lifetime; only a Reset (triggered by session invalidation
// or staleness) forces re-discovery.
type Registry struct {
	cfg     *common.Config
	gateway *Gateway

	mu         sync.RWMutex
	appliances []*common.Appliance
	lastUpdate time.Time

	// onStale performs the engine-level full reset when the cache outlives
	// the staleness window
	onStale func()

	// observer hooks for the client's event subscribers
	onNewAppliance     func(*common.Appliance)
	onTelemetryUpdated func(string, common.Telemetry)
}

func newRegistry(cfg *common.Config, gateway *Gateway) *Registry {
	return &Registry{
		cfg:     cfg,
		gateway: gateway,
	}
}

// Appliances returns the registered appliance list, enumerating it from the
// service the first time it is empty
func (r *Registry) Appliances() ([]*common.Appliance, error) {
	r.mu.RLock()
	cached := r.appliances
	r.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}
	return r.enumerate()
}

func (r *Registry) enumerate() ([]*common.Appliance, error) {
	common.Log.Debugf(`enumerating appliances for %s`, r.cfg.Username)

	body, err := r.gateway.Get(`/user-appliance-reg/users/`+url.PathEscape(r.cfg.Username)+`/appliances`, nil)
	if err != nil {
		return nil, err
	}

	env := parseEnvelope(body)
	if env.isError() {
		return nil, env.err()
	}

	var appliances []*common.Appliance
	if err := json.Unmarshal(env.Data, &appliances); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.appliances = appliances
	r.mu.Unlock()

	common.Log.Debugf(`found %d appliance(s)`, len(appliances))
	if r.onNewAppliance != nil {
		for _, app := range appliances {
			r.onNewAppliance(app)
		}
	}
	return appliances, nil
}

// Find looks up an appliance by serial number.  An empty serial selects the
// first appliance, the convention for single-appliance accounts.
func (r *Registry) Find(serial string) (*common.Appliance, error) {
	appliances, err := r.Appliances()
	if err != nil {
		return nil, err
	}
	if len(appliances) == 0 {
		return nil, common.ErrNotFound
	}
	if serial == `` {
		return appliances[0], nil
	}
	for _, app := range appliances {
		if app.SerialNumber == serial {
			return app, nil
		}
	}
	common.Log.Debugf(`no appliance found for serial %s, check the configured serial number`, serial)
	return nil, common.ErrNotFound
}

// RefreshTelemetry fetches the latest attribute snapshot for one appliance
// and replaces its cached telemetry wholesale.  When the registry-wide cache
// has outlived the staleness window, the engine is reset instead and the call
// is abandoned; the next operation re-discovers from scratch.
func (r *Registry) RefreshTelemetry(serial string) (common.Telemetry, error) {
	r.mu.RLock()
	last := r.lastUpdate
	r.mu.RUnlock()
	if !last.IsZero() && time.Since(last) > common.StalenessWindow {
		common.Log.Warnf(`telemetry cache exceeded staleness window %v, forcing full reset`, common.StalenessWindow)
		if r.onStale != nil {
			r.onStale()
		}
		return nil, common.ErrSessionExpired
	}

	app, err := r.Find(serial)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set(`pnc`, app.PNC)
	query.Set(`elc`, app.ELC)
	query.Set(`sn`, app.SerialNumber)
	query.Set(`mac`, app.MAC)

	body, err := r.gateway.Get(`/elux-ms/appliances/latest`, query)
	if err != nil {
		return nil, err
	}

	env := parseEnvelope(body)
	if env.isError() {
		return nil, env.err()
	}

	var telemetry common.Telemetry
	if err := json.Unmarshal(env.Data, &telemetry); err != nil {
		return nil, err
	}

	r.mu.Lock()
	app.Telemetry = telemetry
	app.LastRefreshed = time.Now()
	r.lastUpdate = time.Now()
	r.mu.Unlock()

	if r.onTelemetryUpdated != nil {
		r.onTelemetryUpdated(app.SerialNumber, telemetry)
	}
	return telemetry, nil
}

// TelemetryPopulated reports whether every known appliance has a telemetry
// snapshot.  Attribute reads and writes must not trust the cache before this
// holds.
func (r *Registry) TelemetryPopulated() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.appliances == nil {
		common.Log.Debugf(`telemetryPopulated() - no appliance list`)
		return false
	}
	for _, app := range r.appliances {
		if app.Telemetry == nil {
			common.Log.Debugf(`telemetryPopulated() - missing telemetry for appliance %s`, app.SerialNumber)
			return false
		}
	}
	return true
}

// Reset discards the appliance list and telemetry cache, forcing
// re-enumeration on the next operation
func (r *Registry) Reset() {
	r.mu.Lock()
	r.appliances = nil
	r.lastUpdate = time.Time{}
	r.mu.Unlock()
}
