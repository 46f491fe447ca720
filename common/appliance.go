package common

import "time"

// Appliance represents a single registered appliance as returned by the
// appliance registry endpoint, plus the engine's cached view of its state.
// Appliances are owned exclusively by the device registry; telemetry is
// replaced wholesale on each successful refresh, never merged.
type Appliance struct {
	// SerialNumber is the unique key for an appliance
	SerialNumber string `json:"sn"`
	// PNC is the vendor product number code
	PNC string `json:"pnc"`
	// ELC is the vendor equipment line code
	ELC string `json:"elc"`
	// MAC is the appliance's network hardware address
	MAC string `json:"mac"`
	// Nickname is the user-assigned label, when one is set
	Nickname string `json:"nickname,omitempty"`

	// Telemetry is the last fetched attribute snapshot, nil until the first
	// successful refresh
	Telemetry Telemetry `json:"-"`
	// LastRefreshed is the time of the last successful telemetry refresh,
	// zero until the first one
	LastRefreshed time.Time `json:"-"`
}

// Telemetry is the ordered attribute list fetched from the telemetry endpoint
type Telemetry []Attribute

// Get looks up an attribute by its vendor code
func (t Telemetry) Get(code string) (Attribute, bool) {
	for _, attr := range t {
		if attr.HaclCode == code {
			return attr, true
		}
	}
	return Attribute{}, false
}

// Attribute is a single appliance property reading.  Composite attributes
// (setpoint, measured temperature) carry their numeric value nested in
// Containers rather than in NumberValue.
type Attribute struct {
	HaclCode    string      `json:"haclCode"`
	NumberValue float64     `json:"numberValue"`
	Containers  []Container `json:"containers,omitempty"`
}

// Container is a sub-value of a composite attribute
type Container struct {
	PropertyName string  `json:"propertyName,omitempty"`
	NumberValue  float64 `json:"numberValue"`
}
