package common

// EventNewAppliance is emitted by a Client when appliance enumeration finds a
// new appliance
type EventNewAppliance struct {
	Appliance *Appliance
}

// EventTelemetryUpdated is emitted by a Client after a successful telemetry
// refresh for an appliance
type EventTelemetryUpdated struct {
	SerialNumber string
	Telemetry    Telemetry
}

// EventSessionExpired is emitted by a Client when the service invalidates the
// current session and a full re-discovery is forced
type EventSessionExpired struct{}
