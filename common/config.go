package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// DefaultTimeout is the per-request timeout enforced by the transport
	DefaultTimeout = 5 * time.Second
	// DefaultPollingInterval is the base interval between telemetry refreshes
	DefaultPollingInterval = 10 * time.Second
	// DefaultMaxRetries bounds the shared attempt counter
	DefaultMaxRetries = 10
	// StalenessWindow is the maximum age of the registry-wide telemetry
	// update before cached values are no longer trusted and a full reset is
	// forced
	StalenessWindow = 60 * time.Second
	// MaxJitter is the upper bound on the random delay added to each polling
	// timer so that timers sharing a base interval do not fire in the same
	// tick
	MaxJitter = 500 * time.Millisecond
)

// Default identity presented to the cloud service, matching the vendor's iOS
// application
const (
	DefaultAPIURL         = `https://api.latam.ecp.electrolux.com`
	DefaultAppVersion     = `4.0.2`
	DefaultClientID       = `e9c4ac73-e94e-4b37-b1fe-b956f568daa0`
	DefaultUserAgent      = `Frigidaire/81 CFNetwork/1121.2.2 Darwin/19.2.0`
	DefaultBasicAuthToken = `dXNlcjpwYXNz`
	DefaultCountry        = `US`
	DefaultBrand          = `Frigidaire`
)

// Config carries the construction-time configuration for a single client
// instance.  There is no process-wide state - every client owns its own copy.
type Config struct {
	// Username and Password are the cloud account credentials, required
	Username string `toml:"username"`
	Password string `toml:"password"`
	// APIURL is the service base URL
	APIURL string `toml:"api_url"`
	// ClientID, UserAgent, BasicAuthToken and AppVersion identify this
	// client software to the service
	ClientID       string `toml:"client_id"`
	UserAgent      string `toml:"user_agent"`
	BasicAuthToken string `toml:"basic_auth_token"`
	AppVersion     string `toml:"app_version"`
	// DeviceID is the per-install device fingerprint sent with every
	// authentication request, generated when empty
	DeviceID string `toml:"device_id"`
	Country  string `toml:"country"`
	Brand    string `toml:"brand"`
	// SessionKey restores a previously issued session, optional
	SessionKey string `toml:"session_key"`
	// PollingInterval is the base telemetry refresh interval
	PollingInterval time.Duration `toml:"polling_interval"`
	// MaxRetries bounds the shared attempt counter
	MaxRetries int `toml:"max_retries"`
	// DisableRoomTemp suppresses room temperature reads on hardware that
	// reports garbage for them
	DisableRoomTemp bool `toml:"disable_room_temp"`
}

// Validate checks that required credentials are present
func (c *Config) Validate() error {
	if c.Username == `` {
		return fmt.Errorf(`%w: username`, ErrConfiguration)
	}
	if c.Password == `` {
		return fmt.Errorf(`%w: password`, ErrConfiguration)
	}
	return nil
}

// ApplyDefaults fills any unset field with the vendor defaults and generates
// the device fingerprint when none was supplied
func (c *Config) ApplyDefaults() {
	if c.APIURL == `` {
		c.APIURL = DefaultAPIURL
	}
	if c.ClientID == `` {
		c.ClientID = DefaultClientID
	}
	if c.UserAgent == `` {
		c.UserAgent = DefaultUserAgent
	}
	if c.BasicAuthToken == `` {
		c.BasicAuthToken = DefaultBasicAuthToken
	}
	if c.AppVersion == `` {
		c.AppVersion = DefaultAppVersion
	}
	if c.Country == `` {
		c.Country = DefaultCountry
	}
	if c.Brand == `` {
		c.Brand = DefaultBrand
	}
	if c.DeviceID == `` {
		c.DeviceID = GenerateDeviceID()
	}
	if c.PollingInterval == 0 {
		c.PollingInterval = DefaultPollingInterval
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
}

// GenerateDeviceID produces a pseudo-random device fingerprint in the
// vendor's two-segment form: a two character hex prefix and a 34 character
// hex suffix
func GenerateDeviceID() string {
	return randomHex(2) + `-` + randomHex(34)
}

func randomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		Log.Errorf(`failed reading random bytes: %v`, err)
	}
	return hex.EncodeToString(buf)[:n]
}
