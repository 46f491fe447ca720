package ecp

import (
	"encoding/json"
	"fmt"

	"github.com/marekbrz/frigidaire/common"
)

const (
	statusSuccess = `SUCCESS`
	statusError   = `ERROR`

	// codeSessionExpired is returned by the service when our session key is
	// no longer valid
	codeSessionExpired = `ECP0105`
	// codeAuthRejected is returned by the authentication endpoint when the
	// account credentials are refused
	codeAuthRejected = `ECP0108`
	// codeUnknown is the local sentinel for bodies that fail to parse
	codeUnknown = `unknown`
)

// envelope is the common wrapper around every ECP response body
type envelope struct {
	Status  string          `json:"status"`
	Code    string          `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// parseEnvelope decodes a response body.  Bodies that fail to decode yield an
// error sentinel envelope rather than a parse error, so callers always branch
// on Status.
func parseEnvelope(body []byte) *envelope {
	if len(body) == 0 {
		common.Log.Debugf(`parseEnvelope() - empty body`)
		return &envelope{Status: statusError, Code: codeUnknown}
	}
	env := new(envelope)
	if err := json.Unmarshal(body, env); err != nil {
		common.Log.Errorf(`failed to parse response body %q: %v`, body, err)
		return &envelope{Status: statusError, Code: codeUnknown}
	}
	return env
}

// isError reports whether the service flagged this response as failed
func (e *envelope) isError() bool {
	return e.Status == statusError
}

// sessionExpired reports whether the service rejected our session key
func (e *envelope) sessionExpired() bool {
	return e.isError() && e.Code == codeSessionExpired
}

// err converts an error envelope into a Go error
func (e *envelope) err() error {
	return fmt.Errorf(`service error %s: %s`, e.Code, e.Message)
}
