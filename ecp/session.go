package ecp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/marekbrz/frigidaire/common"
)

// authRequest is the body POSTed to the authentication endpoint
type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Brand    string `json:"brand"`
	DeviceID string `json:"deviceId"`
	Country  string `json:"country"`
}

// Session owns the authentication lifecycle and the current session key.
// Negotiation is single-flight: a mutex is held for the whole exchange, so a
// concurrent caller blocks until the in-flight negotiation finishes and then
// finds the fresh key instead of starting a duplicate one.
type Session struct {
	cfg       *common.Config
	transport common.Transport
	counter   *retryCounter

	mu  sync.Mutex
	key string
}

func newSession(cfg *common.Config, transport common.Transport, counter *retryCounter) *Session {
	return &Session{
		cfg:       cfg,
		transport: transport,
		counter:   counter,
		key:       cfg.SessionKey,
	}
}

// Key returns the current session key, empty when unauthenticated
func (s *Session) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// Invalidate discards the session key.  The next Ensure call re-authenticates.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.key = ``
	s.mu.Unlock()
}

// Ensure returns immediately when a session key is held, otherwise it
// negotiates one.  Exactly one authentication request is in flight at any
// time; callers arriving during a negotiation wait for its outcome.
func (s *Session) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != `` {
		return nil
	}
	return s.authenticate()
}

// authenticate performs the credential exchange.  Callers must hold s.mu.
func (s *Session) authenticate() error {
	// Missing credentials are fatal, never retried, and must not consume
	// any of the attempt budget
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	// Negotiation draws on the same attempt budget as ordinary requests
	if err := s.counter.bump(); err != nil {
		return err
	}

	body, err := json.Marshal(authRequest{
		Username: s.cfg.Username,
		Password: s.cfg.Password,
		Brand:    s.cfg.Brand,
		DeviceID: s.cfg.DeviceID,
		Country:  s.cfg.Country,
	})
	if err != nil {
		return err
	}

	common.Log.Debugf(`authenticating as %s`, s.cfg.Username)
	resp, err := s.transport.Do(&common.Request{
		Method:  http.MethodPost,
		URL:     s.cfg.APIURL + `/authentication/authenticate`,
		Headers: baseHeaders(s.cfg, ``),
		Body:    body,
		Timeout: common.DefaultTimeout,
	})
	if err != nil {
		return err
	}

	env := parseEnvelope(resp.Body)
	if env.isError() && env.Code == codeAuthRejected {
		return fmt.Errorf(`%w: %s %s`, common.ErrAuthFailed, env.Code, env.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return &common.StatusError{Code: resp.StatusCode, Message: resp.Status}
	}

	var data struct {
		SessionKey string `json:"sessionKey"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil || data.SessionKey == `` {
		return fmt.Errorf(`no session key in auth response %q`, resp.Body)
	}

	common.Log.Debugf(`acquired new session key`)
	s.key = data.SessionKey
	s.counter.reset()
	return nil
}

// baseHeaders builds the header set presented on every ECP request.  The
// session token is included only once a key is held.
func baseHeaders(cfg *common.Config, sessionKey string) map[string]string {
	headers := map[string]string{
		`x-ibm-client-id`: cfg.ClientID,
		`User-Agent`:      cfg.UserAgent,
		`Content-Type`:    `application/json`,
		`Authorization`:   `Basic ` + cfg.BasicAuthToken,
	}
	if sessionKey != `` {
		headers[`session_token`] = sessionKey
	}
	return headers
}
