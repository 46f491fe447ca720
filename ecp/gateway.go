package ecp

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync"

	"github.com/marekbrz/frigidaire/common"
)

// Gateway wraps every outbound call in verb serialization, retry accounting
// and response classification.  Each verb is genuinely serialized through its
// own mutex, so overlapping polls and commands queue instead of racing.
//
// Transport failures are swallowed quietly: the call returns
// common.ErrAbandoned and the next poll cycle retries, rather than surfacing
// a transient network blip to every caller.  A session-invalid response
// clears the session and registry so the next operation re-discovers from
// scratch.
type Gateway struct {
	cfg       *common.Config
	transport common.Transport
	session   *Session
	counter   *retryCounter

	getMu  sync.Mutex
	postMu sync.Mutex

	// onSessionExpired performs the engine-level reset; onExpiredNotify is
	// an optional observer hook for the client's event subscribers
	onSessionExpired func()
	onExpiredNotify  func()
}

func newGateway(cfg *common.Config, transport common.Transport, session *Session, counter *retryCounter) *Gateway {
	return &Gateway{
		cfg:       cfg,
		transport: transport,
		session:   session,
		counter:   counter,
	}
}

// Get issues a serialized GET against the service, authenticating first when
// no session key is held
func (g *Gateway) Get(path string, query url.Values) ([]byte, error) {
	g.getMu.Lock()
	defer g.getMu.Unlock()

	common.Log.Debugf(`get() - %s`, path)

	// Transparently negotiate a session before the first call.  The
	// negotiation draws one attempt from the shared budget; the request
	// itself draws its own, so the indirection is not double-charged.
	if g.session.Key() == `` {
		common.Log.Debugf(`no session key, starting auth sequence`)
		if err := g.session.Ensure(); err != nil {
			return nil, err
		}
	}

	resp, err := g.transport.Do(&common.Request{
		Method:  http.MethodGet,
		URL:     g.buildURL(path, query),
		Headers: baseHeaders(g.cfg, g.session.Key()),
		Timeout: common.DefaultTimeout,
	})
	if err != nil {
		// No response at all - give up quietly and let the next cycle retry
		common.Log.Warnf(`get %s: no response, retrying next cycle: %v`, path, err)
		return nil, common.ErrAbandoned
	}

	return g.classify(path, resp, false)
}

// Post issues a serialized POST.  A non-nil appliance contributes its
// identity (pnc, elc, sn, mac) as query parameters, the vendor's convention
// for command endpoints.  The raw response body is returned verbatim,
// including on HTTP 401, which some commands use as an acknowledgment.
func (g *Gateway) Post(app *common.Appliance, path string, query url.Values, body interface{}) ([]byte, error) {
	g.postMu.Lock()
	defer g.postMu.Unlock()

	common.Log.Debugf(`post() - %s`, path)

	if g.session.Key() == `` {
		common.Log.Debugf(`no session key, starting auth sequence`)
		if err := g.session.Ensure(); err != nil {
			return nil, err
		}
	}

	if app != nil {
		if query == nil {
			query = url.Values{}
		}
		query.Set(`pnc`, app.PNC)
		query.Set(`elc`, app.ELC)
		query.Set(`sn`, app.SerialNumber)
		query.Set(`mac`, app.MAC)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	resp, err := g.transport.Do(&common.Request{
		Method:  http.MethodPost,
		URL:     g.buildURL(path, query),
		Headers: baseHeaders(g.cfg, g.session.Key()),
		Body:    encoded,
		Timeout: common.DefaultTimeout,
	})
	if err != nil {
		common.Log.Warnf(`post %s: no response, retrying next cycle: %v`, path, err)
		return nil, common.ErrAbandoned
	}

	return g.classify(path, resp, true)
}

// classify applies the shared response policy for both verbs
func (g *Gateway) classify(path string, resp *common.Response, isPost bool) ([]byte, error) {
	if err := g.counter.bump(); err != nil {
		return nil, err
	}

	env := parseEnvelope(resp.Body)
	if env.sessionExpired() {
		common.Log.Debugf(`received %s indicating bad session token, resetting state`, codeSessionExpired)
		g.expireSession()
		return nil, common.ErrSessionExpired
	}

	// Some commands legitimately acknowledge with a 401; hand the body back
	// untouched
	if isPost && resp.StatusCode == http.StatusUnauthorized {
		g.counter.reset()
		return resp.Body, nil
	}

	if resp.StatusCode != http.StatusOK {
		common.Log.Debugf(`%s: not a 200 status code: %d %s`, path, resp.StatusCode, resp.Status)
		return nil, &common.StatusError{Code: resp.StatusCode, Message: resp.Status}
	}

	g.counter.reset()
	return resp.Body, nil
}

func (g *Gateway) expireSession() {
	if g.onSessionExpired != nil {
		g.onSessionExpired()
	}
	if g.onExpiredNotify != nil {
		g.onExpiredNotify()
	}
}

func (g *Gateway) buildURL(path string, query url.Values) string {
	u := g.cfg.APIURL + path
	if len(query) > 0 {
		u += `?` + query.Encode()
	}
	return u
}
