package common

import "time"

// Request describes a single HTTP exchange with the cloud service
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// Body is the already-encoded JSON request body, nil for GET
	Body []byte
	// Timeout bounds the whole exchange
	Timeout time.Duration
}

// Response carries the raw result of a Request
type Response struct {
	StatusCode int
	// Status is the status line message accompanying StatusCode
	Status string
	Body   []byte
}

// Transport performs a single HTTP request.  A transport-level error (no
// response received at all) is reported via the error return; any received
// response, whatever its status code, is returned as a Response.
type Transport interface {
	Do(req *Request) (*Response, error)
}
