package ecp

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"

	"github.com/marekbrz/frigidaire/common"
)

// HTTPTransport is the default Transport, a thin wrapper over net/http.  TLS
// verification is disabled to match the vendor application's behaviour
// against the service's certificate chain.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a ready to use HTTPTransport
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Do performs a single HTTP exchange.  Any received response is returned
// regardless of status code; only transport-level failures produce an error.
func (t *HTTPTransport) Do(req *common.Request) (*common.Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequest(req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	client := t.client
	if req.Timeout > 0 {
		client = &http.Client{
			Transport: t.client.Transport,
			Timeout:   req.Timeout,
		}
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &common.Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Body:       respBody,
	}, nil
}
