package ecp

import (
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/marekbrz/frigidaire/common"
	"github.com/marekbrz/frigidaire/mocks"
)

const (
	testSessionKey = `test-session-key`

	authSuccessBody = `{"status":"SUCCESS","code":"200_OK","data":{"sessionKey":"` + testSessionKey + `"}}`
	authRejectBody  = `{"status":"ERROR","code":"ECP0108","message":"invalid credentials"}`

	appliancesBody = `{"status":"SUCCESS","data":[` +
		`{"sn":"SN1","pnc":"PNC1","elc":"ELC1","mac":"MAC1","nickname":"living room"},` +
		`{"sn":"SN2","pnc":"PNC2","elc":"ELC2","mac":"MAC2","nickname":"bedroom"}]}`

	telemetryBody = `{"status":"SUCCESS","data":[` +
		`{"haclCode":"1000","numberValue":1},` +
		`{"haclCode":"1002","numberValue":7},` +
		`{"haclCode":"0420","numberValue":1},` +
		`{"haclCode":"0432","numberValue":0,"containers":[{"numberValue":0},{"numberValue":72}]},` +
		`{"haclCode":"0430","numberValue":0,"containers":[{"numberValue":0},{"numberValue":74}]}]}`

	sessionExpiredBody = `{"status":"ERROR","code":"ECP0105","message":"session not valid"}`
)

func testConfig() *common.Config {
	cfg := &common.Config{
		Username: `user@example.com`,
		Password: `hunter2`,
	}
	cfg.ApplyDefaults()
	return cfg
}

func okResponse(body string) *common.Response {
	return &common.Response{
		StatusCode: http.StatusOK,
		Status:     `200 OK`,
		Body:       []byte(body),
	}
}

// reqFor matches transport requests whose URL contains the given path
// fragment
func reqFor(fragment string) interface{} {
	return mock.MatchedBy(func(req *common.Request) bool {
		return strings.Contains(req.URL, fragment)
	})
}

// stubAuth wires the standard successful authentication exchange
func stubAuth(transport *mocks.Transport) {
	transport.On(`Do`, reqFor(`/authentication/authenticate`)).Return(okResponse(authSuccessBody), nil)
}

// stubDiscovery wires authentication, enumeration and telemetry for the two
// canned appliances
func stubDiscovery(transport *mocks.Transport) {
	stubAuth(transport)
	transport.On(`Do`, reqFor(`/user-appliance-reg/`)).Return(okResponse(appliancesBody), nil)
	transport.On(`Do`, reqFor(`/elux-ms/appliances/latest`)).Return(okResponse(telemetryBody), nil)
}
