package frigidaire_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	. "github.com/marekbrz/frigidaire"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/stretchr/testify/mock"

	"github.com/marekbrz/frigidaire/common"
	"github.com/marekbrz/frigidaire/mocks"
)

const (
	authSuccessBody = `{"status":"SUCCESS","code":"200_OK","data":{"sessionKey":"test-session-key"}}`

	appliancesBody = `{"status":"SUCCESS","data":[` +
		`{"sn":"SN1","pnc":"PNC1","elc":"ELC1","mac":"MAC1","nickname":"living room"},` +
		`{"sn":"SN2","pnc":"PNC2","elc":"ELC2","mac":"MAC2","nickname":"bedroom"}]}`

	telemetryBody = `{"status":"SUCCESS","data":[` +
		`{"haclCode":"1000","numberValue":1},` +
		`{"haclCode":"1002","numberValue":7},` +
		`{"haclCode":"0420","numberValue":1},` +
		`{"haclCode":"1021","numberValue":2},` +
		`{"haclCode":"0432","numberValue":0,"containers":[{"numberValue":0},{"numberValue":72}]},` +
		`{"haclCode":"0430","numberValue":0,"containers":[{"numberValue":0},{"numberValue":74}]}]}`

	sessionExpiredBody = `{"status":"ERROR","code":"ECP0105","message":"session not valid"}`
)

func reqFor(fragment string) interface{} {
	return mock.MatchedBy(func(req *common.Request) bool {
		return strings.Contains(req.URL, fragment)
	})
}

func okResponse(body string) *common.Response {
	return &common.Response{
		StatusCode: http.StatusOK,
		Status:     `200 OK`,
		Body:       []byte(body),
	}
}

var _ = Describe("Frigidaire", func() {
	var (
		client        *Client
		mockTransport *mocks.Transport
		cfg           *common.Config
	)

	newConfig := func() *common.Config {
		return &common.Config{
			Username: `user@example.com`,
			Password: `hunter2`,
		}
	}

	stubDiscovery := func(transport *mocks.Transport) {
		transport.On(`Do`, reqFor(`/authentication/authenticate`)).Return(okResponse(authSuccessBody), nil)
		transport.On(`Do`, reqFor(`/user-appliance-reg/`)).Return(okResponse(appliancesBody), nil)
		transport.On(`Do`, reqFor(`/elux-ms/appliances/latest`)).Return(okResponse(telemetryBody), nil)
	}

	It("should authenticate and discover appliances on NewClient", func() {
		var err error
		mockTransport = new(mocks.Transport)
		stubDiscovery(mockTransport)

		client, err = NewClientWithTransport(newConfig(), mockTransport)
		Expect(client).To(BeAssignableToTypeOf(new(Client)))
		Expect(err).NotTo(HaveOccurred())
		Expect(client.TelemetryPopulated()).To(BeTrue())

		// one auth, one enumeration, one telemetry fetch per appliance
		mockTransport.AssertNumberOfCalls(GinkgoT(), `Do`, 4)
		Expect(client.Close()).To(Succeed())
	})

	It("should surface missing credentials as a configuration error", func() {
		mockTransport = new(mocks.Transport)
		_, err := NewClientWithTransport(&common.Config{Username: `user@example.com`}, mockTransport)
		Expect(err).To(MatchError(common.ErrConfiguration))
		mockTransport.AssertNotCalled(GinkgoT(), `Do`, mock.Anything)
	})

	Describe("Client", func() {
		BeforeEach(func() {
			mockTransport = new(mocks.Transport)
			stubDiscovery(mockTransport)
			cfg = newConfig()
			var err error
			client, err = NewClientWithTransport(cfg, mockTransport)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = client.Close()
		})

		It("should list both appliances", func() {
			appliances, err := client.Appliances()
			Expect(err).NotTo(HaveOccurred())
			Expect(appliances).To(HaveLen(2))
			Expect(appliances[0].SerialNumber).To(Equal(`SN1`))
			Expect(appliances[1].Nickname).To(Equal(`bedroom`))
		})

		It("should select the first appliance for an empty serial", func() {
			app, err := client.Appliance(``)
			Expect(err).NotTo(HaveOccurred())
			Expect(app.SerialNumber).To(Equal(`SN1`))
		})

		It("should read the mode from cached telemetry", func() {
			mode, err := client.GetMode(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(mode).To(Equal(common.ModeCool))
		})

		It("should read the setpoint from the second container entry", func() {
			temp, err := client.GetTemp(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(temp).To(Equal(72.0))
		})

		It("should read the room temperature from the second container entry", func() {
			temp, err := client.GetRoomTemp(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(temp).To(Equal(74.0))
		})

		It("should return zero without error when room temperature reads are disabled", func() {
			disabled := newConfig()
			disabled.DisableRoomTemp = true
			c, err := NewClientWithTransport(disabled, mockTransport)
			Expect(err).NotTo(HaveOccurred())
			defer c.Close()

			temp, err := c.GetRoomTemp(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(temp).To(BeZero())
		})

		It("should read the fan mode and units from the top-level field", func() {
			fan, err := client.GetFanMode(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(fan).To(Equal(common.FanAuto))

			unit, err := client.GetUnit(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(unit).To(Equal(common.Fahrenheit))
		})

		It("should report the filter status when the attribute is present", func() {
			filter, err := client.GetFilter(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(filter).To(Equal(common.FilterChange))
		})

		It("should default a missing clean air attribute to off", func() {
			state, err := client.GetCleanAir(`SN1`)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(common.CleanAirOff))
		})

		It("should not default capability reads for an unknown appliance", func() {
			_, err := client.GetCleanAir(`SN99`)
			Expect(err).To(MatchError(common.ErrNotFound))

			_, err = client.GetFilter(`SN99`)
			Expect(err).To(MatchError(common.ErrNotFound))

			Expect(client.SetCleanAir(`SN99`, common.CleanAirOn)).To(MatchError(common.ErrNotFound))
		})

		It("should skip clean air writes on appliances without the capability", func() {
			Expect(client.SetCleanAir(`SN1`, common.CleanAirOn)).To(Succeed())
			mockTransport.AssertNotCalled(GinkgoT(), `Do`, reqFor(`/commander/remote/sendjson`))
		})

		It("should return AttributeNotFound for other missing codes", func() {
			_, err := client.ReadAttribute(`SN1`, `7777`)
			Expect(err).To(MatchError(common.ErrAttributeNotFound))
		})

		It("should send a four-component payload for the setpoint", func() {
			var captured *common.Request
			mockTransport.On(`Do`, reqFor(`/commander/remote/sendjson`)).Run(func(args mock.Arguments) {
				captured = args.Get(0).(*common.Request)
			}).Return(okResponse(`{"status":"SUCCESS"}`), nil)

			Expect(client.SetTemp(`SN1`, 71.6)).To(Succeed())
			Expect(captured).NotTo(BeNil())

			var envelope struct {
				Components []struct {
					Name  string      `json:"name"`
					Value interface{} `json:"value"`
				} `json:"components"`
			}
			Expect(json.Unmarshal(captured.Body, &envelope)).To(Succeed())
			Expect(envelope.Components).To(HaveLen(4))
			Expect(envelope.Components[0].Name).To(Equal(common.AttrSetpoint))
			Expect(envelope.Components[0].Value).To(Equal(`Container`))
			// rounded to the nearest whole degree
			Expect(envelope.Components[1].Value).To(Equal(72.0))
			Expect(envelope.Components[2].Name).To(Equal(`3`))
			Expect(envelope.Components[3].Name).To(Equal(`0`))
		})

		It("should send a single component for other writes", func() {
			var captured *common.Request
			mockTransport.On(`Do`, reqFor(`/commander/remote/sendjson`)).Run(func(args mock.Arguments) {
				captured = args.Get(0).(*common.Request)
			}).Return(okResponse(`{"status":"SUCCESS"}`), nil)

			Expect(client.SetFanMode(`SN1`, common.FanHigh)).To(Succeed())
			Expect(captured).NotTo(BeNil())
			Expect(captured.URL).To(ContainSubstring(`sn=SN1`))

			var envelope struct {
				Components []struct {
					Name  string      `json:"name"`
					Value interface{} `json:"value"`
				} `json:"components"`
			}
			Expect(json.Unmarshal(captured.Body, &envelope)).To(Succeed())
			Expect(envelope.Components).To(HaveLen(1))
			Expect(envelope.Components[0].Name).To(Equal(common.AttrFanMode))
		})

		It("should publish telemetry events to subscribers", func() {
			sub, err := client.NewSubscription()
			Expect(err).NotTo(HaveOccurred())

			Expect(client.Refresh(`SN1`)).To(Succeed())

			var event interface{}
			Eventually(sub.Events()).Should(Receive(&event))
			update, ok := event.(common.EventTelemetryUpdated)
			Expect(ok).To(BeTrue())
			Expect(update.SerialNumber).To(Equal(`SN1`))
			Expect(update.Telemetry).To(HaveLen(6))
		})

		It("should survive Close while polling is publishing events", func() {
			fast := newConfig()
			fast.PollingInterval = 10 * time.Millisecond
			c, err := NewClientWithTransport(fast, mockTransport)
			Expect(err).NotTo(HaveOccurred())

			// an unread subscription, so in-flight publishes have a target
			_, err = c.NewSubscription()
			Expect(err).NotTo(HaveOccurred())
			Expect(c.StartPolling()).To(Succeed())

			time.Sleep(100 * time.Millisecond)
			Expect(c.Close()).To(Succeed())
		})

		It("should reject new subscriptions after Close", func() {
			Expect(client.Close()).To(Succeed())
			_, err := client.NewSubscription()
			Expect(err).To(Equal(common.ErrClosed))

			// a second close is also an error
			Expect(client.Close()).To(Equal(common.ErrClosed))

			// keep AfterEach happy with a fresh client
			var errNew error
			client, errNew = NewClientWithTransport(newConfig(), mockTransport)
			Expect(errNew).NotTo(HaveOccurred())
		})
	})

	Describe("session invalidation", func() {
		BeforeEach(func() {
			mockTransport = new(mocks.Transport)
			mockTransport.On(`Do`, reqFor(`/authentication/authenticate`)).Return(okResponse(authSuccessBody), nil)
			mockTransport.On(`Do`, reqFor(`/user-appliance-reg/`)).Return(okResponse(appliancesBody), nil)
			// discovery succeeds, then the service invalidates our session
			mockTransport.On(`Do`, reqFor(`/elux-ms/appliances/latest`)).Return(okResponse(telemetryBody), nil).Times(2)
			mockTransport.On(`Do`, reqFor(`/elux-ms/appliances/latest`)).Return(okResponse(sessionExpiredBody), nil).Once()
			mockTransport.On(`Do`, reqFor(`/elux-ms/appliances/latest`)).Return(okResponse(telemetryBody), nil)

			var err error
			client, err = NewClientWithTransport(newConfig(), mockTransport)
			Expect(err).NotTo(HaveOccurred())
		})

		AfterEach(func() {
			_ = client.Close()
		})

		It("should clear the cache and re-discover on the next operation", func() {
			sub, err := client.NewSubscription()
			Expect(err).NotTo(HaveOccurred())

			Expect(client.TelemetryPopulated()).To(BeTrue())

			// this refresh hits the session-invalid sentinel
			err = client.Refresh(`SN1`)
			Expect(err).To(MatchError(common.ErrSessionExpired))
			Expect(client.TelemetryPopulated()).To(BeFalse())

			var event interface{}
			Eventually(sub.Events()).Should(Receive(&event))
			_, ok := event.(common.EventSessionExpired)
			Expect(ok).To(BeTrue())

			// the next operation re-authenticates and re-enumerates
			appliances, err := client.Appliances()
			Expect(err).NotTo(HaveOccurred())
			Expect(appliances).To(HaveLen(2))
			mockTransport.AssertNumberOfCalls(GinkgoT(), `Do`, 7)
		})
	})
})
