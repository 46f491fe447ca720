package ecp

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/marekbrz/frigidaire/common"
)

// Scheduler runs the recurring telemetry refresh for each appliance.  Each
// timer gets its own random jitter on top of the base interval so that timers
// started with the same interval drift apart instead of firing in the same
// tick.  Failed polls are logged and otherwise ignored; the previous cached
// telemetry stands until the next successful tick.
type Scheduler struct {
	registry *Registry
	interval time.Duration

	mu     sync.Mutex
	timers map[string]chan struct{}
}

func newScheduler(registry *Registry, interval time.Duration) *Scheduler {
	return &Scheduler{
		registry: registry,
		interval: interval,
		timers:   make(map[string]chan struct{}),
	}
}

// Start begins a recurring refresh for the appliance at the scheduler's base
// interval.  Starting an already polled serial is a no-op.
func (s *Scheduler) Start(serial string) {
	s.StartWithInterval(serial, s.interval)
}

// StartWithInterval begins a recurring refresh for the appliance at the given
// base interval plus jitter
func (s *Scheduler) StartWithInterval(serial string, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[serial]; ok {
		return
	}

	quit := make(chan struct{})
	s.timers[serial] = quit

	// Jitter is fixed per timer, matching the vendor app's behaviour of
	// spreading simultaneous timers rather than randomizing every tick
	jittered := interval + time.Duration(rand.Int63n(int64(common.MaxJitter)))
	common.Log.Debugf(`scheduling telemetry refresh for %s every %v`, serial, jittered)

	go func() {
		tick := time.NewTicker(jittered)
		defer tick.Stop()
		for {
			select {
			case <-quit:
				common.Log.Debugf(`stopping telemetry refresh for %s`, serial)
				return
			case <-tick.C:
				if _, err := s.registry.RefreshTelemetry(serial); err != nil {
					s.logPollFailure(serial, err)
				}
			}
		}
	}()
}

// logPollFailure downgrades the engine's quiet-retry conditions to debug
// noise; anything else is worth a warning
func (s *Scheduler) logPollFailure(serial string, err error) {
	if errors.Is(err, common.ErrAbandoned) || errors.Is(err, common.ErrSessionExpired) {
		common.Log.Debugf(`telemetry refresh for %s skipped: %v`, serial, err)
		return
	}
	common.Log.Warnf(`telemetry refresh for %s failed: %v`, serial, err)
}

// Stop cancels the timer for one appliance
func (s *Scheduler) Stop(serial string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if quit, ok := s.timers[serial]; ok {
		close(quit)
		delete(s.timers, serial)
	}
}

// StopAll cancels every timer as a group, used on shutdown and full reset
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for serial, quit := range s.timers {
		close(quit)
		delete(s.timers, serial)
	}
}
