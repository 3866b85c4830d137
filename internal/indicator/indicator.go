// Package indicator implements the Indicator worker (§4.3): a
// non-blocking status-LED tick loop. Deliberately a plain type switch
// rather than looplab/fsm — the blink engine is timer arithmetic inside a
// single tick function, not an event-driven state machine, so the
// heavier FSM library buys nothing here (see DESIGN.md).
package indicator

import (
	"context"
	"time"

	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/gpio"
	"github.com/siantika/dispenserd/internal/logging"
	"github.com/siantika/dispenserd/internal/message"
	"github.com/siantika/dispenserd/internal/queue"
)

const tick = 50 * time.Millisecond

const (
	netErrorHalfPeriod     = 500 * time.Millisecond
	printerErrorHalfPeriod = 200 * time.Millisecond
)

// Worker drives the status LED from the last DeviceStatus observed on its
// inbound mailbox.
type Worker struct {
	inbox *queue.Mailbox[message.Message]
	led   gpio.DigitalOutput
	log   logging.Logger

	status     domain.DeviceStatus
	lastToggle time.Time
}

// New constructs an Indicator worker. log may be nil, in which case a
// no-op logger is used.
func New(inbox *queue.Mailbox[message.Message], led gpio.DigitalOutput, log logging.Logger) *Worker {
	if log == nil {
		log = logging.Noop()
	}
	return &Worker{
		inbox:  inbox,
		led:    led,
		log:    log,
		status: domain.StatusFine,
	}
}

// Run blocks, ticking every 50ms, until ctx is cancelled or a SHUTDOWN
// status is observed, at which point the LED is turned off and Run
// returns.
func (w *Worker) Run(ctx context.Context) {
	w.lastToggle = time.Now()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = w.led.Off()
			return
		case now := <-ticker.C:
			if w.drain() {
				_ = w.led.Off()
				return
			}
			w.execute(now)
		}
	}
}

// drain non-blockingly consumes every queued message, applying the last
// DeviceStatusPayload observed (last-writer-wins, invariant 5). It
// returns true if a SHUTDOWN status was observed.
func (w *Worker) drain() bool {
	for {
		m, ok := w.inbox.TryGet()
		if !ok {
			return false
		}
		if m.Topic != message.TopicIndicator {
			continue
		}
		status, ok := m.Payload.(message.DeviceStatusPayload)
		if !ok {
			continue
		}
		if status.Status != w.status {
			w.status = status.Status
			w.lastToggle = time.Now()
		}
		if status.Status == domain.StatusShutdown {
			return true
		}
	}
}

// execute runs the current status's behaviour for the current timestamp,
// toggling the LED only when the half-period has elapsed.
func (w *Worker) execute(now time.Time) {
	switch w.status {
	case domain.StatusFine:
		w.setSteady(true)
	case domain.StatusNetError:
		w.blink(now, netErrorHalfPeriod)
	case domain.StatusPrinterError:
		w.blink(now, printerErrorHalfPeriod)
	case domain.StatusShutdown:
		w.setSteady(false)
	}
}

func (w *Worker) setSteady(on bool) {
	if on == w.led.IsOn() {
		return
	}
	if on {
		if err := w.led.On(); err != nil {
			w.log.Warnf("indicator: led on failed: %v", err)
		}
		return
	}
	if err := w.led.Off(); err != nil {
		w.log.Warnf("indicator: led off failed: %v", err)
	}
}

func (w *Worker) blink(now time.Time, halfPeriod time.Duration) {
	if now.Sub(w.lastToggle) < halfPeriod {
		return
	}
	w.lastToggle = now
	if w.led.IsOn() {
		if err := w.led.Off(); err != nil {
			w.log.Warnf("indicator: led off failed: %v", err)
		}
		return
	}
	if err := w.led.On(); err != nil {
		w.log.Warnf("indicator: led on failed: %v", err)
	}
}
