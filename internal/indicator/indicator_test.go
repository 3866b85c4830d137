package indicator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/gpio"
	"github.com/siantika/dispenserd/internal/message"
	"github.com/siantika/dispenserd/internal/queue"
)

func send(t *testing.T, inbox *queue.Mailbox[message.Message], status domain.DeviceStatus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, inbox.Put(ctx, message.New(message.TopicIndicator, message.KindEvent, message.DeviceStatusPayload{Status: status})))
}

func TestFineStatusHoldsLEDSteadyOn(t *testing.T) {
	inbox := queue.NewMailbox[message.Message](4)
	led := gpio.NewMockOutput()
	w := New(inbox, led, nil)
	send(t, inbox, domain.StatusFine)

	shutdown := w.drain()
	require.False(t, shutdown)
	w.execute(time.Now())
	assert.True(t, led.IsOn())
}

func TestLastWriterWinsAcrossMultipleQueuedStatuses(t *testing.T) {
	inbox := queue.NewMailbox[message.Message](4)
	led := gpio.NewMockOutput()
	w := New(inbox, led, nil)

	send(t, inbox, domain.StatusNetError)
	send(t, inbox, domain.StatusFine)

	w.drain()
	assert.Equal(t, domain.StatusFine, w.status)
}

func TestNetErrorBlinksAtHalfPeriod(t *testing.T) {
	inbox := queue.NewMailbox[message.Message](4)
	led := gpio.NewMockOutput()
	w := New(inbox, led, nil)
	send(t, inbox, domain.StatusNetError)
	w.drain()

	start := time.Now()
	w.lastToggle = start
	w.execute(start)
	assert.False(t, led.IsOn(), "no toggle before half-period elapses")

	w.execute(start.Add(netErrorHalfPeriod + time.Millisecond))
	assert.True(t, led.IsOn())
}

func TestShutdownTurnsLEDOffAndDrainReportsTrue(t *testing.T) {
	inbox := queue.NewMailbox[message.Message](4)
	led := gpio.NewMockOutput()
	w := New(inbox, led, nil)
	led.On()

	send(t, inbox, domain.StatusShutdown)
	assert.True(t, w.drain())
}

func TestMessagesForOtherTopicsAreIgnored(t *testing.T) {
	inbox := queue.NewMailbox[message.Message](4)
	led := gpio.NewMockOutput()
	w := New(inbox, led, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, inbox.Put(ctx, message.New(message.TopicNetwork, message.KindEvent, message.DeviceStatusPayload{Status: domain.StatusNetError})))

	w.drain()
	assert.Equal(t, domain.StatusFine, w.status)
}
