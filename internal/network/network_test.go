package network

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siantika/dispenserd/internal/backendclient"
	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/message"
	"github.com/siantika/dispenserd/internal/queue"
)

func newHarness(client *backendclient.MockClient) (*Worker, *queue.Mailbox[message.Message], *queue.Mailbox[message.Message], *queue.Mailbox[message.Message]) {
	inbox := queue.NewMailbox[message.Message](8)
	primary := queue.NewMailbox[message.Message](8)
	indicatorBox := queue.NewMailbox[message.Message](8)
	w := New(inbox, primary, indicatorBox, client, Config{PollTimeout: 50 * time.Millisecond}, nil)
	return w, inbox, primary, indicatorBox
}

func TestRegisterTicketSuccessReportsFineAndRepliesTicketRegistered(t *testing.T) {
	client := backendclient.NewMockClient()
	w, _, primary, indicatorBox := newHarness(client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ticket := domain.Ticket{TicketNumber: "8990100000117"}
	w.handleRegisterTicket(ctx, message.New(message.TopicNetwork, message.KindEvent, message.RegisterTicketPayload{Ticket: ticket}), ticket)

	statusMsg, err := indicatorBox.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFine, statusMsg.Payload.(message.DeviceStatusPayload).Status)

	reply, err := primary.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, ticket, reply.Payload.(message.TicketRegisteredPayload).Ticket)
	assert.Equal(t, 0, w.PendingLen())
}

func TestRegisterTicketFailureQueuesForRetryAndReportsNetError(t *testing.T) {
	// S3: transport failure during registration still lets the vehicle
	// through; the message survives in the pending queue (size=1).
	client := backendclient.NewMockClient()
	client.RegisterErr = domain.New("mock", domain.ErrCodeTransportFailure, "down")
	w, _, _, indicatorBox := newHarness(client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ticket := domain.Ticket{TicketNumber: "8990300000117"}
	w.handleRegisterTicket(ctx, message.New(message.TopicNetwork, message.KindEvent, message.RegisterTicketPayload{Ticket: ticket}), ticket)

	statusMsg, err := indicatorBox.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNetError, statusMsg.Payload.(message.DeviceStatusPayload).Status)
	assert.Equal(t, 1, w.PendingLen())
}

func TestHealthCheckDrainsPendingQueueOnRecovery(t *testing.T) {
	client := backendclient.NewMockClient()
	client.RegisterErr = domain.New("mock", domain.ErrCodeTransportFailure, "down")
	w, _, primary, _ := newHarness(client)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ticket := domain.Ticket{TicketNumber: "8990100000117"}
	w.handleRegisterTicket(ctx, message.New(message.TopicNetwork, message.KindEvent, message.RegisterTicketPayload{Ticket: ticket}), ticket)
	require.Equal(t, 1, w.PendingLen())

	client.RegisterErr = nil
	w.healthCheck(ctx)

	assert.Equal(t, 0, w.PendingLen())
	// The first health check also forwards a ListOfServicesUpdatePayload,
	// so look through everything Primary received.
	gotRegistered := false
	for {
		m, ok := primary.TryGet()
		if !ok {
			break
		}
		if _, isReg := m.Payload.(message.TicketRegisteredPayload); isReg {
			gotRegistered = true
		}
	}
	assert.True(t, gotRegistered, "drained retry should deliver TicketRegistered to primary")
}

func TestPendingQueueOverflowDropsOldest(t *testing.T) {
	client := backendclient.NewMockClient()
	client.RegisterErr = domain.New("mock", domain.ErrCodeTransportFailure, "down")
	inbox := queue.NewMailbox[message.Message](8)
	primary := queue.NewMailbox[message.Message](8)
	indicatorBox := queue.NewMailbox[message.Message](8)
	w := New(inbox, primary, indicatorBox, client, Config{PollTimeout: 50 * time.Millisecond, PendingQueueCapacity: 2}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		ticket := domain.Ticket{TicketNumber: "899010000011" + string(rune('0'+i))}
		w.handleRegisterTicket(ctx, message.New(message.TopicNetwork, message.KindEvent, message.RegisterTicketPayload{Ticket: ticket}), ticket)
	}
	assert.Equal(t, 2, w.PendingLen())
}
