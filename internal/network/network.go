// Package network implements the Network worker (§4.2): all backend I/O,
// an asynchronous request loop, a health-check heartbeat, and a bounded
// pending-ticket retry queue. The request and health-check loops run as
// two goroutines sharing one mutex-guarded BackendClient, the Go
// translation of "cooperative event loop with two concurrent tasks"
// noted in SPEC_FULL §9.
package network

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/siantika/dispenserd/internal/backendclient"
	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/logging"
	"github.com/siantika/dispenserd/internal/message"
	"github.com/siantika/dispenserd/internal/queue"
)

// Config tunes the worker's timing and the pending-queue size.
type Config struct {
	PendingQueueCapacity int
	HealthCheckInterval  time.Duration
	PollTimeout          time.Duration
}

// Worker is the Network process.
type Worker struct {
	inbox      *queue.Mailbox[message.Message]
	primary    *queue.Mailbox[message.Message]
	indicator  *queue.Mailbox[message.Message]

	clientMu sync.Mutex
	client   backendclient.BackendClient

	pending *queue.Ring[message.Message]
	cfg     Config
	log     logging.Logger

	lastInitialData *domain.InitialData
}

// New constructs a Network worker. inbox is this worker's own mailbox;
// primary and indicator are the sole destinations for responses/events
// and status events respectively.
func New(inbox, primary, indicator *queue.Mailbox[message.Message], client backendclient.BackendClient, cfg Config, log logging.Logger) *Worker {
	if log == nil {
		log = logging.Noop()
	}
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = 200 * time.Millisecond
	}
	if cfg.PendingQueueCapacity == 0 {
		cfg.PendingQueueCapacity = 50
	}
	if cfg.HealthCheckInterval == 0 {
		cfg.HealthCheckInterval = 10 * time.Second
	}
	return &Worker{
		inbox:     inbox,
		primary:   primary,
		indicator: indicator,
		client:    client,
		pending:   queue.NewRing[message.Message](cfg.PendingQueueCapacity),
		cfg:       cfg,
		log:       log,
	}
}

// Run blocks running both loops until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.requestLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		w.healthCheckLoop(ctx)
	}()
	wg.Wait()
}

func (w *Worker) requestLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollCtx, cancel := context.WithTimeout(ctx, w.cfg.PollTimeout)
		m, err := w.inbox.Get(pollCtx)
		cancel()
		if err != nil {
			continue
		}
		if m.Topic != message.TopicNetwork {
			continue
		}
		w.handle(ctx, m)
	}
}

func (w *Worker) handle(ctx context.Context, m message.Message) {
	switch p := m.Payload.(type) {
	case message.GetInitialDataRequest:
		w.handleGetInitialData(ctx, m)
	case message.GetQueueVehicleInfoRequest:
		w.handleGetQueueInfo(ctx, m)
	case message.RegisterTicketPayload:
		w.handleRegisterTicket(ctx, m, p.Ticket)
	}
}

func (w *Worker) handleGetInitialData(ctx context.Context, m message.Message) {
	w.clientMu.Lock()
	data, err := w.client.GetInitialData(ctx)
	w.clientMu.Unlock()
	if err != nil {
		w.log.Warnf("network: get_initial_data failed: %v", err)
		w.reportStatus(ctx, domain.StatusNetError)
		return
	}
	w.lastInitialData = &data
	w.send(ctx, message.Reply(m, message.InitialDataPayload{Data: data}))
}

func (w *Worker) handleGetQueueInfo(ctx context.Context, m message.Message) {
	w.clientMu.Lock()
	info, err := w.client.GetQueueInfo(ctx)
	w.clientMu.Unlock()
	if err != nil {
		w.log.Warnf("network: get_queue_info failed: %v", err)
		w.reportStatus(ctx, domain.StatusNetError)
		return
	}
	w.send(ctx, message.Reply(m, message.QueueVehicleInfoPayload{Info: info}))
}

func (w *Worker) handleRegisterTicket(ctx context.Context, m message.Message, t domain.Ticket) {
	if err := w.registerWithRetry(ctx, t); err != nil {
		w.log.Warnf("network: register_ticket failed, queueing for retry: %v", err)
		w.reportStatus(ctx, domain.StatusNetError)
		w.enqueuePending(m)
		return
	}
	w.reportStatus(ctx, domain.StatusFine)
	w.send(ctx, message.New(message.TopicPrimary, message.KindEvent, message.TicketRegisteredPayload{Ticket: t}))
}

// registerWithRetry wraps register_ticket in up to 2 attempts, smoothing
// a connection hiccup beneath the pending-queue's coarser redelivery
// guarantee (SPEC_FULL §4.2).
func (w *Worker) registerWithRetry(ctx context.Context, t domain.Ticket) error {
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1), ctx)
	return backoff.Retry(func() error {
		w.clientMu.Lock()
		defer w.clientMu.Unlock()
		return w.client.RegisterTicket(ctx, t)
	}, bo)
}

func (w *Worker) enqueuePending(m message.Message) {
	if _, evicted := w.pending.Push(m); evicted {
		w.log.Warnf("network: pending queue overflow at capacity %d, oldest message dropped", w.cfg.PendingQueueCapacity)
	}
}

func (w *Worker) healthCheckLoop(ctx context.Context) {
	w.healthCheck(ctx) // run once immediately so Primary gets its boot-time service list without waiting a full interval
	ticker := time.NewTicker(w.cfg.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.healthCheck(ctx)
		}
	}
}

func (w *Worker) healthCheck(ctx context.Context) {
	w.clientMu.Lock()
	data, err := w.client.GetInitialData(ctx)
	w.clientMu.Unlock()
	if err != nil {
		w.log.Warnf("network: health check failed: %v", err)
		w.reportStatus(ctx, domain.StatusNetError)
		return
	}

	if w.lastInitialData == nil || !reflect.DeepEqual(*w.lastInitialData, data) {
		w.lastInitialData = &data
		w.send(ctx, message.New(message.TopicPrimary, message.KindEvent, message.ListOfServicesUpdatePayload{Services: data.Services}))
	}

	w.reportStatus(ctx, domain.StatusFine)
	w.drainPending(ctx)
}

// drainPending re-handles every stored message in FIFO order. A repeated
// failure returns the message to the queue head and breaks the drain
// loop rather than spinning (SPEC_FULL §4.2).
func (w *Worker) drainPending(ctx context.Context) {
	for {
		m, ok := w.pending.Pop()
		if !ok {
			return
		}
		rt, ok := m.Payload.(message.RegisterTicketPayload)
		if !ok {
			continue
		}
		if err := w.registerWithRetry(ctx, rt.Ticket); err != nil {
			w.log.Warnf("network: retry drain failed, re-queueing: %v", err)
			w.pending.PushFront(m)
			w.reportStatus(ctx, domain.StatusNetError)
			return
		}
		w.send(ctx, message.New(message.TopicPrimary, message.KindEvent, message.TicketRegisteredPayload{Ticket: rt.Ticket}))
	}
}

func (w *Worker) reportStatus(ctx context.Context, status domain.DeviceStatus) {
	w.sendTo(ctx, w.indicator, message.New(message.TopicIndicator, message.KindEvent, message.DeviceStatusPayload{Status: status}))
}

// send delivers m to Primary's inbox (responses and domain events).
func (w *Worker) send(ctx context.Context, m message.Message) {
	w.sendTo(ctx, w.primary, m)
}

func (w *Worker) sendTo(ctx context.Context, dest *queue.Mailbox[message.Message], m message.Message) {
	putCtx, cancel := context.WithTimeout(ctx, w.cfg.PollTimeout)
	defer cancel()
	if err := dest.Put(putCtx, m); err != nil {
		w.log.Warnf("network: outbound put failed: %v", err)
	}
}

// PendingLen reports the number of messages currently held for retry,
// exposed for tests asserting S3's "size=1" expectation.
func (w *Worker) PendingLen() int {
	return w.pending.Len()
}
