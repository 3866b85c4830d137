package primary

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/looplab/fsm"

	"github.com/siantika/dispenserd/internal/domain"
	"github.com/siantika/dispenserd/internal/gpio"
	"github.com/siantika/dispenserd/internal/logging"
	"github.com/siantika/dispenserd/internal/message"
	"github.com/siantika/dispenserd/internal/printer"
	"github.com/siantika/dispenserd/internal/queue"
	"github.com/siantika/dispenserd/internal/sequence"
	"github.com/siantika/dispenserd/internal/sound"
)

// Config tunes the worker's polling cadence and the two spec-mandated
// timeouts (queue-info fetch, selection wait).
type Config struct {
	TickInterval     time.Duration
	ButtonPollPeriod time.Duration
	QueueInfoTimeout time.Duration
	SelectionTimeout time.Duration
	PrintErrorAudio  time.Duration
	Estimate         estimateConfig
}

// DefaultConfig mirrors the spec's literal defaults (~10ms tick, 5s
// queue-info timeout, ~5s error-audio hold).
func DefaultConfig() Config {
	return Config{
		TickInterval:     10 * time.Millisecond,
		ButtonPollPeriod: 20 * time.Millisecond,
		QueueInfoTimeout: 5 * time.Second,
		SelectionTimeout: 60 * time.Second,
		PrintErrorAudio:  5 * time.Second,
		Estimate:         estimateConfig{EstMinConst: 1, EstMaxConst: 2},
	}
}

// Worker is the Primary process: it owns every peripheral and drives the
// FSM through one vehicle transaction at a time.
type Worker struct {
	fsm *fsm.FSM

	inbox   *queue.Mailbox[message.Message] // Primary's own inbound mailbox (RESPONSEs from Network)
	network *queue.Mailbox[message.Message]
	indicator *queue.Mailbox[message.Message]

	loopSensor gpio.DigitalInput
	buttons    [4]gpio.DigitalInput
	gate       gpio.DigitalOutput
	printer    printer.TicketPrinter
	sound      sound.AudioPlayer
	seq        *sequence.Store

	services []domain.ServiceType
	cfg      Config
	log      logging.Logger

	selectedService *domain.ServiceType
	ticket          *domain.Ticket
}

// New constructs a Primary worker with its full peripheral set injected
// by the caller (supervisor.Build), per SPEC_FULL §9's "capability handles
// passed by constructor injection" note.
func New(
	inbox, network, indicator *queue.Mailbox[message.Message],
	loopSensor gpio.DigitalInput,
	buttons [4]gpio.DigitalInput,
	gate gpio.DigitalOutput,
	tp printer.TicketPrinter,
	ap sound.AudioPlayer,
	seq *sequence.Store,
	services []domain.ServiceType,
	cfg Config,
	log logging.Logger,
) *Worker {
	if log == nil {
		log = logging.Noop()
	}
	w := &Worker{
		inbox:      inbox,
		network:    network,
		indicator:  indicator,
		loopSensor: loopSensor,
		buttons:    buttons,
		gate:       gate,
		printer:    tp,
		sound:      ap,
		seq:        seq,
		services:   services,
		cfg:        cfg,
		log:        log,
	}
	w.fsm = newFSM(func(ctx context.Context, e *fsm.Event) {
		w.selectedService = nil
		w.ticket = nil
	})
	return w
}

// Current exposes the FSM's current state for tests and diagnostics.
func (w *Worker) Current() string {
	return w.fsm.Current()
}

// Run polls the loop sensor every tick and, on arrival, drives one full
// vehicle transaction synchronously before returning to polling — Primary
// has no concurrent transactions (§5).
func (w *Worker) Run(ctx context.Context) {
	w.sound.Play("system_ready")

	ticker := time.NewTicker(w.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drainServiceUpdates()
			if w.fsm.Is(StateIdle) && w.loopSensor.IsActive() {
				w.handleVehicle(ctx)
			}
		}
	}
}

// drainServiceUpdates applies any ListOfServicesUpdatePayload queued by
// Network's health check without blocking the tick loop (§4.2: "the list
// may be wholly replaced by a later health-check update").
func (w *Worker) drainServiceUpdates() {
	for {
		m, ok := w.inbox.TryGet()
		if !ok {
			return
		}
		w.applyInboxMessage(m)
	}
}

func (w *Worker) applyInboxMessage(m message.Message) {
	if upd, ok := m.Payload.(message.ListOfServicesUpdatePayload); ok {
		w.services = upd.Services
		w.log.Infof("primary: service list replaced (%d services)", len(w.services))
	}
}

func (w *Worker) fire(ctx context.Context, event string, args ...interface{}) error {
	if err := w.fsm.Event(ctx, event, args...); err != nil {
		if _, ok := err.(fsm.NoTransitionError); ok {
			return nil
		}
		w.log.Warnf("primary: event %s rejected from state %s: %v", event, w.fsm.Current(), err)
		return err
	}
	return nil
}

// handleVehicle drives IDLE -> ... -> IDLE for one vehicle, end to end.
func (w *Worker) handleVehicle(ctx context.Context) {
	if err := w.fire(ctx, eventArrived); err != nil {
		return
	}
	if !w.greeting(ctx) {
		return
	}
	w.generateAndDeliver(ctx)
}

// greeting plays the scripted sequence, handling a mid-playback button
// press as an immediate, interrupting selection (§4.1's "the greeting is
// interruptible"). Returns false if the vehicle left without selecting.
func (w *Worker) greeting(ctx context.Context) bool {
	info, haveInfo := w.fetchQueueInfo(ctx)

	clips, err := w.greetingClips(info, haveInfo)
	if err != nil {
		// §7: InvalidConfig is fatal for the current transaction.
		w.log.Warnf("primary: aborting transaction, invalid estimate config: %v", err)
		_ = w.fire(ctx, eventAbortInvalidConfig)
		return false
	}

	for _, clip := range clips {
		if err := w.sound.Play(clip); err != nil {
			w.log.Warnf("primary: greeting clip %q failed to play: %v", clip, err)
			continue
		}

		idx, interrupted, left := w.waitClipOrInterrupt(ctx)
		if left {
			_ = w.fire(ctx, eventGreetingDone)
			_ = w.fire(ctx, eventLeaveWithoutSelecting)
			return false
		}
		if interrupted {
			w.sound.Stop()
			svc := w.services[idx]
			w.selectedService = &svc
			_ = w.fire(ctx, eventGreetingDone)
			_ = w.fire(ctx, eventServiceSelected, idx)
			w.playAckToCompletion(ctx, idx)
			return true
		}
	}

	if err := w.fire(ctx, eventGreetingDone); err != nil {
		return false
	}
	return w.waitForSelection(ctx)
}

// waitClipOrInterrupt blocks until the currently playing clip finishes,
// a button is pressed, or the loop sensor clears, polling at
// ButtonPollPeriod.
func (w *Worker) waitClipOrInterrupt(ctx context.Context) (idx int, interrupted, left bool) {
	ticker := time.NewTicker(w.cfg.ButtonPollPeriod)
	defer ticker.Stop()
	for w.sound.IsBusy() {
		select {
		case <-ctx.Done():
			return 0, false, true
		case <-ticker.C:
			if !w.loopSensor.IsActive() {
				return 0, false, true
			}
			if i, pressed := w.readButtonPress(); pressed {
				return i, true, false
			}
		}
	}
	return 0, false, false
}

// waitForSelection is entered once the greeting has played to
// completion; it waits for a button press, a cleared loop sensor
// (LEAVE_WITHOUT_SELECTING), or SelectionTimeout (TIMEOUT).
func (w *Worker) waitForSelection(ctx context.Context) bool {
	deadline := time.Now().Add(w.cfg.SelectionTimeout)
	ticker := time.NewTicker(w.cfg.ButtonPollPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if !w.loopSensor.IsActive() {
				_ = w.fire(ctx, eventLeaveWithoutSelecting)
				return false
			}
			if time.Now().After(deadline) {
				_ = w.fire(ctx, eventTimeout)
				return false
			}
			if idx, pressed := w.readButtonPress(); pressed {
				svc := w.services[idx]
				w.selectedService = &svc
				if err := w.fire(ctx, eventServiceSelected, idx); err != nil {
					return false
				}
				w.playAckToCompletion(ctx, idx)
				return true
			}
		}
	}
}

// readButtonPress samples all four buttons once and returns the
// lowest-indexed active one: first-press-wins within this tick resolves
// Open Question 3 without a source-style button-1-priority elif chain.
func (w *Worker) readButtonPress() (idx int, pressed bool) {
	for i, b := range w.buttons {
		if b.IsActive() {
			return i, true
		}
	}
	return 0, false
}

// playAckToCompletion plays a per-service acknowledgement clip and
// blocks until it finishes: unlike the greeting, service-selection
// acknowledgement is NOT preemptible (Open Question 4).
func (w *Worker) playAckToCompletion(ctx context.Context, idx int) {
	name := fmt.Sprintf("service_%d", idx+1)
	if err := w.sound.Play(name); err != nil {
		w.log.Warnf("primary: ack clip %q failed to play: %v", name, err)
		return
	}
	ticker := time.NewTicker(w.cfg.ButtonPollPeriod)
	defer ticker.Stop()
	for w.sound.IsBusy() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// greetingClips builds the scripted clip-name sequence from §4.1: always
// welcome; if mode != OFF, the full queue/estimate announcement; finally
// the service prompt.
func (w *Worker) greetingClips(info domain.VehicleQueueInfo, haveInfo bool) ([]string, error) {
	clips := []string{"welcome"}
	if !haveInfo || info.Mode == domain.QueueModeOff {
		return append(clips, "pilih_jenis_cuci"), nil
	}

	min, max, ok, err := estimate(info, w.cfg.Estimate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return append(clips, "pilih_jenis_cuci"), nil
	}

	clips = append(clips,
		"saat_ini", strconv.Itoa(info.CountAhead), "kendaraan_dalam_antr",
		"estimasi_waktu", strconv.Itoa(min), "hingga", strconv.Itoa(max), "menit",
		"pilih_jenis_cuci",
	)
	return clips, nil
}

// fetchQueueInfo issues GET_QUEUE_VEHICLE_INFO to Network and blocks on
// Primary's own inbox for the correlated RESPONSE, with the spec's 5s
// timeout. On timeout it returns haveInfo=false so the greeting proceeds
// without an estimate announcement (§5).
func (w *Worker) fetchQueueInfo(ctx context.Context) (domain.VehicleQueueInfo, bool) {
	req := message.New(message.TopicNetwork, message.KindCommand, message.GetQueueVehicleInfoRequest{})
	putCtx, cancel := context.WithTimeout(ctx, w.cfg.QueueInfoTimeout)
	defer cancel()
	if err := w.network.Put(putCtx, req); err != nil {
		w.log.Warnf("primary: queue-info request dropped: %v", err)
		return domain.VehicleQueueInfo{}, false
	}

	deadline := time.Now().Add(w.cfg.QueueInfoTimeout)
	for time.Now().Before(deadline) {
		getCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		m, err := w.inbox.Get(getCtx)
		cancel()
		if err != nil {
			continue
		}
		if m.CorrelationID != req.ID {
			w.applyInboxMessage(m)
			continue
		}
		if info, ok := m.Payload.(message.QueueVehicleInfoPayload); ok {
			return info.Info, true
		}
	}
	w.log.Warnf("primary: queue-info request timed out after %s", w.cfg.QueueInfoTimeout)
	return domain.VehicleQueueInfo{}, false
}

// generateAndDeliver runs GENERATING_TICKET through VEHICLE_STAYING: it
// obtains a tentative sequence number, builds the ticket, hands it to
// Network, prints it, and opens the gate on success.
func (w *Worker) generateAndDeliver(ctx context.Context) {
	ticket, err := w.generateTicket()
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeInvalidTicketNumber) {
			// §7: InvalidTicketNumber indicates programmer error or
			// corrupted state and must not be caught silently.
			w.log.Errorf("primary: invalid ticket number, failing loudly: %v", err)
			panic(err)
		}
		w.log.Warnf("primary: ticket generation failed: %v", err)
		_ = w.fire(ctx, eventAbortInvalidConfig)
		return
	}
	w.ticket = &ticket
	if err := w.fire(ctx, eventTicketGenerated); err != nil {
		return
	}
	w.sound.Play("taking_ticket")

	w.sendRegisterTicket(ctx, ticket)
	if err := w.fire(ctx, eventDataSent); err != nil {
		return
	}

	if err := w.printTicket(ticket); err != nil {
		w.log.Warnf("primary: print failed: %v", err)
		w.seq.Rollback()
		_ = w.fire(ctx, eventPrinterError)
		w.reportStatus(ctx, domain.StatusPrinterError)
		w.sound.Play("printer_error")
		w.sleep(ctx, w.cfg.PrintErrorAudio)
		_ = w.fire(ctx, eventPrintFailureHandled)
		w.waitVehicleLeaves(ctx)
		return
	}

	seqNum, _ := ticketSequence(ticket.TicketNumber)
	if err := w.seq.Commit(seqNum); err != nil {
		w.log.Warnf("primary: cursor commit failed: %v", err)
	}
	_ = w.fire(ctx, eventPrintDone)
	w.reportStatus(ctx, domain.StatusFine)

	if err := w.gate.Pulse(200 * time.Millisecond); err != nil {
		w.log.Warnf("primary: gate pulse failed: %v", err)
	}
	_ = w.fire(ctx, eventGateOpened)
	w.waitVehicleLeaves(ctx)
}

// waitVehicleLeaves blocks in VEHICLE_STAYING until the loop sensor
// clears, per §4.1 ("keeps the gate closed until the loop sensor
// clears").
func (w *Worker) waitVehicleLeaves(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.ButtonPollPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !w.loopSensor.IsActive() {
				_ = w.fire(ctx, eventVehicleEnter)
				return
			}
		}
	}
}

func (w *Worker) generateTicket() (domain.Ticket, error) {
	if w.selectedService == nil {
		return domain.Ticket{}, domain.New("primary.generateTicket", domain.ErrCodeInvalidConfig, "no service selected")
	}
	n, err := w.seq.Next()
	if err != nil {
		return domain.Ticket{}, err
	}
	num, err := buildTicketNumber(w.selectedService.ID, n)
	if err != nil {
		return domain.Ticket{}, err
	}
	return domain.Ticket{
		ServiceType:  w.selectedService.ID,
		TicketNumber: num,
		EntryTime:    time.Now().UTC(),
	}, nil
}

func (w *Worker) sendRegisterTicket(ctx context.Context, t domain.Ticket) {
	putCtx, cancel := context.WithTimeout(ctx, w.cfg.QueueInfoTimeout)
	defer cancel()
	m := message.New(message.TopicNetwork, message.KindEvent, message.RegisterTicketPayload{Ticket: t})
	if err := w.network.Put(putCtx, m); err != nil {
		w.log.Warnf("primary: register-ticket dropped: %v", err)
	}
}

func (w *Worker) printTicket(t domain.Ticket) error {
	if err := w.printer.Set("default", true, 2, 2, printer.AlignCenter); err != nil {
		return err
	}
	if err := w.printer.Text("TICKET"); err != nil {
		return err
	}
	if err := w.printer.Barcode(t.TicketNumber, 80, 2, printer.BarcodePositionBelow); err != nil {
		return err
	}
	return w.printer.Cut()
}

func (w *Worker) reportStatus(ctx context.Context, status domain.DeviceStatus) {
	putCtx, cancel := context.WithTimeout(ctx, w.cfg.QueueInfoTimeout)
	defer cancel()
	m := message.New(message.TopicIndicator, message.KindEvent, message.DeviceStatusPayload{Status: status})
	if err := w.indicator.Put(putCtx, m); err != nil {
		w.log.Warnf("primary: status report dropped: %v", err)
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// ticketSequence extracts the 7-digit sequence segment (positions 5-11,
// 0-indexed) back out of a built ticket number, for the Commit call.
func ticketSequence(ticketNumber string) (uint64, error) {
	if len(ticketNumber) != 13 {
		return 0, domain.New("primary.ticketSequence", domain.ErrCodeInvalidTicketNumber, "malformed ticket number")
	}
	n, err := strconv.ParseUint(ticketNumber[5:12], 10, 64)
	if err != nil {
		return 0, domain.Wrap("primary.ticketSequence", domain.ErrCodeInvalidTicketNumber, err)
	}
	return n, nil
}
