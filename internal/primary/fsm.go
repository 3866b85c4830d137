// Package primary implements the Primary worker (§4.1): the per-vehicle
// transaction state machine and the peripherals it owns (sensor,
// buttons, gate, printer, sound). States and transitions are encoded
// with github.com/looplab/fsm rather than a hand-rolled switch,
// following the looplab/fsm event/guard/enter-callback idiom grounded on
// cloupeer-cloupeer's vehicle controller FSM.
package primary

import (
	"context"

	"github.com/looplab/fsm"
)

// States, exactly as SPEC_FULL §4.1.
const (
	StateIdle              = "IDLE"
	StateGreeting          = "GREETING"
	StateSelectingService  = "SELECTING_SERVICE"
	StateGeneratingTicket  = "GENERATING_TICKET"
	StateSendingData       = "SENDING_DATA"
	StatePrintingTicket    = "PRINTING_TICKET"
	StateGateOpen          = "GATE_OPEN"
	StateFailedToPrint     = "FAILED_TO_PRINT"
	StateVehicleStaying    = "VEHICLE_STAYING"
)

// Events, exactly as SPEC_FULL §4.1. eventPrintFailureHandled realizes
// the unlabeled FAILED_TO_PRINT -> VEHICLE_STAYING hop in the state
// diagram as an explicit, named transition.
const (
	eventArrived               = "ARRIVED"
	eventGreetingDone          = "GREETING_DONE"
	eventServiceSelected       = "SERVICE_SELECTED"
	eventLeaveWithoutSelecting = "LEAVE_WITHOUT_SELECTING"
	eventTimeout               = "TIMEOUT"
	eventTicketGenerated       = "TICKET_GENERATED"
	eventDataSent              = "DATA_SENT"
	eventPrintDone             = "PRINT_DONE"
	eventPrinterError          = "PRINTER_ERROR"
	eventPrintFailureHandled   = "PRINT_FAILURE_HANDLED"
	eventGateOpened            = "GATE_OPENED"
	eventVehicleEnter          = "VEHICLE_ENTER"

	// eventAbortInvalidConfig realizes §7's "InvalidConfig ... fatal for
	// the current transaction; FSM returns to IDLE after logging" —
	// not part of the literal diagram, but the only transition that
	// gives that error-handling rule somewhere to go.
	eventAbortInvalidConfig = "ABORT_INVALID_CONFIG"
)

// newFSM builds the Primary state machine. The clearContext callback runs
// on every entry into IDLE, matching "entering IDLE clears the per-
// vehicle context" in §4.1.
func newFSM(clearContext func(ctx context.Context, e *fsm.Event)) *fsm.FSM {
	events := fsm.Events{
		{Name: eventArrived, Src: []string{StateIdle}, Dst: StateGreeting},
		{Name: eventGreetingDone, Src: []string{StateGreeting}, Dst: StateSelectingService},
		{Name: eventServiceSelected, Src: []string{StateSelectingService}, Dst: StateGeneratingTicket},
		{Name: eventLeaveWithoutSelecting, Src: []string{StateSelectingService}, Dst: StateIdle},
		{Name: eventTimeout, Src: []string{StateSelectingService}, Dst: StateIdle},
		{Name: eventTicketGenerated, Src: []string{StateGeneratingTicket}, Dst: StateSendingData},
		{Name: eventDataSent, Src: []string{StateSendingData}, Dst: StatePrintingTicket},
		{Name: eventPrintDone, Src: []string{StatePrintingTicket}, Dst: StateGateOpen},
		{Name: eventPrinterError, Src: []string{StatePrintingTicket}, Dst: StateFailedToPrint},
		{Name: eventPrintFailureHandled, Src: []string{StateFailedToPrint}, Dst: StateVehicleStaying},
		{Name: eventGateOpened, Src: []string{StateGateOpen}, Dst: StateVehicleStaying},
		{Name: eventVehicleEnter, Src: []string{StateVehicleStaying}, Dst: StateIdle},
		{Name: eventAbortInvalidConfig, Src: []string{StateGreeting, StateGeneratingTicket}, Dst: StateIdle},
	}

	callbacks := fsm.Callbacks{
		"enter_" + StateIdle: clearContext,
	}

	return fsm.NewFSM(StateIdle, events, callbacks)
}
