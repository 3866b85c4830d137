package primary

import (
	"context"
	"testing"

	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSM() (*fsm.FSM, *int) {
	clears := 0
	f := newFSM(func(ctx context.Context, e *fsm.Event) {
		clears++
	})
	return f, &clears
}

func TestArrivedMovesIdleToGreeting(t *testing.T) {
	f, _ := newTestFSM()
	require.NoError(t, f.Event(context.Background(), eventArrived))
	assert.Equal(t, StateGreeting, f.Current())
}

func TestInvalidEventLeavesStateUnchanged(t *testing.T) {
	// Invariant 3: an event not listed for the current state is a no-op.
	f, _ := newTestFSM()
	err := f.Event(context.Background(), eventServiceSelected)
	assert.Error(t, err)
	assert.Equal(t, StateIdle, f.Current())
}

func TestEnteringIdleClearsContext(t *testing.T) {
	f, clears := newTestFSM()
	require.NoError(t, f.Event(context.Background(), eventArrived))
	require.NoError(t, f.Event(context.Background(), eventGreetingDone))
	require.NoError(t, f.Event(context.Background(), eventLeaveWithoutSelecting))
	assert.Equal(t, StateIdle, f.Current())
	assert.Equal(t, 1, *clears)
}

func TestFullHappyPathSequenceReachesIdle(t *testing.T) {
	f, _ := newTestFSM()
	ctx := context.Background()
	steps := []string{
		eventArrived, eventGreetingDone, eventServiceSelected,
		eventTicketGenerated, eventDataSent, eventPrintDone,
		eventGateOpened, eventVehicleEnter,
	}
	for _, ev := range steps {
		require.NoError(t, f.Event(ctx, ev))
	}
	assert.Equal(t, StateIdle, f.Current())
}

func TestPrinterErrorPathReachesVehicleStayingThenIdle(t *testing.T) {
	f, _ := newTestFSM()
	ctx := context.Background()
	steps := []string{
		eventArrived, eventGreetingDone, eventServiceSelected,
		eventTicketGenerated, eventDataSent, eventPrinterError,
		eventPrintFailureHandled, eventVehicleEnter,
	}
	for _, ev := range steps {
		require.NoError(t, f.Event(ctx, ev))
	}
	assert.Equal(t, StateIdle, f.Current())
}
