package gpio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockOutputTracksPulses(t *testing.T) {
	out := NewMockOutput()
	require := assert.New(t)

	require.Equal(0, out.PulseCount())
	out.Pulse(50 * time.Millisecond)
	require.Equal(1, out.PulseCount())
	require.False(out.IsOn(), "pulse leaves the line off once it returns")
}

func TestMockInputSetActive(t *testing.T) {
	in := NewMockInput(false)
	assert.False(t, in.IsActive())
	in.SetActive(true)
	assert.True(t, in.IsActive())
	assert.Equal(t, 2, in.CallCount())
}
