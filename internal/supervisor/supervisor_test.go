package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClipSetCoversNamedDigitAndServiceClips(t *testing.T) {
	clips := clipSet("/opt/dispenser/sounds")

	assert.Equal(t, "/opt/dispenser/sounds/welcome.wav", clips["welcome"])
	assert.Equal(t, "/opt/dispenser/sounds/new_welcome.wav", clips["new_welcome"])
	assert.Equal(t, "/opt/dispenser/sounds/system_ready.wav", clips["system_ready"])
	assert.Equal(t, "/opt/dispenser/sounds/taking_ticket.wav", clips["taking_ticket"])
	assert.Equal(t, "/opt/dispenser/sounds/17.wav", clips["17"])
	assert.Equal(t, "/opt/dispenser/sounds/service_2.wav", clips["service_2"])
	assert.Len(t, clips, 11+100+4)
}
