package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siantika/dispenserd/internal/domain"
)

func fullClipSet() map[string]string {
	clips := map[string]string{"greeting": "/tmp/greeting.wav"}
	for _, name := range requiredClips {
		clips[name] = "/tmp/" + name + ".wav"
	}
	return clips
}

func TestPlayUnknownClipErrors(t *testing.T) {
	p := NewExecPlayer("true", nil)
	require.NoError(t, p.LoadMany(fullClipSet()))
	err := p.Play("missing")
	assert.Error(t, err)
}

func TestLoadManyErrorsOnMissingRequiredClip(t *testing.T) {
	p := NewExecPlayer("true", nil)
	err := p.LoadMany(map[string]string{"welcome": "/tmp/welcome.wav"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidConfig))
}

func TestLoadManyAcceptsCompleteClipSet(t *testing.T) {
	p := NewExecPlayer("true", nil)
	require.NoError(t, p.LoadMany(fullClipSet()))
}

func TestMockPlayerTracksCallsAndBusyState(t *testing.T) {
	m := NewMockPlayer()
	require.NoError(t, m.LoadMany(map[string]string{"greeting": "greeting.wav"}))

	assert.False(t, m.IsBusy())
	require.NoError(t, m.Play("greeting"))
	assert.True(t, m.IsBusy())
	assert.Equal(t, []string{"greeting"}, m.PlayCalls())

	m.Stop()
	assert.False(t, m.IsBusy())
	assert.Equal(t, 1, m.StopCalls())
}
