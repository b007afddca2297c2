package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion_PreloadedOnConstruction(t *testing.T) {
	f := newFixture(t, "Audio/completion_chime.mp3")
	c := NewCompletionChannel(f.args(""), ResourceCompletionChime)

	assert.True(t, c.Channel().Loaded())
	assert.Len(t, f.backend.PlayersFor("completion_chime"), 1)
	assert.False(t, c.Sounding())
}

func TestCompletion_TriggerHoldsThenFadesOut(t *testing.T) {
	f := newFixture(t, "completion_chime.flac")
	c := NewCompletionChannel(f.args(""), ResourceCompletionChime)
	p := f.backend.PlayersFor("completion_chime")[0]

	c.Trigger()
	assert.True(t, c.Sounding())
	assert.Equal(t, 1.0, p.Volume())
	assert.Equal(t, 1, p.Plays())

	f.loop.Advance(ChimeAudibleFor)
	assert.True(t, c.Sounding())
	assert.Equal(t, 1.0, p.Volume())

	f.loop.Advance(ChimeFadeOut / 2)
	assert.True(t, c.Sounding())
	assert.Less(t, p.Volume(), 1.0)

	f.loop.Advance(ChimeFadeOut)
	assert.False(t, c.Sounding())
	assert.Equal(t, 1.0, p.Volume(), "volume reset for reuse")
	assert.Equal(t, 0, f.loop.Pending())

	// reusable
	c.Trigger()
	assert.Equal(t, 2, p.Plays())
}

func TestCompletion_StopDuringHold(t *testing.T) {
	f := newFixture(t, "completion_chime.wav")
	c := NewCompletionChannel(f.args(""), ResourceCompletionChime)
	p := f.backend.PlayersFor("completion_chime")[0]

	c.Trigger()
	f.loop.Advance(time.Second)
	c.Stop()
	traceLen := len(p.VolumeTrace())

	f.loop.Advance(10 * time.Second)
	assert.False(t, c.Sounding())
	assert.Equal(t, 1.0, p.Volume())
	assert.Len(t, p.VolumeTrace(), traceLen)
}

func TestCompletion_MissingChimeIsSilent(t *testing.T) {
	f := newFixture(t)
	c := NewCompletionChannel(f.args(""), ResourceCompletionChime)
	require.Len(t, f.missing, 1)

	c.Trigger()
	assert.False(t, c.Sounding())
	assert.Equal(t, 0, f.loop.Pending())
}
