package audio

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedChannel(t *testing.T, f *fixture) (*Channel, *FakePlayer) {
	t.Helper()
	ch := NewChannel(f.args("test"))
	require.NoError(t, ch.Load(testSoundscape))
	players := f.backend.PlayersFor("light_music")
	require.Len(t, players, 1)
	return ch, players[0]
}

func TestChannel_FadeCanceledMidwayContinuesFromReachedVolume(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	ch, player := loadedChannel(t, f)

	ch.SetVolumeImmediate(0)
	base := len(player.VolumeTrace())

	first := ch.FadeTo(1.0, time.Second, nil)
	f.loop.Advance(500 * time.Millisecond)
	reached := ch.Volume()
	assert.InDelta(t, 0.5, reached, 0.02)
	mid := len(player.VolumeTrace())

	second := ch.FadeTo(0.3, 200*time.Millisecond, nil)

	// the first fade resolves as canceled without touching the volume
	select {
	case <-first.Done():
	default:
		t.Fatal("first fade not resolved after cancel")
	}
	assert.False(t, first.Completed())
	assert.Equal(t, reached, ch.Volume())
	assert.Len(t, player.VolumeTrace(), mid)

	f.loop.Advance(time.Second)
	assert.True(t, second.Completed())
	assert.Equal(t, 0.3, ch.Volume())
	assert.False(t, ch.Fading())

	trace := player.VolumeTrace()
	up, down := trace[base:mid], trace[mid:]
	require.NotEmpty(t, up)
	require.NotEmpty(t, down)
	assert.True(t, isNonDecreasing(up), "rising segment %v", up)
	assert.True(t, isNonIncreasing(down), "falling segment %v", down)
	assert.LessOrEqual(t, down[0], reached)
	assert.InDelta(t, reached, down[0], 0.05)
	assert.Equal(t, 0.3, down[len(down)-1])
	for _, v := range trace {
		assert.True(t, v >= 0 && v <= 1)
	}
}

func TestChannel_FadeStepsAtSixtyHertz(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	ch, player := loadedChannel(t, f)
	ch.SetVolumeImmediate(0)
	base := len(player.VolumeTrace())

	done := false
	ch.FadeTo(1, time.Second, func() { done = true })

	f.loop.Advance(980 * time.Millisecond)
	assert.False(t, done)
	f.loop.Advance(time.Second)
	assert.True(t, done)

	steps := int(time.Second / FadeStepInterval)
	assert.Len(t, player.VolumeTrace()[base:], steps)
	assert.Equal(t, 1.0, ch.Volume())
}

func TestChannel_ZeroDurationFadeIsSynchronous(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	ch, _ := loadedChannel(t, f)

	called := false
	fade := ch.FadeTo(0.4, 0, func() { called = true })

	assert.True(t, called)
	assert.True(t, fade.Completed())
	assert.Equal(t, 0.4, ch.Volume())
	assert.Equal(t, 0, f.loop.Pending())
	select {
	case <-fade.Done():
	default:
		t.Fatal("zero duration fade not resolved")
	}
}

func TestChannel_CanceledFadeSkipsCompletion(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	ch, _ := loadedChannel(t, f)

	called := false
	fade := ch.FadeTo(0, time.Second, func() { called = true })
	f.loop.Advance(100 * time.Millisecond)
	ch.CancelFade()
	f.loop.Advance(2 * time.Second)

	assert.False(t, called)
	assert.False(t, fade.Completed())
	assert.Less(t, ch.Volume(), 1.0)
	assert.Greater(t, ch.Volume(), 0.0)
}

func TestChannel_StopCancelsFade(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	ch, player := loadedChannel(t, f)

	ch.Play()
	ch.FadeTo(0, time.Second, nil)
	ch.Stop()
	traceLen := len(player.VolumeTrace())
	f.loop.Advance(2 * time.Second)

	assert.False(t, ch.IsPlaying())
	assert.Equal(t, 1, player.Stops())
	assert.Len(t, player.VolumeTrace(), traceLen)
}

func TestChannel_MissingResourceStaysUnloaded(t *testing.T) {
	f := newFixture(t)
	ch := NewChannel(f.args("test"))

	err := ch.Load(testSoundscape)
	assert.True(t, errors.Is(err, ErrResourceNotFound))
	assert.False(t, ch.Loaded())
	assert.Equal(t, []Resource{testSoundscape}, f.missing)

	// playback calls are skipped
	ch.Play()
	ch.Pause()
	ch.Stop()
	assert.False(t, ch.IsPlaying())

	fade := ch.FadeTo(0.6, time.Second, nil)
	assert.True(t, fade.Completed())
	assert.Equal(t, 0, f.loop.Pending())
}

func TestChannel_OpenFailureStaysUnloaded(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	f.backend.OpenErr = errors.New("bad header")
	ch := NewChannel(f.args("test"))

	err := ch.Load(testSoundscape)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad header")
	assert.False(t, ch.Loaded())
	assert.Len(t, f.missing, 1)
}

func TestChannel_UnloadClosesPlayer(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	ch, player := loadedChannel(t, f)
	ch.SetLooping(true)
	assert.True(t, player.Looping())

	ch.Unload()
	assert.True(t, player.Closed())
	assert.False(t, ch.Loaded())
	assert.Equal(t, Resource{}, ch.Resource())
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0.0, ClampVolume(-0.5))
	assert.Equal(t, 1.0, ClampVolume(1.5))
	assert.Equal(t, 0.25, ClampVolume(0.25))
}
