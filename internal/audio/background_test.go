package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackground_StartFadesInLooping(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	bg := NewBackgroundChannel(f.args(""))

	fade := bg.Start(testSoundscape)
	players := f.backend.PlayersFor("light_music")
	require.Len(t, players, 1)
	p := players[0]

	assert.True(t, p.Looping())
	assert.True(t, p.IsPlaying())
	assert.Equal(t, 0.0, bg.Channel().Volume())

	f.loop.Advance(BackgroundFadeIn)
	assert.True(t, fade.Completed())
	assert.Equal(t, BackgroundVolume, p.Volume())
	assert.True(t, isNonDecreasing(p.VolumeTrace()[1:]))
}

func TestBackground_PauseResume(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	bg := NewBackgroundChannel(f.args(""))
	bg.Start(testSoundscape)
	f.loop.Advance(time.Second)
	p := f.backend.PlayersFor("light_music")[0]

	bg.PauseWithFade()
	assert.True(t, p.IsPlaying(), "pause waits for the fade")
	f.loop.Advance(BackgroundPauseFade)
	assert.False(t, p.IsPlaying())
	assert.Equal(t, 0.0, p.Volume())
	assert.Equal(t, 1, p.Pauses())

	bg.Resume(testSoundscape)
	assert.Equal(t, 1, f.backend.Activations())
	assert.True(t, p.IsPlaying())
	f.loop.Advance(BackgroundResumeFade)
	assert.Equal(t, BackgroundVolume, p.Volume())
	assert.Len(t, f.backend.Players(), 1)
}

func TestBackground_ResumeWithNothingLoadedStarts(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	bg := NewBackgroundChannel(f.args(""))

	bg.Resume(testSoundscape)
	f.loop.Advance(BackgroundFadeIn)

	require.Len(t, f.backend.Players(), 1)
	assert.Equal(t, BackgroundVolume, bg.Channel().Volume())
}

func TestBackground_ResumeSwitchesSoundscape(t *testing.T) {
	f := newFixture(t, "light_music.mp3", "Audio/city_lofi.mp3")
	bg := NewBackgroundChannel(f.args(""))
	bg.Start(testSoundscape)
	f.loop.Advance(BackgroundFadeIn)
	bg.PauseWithFade()
	f.loop.Advance(BackgroundPauseFade)
	light := f.backend.PlayersFor("light_music")[0]

	bg.Resume(Resource{Name: "city_lofi", Extensions: []string{"mp3"}})
	f.loop.Advance(BackgroundFadeIn)

	assert.True(t, light.Closed())
	assert.Equal(t, 1, light.Plays())
	city := f.backend.PlayersFor("city_lofi")
	require.Len(t, city, 1)
	assert.True(t, city[0].IsPlaying())
	assert.Equal(t, BackgroundVolume, city[0].Volume())
	assert.Equal(t, "city_lofi", bg.Channel().Resource().Name)
}

func TestBackground_DuckThenStop(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	bg := NewBackgroundChannel(f.args(""))
	bg.Start(testSoundscape)
	f.loop.Advance(time.Second)
	p := f.backend.PlayersFor("light_music")[0]

	bg.Duck()
	f.loop.Advance(BackgroundDuckFade)
	assert.Equal(t, BackgroundDuckVolume, p.Volume())
	assert.True(t, p.IsPlaying())

	bg.Stop()
	assert.True(t, p.Closed())
	assert.False(t, bg.Channel().Loaded())
}

func TestBackground_SuspendKeepsVolume(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	bg := NewBackgroundChannel(f.args(""))
	bg.Start(testSoundscape)
	f.loop.Advance(time.Second)
	p := f.backend.PlayersFor("light_music")[0]

	bg.Suspend()
	assert.True(t, bg.Suspended())
	assert.False(t, p.IsPlaying())
	assert.Equal(t, BackgroundVolume, p.Volume())

	bg.Unsuspend()
	assert.False(t, bg.Suspended())
	assert.True(t, p.IsPlaying())
	assert.Equal(t, 1, f.backend.Activations())
}

func TestBackground_SuspendWhilePausedIsNoop(t *testing.T) {
	f := newFixture(t, "light_music.mp3")
	bg := NewBackgroundChannel(f.args(""))
	bg.Start(testSoundscape)
	bg.PauseWithFade()
	f.loop.Advance(time.Second)

	bg.Suspend()
	assert.False(t, bg.Suspended())
	bg.Unsuspend()
	assert.False(t, bg.Channel().IsPlaying())
}

func TestBackground_MissingResourceIsSilent(t *testing.T) {
	f := newFixture(t)
	bg := NewBackgroundChannel(f.args(""))

	fade := bg.Start(testSoundscape)
	assert.True(t, fade.Completed())
	assert.False(t, bg.Channel().Loaded())
	assert.Equal(t, []Resource{testSoundscape}, f.missing)
	assert.Equal(t, 0, f.loop.Pending())
}
