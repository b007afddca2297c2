package jogging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSoundscape(t *testing.T) {
	for _, info := range AllSoundscapes {
		s, err := ParseSoundscape(info.Key)
		require.NoError(t, err)
		assert.Equal(t, info.Soundscape, s)
	}

	s, err := ParseSoundscape(" City ")
	require.NoError(t, err)
	assert.Equal(t, SoundscapeCity, s)

	_, err = ParseSoundscape("jungle")
	assert.ErrorContains(t, err, "light, nature, city, focus")
}

func TestSoundscape_Metadata(t *testing.T) {
	assert.Equal(t, "city_lofi", SoundscapeCity.Resource().Name)
	assert.Equal(t, []string{"mp3"}, SoundscapeCity.Resource().Extensions)
	assert.Equal(t, "City morning", SoundscapeCity.Label())
	assert.Equal(t, "focus", SoundscapeFocus.String())
	assert.Equal(t, SoundscapeLight, SoundscapeFocus.Next())
	assert.Equal(t, SoundscapeLight, Soundscape(99).Next())
	assert.False(t, Soundscape(99).Valid())
	assert.Equal(t, "light", Soundscape(99).String())
}

func TestUIModeKeys(t *testing.T) {
	mode, ok := GetUIModeByKey('2')
	require.True(t, ok)
	assert.Equal(t, UIModeRecords, mode)

	_, ok = GetUIModeByKey('9')
	assert.False(t, ok)

	info, ok := GetUIModeInfo(UIModeDashboard)
	require.True(t, ok)
	assert.Equal(t, "Session", info.DisplayName)
}

func TestSessionState_Progress(t *testing.T) {
	cases := []struct {
		name    string
		elapsed time.Duration
		target  time.Duration
		want    float64
	}{
		{"no target", 10 * time.Second, 0, 0},
		{"negative target", 10 * time.Second, -time.Second, 0},
		{"start", 0, time.Minute, 0},
		{"half", 30 * time.Second, time.Minute, 0.5},
		{"past target", 2 * time.Minute, time.Minute, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := SessionState{Elapsed: tc.elapsed, Target: tc.target}
			assert.InDelta(t, tc.want, s.Progress(), 1e-9)
		})
	}
}

func TestSessionState_Formatting(t *testing.T) {
	s := SessionState{Elapsed: 125 * time.Second, Target: 30 * time.Minute}
	assert.Equal(t, "2:05", s.FormattedElapsed())
	assert.Equal(t, "27:55 left", s.FormattedRemaining())
	assert.Equal(t, 30, s.TargetMinutes())

	s.Elapsed = 31 * time.Minute
	assert.Equal(t, time.Duration(0), s.Remaining())
	assert.Equal(t, "0:00 left", s.FormattedRemaining())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[green]█████[gray]░░░░░[white]", progressBar(0.5, 10))
	assert.Equal(t, "[green][gray]░░░░[white]", progressBar(-1, 4))
	assert.Equal(t, "[green]████[gray][white]", progressBar(2, 4))
}
