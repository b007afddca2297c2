package jogging

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/audio"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/clock"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/metrics"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/records"
)

var epoch = time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

// allResources is a resource dir with every sound the session uses
var allResources = []string{
	"light_music.mp3",
	"Audio/city_lofi.mp3",
	"nature_ambient.mp3",
	"metronome_click.wav",
	"completion_chime.flac",
}

var discardLogger = log.New(io.Discard, "", 0)

type sessionFixture struct {
	t        *testing.T
	loop     *clock.Loop
	backend  *audio.FakeBackend
	metrics  *metrics.Metrics
	log      *records.Log
	session  *SessionManager
	feedback int
}

// newSessionFixture builds a manager on a manual loop, a fake backend and an
// in-memory record log. files are created empty under the resource dir.
func newSessionFixture(t *testing.T, prefs Preferences, files ...string) *sessionFixture {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	f := &sessionFixture{
		t:       t,
		loop:    clock.NewManualLoop(epoch),
		backend: audio.NewFakeBackend(),
		metrics: metrics.NewUnregistered(),
		log:     records.NewLog(records.NewMemoryBackend(), discardLogger),
	}
	f.session = NewSessionManager(NewSessionManagerArg{
		Loop:        f.loop,
		Backend:     f.backend,
		Resolver:    audio.NewResolver(dir),
		Records:     f.log,
		Logger:      discardLogger,
		Feedback:    FeedbackFunc(func() { f.feedback++ }),
		Metrics:     f.metrics,
		Preferences: prefs,
	})
	t.Cleanup(f.session.Shutdown)
	return f
}

func newDefaultFixture(t *testing.T) *sessionFixture {
	return newSessionFixture(t, DefaultPreferences(), allResources...)
}

// advance moves the clock in one-second steps so gauge checks see every tick
func (f *sessionFixture) advance(d time.Duration) {
	for d > 0 {
		step := min(d, time.Second)
		f.loop.Advance(step)
		d -= step
		f.assertSingleTasks()
	}
}

func (f *sessionFixture) assertSingleTasks() {
	f.t.Helper()
	kinds := []string{
		TaskElapsedTick, TaskMetronomeLoop, TaskBackgroundStop,
		"background-fade", "metronome-a-fade", "metronome-b-fade", "chime-fade", "chime-hold",
	}
	for _, kind := range kinds {
		v := testutil.ToFloat64(f.metrics.ActiveTasks.WithLabelValues(kind))
		assert.LessOrEqual(f.t, v, 1.0, "active %s tasks", kind)
		assert.GreaterOrEqual(f.t, v, 0.0, "active %s tasks", kind)
	}
}

func (f *sessionFixture) state() SessionState {
	return f.session.Snapshot()
}

// clicks reads the metronome counter on the loop
func (f *sessionFixture) clicks() int {
	var n int
	f.loop.Do(func() { n = f.session.metronome.Clicks() })
	return n
}

func (f *sessionFixture) transitions(from, to Status) float64 {
	return testutil.ToFloat64(f.metrics.SessionTransitions.WithLabelValues(from.String(), to.String()))
}
