package audio

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/clock"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

var testSoundscape = Resource{Name: "light_music", Extensions: []string{"mp3"}}

type fixture struct {
	loop     *clock.Loop
	backend  *FakeBackend
	resolver *Resolver
	missing  []Resource
}

// newFixture creates a resource dir holding the given files (relative paths)
func newFixture(t *testing.T, files ...string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	return &fixture{
		loop:     clock.NewManualLoop(epoch),
		backend:  NewFakeBackend(),
		resolver: NewResolver(dir),
	}
}

func (f *fixture) args(name string) ChannelArgs {
	return ChannelArgs{
		Name:      name,
		Scheduler: f.loop,
		Backend:   f.backend,
		Resolver:  f.resolver,
		Logger:    log.New(io.Discard, "", 0),
		OnMissing: func(res Resource, _ error) { f.missing = append(f.missing, res) },
	}
}

func isNonDecreasing(trace []float64) bool {
	for i := 1; i < len(trace); i++ {
		if trace[i] < trace[i-1] {
			return false
		}
	}
	return true
}

func isNonIncreasing(trace []float64) bool {
	for i := 1; i < len(trace); i++ {
		if trace[i] > trace[i-1] {
			return false
		}
	}
	return true
}
