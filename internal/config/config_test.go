package config

import (
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	l, err := NewLoader(newFlags(t), testLogger())
	require.NoError(t, err)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Session.TargetMinutes)
	assert.Equal(t, "light", cfg.Session.Soundscape)
	assert.True(t, cfg.Session.MetronomeEnabled)
	assert.Equal(t, 180, cfg.Session.MetronomeBPM)
	assert.Equal(t, "beep", cfg.Audio.Backend)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, DefaultDir(), cfg.Storage.Dir)
	assert.Equal(t, 5, cfg.Logging.MaxSizeMB)
	assert.Empty(t, l.ConfigFile())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
session:
  target_minutes: 45
  soundscape: nature
  metronome_bpm: 160
storage:
  backend: sqlite
`)
	t.Setenv("JOGGING_SESSION_METRONOME_BPM", "90")
	t.Setenv("JOGGING_AUDIO_BACKEND", "none")

	l, err := NewLoader(newFlags(t, "--config", path, "--soundscape", "city"), testLogger())
	require.NoError(t, err)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, path, l.ConfigFile())
	assert.Equal(t, 45, cfg.Session.TargetMinutes, "file over default")
	assert.Equal(t, "city", cfg.Session.Soundscape, "flag over file")
	assert.Equal(t, 90, cfg.Session.MetronomeBPM, "env over file")
	assert.Equal(t, "none", cfg.Audio.Backend, "env over default")
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestNewLoader_MissingExplicitFile(t *testing.T) {
	_, err := NewLoader(newFlags(t, "--config", filepath.Join(t.TempDir(), "nope.yaml")), testLogger())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Session: SessionConfig{TargetMinutes: 30, MetronomeBPM: 180},
		Audio:   AudioConfig{Backend: "pulse", SampleRate: 48000},
		Storage: StorageConfig{Backend: "memory"},
	}
	require.NoError(t, valid.Validate())

	for name, mutate := range map[string]func(*Config){
		"negative target": func(c *Config) { c.Session.TargetMinutes = -1 },
		"zero bpm":        func(c *Config) { c.Session.MetronomeBPM = 0 },
		"audio backend":   func(c *Config) { c.Audio.Backend = "alsa" },
		"sample rate":     func(c *Config) { c.Audio.SampleRate = 0 },
		"storage backend": func(c *Config) { c.Storage.Backend = "bolt" },
	} {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			err := c.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	path := writeConfig(t, "session:\n  metronome_bpm: -5\n")
	l, err := NewLoader(newFlags(t, "--config", path), testLogger())
	require.NoError(t, err)

	_, err = l.Load()
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "session:\n  target_minutes: 20\n")
	l, err := NewLoader(newFlags(t, "--config", path), testLogger())
	require.NoError(t, err)

	var mu sync.Mutex
	var got []int
	l.Watch(func(cfg Config) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, cfg.Session.TargetMinutes)
	})

	require.NoError(t, os.WriteFile(path, []byte("session:\n  target_minutes: 25\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == 25
	}, 5*time.Second, 20*time.Millisecond)
}
