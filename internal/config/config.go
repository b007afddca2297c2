// Package config loads the jogging timer's settings from an optional YAML
// file, JOGGING_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

// EnvPrefix prefixes environment overrides, e.g. JOGGING_SESSION_METRONOME_BPM
const EnvPrefix = "JOGGING"

type Config struct {
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Audio   AudioConfig   `mapstructure:"audio" yaml:"audio"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SessionConfig holds the preferences applied to a new session
type SessionConfig struct {
	TargetMinutes    int    `mapstructure:"target_minutes" yaml:"target_minutes"`
	Soundscape       string `mapstructure:"soundscape" yaml:"soundscape"`
	MetronomeEnabled bool   `mapstructure:"metronome_enabled" yaml:"metronome_enabled"`
	MetronomeBPM     int    `mapstructure:"metronome_bpm" yaml:"metronome_bpm"`
}

type AudioConfig struct {
	Backend     string `mapstructure:"backend" yaml:"backend"`
	ResourceDir string `mapstructure:"resource_dir" yaml:"resource_dir"`
	SampleRate  int    `mapstructure:"sample_rate" yaml:"sample_rate"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	Dir     string `mapstructure:"dir" yaml:"dir"`
}

type LoggingConfig struct {
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

var (
	audioBackends   = []string{"beep", "pulse", "none"}
	storageBackends = []string{"file", "sqlite", "memory"}
)

// DefaultDir is where the config file, records and log live by default
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".jogging-timer")
}

func setDefaults(v *viper.Viper) {
	dir := DefaultDir()
	v.SetDefault("session.target_minutes", 30)
	v.SetDefault("session.soundscape", "light")
	v.SetDefault("session.metronome_enabled", true)
	v.SetDefault("session.metronome_bpm", 180)
	v.SetDefault("audio.backend", "beep")
	v.SetDefault("audio.resource_dir", "assets")
	v.SetDefault("audio.sample_rate", 44100)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.dir", dir)
	v.SetDefault("logging.file", filepath.Join(dir, "jogging-timer.log"))
	v.SetDefault("logging.max_size_mb", 5)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 28)
}

// flagKeys maps command line flags to config keys
var flagKeys = map[string]string{
	"target-minutes":  "session.target_minutes",
	"soundscape":      "session.soundscape",
	"metronome":       "session.metronome_enabled",
	"bpm":             "session.metronome_bpm",
	"audio-backend":   "audio.backend",
	"resource-dir":    "audio.resource_dir",
	"storage-backend": "storage.backend",
	"storage-dir":     "storage.dir",
	"log-file":        "logging.file",
}

// RegisterFlags adds the configuration flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default "+filepath.Join(DefaultDir(), "config.yaml")+")")
	fs.Int("target-minutes", 30, "session target in minutes")
	fs.String("soundscape", "light", "background soundscape: light, nature, city or focus")
	fs.Bool("metronome", true, "play the metronome click")
	fs.Int("bpm", 180, "metronome beats per minute")
	fs.String("audio-backend", "beep", "audio output: beep, pulse or none")
	fs.String("resource-dir", "assets", "directory holding the sound files")
	fs.String("storage-backend", "file", "record storage: file, sqlite or memory")
	fs.String("storage-dir", DefaultDir(), "directory for stored records")
	fs.String("log-file", filepath.Join(DefaultDir(), "jogging-timer.log"), "log file")
}

// Loader reads configuration and watches the config file for changes
type Loader struct {
	v      *viper.Viper
	logger *log.Logger
}

// NewLoader sets up the sources for a Loader. fs must have been passed to
// RegisterFlags and parsed. A missing default config file is not an error;
// a missing file named by --config is.
func NewLoader(fs *pflag.FlagSet, logger *log.Logger) (*Loader, error) {
	if logger == nil {
		panic("Loader: logger cannot be nil")
	}
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	explicit := ""
	if fs != nil {
		explicit, _ = fs.GetString("config")
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		logger.Printf("Config: no config file, using defaults")
	} else {
		logger.Printf("Config: using %s", v.ConfigFileUsed())
	}

	return &Loader{v: v, logger: logger}, nil
}

// Load returns the current merged configuration
func (l *Loader) Load() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFile returns the config file in use, or ""
func (l *Loader) ConfigFile() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration whenever the config
// file is written. Invalid edits are logged and skipped. It does nothing when
// no config file is in use.
func (l *Loader) Watch(onChange func(Config)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.logger.Printf("Config: %s changed (%s)", e.Name, e.Op)
		cfg, err := l.Load()
		if err != nil {
			l.logger.Printf("Config: reload rejected: %v", err)
			return
		}
		onChange(cfg)
	})
	l.v.WatchConfig()
}

// Validate checks enumerations and ranges
func (c Config) Validate() error {
	if c.Session.TargetMinutes < 0 {
		return fmt.Errorf("%w: session.target_minutes must be >= 0, got %d", ErrInvalid, c.Session.TargetMinutes)
	}
	if c.Session.MetronomeBPM <= 0 {
		return fmt.Errorf("%w: session.metronome_bpm must be > 0, got %d", ErrInvalid, c.Session.MetronomeBPM)
	}
	if !oneOf(c.Audio.Backend, audioBackends) {
		return fmt.Errorf("%w: audio.backend %q (supported: %s)", ErrInvalid, c.Audio.Backend, strings.Join(audioBackends, ", "))
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio.sample_rate must be > 0, got %d", ErrInvalid, c.Audio.SampleRate)
	}
	if !oneOf(c.Storage.Backend, storageBackends) {
		return fmt.Errorf("%w: storage.backend %q (supported: %s)", ErrInvalid, c.Storage.Backend, strings.Join(storageBackends, ", "))
	}
	return nil
}

func oneOf(s string, options []string) bool {
	for _, o := range options {
		if s == o {
			return true
		}
	}
	return false
}
