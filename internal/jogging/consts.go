package jogging

import (
	"fmt"
	"strings"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/audio"
)

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeDashboard UIMode = iota // Live session timer and controls
	UIModeRecords                 // Record history and summaries
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeDashboard, DisplayName: "Session", KeyBinding: '1'},
	{Mode: UIModeRecords, DisplayName: "Records", KeyBinding: '2'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// Soundscape is one of the fixed background ambience presets
type Soundscape int

const (
	SoundscapeLight  Soundscape = iota // Soft melodic music
	SoundscapeNature                   // Forest and waves
	SoundscapeCity                     // Early-morning lo-fi
	SoundscapeFocus                    // Ambient pulse
)

// SoundscapeInfo maps a soundscape to its audio asset and display metadata
type SoundscapeInfo struct {
	Soundscape Soundscape
	Key        string // config and flag value
	Asset      string // logical resource name, without extension
	Title      string
	Subtitle   string
	Emoji      string
}

// AllSoundscapes lists every soundscape in menu order
var AllSoundscapes = []SoundscapeInfo{
	{Soundscape: SoundscapeLight, Key: "light", Asset: "light_music", Title: "Light music", Subtitle: "Soothing melody", Emoji: "🎵"},
	{Soundscape: SoundscapeNature, Key: "nature", Asset: "nature_ambient", Title: "Nature sounds", Subtitle: "Forest / ocean waves", Emoji: "🌿"},
	{Soundscape: SoundscapeCity, Key: "city", Asset: "city_lofi", Title: "City morning", Subtitle: "Lo-fi low tempo", Emoji: "🌆"},
	{Soundscape: SoundscapeFocus, Key: "focus", Asset: "ambient_pulse", Title: "Focus ambience", Subtitle: "Ambient pulse", Emoji: "🫧"},
}

// Info returns the table entry for s. Unknown values map to the light preset.
func (s Soundscape) Info() SoundscapeInfo {
	for _, info := range AllSoundscapes {
		if info.Soundscape == s {
			return info
		}
	}
	return AllSoundscapes[0]
}

// Valid reports whether s is in AllSoundscapes
func (s Soundscape) Valid() bool {
	for _, info := range AllSoundscapes {
		if info.Soundscape == s {
			return true
		}
	}
	return false
}

// Resource returns the audio resource played for s
func (s Soundscape) Resource() audio.Resource {
	return audio.Resource{Name: s.Info().Asset, Extensions: []string{"mp3"}}
}

// Label is the text stored on records
func (s Soundscape) Label() string {
	return s.Info().Title
}

func (s Soundscape) String() string {
	return s.Info().Key
}

// Next cycles through AllSoundscapes
func (s Soundscape) Next() Soundscape {
	for i, info := range AllSoundscapes {
		if info.Soundscape == s {
			return AllSoundscapes[(i+1)%len(AllSoundscapes)].Soundscape
		}
	}
	return SoundscapeLight
}

// ParseSoundscape looks a soundscape up by its key
func ParseSoundscape(key string) (Soundscape, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	keys := make([]string, 0, len(AllSoundscapes))
	for _, info := range AllSoundscapes {
		if info.Key == key {
			return info.Soundscape, nil
		}
		keys = append(keys, info.Key)
	}
	return SoundscapeLight, fmt.Errorf("unknown soundscape %q (supported: %s)", key, strings.Join(keys, ", "))
}

// Status is the session's lifecycle state
type Status int

const (
	StatusIdle      Status = iota // No session, elapsed time is zero
	StatusRunning                 // Elapsed time is ticking
	StatusPaused                  // Ticking stopped, session kept
	StatusCompleted               // Target reached, waiting for acknowledgement
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Session defaults and limits
const (
	DefaultTargetMinutes = 30
	DefaultMetronomeBPM  = 180
	TickInterval         = time.Second
	metronomeSlowBPM     = 90
)

// MetronomeBPMPresets are the cadences offered by the dashboard
var MetronomeBPMPresets = []int{metronomeSlowBPM, DefaultMetronomeBPM}

// Task kinds tracked by the session manager
const (
	TaskElapsedTick    = "elapsed-tick"
	TaskMetronomeLoop  = "metronome-loop"
	TaskBackgroundStop = "background-stop"
)

// Target minute presets offered by the dashboard
var TargetMinutePresets = []int{10, 15, 20, 30, 45, 60}
