// Package audio plays the jogging timer's sounds: the looping background
// soundscape, the metronome click and the completion chime.
//
// Channels are not safe for concurrent use. They are owned by the session
// manager and only touched from its control loop.
package audio

import (
	"errors"
	"fmt"
)

// ErrResourceNotFound is returned when a sound resource cannot be located
var ErrResourceNotFound = errors.New("audio resource not found")

// Player is one decoded sound ready for playback
type Player interface {
	// Play starts playback, or continues it from the current position after Pause
	Play() error
	// Pause halts playback and keeps the position
	Pause()
	// Stop halts playback and rewinds to the start
	Stop()
	// Rewind moves the position back to the start without changing play state
	Rewind()
	// SetVolume sets the linear gain in [0,1]
	SetVolume(v float64)
	// SetLooping makes playback restart from the beginning when it reaches the end
	SetLooping(loop bool)
	// IsPlaying reports whether the sound is currently audible
	IsPlaying() bool
	// Close releases the decoded data
	Close() error
}

// Backend opens players for resolved resource paths
type Backend interface {
	// Open decodes the file at path into a Player
	Open(path string) (Player, error)
	// Activate (re)claims the audio output path, e.g. after an interruption
	Activate() error
	// Close releases the output device
	Close() error
}

// Resource names a sound by its logical name and the file extensions to try, in order
type Resource struct {
	Name       string
	Extensions []string
}

// String returns the resource's display name
func (r Resource) String() string {
	if len(r.Extensions) == 1 {
		return fmt.Sprintf("%s.%s", r.Name, r.Extensions[0])
	}
	return r.Name
}

// Well-known resources
var (
	ResourceMetronomeClick  = Resource{Name: "metronome_click", Extensions: []string{"wav"}}
	ResourceCompletionChime = Resource{Name: "completion_chime", Extensions: []string{"flac", "mp3", "wav"}}
)

// ClampVolume limits v to [0,1]
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
