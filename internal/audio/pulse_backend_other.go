//go:build !linux

package audio

import (
	"errors"
	"log"
)

// PulseBackend is only available on linux
type PulseBackend struct {
	Backend
}

// NewPulseBackend always fails outside linux
func NewPulseBackend(sampleRate int, logger *log.Logger) (*PulseBackend, error) {
	return nil, errors.New("pulse backend is only available on linux")
}
