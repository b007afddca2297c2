package jogging

import (
	"fmt"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/records"
)

// SessionState is a read-only snapshot of the session handed to the
// presentation layer
type SessionState struct {
	Status           Status
	Elapsed          time.Duration
	Target           time.Duration
	Soundscape       Soundscape
	MetronomeEnabled bool
	MetronomeBPM     int
	// ShowCompletion is raised when the target is reached and cleared on acknowledgement
	ShowCompletion bool
}

// Progress returns elapsed/target clamped to [0,1], and 0 for a non-positive target
func (s SessionState) Progress() float64 {
	if s.Target <= 0 {
		return 0
	}
	p := float64(s.Elapsed) / float64(s.Target)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Remaining returns the time left to the target, never negative
func (s SessionState) Remaining() time.Duration {
	r := s.Target - s.Elapsed
	if r < 0 {
		return 0
	}
	return r
}

// FormattedElapsed renders elapsed time as m:ss or h:mm:ss
func (s SessionState) FormattedElapsed() string {
	return records.FormatClock(s.Elapsed)
}

// FormattedRemaining renders the time left as "m:ss left"
func (s SessionState) FormattedRemaining() string {
	r := s.Remaining().Truncate(time.Second)
	return fmt.Sprintf("%d:%02d left", int(r/time.Minute), int(r%time.Minute/time.Second))
}

// TargetMinutes returns the target rounded down to whole minutes
func (s SessionState) TargetMinutes() int {
	return int(s.Target / time.Minute)
}

// Completion is published once per session when the target is reached
type Completion struct {
	State SessionState
	// Record is nil when the session was too short to be recorded
	Record *records.Record
}
