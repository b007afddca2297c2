package jogging

import (
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/events"
)

// Interruption is an audio interruption signal from the host, such as an
// incoming call taking over the output device
type Interruption int

const (
	InterruptionBegan Interruption = iota // Another client took the audio output
	InterruptionEnded                     // The output is ours again
)

func (i Interruption) String() string {
	if i == InterruptionBegan {
		return "began"
	}
	return "ended"
}

// InterruptionSource delivers interruption signals to listeners. Listen
// returns a function that removes the listener.
type InterruptionSource interface {
	Listen(ch chan Interruption) func()
}

// Interruptions is an InterruptionSource fed by calling Began and Ended
type Interruptions struct {
	event *events.ChannelEvent[Interruption]
}

func NewInterruptions() *Interruptions {
	return &Interruptions{event: events.NewChannelEvent[Interruption](false)}
}

// Listen registers ch for interruption signals
func (i *Interruptions) Listen(ch chan Interruption) func() {
	return i.event.Listen(ch)
}

// Began signals the start of an interruption
func (i *Interruptions) Began() {
	i.event.Notify(InterruptionBegan)
}

// Ended signals the end of an interruption
func (i *Interruptions) Ended() {
	i.event.Notify(InterruptionEnded)
}
