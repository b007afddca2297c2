package audio

import (
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/clock"
)

// Chime timing
const (
	ChimeAudibleFor = 2500 * time.Millisecond
	ChimeFadeOut    = 800 * time.Millisecond
)

// CompletionChannel plays the one-shot completion chime. The chime is loaded
// at construction so the first trigger does not wait on decoding.
type CompletionChannel struct {
	ch    *Channel
	sched clock.Scheduler
	hold  *clock.Slot
}

// NewCompletionChannel creates the chime channel and preloads res. A missing
// resource is logged by the channel and the chime stays silent.
func NewCompletionChannel(args ChannelArgs, res Resource) *CompletionChannel {
	if args.Name == "" {
		args.Name = "chime"
	}
	c := &CompletionChannel{
		ch:    NewChannel(args),
		sched: args.Scheduler,
		hold:  clock.NewSlot(args.Name+"-hold", args.Observer),
	}
	_ = c.ch.Load(res)
	return c
}

// Trigger plays the chime from the start at full volume, then fades it out
// after ChimeAudibleFor and resets it for the next use.
func (c *CompletionChannel) Trigger() {
	if !c.ch.Loaded() {
		return
	}
	c.hold.Cancel()
	c.ch.Stop()
	c.ch.Rewind()
	c.ch.SetVolumeImmediate(1)
	c.ch.Play()

	c.hold.Replace(func() *clock.Task {
		return clock.After(c.sched, ChimeAudibleFor, func() {
			c.ch.FadeTo(0, ChimeFadeOut, c.reset)
		})
	})
}

func (c *CompletionChannel) reset() {
	c.ch.Stop()
	c.ch.Rewind()
	c.ch.SetVolumeImmediate(1)
}

// Stop cuts the chime off and readies it for reuse
func (c *CompletionChannel) Stop() {
	c.hold.Cancel()
	c.reset()
}

// Sounding reports whether the chime is playing or fading out
func (c *CompletionChannel) Sounding() bool {
	return c.ch.IsPlaying()
}

// Channel exposes the underlying channel
func (c *CompletionChannel) Channel() *Channel {
	return c.ch
}
