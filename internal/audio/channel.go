package audio

import (
	"fmt"
	"log"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/clock"
)

// FadeStepInterval is the spacing of fade steps, roughly 60 per second
const FadeStepInterval = 16 * time.Millisecond

// ChannelArgs holds the dependencies shared by every channel
type ChannelArgs struct {
	Name      string
	Scheduler clock.Scheduler
	Backend   Backend
	Resolver  *Resolver
	Logger    *log.Logger
	// Observer is told about fade tasks (optional)
	Observer clock.TaskObserver
	// OnMissing is called when a resource cannot be resolved or opened (optional)
	OnMissing func(res Resource, err error)
}

// Channel is a single controllable playback unit: one resource, one player,
// one volume and at most one fade in progress.
type Channel struct {
	name      string
	sched     clock.Scheduler
	backend   Backend
	resolver  *Resolver
	logger    *log.Logger
	onMissing func(Resource, error)

	player   Player
	resource Resource
	volume   float64
	playing  bool
	looping  bool
	fade     *clock.Slot
}

// NewChannel creates an unloaded channel at full volume
func NewChannel(args ChannelArgs) *Channel {
	if args.Scheduler == nil {
		panic("Channel: scheduler cannot be nil")
	}
	if args.Backend == nil {
		panic("Channel: backend cannot be nil")
	}
	if args.Resolver == nil {
		panic("Channel: resolver cannot be nil")
	}
	if args.Logger == nil {
		panic("Channel: logger cannot be nil")
	}
	return &Channel{
		name:      args.Name,
		sched:     args.Scheduler,
		backend:   args.Backend,
		resolver:  args.Resolver,
		logger:    args.Logger,
		onMissing: args.OnMissing,
		volume:    1,
		fade:      clock.NewSlot(args.Name+"-fade", args.Observer),
	}
}

// Load resolves res and opens a player for it, replacing any loaded sound.
// On failure the channel stays unloaded and later playback calls are skipped.
func (c *Channel) Load(res Resource) error {
	c.Unload()

	path, err := c.resolver.Resolve(res)
	if err != nil {
		c.logger.Printf("Channel[%s]: %v", c.name, err)
		c.missing(res, err)
		return err
	}

	player, err := c.backend.Open(path)
	if err != nil {
		err = fmt.Errorf("open %s: %w", path, err)
		c.logger.Printf("Channel[%s]: %v", c.name, err)
		c.missing(res, err)
		return err
	}

	player.SetLooping(c.looping)
	player.SetVolume(c.volume)
	c.player = player
	c.resource = res
	c.logger.Printf("Channel[%s]: loaded %s", c.name, path)
	return nil
}

func (c *Channel) missing(res Resource, err error) {
	if c.onMissing != nil {
		c.onMissing(res, err)
	}
}

// Unload stops playback and releases the player
func (c *Channel) Unload() {
	if c.player == nil {
		return
	}
	c.Stop()
	if err := c.player.Close(); err != nil {
		c.logger.Printf("Channel[%s]: close failed: %v", c.name, err)
	}
	c.player = nil
	c.resource = Resource{}
}

// Loaded reports whether a player is available
func (c *Channel) Loaded() bool {
	return c.player != nil
}

// Resource returns the loaded resource
func (c *Channel) Resource() Resource {
	return c.resource
}

// SetLooping controls whether playback wraps around at the end
func (c *Channel) SetLooping(loop bool) {
	c.looping = loop
	if c.player != nil {
		c.player.SetLooping(loop)
	}
}

// Play starts or continues playback
func (c *Channel) Play() {
	if c.player == nil {
		return
	}
	if err := c.player.Play(); err != nil {
		c.logger.Printf("Channel[%s]: play failed: %v", c.name, err)
		return
	}
	c.playing = true
}

// Pause halts playback and keeps the position
func (c *Channel) Pause() {
	if c.player == nil {
		return
	}
	c.player.Pause()
	c.playing = false
}

// Stop cancels any fade, halts playback and rewinds
func (c *Channel) Stop() {
	c.fade.Cancel()
	if c.player == nil {
		return
	}
	c.player.Stop()
	c.playing = false
}

// Rewind moves the playback position to the start
func (c *Channel) Rewind() {
	if c.player != nil {
		c.player.Rewind()
	}
}

// Activate reclaims the backend's output path
func (c *Channel) Activate() {
	if err := c.backend.Activate(); err != nil {
		c.logger.Printf("Channel[%s]: activate failed: %v", c.name, err)
	}
}

// IsPlaying reports whether the channel was last told to play
func (c *Channel) IsPlaying() bool {
	return c.playing
}

// Volume returns the current volume
func (c *Channel) Volume() float64 {
	return c.volume
}

// SetVolumeImmediate cancels any fade and sets the volume at once
func (c *Channel) SetVolumeImmediate(v float64) {
	c.fade.Cancel()
	c.setVolume(v)
}

func (c *Channel) setVolume(v float64) {
	c.volume = ClampVolume(v)
	if c.player != nil {
		c.player.SetVolume(c.volume)
	}
}

// Fading reports whether a fade is in progress
func (c *Channel) Fading() bool {
	return c.fade.Active()
}

// CancelFade stops the fade in progress, leaving the volume where it is
func (c *Channel) CancelFade() {
	c.fade.Cancel()
}

// FadeTo moves the volume linearly from its current value to target over d.
// A fade already in progress is canceled first and the new one starts from
// whatever volume it had reached. A zero duration, or an unloaded channel,
// sets the volume and completes synchronously. onComplete (optional) runs
// only if the fade reaches its final step.
func (c *Channel) FadeTo(target float64, d time.Duration, onComplete func()) *Fade {
	c.fade.Cancel()

	f := newFade()
	target = ClampVolume(target)

	if d <= 0 || c.player == nil {
		c.setVolume(target)
		f.resolve(true)
		if onComplete != nil {
			onComplete()
		}
		return f
	}

	start := c.volume
	steps := int(d / FadeStepInterval)
	if steps < 1 {
		steps = 1
	}

	step := 0
	c.fade.Replace(func() *clock.Task {
		task := clock.Every(c.sched, FadeStepInterval, func() bool {
			step++
			if step < steps {
				c.setVolume(start + (target-start)*float64(step)/float64(steps))
				return true
			}
			c.setVolume(target)
			f.resolve(true)
			if onComplete != nil {
				onComplete()
			}
			return false
		})
		task.OnDone(func() { f.resolve(false) })
		return task
	})
	return f
}

// Fade is the pending result of FadeTo. Done is closed when the fade
// completes or is canceled; Completed tells the two apart.
type Fade struct {
	done      chan struct{}
	resolved  bool
	completed bool
}

func newFade() *Fade {
	return &Fade{done: make(chan struct{})}
}

func (f *Fade) resolve(completed bool) {
	if f.resolved {
		return
	}
	f.resolved = true
	f.completed = completed
	close(f.done)
}

// Done is closed once the fade has completed or been canceled
func (f *Fade) Done() <-chan struct{} {
	return f.done
}

// Completed reports whether the fade reached its target
func (f *Fade) Completed() bool {
	return f.completed
}
