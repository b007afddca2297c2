package audio

import "time"

// Background channel levels and fade times
const (
	BackgroundVolume        = 0.6
	BackgroundDuckVolume    = 0.15
	BackgroundFadeIn        = 500 * time.Millisecond
	BackgroundPauseFade     = 250 * time.Millisecond
	BackgroundResumeFade    = 250 * time.Millisecond
	BackgroundDuckFade      = 250 * time.Millisecond
	BackgroundStopAfterDuck = time.Second
)

// BackgroundChannel plays the soundscape on a loop. Its volume only changes
// through fades, except on an abrupt Stop.
type BackgroundChannel struct {
	ch        *Channel
	suspended bool
}

// NewBackgroundChannel creates an empty looping background channel
func NewBackgroundChannel(args ChannelArgs) *BackgroundChannel {
	if args.Name == "" {
		args.Name = "background"
	}
	ch := NewChannel(args)
	ch.SetLooping(true)
	return &BackgroundChannel{ch: ch}
}

// Start stops whatever is playing, loads res and fades it in. A missing
// resource leaves the channel silent.
func (b *BackgroundChannel) Start(res Resource) *Fade {
	b.suspended = false
	b.ch.Unload()
	b.ch.SetVolumeImmediate(0)
	if err := b.ch.Load(res); err != nil {
		return b.ch.FadeTo(0, 0, nil)
	}
	b.ch.Play()
	return b.ch.FadeTo(BackgroundVolume, BackgroundFadeIn, nil)
}

// PauseWithFade fades to silence, then pauses
func (b *BackgroundChannel) PauseWithFade() *Fade {
	return b.ch.FadeTo(0, BackgroundPauseFade, b.ch.Pause)
}

// Resume reactivates output and fades the paused soundscape back in. When
// nothing is loaded, or the loaded soundscape is not res, res is started
// from scratch.
func (b *BackgroundChannel) Resume(res Resource) *Fade {
	if !b.ch.Loaded() || b.ch.Resource().Name != res.Name {
		return b.Start(res)
	}
	b.suspended = false
	b.ch.Activate()
	b.ch.Play()
	return b.ch.FadeTo(BackgroundVolume, BackgroundResumeFade, nil)
}

// Duck lowers the soundscape to a quiet residual level
func (b *BackgroundChannel) Duck() *Fade {
	return b.ch.FadeTo(BackgroundDuckVolume, BackgroundDuckFade, nil)
}

// Stop cuts playback and releases the player
func (b *BackgroundChannel) Stop() {
	b.suspended = false
	b.ch.Unload()
}

// Suspend pauses playback without a fade, keeping the volume
func (b *BackgroundChannel) Suspend() {
	if !b.ch.IsPlaying() {
		return
	}
	b.ch.CancelFade()
	b.ch.Pause()
	b.suspended = true
}

// Unsuspend continues playback paused by Suspend
func (b *BackgroundChannel) Unsuspend() {
	if !b.suspended {
		return
	}
	b.suspended = false
	b.ch.Activate()
	b.ch.Play()
	if b.ch.Volume() < BackgroundVolume {
		b.ch.FadeTo(BackgroundVolume, BackgroundResumeFade, nil)
	}
}

// Suspended reports whether playback is held by an interruption
func (b *BackgroundChannel) Suspended() bool {
	return b.suspended
}

// Channel exposes the underlying channel
func (b *BackgroundChannel) Channel() *Channel {
	return b.ch
}
