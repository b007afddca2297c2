package audio

import "time"

// BeatInterval returns the click spacing for bpm beats per minute, or 0 if bpm is not positive
func BeatInterval(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / float64(bpm))
}

// MetronomeChannel alternates between two players so a new click never cuts
// off the tail of the previous one.
type MetronomeChannel struct {
	players   [2]*Channel
	res       Resource
	next      int
	suspended bool
	clicks    int
}

// NewMetronomeChannel creates the two click players. Nothing is loaded until Prepare.
func NewMetronomeChannel(args ChannelArgs, res Resource) *MetronomeChannel {
	if args.Name == "" {
		args.Name = "metronome"
	}
	name := args.Name
	m := &MetronomeChannel{res: res}
	for i, suffix := range []string{"a", "b"} {
		args.Name = name + "-" + suffix
		m.players[i] = NewChannel(args)
	}
	return m
}

// Prepare loads the click into both players if needed
func (m *MetronomeChannel) Prepare() error {
	for _, p := range m.players {
		if p.Loaded() {
			continue
		}
		if err := p.Load(m.res); err != nil {
			return err
		}
		p.SetVolumeImmediate(1)
	}
	return nil
}

// Click rewinds and plays the next player. It returns false when the click
// was dropped because the metronome is suspended or unloaded.
func (m *MetronomeChannel) Click() bool {
	if m.suspended {
		return false
	}
	p := m.players[m.next]
	if !p.Loaded() {
		return false
	}
	p.Rewind()
	p.Play()
	m.next = 1 - m.next
	m.clicks++
	return true
}

// Stop silences and releases both players
func (m *MetronomeChannel) Stop() {
	for _, p := range m.players {
		p.Unload()
	}
	m.next = 0
	m.suspended = false
}

// Suspend pauses both players and drops clicks until Unsuspend
func (m *MetronomeChannel) Suspend() {
	for _, p := range m.players {
		p.Pause()
	}
	m.suspended = true
}

// Unsuspend lets clicks through again
func (m *MetronomeChannel) Unsuspend() {
	m.suspended = false
}

// Suspended reports whether clicks are being dropped
func (m *MetronomeChannel) Suspended() bool {
	return m.suspended
}

// Clicks returns how many clicks have been played
func (m *MetronomeChannel) Clicks() int {
	return m.clicks
}

// Players exposes the two underlying channels
func (m *MetronomeChannel) Players() [2]*Channel {
	return m.players
}
