package audio

import (
	"path/filepath"
	"strings"
	"sync"
)

// FakeBackend records every call made on the players it opens
type FakeBackend struct {
	mu          sync.Mutex
	players     []*FakePlayer
	activations int
	closed      bool

	// OpenErr, when set, is returned by Open
	OpenErr error
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Open(path string) (Player, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	p := &FakePlayer{Path: path, volume: 1}
	f.players = append(f.players, p)
	return p, nil
}

func (f *FakeBackend) Activate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activations++
	return nil
}

func (f *FakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Activations returns how many times Activate was called
func (f *FakeBackend) Activations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activations
}

// Players returns every player opened so far, oldest first
func (f *FakeBackend) Players() []*FakePlayer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakePlayer(nil), f.players...)
}

// PlayersFor returns the players opened for files named name.<ext>
func (f *FakeBackend) PlayersFor(name string) []*FakePlayer {
	var out []*FakePlayer
	for _, p := range f.Players() {
		base := filepath.Base(p.Path)
		if strings.TrimSuffix(base, filepath.Ext(base)) == name {
			out = append(out, p)
		}
	}
	return out
}

// FakePlayer counts calls and keeps the full volume history
type FakePlayer struct {
	Path string

	mu          sync.Mutex
	playing     bool
	looping     bool
	closed      bool
	volume      float64
	volumeTrace []float64
	plays       int
	pauses      int
	stops       int
	rewinds     int
}

func (p *FakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = true
	p.plays++
	return nil
}

func (p *FakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.pauses++
}

func (p *FakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.stops++
}

func (p *FakePlayer) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rewinds++
}

func (p *FakePlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	p.volumeTrace = append(p.volumeTrace, v)
}

func (p *FakePlayer) SetLooping(loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.looping = loop
}

func (p *FakePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *FakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.playing = false
	return nil
}

func (p *FakePlayer) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// VolumeTrace returns every volume set on the player, in order
func (p *FakePlayer) VolumeTrace() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.volumeTrace...)
}

func (p *FakePlayer) Plays() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

func (p *FakePlayer) Pauses() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauses
}

func (p *FakePlayer) Stops() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

func (p *FakePlayer) Rewinds() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rewinds
}

func (p *FakePlayer) Looping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.looping
}

func (p *FakePlayer) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
