//go:build linux

package audio

import (
	"fmt"
	"log"
	"sync"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/jfreymuth/pulse"
)

const pulseLatency = 0.05

// PulseBackend plays each channel as its own PulseAudio playback stream
type PulseBackend struct {
	rate   int
	logger *log.Logger

	mu     sync.Mutex
	client *pulse.Client
}

// NewPulseBackend connects to the PulseAudio server
func NewPulseBackend(sampleRate int, logger *log.Logger) (*PulseBackend, error) {
	if logger == nil {
		panic("PulseBackend: logger cannot be nil")
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	b := &PulseBackend{rate: sampleRate, logger: logger}
	if err := b.Activate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Activate connects to the server if the connection was closed
func (b *PulseBackend) Activate() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return nil
	}
	c, err := pulse.NewClient(pulse.ClientApplicationName("jogging-timer"))
	if err != nil {
		return fmt.Errorf("pulse: %w", err)
	}
	b.client = c
	b.logger.Printf("PulseBackend: connected")
	return nil
}

// Open decodes path into memory. The playback stream is created on first Play.
func (b *PulseBackend) Open(path string) (Player, error) {
	buf, err := decodeFile(path, beep.SampleRate(b.rate))
	if err != nil {
		return nil, err
	}
	src := newBufferStreamer(buf)
	return &pulsePlayer{backend: b, src: src, gain: newGain(src, 1)}, nil
}

// Close disconnects from the server
func (b *PulseBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		b.client.Close()
		b.client = nil
	}
	return nil
}

func (b *PulseBackend) newStream(r pulse.Reader) (*pulse.PlaybackStream, error) {
	b.mu.Lock()
	c := b.client
	b.mu.Unlock()
	if c == nil {
		return nil, fmt.Errorf("pulse: not connected")
	}
	return c.NewPlayback(r,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(b.rate),
		pulse.PlaybackLatency(pulseLatency),
	)
}

// pulsePlayer state is guarded by mu. Stream calls are made without holding
// mu since the server pulls samples through fill on its own goroutine.
type pulsePlayer struct {
	backend *PulseBackend

	mu      sync.Mutex
	src     *bufferStreamer
	gain    *effects.Gain
	stream  *pulse.PlaybackStream
	scratch [][2]float64
	// ended is set once the stream has returned EndOfData and must be replaced
	ended   bool
	playing bool
}

func (p *pulsePlayer) fill(out []float32) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frames := len(out) / 2
	if cap(p.scratch) < frames {
		p.scratch = make([][2]float64, frames)
	}
	samples := p.scratch[:frames]
	n, ok := p.gain.Stream(samples)
	for i := 0; i < n; i++ {
		out[2*i] = float32(samples[i][0])
		out[2*i+1] = float32(samples[i][1])
	}
	if !ok {
		p.ended = true
		p.playing = false
		return 2 * n, pulse.EndOfData
	}
	return 2 * n, nil
}

func (p *pulsePlayer) Play() error {
	p.mu.Lock()
	stream, ended := p.stream, p.ended
	if stream != nil && !ended {
		p.playing = true
		p.mu.Unlock()
		stream.Start()
		return nil
	}
	p.stream = nil
	if ended {
		p.src.rewind()
		p.ended = false
	}
	p.mu.Unlock()

	if stream != nil {
		stream.Close()
	}
	stream, err := p.backend.newStream(pulse.Float32Reader(p.fill))
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.stream = stream
	p.playing = true
	p.mu.Unlock()

	stream.Start()
	return nil
}

func (p *pulsePlayer) Pause() {
	p.mu.Lock()
	stream := p.stream
	p.playing = false
	p.mu.Unlock()
	if stream != nil {
		stream.Stop()
	}
}

func (p *pulsePlayer) Stop() {
	p.Pause()
	p.Rewind()
}

func (p *pulsePlayer) Rewind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src.rewind()
}

func (p *pulsePlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	setGain(p.gain, v)
}

func (p *pulsePlayer) SetLooping(loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src.loop = loop
}

func (p *pulsePlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *pulsePlayer) Close() error {
	p.mu.Lock()
	stream := p.stream
	p.stream = nil
	p.playing = false
	p.mu.Unlock()
	if stream != nil {
		stream.Stop()
		stream.Close()
	}
	return nil
}
