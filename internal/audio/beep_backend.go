package audio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// speakerBuffer is the speaker's latency window
const speakerBuffer = 100 * time.Millisecond

// BeepBackend mixes every channel through the process-wide beep speaker
type BeepBackend struct {
	rate   beep.SampleRate
	logger *log.Logger

	initOnce sync.Once
	initErr  error
	active   atomic.Bool
}

// NewBeepBackend creates a backend that outputs at sampleRate. The speaker
// is initialized on the first Open.
func NewBeepBackend(sampleRate int, logger *log.Logger) *BeepBackend {
	if logger == nil {
		panic("BeepBackend: logger cannot be nil")
	}
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	return &BeepBackend{rate: beep.SampleRate(sampleRate), logger: logger}
}

func (b *BeepBackend) init() error {
	b.initOnce.Do(func() {
		b.initErr = speaker.Init(b.rate, b.rate.N(speakerBuffer))
		if b.initErr == nil {
			b.active.Store(true)
			b.logger.Printf("BeepBackend: speaker initialized at %d Hz", b.rate)
		}
	})
	return b.initErr
}

// Open decodes path and returns a player attached to the speaker
func (b *BeepBackend) Open(path string) (Player, error) {
	if err := b.init(); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	buf, err := decodeFile(path, b.rate)
	if err != nil {
		return nil, err
	}
	src := newBufferStreamer(buf)
	return &beepPlayer{src: src, gain: newGain(src, 1)}, nil
}

// Activate resumes the speaker after Suspend or an output loss
func (b *BeepBackend) Activate() error {
	if b.init() != nil || b.active.Load() {
		return nil
	}
	if err := speaker.Resume(); err != nil {
		return err
	}
	b.active.Store(true)
	return nil
}

// Suspend stops the speaker's output stream without discarding players
func (b *BeepBackend) Suspend() error {
	if !b.active.Load() {
		return nil
	}
	if err := speaker.Suspend(); err != nil {
		return err
	}
	b.active.Store(false)
	return nil
}

// Close clears every playing sound
func (b *BeepBackend) Close() error {
	if b.init() == nil {
		speaker.Clear()
	}
	return nil
}

// beepPlayer fields are guarded by the speaker lock, which is also held
// while the speaker pulls samples.
type beepPlayer struct {
	src     *bufferStreamer
	gain    *effects.Gain
	ctrl    *beep.Ctrl
	drained atomic.Bool
}

func (p *beepPlayer) Play() error {
	speaker.Lock()
	if p.ctrl != nil && !p.drained.Load() {
		p.ctrl.Paused = false
		speaker.Unlock()
		return nil
	}
	if p.drained.Load() {
		p.src.rewind()
	}
	p.drained.Store(false)
	p.ctrl = &beep.Ctrl{Streamer: beep.Seq(p.gain, beep.Callback(func() {
		p.drained.Store(true)
	}))}
	ctrl := p.ctrl
	speaker.Unlock()

	speaker.Play(ctrl)
	return nil
}

func (p *beepPlayer) Pause() {
	speaker.Lock()
	defer speaker.Unlock()
	if p.ctrl != nil {
		p.ctrl.Paused = true
	}
}

func (p *beepPlayer) Stop() {
	speaker.Lock()
	defer speaker.Unlock()
	if p.ctrl != nil {
		// a Ctrl with no streamer reports end of stream and is dropped by the mixer
		p.ctrl.Streamer = nil
		p.ctrl = nil
	}
	p.src.rewind()
}

func (p *beepPlayer) Rewind() {
	speaker.Lock()
	defer speaker.Unlock()
	p.src.rewind()
}

func (p *beepPlayer) SetVolume(v float64) {
	speaker.Lock()
	defer speaker.Unlock()
	setGain(p.gain, v)
}

func (p *beepPlayer) SetLooping(loop bool) {
	speaker.Lock()
	defer speaker.Unlock()
	p.src.loop = loop
}

func (p *beepPlayer) IsPlaying() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return p.ctrl != nil && !p.ctrl.Paused && !p.drained.Load()
}

func (p *beepPlayer) Close() error {
	p.Stop()
	return nil
}
