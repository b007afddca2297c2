package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// resampleQuality is passed to beep.Resample when a file's rate differs from the output rate
const resampleQuality = 4

// decodeFile reads a wav, mp3 or flac file fully into memory at the given sample rate
func decodeFile(path string, rate beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		s, format, err = wav.Decode(f)
	case ".mp3":
		s, format, err = mp3.Decode(f)
	case ".flac":
		s, format, err = flac.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if format.SampleRate != rate {
		src = beep.Resample(resampleQuality, format.SampleRate, rate, s)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}

// bufferStreamer plays a decoded buffer, optionally wrapping around at the end
type bufferStreamer struct {
	buf  *beep.Buffer
	pos  beep.StreamSeeker
	loop bool
}

func newBufferStreamer(buf *beep.Buffer) *bufferStreamer {
	return &bufferStreamer{buf: buf, pos: buf.Streamer(0, buf.Len())}
}

func (b *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) {
		m, more := b.pos.Stream(samples[n:])
		n += m
		if more && m > 0 {
			continue
		}
		if !b.loop || b.buf.Len() == 0 {
			break
		}
		b.rewind()
	}
	return n, n > 0
}

func (b *bufferStreamer) Err() error {
	return b.pos.Err()
}

func (b *bufferStreamer) rewind() {
	_ = b.pos.Seek(0)
}

// newGain wraps s with a linear volume control
func newGain(s beep.Streamer, volume float64) *effects.Gain {
	return &effects.Gain{Streamer: s, Gain: volume - 1}
}

// setGain converts a linear [0,1] volume to effects.Gain's offset form
func setGain(g *effects.Gain, volume float64) {
	g.Gain = ClampVolume(volume) - 1
}
