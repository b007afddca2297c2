package audio

// NoneBackend produces no sound. Players track play state so sessions behave
// the same with audio disabled.
type NoneBackend struct{}

// NewNoneBackend creates a silent backend
func NewNoneBackend() *NoneBackend {
	return &NoneBackend{}
}

func (NoneBackend) Open(string) (Player, error) { return &silentPlayer{}, nil }
func (NoneBackend) Activate() error             { return nil }
func (NoneBackend) Close() error                { return nil }

type silentPlayer struct {
	playing bool
}

func (p *silentPlayer) Play() error       { p.playing = true; return nil }
func (p *silentPlayer) Pause()            { p.playing = false }
func (p *silentPlayer) Stop()             { p.playing = false }
func (p *silentPlayer) Rewind()           {}
func (p *silentPlayer) SetVolume(float64) {}
func (p *silentPlayer) SetLooping(bool)   {}
func (p *silentPlayer) IsPlaying() bool   { return p.playing }
func (p *silentPlayer) Close() error      { return nil }
