package jogging

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/audio"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/clock"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/events"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/go_func_utils"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/metrics"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/records"
)

// Preferences are the session settings that may change at any time
type Preferences struct {
	Target           time.Duration
	Soundscape       Soundscape
	MetronomeEnabled bool
	MetronomeBPM     int
}

// DefaultPreferences returns a 30 minute session with the light soundscape
// and a 180 bpm metronome
func DefaultPreferences() Preferences {
	return Preferences{
		Target:           DefaultTargetMinutes * time.Minute,
		Soundscape:       SoundscapeLight,
		MetronomeEnabled: true,
		MetronomeBPM:     DefaultMetronomeBPM,
	}
}

// NewSessionManagerArg holds the dependencies of a SessionManager
type NewSessionManagerArg struct {
	Loop     *clock.Loop
	Backend  audio.Backend
	Resolver *audio.Resolver
	Records  *records.Log
	Logger   *log.Logger

	// Feedback fires on completion (optional)
	Feedback Feedback
	// Metrics receives task and transition counts (optional)
	Metrics     *metrics.Metrics
	Preferences Preferences
}

// SessionManager is the session state machine. It owns the session state and
// the three audio channels. Every field below the loop is only touched from
// callbacks running on the loop; public methods hop onto it with Loop.Do.
type SessionManager struct {
	loop     *clock.Loop
	backend  audio.Backend
	recLog   *records.Log
	feedback Feedback
	metrics  *metrics.Metrics
	logger   *log.Logger

	// Session state (loop only)
	status           Status
	elapsed          time.Duration
	target           time.Duration
	soundscape       Soundscape
	metronomeEnabled bool
	metronomeBPM     int
	showCompletion   bool

	// interrupted is set between InterruptionBegan and InterruptionEnded
	interrupted bool

	// Audio channels (loop only)
	background *audio.BackgroundChannel
	metronome  *audio.MetronomeChannel
	chime      *audio.CompletionChannel

	// At most one task per kind
	elapsedTick    *clock.Slot
	metronomeLoop  *clock.Slot
	backgroundStop *clock.Slot

	stateEvent      *events.ChannelEvent[SessionState]
	completionEvent *events.ChannelEvent[Completion]
	recordsEvent    *events.ChannelEvent[[]records.Record]
	unlistenRecords func()

	// Goroutine management
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewSessionManager creates an idle session manager and preloads the chime
func NewSessionManager(args NewSessionManagerArg) *SessionManager {
	if args.Loop == nil {
		panic("SessionManager: loop cannot be nil")
	}
	if args.Backend == nil {
		panic("SessionManager: backend cannot be nil")
	}
	if args.Resolver == nil {
		panic("SessionManager: resolver cannot be nil")
	}
	if args.Records == nil {
		panic("SessionManager: records cannot be nil")
	}
	if args.Logger == nil {
		panic("SessionManager: logger cannot be nil")
	}
	if args.Feedback == nil {
		args.Feedback = noFeedback{}
	}
	if args.Metrics == nil {
		args.Metrics = metrics.NewUnregistered()
	}

	prefs := args.Preferences
	if prefs.Target < 0 {
		prefs.Target = 0
	}
	if prefs.MetronomeBPM <= 0 {
		prefs.MetronomeBPM = DefaultMetronomeBPM
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &SessionManager{
		loop:             args.Loop,
		backend:          args.Backend,
		recLog:           args.Records,
		feedback:         args.Feedback,
		metrics:          args.Metrics,
		logger:           args.Logger,
		status:           StatusIdle,
		target:           prefs.Target,
		soundscape:       prefs.Soundscape,
		metronomeEnabled: prefs.MetronomeEnabled,
		metronomeBPM:     prefs.MetronomeBPM,
		elapsedTick:      clock.NewSlot(TaskElapsedTick, args.Metrics),
		metronomeLoop:    clock.NewSlot(TaskMetronomeLoop, args.Metrics),
		backgroundStop:   clock.NewSlot(TaskBackgroundStop, args.Metrics),
		stateEvent:       events.NewChannelEvent[SessionState](true),
		completionEvent:  events.NewChannelEvent[Completion](false),
		recordsEvent:     events.NewChannelEvent[[]records.Record](true),
		ctx:              ctx,
		cancel:           cancel,
	}

	channelArgs := func(name string) audio.ChannelArgs {
		return audio.ChannelArgs{
			Name:      name,
			Scheduler: args.Loop,
			Backend:   args.Backend,
			Resolver:  args.Resolver,
			Logger:    args.Logger,
			Observer:  args.Metrics,
			OnMissing: func(res audio.Resource, err error) {
				args.Metrics.ResourceMissing.WithLabelValues(res.Name).Inc()
			},
		}
	}

	m.loop.Do(func() {
		m.background = audio.NewBackgroundChannel(channelArgs("background"))
		m.metronome = audio.NewMetronomeChannel(channelArgs("metronome"), audio.ResourceMetronomeClick)
		m.chime = audio.NewCompletionChannel(channelArgs("chime"), audio.ResourceCompletionChime)
		m.publish()
	})
	m.recordsEvent.Notify(m.recLog.Snapshot())
	m.unlistenRecords = m.recLog.Listen(m.recordsEvent.Notify)

	m.logger.Printf("SessionManager: ready (target %v, soundscape %s, metronome %v @ %d bpm)",
		m.target, m.soundscape, m.metronomeEnabled, m.metronomeBPM)
	return m
}

// --- Commands ---

// Start begins a session. From Paused it resumes; from Completed the
// finished session is acknowledged first.
func (m *SessionManager) Start() {
	m.loop.Do(m.start)
}

// Pause stops ticking, fades the soundscape out and cancels the metronome
func (m *SessionManager) Pause() {
	m.loop.Do(m.pause)
}

// Resume continues a paused session
func (m *SessionManager) Resume() {
	m.loop.Do(m.resume)
}

// Stop ends the session, recording it if it ran long enough
func (m *SessionManager) Stop() {
	m.loop.Do(m.stop)
}

// AcknowledgeCompletion dismisses a completed session and resets to Idle
func (m *SessionManager) AcknowledgeCompletion() {
	m.loop.Do(m.acknowledge)
}

// SetTargetMinutes sets the session target in whole minutes
func (m *SessionManager) SetTargetMinutes(minutes int) {
	m.SetTargetDuration(time.Duration(minutes) * time.Minute)
}

// SetTargetDuration sets the session target. A non-positive target disables
// completion and keeps progress at 0. It applies from the next tick.
func (m *SessionManager) SetTargetDuration(d time.Duration) {
	m.loop.Do(func() { m.setTarget(d) })
}

// SetSoundscape selects the background soundscape. A running session switches
// over immediately.
func (m *SessionManager) SetSoundscape(s Soundscape) {
	m.loop.Do(func() { m.setSoundscape(s) })
}

// SetMetronomeEnabled turns the click track on or off
func (m *SessionManager) SetMetronomeEnabled(enabled bool) {
	m.loop.Do(func() { m.setMetronomeEnabled(enabled) })
}

// SetMetronomeBPM changes the click cadence. Non-positive values are ignored.
func (m *SessionManager) SetMetronomeBPM(bpm int) {
	m.loop.Do(func() { m.setMetronomeBPM(bpm) })
}

// ApplyPreferences applies every preference in one step
func (m *SessionManager) ApplyPreferences(p Preferences) {
	m.loop.Do(func() {
		m.setTarget(p.Target)
		m.setSoundscape(p.Soundscape)
		m.setMetronomeBPM(p.MetronomeBPM)
		m.setMetronomeEnabled(p.MetronomeEnabled)
	})
}

// HandleInterruption reacts to an audio interruption signal without touching
// the session status, elapsed time or records
func (m *SessionManager) HandleInterruption(kind Interruption) {
	m.loop.Do(func() { m.handleInterruption(kind) })
}

// WatchInterruptions handles signals from src until Shutdown
func (m *SessionManager) WatchInterruptions(src InterruptionSource) {
	ch := make(chan Interruption, 4)
	unregister := src.Listen(ch)

	m.wg.Add(1)
	go_func_utils.SafeGo(m.logger, func() {
		defer m.wg.Done()
		defer unregister()
		for {
			select {
			case <-m.ctx.Done():
				return
			case kind, ok := <-ch:
				if !ok {
					return
				}
				m.HandleInterruption(kind)
			}
		}
	})
}

// ClearRecords deletes every stored record
func (m *SessionManager) ClearRecords() error {
	return m.recLog.Clear()
}

// --- Observation ---

// Snapshot returns the current session state
func (m *SessionManager) Snapshot() SessionState {
	var state SessionState
	m.loop.Do(func() { state = m.buildState() })
	return state
}

// Records returns the record log, newest first
func (m *SessionManager) Records() []records.Record {
	return m.recLog.Snapshot()
}

// ListenToState registers a channel to receive session state updates
// Returns a deregistration function that can be called to remove the listener
func (m *SessionManager) ListenToState(ch chan SessionState) func() {
	return m.stateEvent.Listen(ch)
}

// ListenToCompletion registers a channel to receive session completions
// Returns a deregistration function that can be called to remove the listener
func (m *SessionManager) ListenToCompletion(ch chan Completion) func() {
	return m.completionEvent.Listen(ch)
}

// ListenToRecords registers a channel to receive the record log after each change
// Returns a deregistration function that can be called to remove the listener
func (m *SessionManager) ListenToRecords(ch chan []records.Record) func() {
	return m.recordsEvent.Listen(ch)
}

// Shutdown stops interruption handling, cancels every task and silences all channels.
// Safe to call multiple times - only the first call has effect
func (m *SessionManager) Shutdown() {
	m.shutdownOnce.Do(func() {
		m.logger.Printf("SessionManager: Shutting down")
		m.cancel()
		m.wg.Wait()
		m.unlistenRecords()
		m.loop.Do(func() {
			m.elapsedTick.Cancel()
			m.metronomeLoop.Cancel()
			m.backgroundStop.Cancel()
			m.background.Stop()
			m.metronome.Stop()
			m.chime.Stop()
			m.chime.Channel().Unload()
		})
		m.logger.Printf("SessionManager: Shutdown complete")
	})
}

// --- Loop-only methods ---

func (m *SessionManager) start() {
	switch m.status {
	case StatusRunning:
		m.logger.Printf("SessionManager: Session already running")
		return
	case StatusPaused:
		m.resume()
		return
	case StatusCompleted:
		m.acknowledge()
	}

	if m.target > 0 && m.elapsed >= m.target {
		m.elapsed = 0
	}
	m.setStatus(StatusRunning)
	m.backgroundStop.Cancel()
	m.startTicking()
	m.background.Start(m.soundscape.Resource())
	m.holdBackgroundIfInterrupted()
	m.startMetronome()
	m.logger.Printf("SessionManager: Session started (target %v)", m.target)
	m.publish()
}

func (m *SessionManager) pause() {
	if m.status != StatusRunning {
		m.logger.Printf("SessionManager: Cannot pause - session not running")
		return
	}
	m.setStatus(StatusPaused)
	m.elapsedTick.Cancel()
	m.stopMetronome()
	m.background.PauseWithFade()
	m.logger.Printf("SessionManager: Session paused at %s", records.FormatClock(m.elapsed))
	m.publish()
}

func (m *SessionManager) resume() {
	if m.status != StatusPaused {
		m.logger.Printf("SessionManager: Cannot resume - session not paused")
		return
	}
	m.setStatus(StatusRunning)
	m.startTicking()
	m.background.Resume(m.soundscape.Resource())
	m.holdBackgroundIfInterrupted()
	m.startMetronome()
	m.logger.Printf("SessionManager: Session resumed at %s", records.FormatClock(m.elapsed))
	m.publish()
}

func (m *SessionManager) stop() {
	switch m.status {
	case StatusIdle:
		m.logger.Printf("SessionManager: No session to stop")
		return
	case StatusCompleted:
		m.acknowledge()
		return
	}

	m.recordSession()

	m.elapsedTick.Cancel()
	m.metronomeLoop.Cancel()
	m.backgroundStop.Cancel()
	m.background.Stop()
	m.metronome.Stop()
	m.chime.Stop()

	m.logger.Printf("SessionManager: Session stopped at %s", records.FormatClock(m.elapsed))
	m.elapsed = 0
	m.setStatus(StatusIdle)
	m.publish()
}

func (m *SessionManager) acknowledge() {
	if m.status != StatusCompleted {
		m.logger.Printf("SessionManager: Nothing to acknowledge")
		return
	}
	m.showCompletion = false
	m.chime.Stop()
	m.elapsed = 0
	m.setStatus(StatusIdle)
	m.logger.Printf("SessionManager: Completion acknowledged")
	m.publish()
}

func (m *SessionManager) setTarget(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if d == m.target {
		return
	}
	m.target = d
	m.logger.Printf("SessionManager: Target set to %v", d)
	m.publish()
}

func (m *SessionManager) setSoundscape(s Soundscape) {
	if !s.Valid() {
		m.logger.Printf("SessionManager: Unknown soundscape %d", int(s))
		return
	}
	if s == m.soundscape {
		return
	}
	m.soundscape = s
	m.logger.Printf("SessionManager: Soundscape set to %s", s)
	if m.status == StatusRunning {
		m.background.Start(s.Resource())
		m.holdBackgroundIfInterrupted()
	}
	m.publish()
}

func (m *SessionManager) setMetronomeEnabled(enabled bool) {
	if enabled == m.metronomeEnabled {
		return
	}
	m.metronomeEnabled = enabled
	m.logger.Printf("SessionManager: Metronome enabled=%v", enabled)
	if m.status == StatusRunning {
		if enabled {
			m.startMetronome()
		} else {
			m.stopMetronome()
		}
	}
	m.publish()
}

func (m *SessionManager) setMetronomeBPM(bpm int) {
	if bpm <= 0 {
		m.logger.Printf("SessionManager: Ignoring metronome bpm %d", bpm)
		return
	}
	if bpm == m.metronomeBPM {
		return
	}
	m.metronomeBPM = bpm
	m.logger.Printf("SessionManager: Metronome set to %d bpm", bpm)
	if m.status == StatusRunning && m.metronomeEnabled {
		m.startMetronome()
	}
	m.publish()
}

func (m *SessionManager) handleInterruption(kind Interruption) {
	m.metrics.Interruptions.WithLabelValues(kind.String()).Inc()
	m.logger.Printf("SessionManager: Audio interruption %s (session %s)", kind, m.status)

	switch kind {
	case InterruptionBegan:
		m.interrupted = true
		m.background.Suspend()
		m.metronome.Suspend()
		m.chime.Stop()
	case InterruptionEnded:
		m.interrupted = false
		if m.status != StatusRunning {
			return
		}
		if err := m.backend.Activate(); err != nil {
			m.logger.Printf("SessionManager: Failed to reactivate audio: %v", err)
		}
		m.background.Unsuspend()
		m.metronome.Unsuspend()
		if m.metronomeEnabled && !m.metronomeLoop.Active() {
			m.startMetronome()
		}
	}
}

// startTicking replaces the elapsed-time task
func (m *SessionManager) startTicking() {
	m.elapsedTick.Replace(func() *clock.Task {
		return clock.Every(m.loop, TickInterval, m.tick)
	})
}

// tick advances elapsed time by one interval. Reaching the target runs the
// completion sequence in the same loop turn and ends the task.
func (m *SessionManager) tick() bool {
	if m.status != StatusRunning {
		return false
	}
	m.elapsed += TickInterval
	if m.target > 0 && m.elapsed >= m.target {
		m.complete()
		return false
	}
	m.publish()
	return true
}

func (m *SessionManager) complete() {
	m.setStatus(StatusCompleted)
	m.stopMetronome()
	m.feedback.Success()
	m.background.Duck()
	m.chime.Trigger()
	m.showCompletion = true
	rec := m.recordSession()
	m.backgroundStop.Replace(func() *clock.Task {
		return clock.After(m.loop, audio.BackgroundStopAfterDuck, m.background.Stop)
	})

	m.logger.Printf("SessionManager: Session complete at %s", records.FormatClock(m.elapsed))
	state := m.publish()
	m.completionEvent.Notify(Completion{State: state, Record: rec})
}

// startMetronome (re)starts the click loop with a cadence derived from the
// current bpm. The first click plays immediately.
func (m *SessionManager) startMetronome() {
	if !m.metronomeEnabled || m.status != StatusRunning {
		return
	}
	interval := audio.BeatInterval(m.metronomeBPM)
	if interval <= 0 {
		return
	}
	if err := m.metronome.Prepare(); err != nil {
		m.logger.Printf("SessionManager: Metronome unavailable: %v", err)
	}
	if m.interrupted {
		m.metronome.Suspend()
	} else {
		m.metronome.Unsuspend()
	}
	m.metronomeLoop.Replace(func() *clock.Task {
		return clock.EveryNow(m.loop, interval, func() bool {
			if m.status != StatusRunning || !m.metronomeEnabled {
				return false
			}
			m.metronome.Click()
			return true
		})
	})
}

// holdBackgroundIfInterrupted keeps a freshly started soundscape silent until
// the interruption ends
func (m *SessionManager) holdBackgroundIfInterrupted() {
	if m.interrupted {
		m.background.Suspend()
	}
}

func (m *SessionManager) stopMetronome() {
	m.metronomeLoop.Cancel()
	m.metronome.Stop()
}

// recordSession appends a record when the session is long enough. A failed
// write keeps the record in memory.
func (m *SessionManager) recordSession() *records.Record {
	if !records.Eligible(m.elapsed) {
		m.logger.Printf("SessionManager: Session of %s too short to record", records.FormatClock(m.elapsed))
		return nil
	}
	r := records.NewRecord(m.elapsed, m.target, m.loop.Now(), m.soundscape.Label())
	if err := m.recLog.Append(r); err != nil {
		m.logger.Printf("SessionManager: Failed to persist record: %v", err)
	}
	m.metrics.RecordsCreated.Inc()
	return &r
}

func (m *SessionManager) setStatus(to Status) {
	if m.status == to {
		return
	}
	m.metrics.SessionTransitions.WithLabelValues(m.status.String(), to.String()).Inc()
	m.status = to
}

// buildState snapshots the session. Loop only.
func (m *SessionManager) buildState() SessionState {
	return SessionState{
		Status:           m.status,
		Elapsed:          m.elapsed,
		Target:           m.target,
		Soundscape:       m.soundscape,
		MetronomeEnabled: m.metronomeEnabled,
		MetronomeBPM:     m.metronomeBPM,
		ShowCompletion:   m.showCompletion,
	}
}

func (m *SessionManager) publish() SessionState {
	state := m.buildState()
	m.stateEvent.Notify(state)
	return state
}
