package jogging

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/go_func_utils"
)

// Target adjustment limits for the +/- keys
const (
	MinTargetMinutes = 1
	MaxTargetMinutes = 180
)

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model   *UIModel
	session *SessionManager
	logger  *log.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(model *UIModel, session *SessionManager, logger *log.Logger) *UIController {
	if model == nil {
		panic("UIController: model cannot be nil")
	}
	if session == nil {
		panic("UIController: session cannot be nil")
	}
	if logger == nil {
		panic("UIController: logger cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &UIController{
		model:   model,
		session: session,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}

	// Completion does not replay, so subscribe before the goroutine runs
	ch := make(chan Completion, 1)
	unregister := session.ListenToCompletion(ch)
	c.wg.Add(1)
	go_func_utils.SafeGo(logger, func() { c.listenToCompletion(ch, unregister) })

	return c
}

// listenToCompletion brings the dashboard forward when a session completes
func (c *UIController) listenToCompletion(ch <-chan Completion, unregister func()) {
	defer c.wg.Done()
	defer unregister()

	for {
		select {
		case <-c.ctx.Done():
			return
		case done, ok := <-ch:
			if !ok {
				return
			}
			if done.Record != nil {
				c.logger.Printf("Session complete: %s, %d kcal", done.Record.FormattedDuration(), done.Record.DerivedCalorieEstimate)
			} else {
				c.logger.Printf("Session complete: %s (too short to record)", done.State.FormattedElapsed())
			}
			c.model.SetMode(UIModeDashboard)
		}
	}
}

// OnEscapeKey handles when the Escape key is pressed
func (c *UIController) OnEscapeKey() {
	c.model.RequestCloseApplication()
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Printf("Switching to %s mode", info.DisplayName)
	}
	c.model.SetMode(mode)
}

// --- Session Methods ---

// ToggleSession starts, pauses or resumes the session, or dismisses a
// completed one, based on current state
func (c *UIController) ToggleSession() {
	state := c.session.Snapshot()
	switch state.Status {
	case StatusIdle:
		c.session.Start()
	case StatusRunning:
		c.session.Pause()
	case StatusPaused:
		c.session.Resume()
	case StatusCompleted:
		c.session.AcknowledgeCompletion()
	}
}

// StopSession stops the session, recording it if long enough
func (c *UIController) StopSession() {
	c.session.Stop()
}

// AcknowledgeCompletion dismisses the completion banner
func (c *UIController) AcknowledgeCompletion() {
	c.session.AcknowledgeCompletion()
}

// IncreaseTarget adds one minute to the target
func (c *UIController) IncreaseTarget() {
	c.adjustTarget(1)
}

// DecreaseTarget removes one minute from the target
func (c *UIController) DecreaseTarget() {
	c.adjustTarget(-1)
}

func (c *UIController) adjustTarget(deltaMinutes int) {
	minutes := c.session.Snapshot().TargetMinutes() + deltaMinutes
	if minutes < MinTargetMinutes {
		minutes = MinTargetMinutes
	}
	if minutes > MaxTargetMinutes {
		minutes = MaxTargetMinutes
	}
	c.session.SetTargetMinutes(minutes)
	c.logger.Printf("Target: %d min", minutes)
}

// CycleTargetPreset moves to the next entry of TargetMinutePresets
func (c *UIController) CycleTargetPreset() {
	current := c.session.Snapshot().Target
	next := TargetMinutePresets[0]
	for _, p := range TargetMinutePresets {
		if time.Duration(p)*time.Minute > current {
			next = p
			break
		}
	}
	c.session.SetTargetMinutes(next)
	c.logger.Printf("Target: %d min", next)
}

// NextSoundscape switches to the next soundscape
func (c *UIController) NextSoundscape() {
	next := c.session.Snapshot().Soundscape.Next()
	c.session.SetSoundscape(next)
	info := next.Info()
	c.logger.Printf("Soundscape: %s %s", info.Emoji, info.Title)
}

// ToggleMetronome turns the click track on or off
func (c *UIController) ToggleMetronome() {
	enabled := !c.session.Snapshot().MetronomeEnabled
	c.session.SetMetronomeEnabled(enabled)
	if enabled {
		c.logger.Printf("Metronome on")
	} else {
		c.logger.Printf("Metronome off")
	}
}

// CycleMetronomeBPM moves to the next entry of MetronomeBPMPresets
func (c *UIController) CycleMetronomeBPM() {
	current := c.session.Snapshot().MetronomeBPM
	next := MetronomeBPMPresets[0]
	for i, bpm := range MetronomeBPMPresets {
		if bpm == current {
			next = MetronomeBPMPresets[(i+1)%len(MetronomeBPMPresets)]
			break
		}
	}
	c.session.SetMetronomeBPM(next)
	c.logger.Printf("Metronome: %d bpm", next)
}

// ClearRecords deletes the record history
func (c *UIController) ClearRecords() {
	if err := c.session.ClearRecords(); err != nil {
		c.logger.Printf("Failed to clear records: %v", err)
		return
	}
	c.logger.Printf("Records cleared")
}

// Shutdown stops the session manager and cleans up resources
func (c *UIController) Shutdown() {
	c.cancel()
	c.wg.Wait()
	c.session.Shutdown()
}
