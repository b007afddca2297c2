package jogging

import (
	"context"
	"log"
	"sync"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/events"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/go_func_utils"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/records"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode UIMode
}

// SessionSource is the part of SessionManager the model mirrors
type SessionSource interface {
	ListenToState(ch chan SessionState) func()
	ListenToRecords(ch chan []records.Record) func()
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	sessionStateEvent     *events.ChannelEvent[SessionState]
	sessionState          SessionState
	recordsEvent          *events.ChannelEvent[[]records.Record]
	records               []records.Record
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

const maxLogLines = 1000

func NewUIModel(session SessionSource, logger *log.Logger, uiLogChan <-chan string) *UIModel {
	if session == nil {
		panic("UIModel: session cannot be nil")
	}
	if logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if uiLogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeDashboard},
		sessionStateEvent:     events.NewChannelEvent[SessionState](true),
		sessionState:          SessionState{Status: StatusIdle},
		recordsEvent:          events.NewChannelEvent[[]records.Record](true),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                logger,
	}

	// Mirror session state changes from the SessionManager
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.listenToSessionState(ctx, session) })

	// Mirror the record log
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.listenToRecords(ctx, session) })

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.readFromLogChannel(ctx, uiLogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Println("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Println("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.mu.Lock()
	if m.uiState.Mode == mode {
		m.mu.Unlock()
		return
	}
	m.uiState.Mode = mode
	state := m.uiState
	m.mu.Unlock()

	m.uiStateEvent.Notify(state)
}

// ListenToSessionState registers a channel to receive session state updates
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToSessionState(ch chan SessionState) func() {
	return m.sessionStateEvent.Listen(ch)
}

// GetSessionState returns the latest session state
func (m *UIModel) GetSessionState() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessionState
}

// ListenToRecords registers a channel to receive the record log
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToRecords(ch chan []records.Record) func() {
	return m.recordsEvent.Listen(ch)
}

// GetRecords returns a copy of the latest record log, newest first
func (m *UIModel) GetRecords() []records.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]records.Record(nil), m.records...)
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				// Channel closed
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}

	if n >= len(m.logLines) {
		result := make([]string, len(m.logLines))
		copy(result, m.logLines)
		return result
	}

	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}

// listenToSessionState copies every published session state into the model
func (m *UIModel) listenToSessionState(ctx context.Context, session SessionSource) {
	defer m.wg.Done()

	stateChan := make(chan SessionState, 1)
	unregister := session.ListenToState(stateChan)
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-stateChan:
			if !ok {
				return
			}
			m.mu.Lock()
			m.sessionState = state
			m.mu.Unlock()

			m.sessionStateEvent.Notify(state)
		}
	}
}

// listenToRecords copies the record log into the model after each change
func (m *UIModel) listenToRecords(ctx context.Context, session SessionSource) {
	defer m.wg.Done()

	recordsChan := make(chan []records.Record, 1)
	unregister := session.ListenToRecords(recordsChan)
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case recs, ok := <-recordsChan:
			if !ok {
				return
			}
			m.mu.Lock()
			m.records = recs
			m.mu.Unlock()

			m.recordsEvent.Notify(recs)
		}
	}
}
