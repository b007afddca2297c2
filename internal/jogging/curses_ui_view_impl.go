package jogging

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/records"
)

// Page names for tview.Pages
const (
	pageDashboard = "dashboard"
	pageRecords   = "records"
)

const progressBarWidth = 30

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode
	now         func() time.Time

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Dashboard mode components
	dashboardFlex       *tview.Flex
	dashboardTabWidgets []*tview.Box
	timerPanel          *tview.TextView
	settingsPanel       *tview.TextView

	// Records mode components
	recordsFlex       *tview.Flex
	recordsTabWidgets []*tview.Box
	recordsTable      *tview.Table
	summaryPanel      *tview.TextView
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeDashboard,
		now:         time.Now,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Don't use SetChangedFunc with app.Draw() - it can hang during shutdown.
	// The BaseUIView's event listeners already call Draw() after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.pages = tview.NewPages()

	ui.initDashboardMode(controller)
	ui.initRecordsMode(controller)

	ui.pages.AddPage(pageDashboard, ui.dashboardFlex, true, true)
	ui.pages.AddPage(pageRecords, ui.recordsFlex, true, false)

	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 2, true).
		AddItem(ui.logView, 0, 1, false)

	ui.setFocusForCurrentMode()
}

// initDashboardMode sets up the session timer UI
func (ui *CursesUIViewImpl) initDashboardMode(controller *UIController) {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText("[yellow]Space[white] Start/Pause  |  [yellow]X[white] Stop  |  [yellow]Enter[white] Dismiss  |  [yellow]+/-[white] Target  |  [yellow]T[white] Preset\n" +
		"[yellow]S[white] Soundscape  |  [yellow]M[white] Metronome  |  [yellow]B[white] BPM  |  [yellow]1[white] Session  |  [yellow]2[white] Records")

	ui.timerPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.timerPanel.SetBorder(true).SetTitle(" Slow Jogging ")

	ui.settingsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.settingsPanel.SetBorder(true).SetTitle(" Settings ")

	ui.updateSessionDisplay(SessionState{Status: StatusIdle, Target: DefaultTargetMinutes * time.Minute, MetronomeBPM: DefaultMetronomeBPM})

	ui.dashboardTabWidgets = append(ui.dashboardTabWidgets, ui.timerPanel.Box, ui.settingsPanel.Box)

	ui.dashboardFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 2, 0, false).
		AddItem(ui.timerPanel, 0, 2, true).
		AddItem(ui.settingsPanel, 0, 1, false)
}

// initRecordsMode sets up the record history UI
func (ui *CursesUIViewImpl) initRecordsMode(controller *UIController) {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText("[yellow]Tab[white] Switch Panel  |  [yellow]C[white] Clear All Records  |  [yellow]1[white] Session  |  [yellow]2[white] Records")

	ui.recordsTable = tview.NewTable().
		SetBorders(false).
		SetSelectable(true, false).
		SetFixed(1, 0)
	ui.recordsTable.SetBorder(true).SetTitle(" History ")

	ui.summaryPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.summaryPanel.SetBorder(true).SetTitle(" Last 7 Days ")

	ui.UpdateRecords(nil)

	ui.recordsTabWidgets = append(ui.recordsTabWidgets, ui.recordsTable.Box, ui.summaryPanel.Box)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.recordsTable, 0, 3, true).
		AddItem(ui.summaryPanel, 0, 2, false)

	ui.recordsFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 1, 0, false).
		AddItem(body, 0, 1, true)
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeDashboard:
		ui.pages.SwitchToPage(pageDashboard)
	case UIModeRecords:
		ui.pages.SwitchToPage(pageRecords)
	}

	ui.setFocusForCurrentMode()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	widgets := ui.getTabWidgetsForCurrentMode()
	if len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []*tview.Box {
	switch ui.currentMode {
	case UIModeDashboard:
		return ui.dashboardTabWidgets
	case UIModeRecords:
		return ui.recordsTabWidgets
	default:
		return nil
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Number keys for mode switching
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				// Delegate to controller - it will update the model, which will notify us
				controller.OnModeChange(mode)
				return nil
			}
		}

		// Tab to switch focus between widgets in current mode
		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			widgetCount := len(widgets)
			if widgetCount > 0 {
				for i := 0; i < widgetCount+1; i++ {
					idx := i % widgetCount
					if widgets[idx].HasFocus() {
						ui.app.SetFocus(widgets[(idx+1)%widgetCount])
						break
					}
				}
			}
			return nil
		}

		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		switch ui.currentMode {
		case UIModeDashboard:
			switch {
			case event.Key() == tcell.KeyEnter:
				controller.AcknowledgeCompletion()
			case event.Key() == tcell.KeyUp:
				controller.IncreaseTarget()
			case event.Key() == tcell.KeyDown:
				controller.DecreaseTarget()
			case event.Key() != tcell.KeyRune:
				return event
			default:
				switch event.Rune() {
				case ' ':
					controller.ToggleSession()
				case 'x':
					controller.StopSession()
				case '+', '=':
					controller.IncreaseTarget()
				case '-':
					controller.DecreaseTarget()
				case 't':
					controller.CycleTargetPreset()
				case 's':
					controller.NextSoundscape()
				case 'm':
					controller.ToggleMetronome()
				case 'b':
					controller.CycleMetronomeBPM()
				default:
					return event
				}
			}
			return nil
		case UIModeRecords:
			if event.Key() == tcell.KeyRune && event.Rune() == 'C' {
				controller.ClearRecords()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, line)
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}

// UpdateSessionState updates the timer and settings panels
func (ui *CursesUIViewImpl) UpdateSessionState(state SessionState) {
	ui.updateSessionDisplay(state)
}

func (ui *CursesUIViewImpl) updateSessionDisplay(state SessionState) {
	if ui.timerPanel == nil {
		return
	}

	var text string
	text += "\n"
	switch state.Status {
	case StatusIdle:
		text += "[gray]Ready[white]\n\n"
	case StatusRunning:
		text += "[green]Running[white]\n\n"
	case StatusPaused:
		text += "[yellow]Paused[white]\n\n"
	case StatusCompleted:
		text += "[green]Target reached![white]\n\n"
	}

	text += fmt.Sprintf("[::b]%s[::-]\n", state.FormattedElapsed())
	if state.Target > 0 {
		text += fmt.Sprintf("[gray]%s[white]\n\n", state.FormattedRemaining())
	} else {
		text += "[gray]no target[white]\n\n"
	}
	text += fmt.Sprintf("%s %3.0f%%\n", progressBar(state.Progress(), progressBarWidth), state.Progress()*100)

	if state.ShowCompletion {
		text += "\n[green]Great run! Session saved.[white]\n"
		text += "[gray]Press[white] [yellow]Enter[white] [gray]to dismiss[white]\n"
	}
	ui.timerPanel.SetText(text)

	info := state.Soundscape.Info()
	settings := "\n"
	settings += fmt.Sprintf("  [gray]Target:[white]     %d min\n", state.TargetMinutes())
	settings += fmt.Sprintf("  [gray]Soundscape:[white] %s %s [gray](%s)[white]\n", info.Emoji, info.Title, info.Subtitle)
	if state.MetronomeEnabled {
		settings += fmt.Sprintf("  [gray]Metronome:[white]  [green]on[white] @ %d bpm\n", state.MetronomeBPM)
	} else {
		settings += fmt.Sprintf("  [gray]Metronome:[white]  [gray]off[white] (%d bpm)\n", state.MetronomeBPM)
	}
	ui.settingsPanel.SetText(settings)
}

// progressBar renders p in [0,1] as a bar of width cells
func progressBar(p float64, width int) string {
	filled := int(p * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[green]" + strings.Repeat("█", filled) + "[gray]" + strings.Repeat("░", width-filled) + "[white]"
}

// UpdateRecords updates the history table and the summary panel
func (ui *CursesUIViewImpl) UpdateRecords(recs []records.Record) {
	if ui.recordsTable == nil {
		return
	}

	ui.recordsTable.Clear()
	for col, title := range []string{"Date", "Time", "Target", "Done", "kcal", "Soundscape"} {
		ui.recordsTable.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}
	if len(recs) == 0 {
		ui.recordsTable.SetCell(1, 0, tview.NewTableCell("No runs yet").SetTextColor(tcell.ColorGray))
	}
	for i, r := range recs {
		row := i + 1
		done := fmt.Sprintf("%.0f%%", r.CompletionPercentage())
		doneColor := tcell.ColorWhite
		if r.GoalMet() {
			doneColor = tcell.ColorGreen
		}
		ui.recordsTable.SetCell(row, 0, tview.NewTableCell(r.FormattedDate()))
		ui.recordsTable.SetCell(row, 1, tview.NewTableCell(r.FormattedDuration()))
		ui.recordsTable.SetCell(row, 2, tview.NewTableCell(records.FormatClock(r.TargetDuration)))
		ui.recordsTable.SetCell(row, 3, tview.NewTableCell(done).SetTextColor(doneColor))
		ui.recordsTable.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%d", r.DerivedCalorieEstimate)))
		ui.recordsTable.SetCell(row, 5, tview.NewTableCell(r.SoundscapeLabel))
	}

	ui.summaryPanel.SetText(formatSummary(recs, ui.now()))
}

// formatSummary renders the weekly totals, today's totals and a per-day bar chart
func formatSummary(recs []records.Record, now time.Time) string {
	week := records.WeeklySummary(recs, now)
	today := records.DailySummary(recs, now)

	text := "\n"
	text += fmt.Sprintf("  [gray]Runs:[white]           %d\n", week.Runs)
	text += fmt.Sprintf("  [gray]Time:[white]           %s\n", week.FormattedTime())
	text += fmt.Sprintf("  [gray]Avg completion:[white] %d%%\n", week.AverageCompletion)
	text += fmt.Sprintf("  [gray]Goals met:[white]      %d\n\n", week.GoalMetCount)
	text += fmt.Sprintf("  [gray]Today:[white] %d runs, %s\n\n", today.Runs, today.FormattedTime())

	stats := records.DailyStats(recs, now)
	maxMinutes := 0.0
	for _, d := range stats {
		maxMinutes = max(maxMinutes, d.Minutes)
	}
	const barWidth = 16
	for _, d := range stats {
		bar := 0
		if maxMinutes > 0 {
			bar = int(d.Minutes / maxMinutes * barWidth)
		}
		color := "blue"
		if d.GoalMet {
			color = "green"
		}
		text += fmt.Sprintf("  %s [%s]%-*s[white] %3.0fm\n", d.Day.Format("Mon"), color, barWidth, strings.Repeat("▇", bar), d.Minutes)
	}
	return text
}
