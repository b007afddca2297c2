package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rivo/tview"
	"github.com/spf13/pflag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/audio"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/clock"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/config"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/jogging"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/metrics"
	"github.com/lowaak/slow-jogging/jogging-timer-app/internal/records"
)

// uiLogWriter forwards each log line to the UI without ever blocking the logger
type uiLogWriter struct {
	ch chan<- string
}

func (w uiLogWriter) Write(p []byte) (int, error) {
	select {
	case w.ch <- string(p):
	default:
	}
	return len(p), nil
}

func main() {
	fs := pflag.NewFlagSet("jogging-timer", pflag.ExitOnError)
	config.RegisterFlags(fs)
	exportRecords := fs.Bool("export-records", false, "write the record history as YAML to stdout and exit")
	must("parse flags", fs.Parse(os.Args[1:]))

	// Config is read before the log file is known, so early messages go to stderr
	bootLogger := log.New(os.Stderr, "", log.LstdFlags)
	loader, err := config.NewLoader(fs, bootLogger)
	must("load config", err)
	cfg, err := loader.Load()
	must("load config", err)

	logFile := &lumberjack.Logger{
		Filename:   cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
	}
	defer logFile.Close()

	if *exportRecords {
		logger := log.New(logFile, "", log.LstdFlags)
		must("export records", exportRecordLog(cfg, logger, os.Stdout))
		return
	}

	uiLogChan := make(chan string, 256)
	logger := log.New(io.MultiWriter(logFile, uiLogWriter{ch: uiLogChan}), "", log.Ltime)
	logger.Printf("Jogging timer starting (config %q)", loader.ConfigFile())

	backend, err := newAudioBackend(cfg.Audio, logger)
	must("open audio output", err)

	recordBackend, err := records.NewBackend(cfg.Storage.Backend, cfg.Storage.Dir)
	must("open record storage", err)
	recordLog := records.NewLog(recordBackend, logger)
	if err := recordLog.Load(); err != nil {
		logger.Printf("Starting with an empty record log: %v", err)
	}

	screen, err := tcell.NewScreen()
	must("create screen", err)
	app := tview.NewApplication().SetScreen(screen)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	loop := clock.NewRealLoop(logger)

	session := jogging.NewSessionManager(jogging.NewSessionManagerArg{
		Loop:     loop,
		Backend:  backend,
		Resolver: audio.NewResolver(cfg.Audio.ResourceDir),
		Records:  recordLog,
		Logger:   logger,
		Feedback: jogging.FeedbackFunc(func() {
			if err := screen.Beep(); err != nil {
				logger.Printf("Beep failed: %v", err)
			}
		}),
		Metrics:     m,
		Preferences: preferences(cfg.Session, logger),
	})

	interruptions := jogging.NewInterruptions()
	signalCtx, stopSignals := context.WithCancel(context.Background())
	signalsDone := jogging.NotifySignals(signalCtx, interruptions, logger)
	session.WatchInterruptions(interruptions)

	loader.Watch(func(c config.Config) {
		session.ApplyPreferences(preferences(c.Session, logger))
	})

	uiModel := jogging.NewUIModel(session, logger, uiLogChan)
	uiController := jogging.NewUIController(uiModel, session, logger)
	uiView := jogging.NewBaseUIView(jogging.NewBaseUIViewArg{
		UIViewImpl:   jogging.NewCursesUIView(logger, app, uiModel),
		UIModel:      uiModel,
		UIController: uiController,
		Logger:       logger,
	})

	logger.Printf("Press Space to start jogging, Esc to quit")
	runErr := uiView.Run()

	uiView.Shutdown()
	uiController.Shutdown()
	uiModel.Shutdown()
	stopSignals()
	<-signalsDone
	loop.Shutdown()
	if err := backend.Close(); err != nil {
		logger.Printf("Audio close failed: %v", err)
	}
	if err := recordBackend.Close(); err != nil {
		logger.Printf("Record storage close failed: %v", err)
	}
	if summary, err := metrics.Summarize(registry); err == nil {
		logger.Printf("Metrics: %s", summary)
	}

	must("run UI", runErr)
}

// newAudioBackend opens the configured output
func newAudioBackend(c config.AudioConfig, logger *log.Logger) (audio.Backend, error) {
	switch c.Backend {
	case "pulse":
		b, err := audio.NewPulseBackend(c.SampleRate, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "none":
		return audio.NewNoneBackend(), nil
	default:
		return audio.NewBeepBackend(c.SampleRate, logger), nil
	}
}

// preferences converts the session section of the config. An unknown
// soundscape falls back to the first preset.
func preferences(c config.SessionConfig, logger *log.Logger) jogging.Preferences {
	soundscape, err := jogging.ParseSoundscape(c.Soundscape)
	if err != nil {
		logger.Printf("Config: %v, using %s", err, soundscape)
	}
	return jogging.Preferences{
		Target:           time.Duration(c.TargetMinutes) * time.Minute,
		Soundscape:       soundscape,
		MetronomeEnabled: c.MetronomeEnabled,
		MetronomeBPM:     c.MetronomeBPM,
	}
}

func exportRecordLog(cfg config.Config, logger *log.Logger, w io.Writer) error {
	backend, err := records.NewBackend(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		return err
	}
	defer backend.Close()

	recordLog := records.NewLog(backend, logger)
	if err := recordLog.Load(); err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	return records.ExportYAML(w, recordLog.Snapshot())
}

func must(action string, err error) {
	if err != nil {
		panic("failed to " + action + ": " + err.Error())
	}
}
