package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/glimpse/audiocapture"
	"go.aimuz.me/glimpse/config"
	"go.aimuz.me/glimpse/hotkey"
	"go.aimuz.me/glimpse/internal/types"
	"go.aimuz.me/glimpse/llm"
	"go.aimuz.me/glimpse/screenshot"
	"go.aimuz.me/glimpse/stt"
)

// Service provides application functionality to the shell, hotkeys and
// tray. The view reaches it only through Bridge.
type Service struct {
	cfg     *config.Config
	version string
	session Session

	// UI references - set via Init
	window Window
	emitFn Emitter

	screens     *screenshot.Capturer
	newCapturer func(audiocapture.Config) (audiocapture.Capturer, error)
	transcriber stt.Transcriber
	completer   llm.Completer
	hotkeys     *hotkey.Manager

	// ctx is cancelled on shutdown and bounds every outbound call.
	ctx    context.Context
	cancel context.CancelFunc

	flushMu    sync.Mutex
	flushes    sync.WaitGroup
	scratchDir string

	shutdownOnce sync.Once
}

// deps are the OS and network collaborators of a Service.
type deps struct {
	screens     screenshot.Source
	newCapturer func(audiocapture.Config) (audiocapture.Capturer, error)
	transcriber stt.Transcriber
	completer   llm.Completer
	hotkeys     hotkey.Backend
}

// New creates a Service wired to the real display, microphone and hosted
// API. Call Init after the Wails app is created.
func New(cfg *config.Config, version string) *Service {
	backend, err := hotkey.New(cfg.Hotkeys.Backend)
	if err != nil {
		slog.Error("select hotkey backend", "error", err)
	}

	return newService(cfg, version, deps{
		screens:     screenshot.Displays(),
		newCapturer: audiocapture.New,
		transcriber: stt.NewWhisperAPI(stt.WhisperAPIConfig{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.API.BaseURL,
			Model:    cfg.Speech.Model,
			Language: cfg.Speech.Language,
		}),
		completer: llm.NewCompleter(cfg.APIKey, cfg.API.BaseURL, cfg.Assistant.Model, llm.Options{
			MaxTokens:   cfg.Assistant.MaxTokens,
			Temperature: cfg.Assistant.Temperature,
		}),
		hotkeys: backend,
	})
}

func newService(cfg *config.Config, version string, d deps) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		cfg:         cfg,
		version:     version,
		screens:     screenshot.NewCapturer(d.screens, cfg.Capture.ThumbnailWidth, cfg.Capture.ThumbnailHeight),
		newCapturer: d.newCapturer,
		transcriber: d.transcriber,
		completer:   d.completer,
		ctx:         ctx,
		cancel:      cancel,
		scratchDir:  filepath.Join(os.TempDir(), "glimpse"),
	}
	if d.hotkeys != nil {
		s.hotkeys = hotkey.NewManager(d.hotkeys)
	}
	return s
}

// Init attaches the app and overlay window and registers global hotkeys.
// Must be called after the Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.attach(wailsWindow{window}, func(name string, data any) {
		app.Event.Emit(name, data)
	})

	if !screenshot.HasPermission() {
		slog.Warn("screen recording permission missing; captures may be blank")
		screenshot.RequestPermission()
	}

	s.setupHotkeys()
}

func (s *Service) attach(window Window, emit Emitter) {
	s.window = window
	s.emitFn = emit
}

// Shutdown stops hotkeys and recording and waits for pending transcriptions.
func (s *Service) Shutdown() {
	s.shutdownOnce.Do(func() {
		if s.hotkeys != nil {
			s.hotkeys.Stop()
		}
		s.StopRecording()
		s.flushes.Wait()
		s.cancel()
		slog.Info("service shut down")
	})
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// GetStatus returns the current session state.
func (s *Service) GetStatus() types.Status {
	st := s.session.Status()
	if s.window != nil {
		st.Visible = s.window.IsVisible()
	}
	return st
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.emitFn != nil {
		s.emitFn(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Window
// ─────────────────────────────────────────────────────────────────────────────

// MinimizeWindow hides the overlay.
func (s *Service) MinimizeWindow() {
	if s.window != nil {
		s.window.Hide()
	}
}

// ToggleWindowVisibility shows a hidden overlay or hides a visible one.
// Recording state is untouched.
func (s *Service) ToggleWindowVisibility() {
	if s.window == nil {
		return
	}
	if s.window.IsVisible() {
		s.window.Hide()
		return
	}
	s.showWindow()
}

func (s *Service) showWindow() {
	if s.window != nil {
		s.window.Show()
		s.window.Focus()
	}
}

// wailsWindow adapts application.Window, whose Show and Hide chain.
type wailsWindow struct {
	w application.Window
}

func (w wailsWindow) Show()           { w.w.Show() }
func (w wailsWindow) Hide()           { w.w.Hide() }
func (w wailsWindow) Focus()          { w.w.Focus() }
func (w wailsWindow) IsVisible() bool { return w.w.IsVisible() }
