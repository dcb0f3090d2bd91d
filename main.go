package main

import (
	"embed"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"go.aimuz.me/glimpse/config"
	"go.aimuz.me/glimpse/internal/app"
	"go.aimuz.me/glimpse/logging"
	"go.aimuz.me/glimpse/screenshot"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	windowWidth  = 400
	windowHeight = 300
	windowMargin = 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	logDir := cfg.Log.Dir
	if logDir == "" {
		if dir, err := config.Dir(); err == nil {
			logDir = filepath.Join(dir, "logs")
		}
	}
	closer, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Dir: logDir})
	if err != nil {
		slog.Error("setup logging", "error", err)
	} else {
		defer closer.Close()
	}

	slog.Info("starting app", "version", version, "commit", commit, "date", date)

	if !cfg.OnDisk() {
		if err := cfg.Save(); err != nil {
			slog.Warn("save default config", "error", err)
		} else {
			slog.Info("wrote default config", "path", cfg.Path())
		}
	}
	if err := cfg.RequireAPIKey(); errors.Is(err, config.ErrMissingAPIKey) {
		slog.Warn("assistant and transcription disabled", "error", err)
	}

	appService := app.New(cfg, version)

	wailsApp := application.New(application.Options{
		Name:        "Glimpse",
		Description: "Screen and voice assistant overlay",
		Services: []application.Service{
			application.NewService(app.NewBridge(appService)),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when the overlay is hidden (we have a system tray)
			ApplicationShouldTerminateAfterLastWindowClosed: false,
			ActivationPolicy: application.ActivationPolicyAccessory,
		},
		OnShutdown: appService.Shutdown,
	})

	url, devTools := "/", false
	if dev := os.Getenv(config.EnvPrefix + "DEV_URL"); dev != "" {
		url, devTools = dev, true
	}

	screen := screenshot.PrimaryBounds(screenshot.Displays())
	x := screen.Dx() - windowWidth - windowMargin
	if x < 0 {
		x = 0
	}

	overlay := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:          "Glimpse",
		Width:          windowWidth,
		Height:         windowHeight,
		X:              x,
		Y:              windowMargin,
		URL:            url,
		Frameless:      true,
		AlwaysOnTop:    true,
		DisableResize:  true,
		Hidden:         true,
		BackgroundType: application.BackgroundTypeTransparent,
		Windows: application.WindowsWindow{
			HiddenOnTaskbar: true,
		},
		DevToolsEnabled: devTools,
	})

	// Intercept window close: hide instead of destroy so tray can reopen
	overlay.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		overlay.Hide()
	})

	appService.Init(wailsApp, overlay)

	setupTray(wailsApp, appService)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
}

func setupTray(wailsApp *application.App, svc *app.Service) {
	systemTray := wailsApp.SystemTray.New()
	if icon, err := trayIcon(); err != nil {
		slog.Warn("render tray icon", "error", err)
	} else {
		systemTray.SetIcon(icon)
	}

	trayMenu := wailsApp.NewMenu()
	trayMenu.Add("Show / Hide").
		SetAccelerator(app.ComboToggleWindow).
		OnClick(func(*application.Context) { svc.ToggleWindowVisibility() })
	trayMenu.Add("Capture Screen").
		SetAccelerator(app.ComboCaptureScreen).
		OnClick(func(*application.Context) { go svc.CaptureScreen() })
	trayMenu.Add("Start / Stop Recording").
		SetAccelerator(app.ComboToggleRecording).
		OnClick(func(*application.Context) { svc.ToggleRecording() })

	trayMenu.AddSeparator()
	trayMenu.Add("Quit").
		SetAccelerator("CmdOrCtrl+Q").
		OnClick(func(*application.Context) {
			svc.Shutdown()
			wailsApp.Quit()
		})

	systemTray.SetMenu(trayMenu)
}
