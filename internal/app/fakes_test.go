package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"sync"
	"testing"
	"time"

	"go.aimuz.me/glimpse/audiocapture"
	"go.aimuz.me/glimpse/config"
	"go.aimuz.me/glimpse/hotkey"
	"go.aimuz.me/glimpse/internal/types"
	"go.aimuz.me/glimpse/llm"
)

type fakeWindow struct {
	mu      sync.Mutex
	visible bool
	shows   int
	hides   int
}

func (w *fakeWindow) Show()  { w.mu.Lock(); w.visible = true; w.shows++; w.mu.Unlock() }
func (w *fakeWindow) Hide()  { w.mu.Lock(); w.visible = false; w.hides++; w.mu.Unlock() }
func (w *fakeWindow) Focus() {}
func (w *fakeWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

type event struct {
	name string
	data any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []event
}

func (e *fakeEmitter) emit(name string, data any) {
	e.mu.Lock()
	e.events = append(e.events, event{name, data})
	e.mu.Unlock()
}

func (e *fakeEmitter) named(name string) []any {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []any
	for _, ev := range e.events {
		if ev.name == name {
			out = append(out, ev.data)
		}
	}
	return out
}

type fakeCapturer struct {
	mu       sync.Mutex
	handler  audiocapture.AudioHandler
	startErr error
	stops    int
}

func (c *fakeCapturer) Start(h audiocapture.AudioHandler) error {
	if c.startErr != nil {
		return c.startErr
	}
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
	return nil
}

func (c *fakeCapturer) Stop() error {
	c.mu.Lock()
	c.stops++
	c.mu.Unlock()
	return nil
}

func (c *fakeCapturer) stopCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stops
}

func (c *fakeCapturer) push(b []byte) {
	c.mu.Lock()
	h := c.handler
	c.mu.Unlock()
	h(b)
}

type fakeTranscriber struct {
	mu       sync.Mutex
	text     string
	err      error
	paths    []string
	existed  []bool
	received []int64
}

func (f *fakeTranscriber) Name() string { return "fake" }

func (f *fakeTranscriber) Transcribe(_ context.Context, path string) (types.Transcript, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, err := os.Stat(path)
	f.paths = append(f.paths, path)
	f.existed = append(f.existed, err == nil)
	if err == nil {
		f.received = append(f.received, info.Size())
	}
	if f.err != nil {
		return types.Transcript{}, f.err
	}
	return types.Transcript{Text: f.text}, nil
}

func (f *fakeTranscriber) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.paths)
}

type fakeCompleter struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	messages []llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, msgs []llm.Message) (string, types.Usage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.messages = msgs
	return f.response, types.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15}, f.err
}

type fakeScreens struct {
	displays []*image.RGBA
	err      error
}

func (f *fakeScreens) NumDisplays() int             { return len(f.displays) }
func (f *fakeScreens) Bounds(i int) image.Rectangle { return f.displays[i].Bounds() }
func (f *fakeScreens) Capture(i int) (*image.RGBA, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.displays[i], nil
}

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

type fakeHotkeys struct {
	mu       sync.Mutex
	handlers map[string]func()
	stopped  bool
}

func (f *fakeHotkeys) Name() string { return "fake" }
func (f *fakeHotkeys) Register(c hotkey.Combo, fn func()) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[string]func())
	}
	f.handlers[c.String()] = fn
	return nil
}
func (f *fakeHotkeys) Start() error { return nil }
func (f *fakeHotkeys) Stop()        { f.mu.Lock(); f.stopped = true; f.mu.Unlock() }

// harness bundles a Service with its fakes.
type harness struct {
	svc         *Service
	window      *fakeWindow
	events      *fakeEmitter
	capturer    *fakeCapturer
	captureErr  error
	opened      int
	transcriber *fakeTranscriber
	completer   *fakeCompleter
	screens     *fakeScreens
	hotkeys     *fakeHotkeys
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{BaseURL: config.DefaultBaseURL},
		Assistant: config.AssistantConfig{
			Model:       config.DefaultModel,
			Temperature: config.DefaultTemperature,
			MaxTokens:   config.DefaultMaxTokens,
		},
		Speech:    config.SpeechConfig{Model: config.DefaultSTTModel, Format: "wav"},
		Recording: config.RecordingConfig{SampleRate: config.DefaultSampleRate},
		Capture: config.CaptureConfig{
			ThumbnailWidth:  config.DefaultThumbnailWidth,
			ThumbnailHeight: config.DefaultThumbnailHeight,
		},
		Hotkeys: config.HotkeyConfig{Backend: "gohook"},
		Log:     config.LogConfig{Level: "info"},
	}
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	old := hideDelay
	hideDelay = 0
	t.Cleanup(func() { hideDelay = old })

	h := &harness{
		window:      &fakeWindow{},
		events:      &fakeEmitter{},
		capturer:    &fakeCapturer{},
		transcriber: &fakeTranscriber{text: "hello world"},
		completer:   &fakeCompleter{response: "hi there"},
		screens:     &fakeScreens{displays: []*image.RGBA{solid(64, 48)}},
		hotkeys:     &fakeHotkeys{},
	}
	h.svc = newService(cfg, "test", deps{
		screens: h.screens,
		newCapturer: func(audiocapture.Config) (audiocapture.Capturer, error) {
			h.opened++
			if h.captureErr != nil {
				return nil, h.captureErr
			}
			return h.capturer, nil
		},
		transcriber: h.transcriber,
		completer:   h.completer,
		hotkeys:     h.hotkeys,
	})
	h.svc.scratchDir = t.TempDir()
	h.svc.attach(h.window, h.events.emit)
	t.Cleanup(h.svc.Shutdown)
	return h
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

var errBoom = errors.New("boom")
