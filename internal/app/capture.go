package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.aimuz.me/glimpse/audiofile"
	"go.aimuz.me/glimpse/internal/types"
	"go.aimuz.me/glimpse/screenshot"
)

// hideDelay gives the compositor time to remove the overlay before capture.
var hideDelay = 100 * time.Millisecond

// CaptureScreen captures the primary display and returns it as a base64
// PNG, or nil when no display can be captured.
func (s *Service) CaptureScreen() *string {
	shot, ok := s.captureScreen()
	if !ok {
		return nil
	}
	return &shot.Data
}

func (s *Service) captureScreen() (types.Screenshot, bool) {
	// Hide the overlay so it does not appear in its own capture.
	wasVisible := s.window != nil && s.window.IsVisible()
	if wasVisible {
		s.window.Hide()
		time.Sleep(hideDelay)
	}

	shot, err := s.screens.Capture()

	if wasVisible {
		s.showWindow()
	}

	if err != nil {
		if errors.Is(err, screenshot.ErrNoDisplay) {
			slog.Warn("capture screen: no display available")
		} else {
			slog.Error("capture screen", "error", err)
		}
		return types.Screenshot{}, false
	}

	s.session.setScreenshot(shot)
	slog.Info("screen captured", "width", shot.Width, "height", shot.Height, "bytes", len(shot.Data))
	s.emit(EventScreenshotCaptured, shot.Data)
	return shot, true
}

// flush writes one recording to the scratch file, transcribes it and emits
// the text. The scratch file is removed whatever the outcome.
func (s *Service) flush(id string, pcm []byte) {
	text, err := s.transcribe(pcm)
	if err != nil {
		slog.Error("transcribe recording", "id", id, "error", err)
		return
	}
	if text == "" {
		slog.Info("transcription empty", "id", id)
		return
	}

	slog.Info("recording transcribed", "id", id, "chars", len(text))
	s.emit(EventAudioTranscribed, text)
}

func (s *Service) transcribe(pcm []byte) (string, error) {
	// One scratch path is shared by all recordings.
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	path, err := s.writeScratch(pcm)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("remove scratch audio", "path", path, "error", err)
		}
	}()

	ctx, cancel := s.callContext(s.cfg.Speech.Timeout.Std())
	defer cancel()

	t, err := s.transcriber.Transcribe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.transcriber.Name(), err)
	}
	return t.Text, nil
}

func (s *Service) scratchPath() string {
	return filepath.Join(s.scratchDir, "recording"+audiofile.Ext(s.cfg.Speech.Format))
}

func (s *Service) writeScratch(pcm []byte) (string, error) {
	if err := os.MkdirAll(s.scratchDir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}

	path := s.scratchPath()
	err := audiofile.Write(path, s.cfg.Speech.Format, pcm, audiofile.Format{
		SampleRate: s.cfg.Recording.SampleRate,
		Channels:   1,
	})
	if err != nil {
		// A partial file must not outlive the flush either.
		_ = os.Remove(path)
		return "", fmt.Errorf("write scratch audio: %w", err)
	}
	return path, nil
}

// callContext derives a context for one outbound call. Zero timeout means
// the call is bounded only by shutdown.
func (s *Service) callContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(s.ctx, timeout)
	}
	return context.WithCancel(s.ctx)
}
