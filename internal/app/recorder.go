package app

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"go.aimuz.me/glimpse/audiocapture"
)

// StartRecording opens the microphone and begins buffering audio.
// Returns false when a recording is already active or the device fails.
func (s *Service) StartRecording() bool {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()

	if s.session.recording != nil {
		slog.Debug("start recording ignored, already recording", "id", s.session.recording.ID)
		return false
	}

	capturer, err := s.newCapturer(audiocapture.Config{SampleRate: s.cfg.Recording.SampleRate})
	if err != nil {
		slog.Error("create audio capture", "error", err)
		return false
	}

	rec := &RecordingSession{
		ID:       uuid.NewString(),
		Started:  time.Now(),
		capturer: capturer,
	}
	id := rec.ID
	if err := capturer.Start(func(chunk []byte) { s.session.appendChunk(id, chunk) }); err != nil {
		slog.Error("start audio capture", "error", err)
		_ = capturer.Stop()
		return false
	}

	if limit := s.cfg.Recording.MaxDuration.Std(); limit > 0 {
		rec.timer = time.AfterFunc(limit, func() { s.stopSession(id, "max duration reached") })
	}

	s.session.recording = rec
	slog.Info("recording started", "id", id)
	s.emit(EventRecordingState, true)
	return true
}

// StopRecording ends the active recording and transcribes it in the
// background. It is a no-op when idle.
func (s *Service) StopRecording() {
	s.stopSession("", "stopped")
}

// ToggleRecording starts a recording when idle and stops it otherwise.
func (s *Service) ToggleRecording() {
	if s.IsRecording() {
		s.StopRecording()
		return
	}
	s.StartRecording()
}

// IsRecording reports whether a recording is active.
func (s *Service) IsRecording() bool {
	s.session.mu.Lock()
	defer s.session.mu.Unlock()
	return s.session.recording != nil
}

// stopSession detaches the active recording. A non-empty id only stops
// that recording, so a stale timer never ends a newer one.
func (s *Service) stopSession(id, reason string) {
	s.session.mu.Lock()
	rec := s.session.recording
	if rec == nil || (id != "" && rec.ID != id) {
		s.session.mu.Unlock()
		return
	}
	s.session.recording = nil
	// Counted before unlock so Shutdown's Wait always sees this flush.
	s.flushes.Add(1)
	s.session.mu.Unlock()

	if rec.timer != nil {
		rec.timer.Stop()
	}
	// The device is stopped outside the lock: malgo waits for an in-flight
	// callback, which itself takes the session lock.
	if err := rec.capturer.Stop(); err != nil {
		slog.Warn("stop audio capture", "id", rec.ID, "error", err)
	}

	// Chunks that arrived before detach are kept.
	pcm := make([]byte, 0, rec.size)
	for _, c := range rec.chunks {
		pcm = append(pcm, c...)
	}

	slog.Info("recording stopped", "id", rec.ID, "reason", reason,
		"duration", time.Since(rec.Started).Round(time.Millisecond), "bytes", len(pcm))
	s.emit(EventRecordingState, false)

	if len(pcm) == 0 {
		s.flushes.Done()
		return
	}
	go func() {
		defer s.flushes.Done()
		s.flush(rec.ID, pcm)
	}()
}
