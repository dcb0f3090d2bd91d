package app

import (
	"sync"
	"time"

	"go.aimuz.me/glimpse/audiocapture"
	"go.aimuz.me/glimpse/internal/types"
)

// Window is the subset of the overlay window the service drives.
type Window interface {
	Show()
	Hide()
	Focus()
	IsVisible() bool
}

// RecordingSession is one microphone recording. Chunks are appended by the
// capture callback and detached on stop.
type RecordingSession struct {
	ID      string
	Started time.Time

	chunks   [][]byte
	size     int
	capturer audiocapture.Capturer
	timer    *time.Timer
}

// Session holds the mutable state shared by bindings, hotkeys and the
// capture callback.
type Session struct {
	mu             sync.Mutex
	recording      *RecordingSession
	processing     bool
	lastScreenshot *types.Screenshot
}

// Status returns a snapshot. Visibility comes from the window itself.
func (s *Session) Status() types.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return types.Status{
		Recording:     s.recording != nil,
		Processing:    s.processing,
		HasScreenshot: s.lastScreenshot != nil,
	}
}

// LastScreenshot returns the most recent capture, if any.
func (s *Session) LastScreenshot() (types.Screenshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastScreenshot == nil {
		return types.Screenshot{}, false
	}
	return *s.lastScreenshot, true
}

func (s *Session) setScreenshot(shot types.Screenshot) {
	s.mu.Lock()
	s.lastScreenshot = &shot
	s.mu.Unlock()
}

func (s *Session) setProcessing(v bool) {
	s.mu.Lock()
	s.processing = v
	s.mu.Unlock()
}

// appendChunk adds audio to the active session. Chunks delivered after the
// session was detached are dropped.
func (s *Session) appendChunk(id string, chunk []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.recording
	if rec == nil || rec.ID != id {
		return
	}
	rec.chunks = append(rec.chunks, chunk)
	rec.size += len(chunk)
}
