package app

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"go.aimuz.me/glimpse/internal/types"
	"go.aimuz.me/glimpse/llm"
)

// Replies returned in place of a completion.
const (
	FallbackNoAnswer = "Sorry, I could not process your request."
	FallbackError    = "Error processing your request. Please try again."
)

// DefaultSystemPrompt frames every completion.
const DefaultSystemPrompt = "You are a helpful AI assistant that provides concise, relevant responses. Keep responses brief and actionable."

const screenshotNote = "The user has shared a screenshot. Please analyze it and provide relevant assistance."

// ProcessWithAI sends the user's text, with optional context and a note
// about an attached screenshot, to the completion service. Empty text
// returns "" without any request. Failures map to fixed replies.
func (s *Service) ProcessWithAI(req types.AIRequest) string {
	if !req.Valid() {
		slog.Debug("process with ai: empty text rejected")
		return ""
	}

	id := uuid.NewString()
	s.session.setProcessing(true)
	defer s.session.setProcessing(false)

	ctx, cancel := s.callContext(s.cfg.Assistant.Timeout.Std())
	defer cancel()

	start := time.Now()
	text, usage, err := s.completer.Complete(ctx, buildMessages(s.systemPrompt(), req))
	switch {
	case errors.Is(err, llm.ErrNoChoices):
		slog.Warn("completion returned no choices", "request", id)
		return FallbackNoAnswer
	case err != nil:
		slog.Error("process with ai", "request", id, "text", truncate(req.Text, 32), "error", err)
		return FallbackError
	}

	slog.Info("completion done", "request", id,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"prompt_tokens", usage.PromptTokens, "completion_tokens", usage.CompletionTokens)

	if strings.TrimSpace(text) == "" {
		return FallbackNoAnswer
	}
	return text
}

func (s *Service) systemPrompt() string {
	if p := strings.TrimSpace(s.cfg.Assistant.SystemPrompt); p != "" {
		return p
	}
	return DefaultSystemPrompt
}

// buildMessages renders the request as one user turn. Screenshot pixels are
// not forwarded, only a note that one was shared.
func buildMessages(systemPrompt string, req types.AIRequest) []llm.Message {
	content := `You are a helpful AI assistant. The user said: "` + req.Text + `"`
	if req.Context != "" {
		content += "\n\nContext: " + req.Context
	}
	if req.HasImage() {
		content += "\n\n" + screenshotNote
	}

	return []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: content},
	}
}

// truncate shortens a string for logging purposes without separating a
// combining mark from its base.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	for n > 0 && !norm.NFC.PropertiesString(string(r[n])).BoundaryBefore() {
		n--
	}
	return string(r[:n]) + "..."
}
