// Package types provides shared type definitions for the application.
package types

import "strings"

// AIRequest is the payload of a process-with-ai bridge request.
type AIRequest struct {
	Text      string `json:"text"`                // Required, non-empty after trimming
	ImageData string `json:"imageData,omitempty"` // Base64 screenshot, optional
	Context   string `json:"context,omitempty"`   // Free-form context line, optional
}

// Valid reports whether the request carries usable text.
func (r AIRequest) Valid() bool {
	return strings.TrimSpace(r.Text) != ""
}

// HasImage reports whether a screenshot accompanies the request.
func (r AIRequest) HasImage() bool {
	return r.ImageData != ""
}

// Screenshot is an encoded screen capture.
type Screenshot struct {
	Data   string `json:"data"` // Base64-encoded PNG
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Transcript is the result of a hosted transcription call.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// Usage represents token usage statistics from LLM API calls.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Status is a snapshot of the session for the view.
type Status struct {
	Visible       bool `json:"visible"`
	Recording     bool `json:"recording"`
	Processing    bool `json:"processing"`
	HasScreenshot bool `json:"hasScreenshot"`
}
