package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		EnvPrefix + "API_KEY", "GROQ_API_KEY", EnvPrefix + "BASE_URL",
		EnvPrefix + "MODEL", EnvPrefix + "STT_MODEL", EnvPrefix + "LOG_LEVEL",
		EnvPrefix + "LOG_DIR", EnvPrefix + "HOTKEY_BACKEND",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.OnDisk() {
		t.Error("OnDisk() = true for missing file")
	}
	if cfg.Assistant.Model != DefaultModel {
		t.Errorf("model = %q, want %q", cfg.Assistant.Model, DefaultModel)
	}
	if cfg.Assistant.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", cfg.Assistant.Temperature, DefaultTemperature)
	}
	if cfg.Assistant.MaxTokens != DefaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", cfg.Assistant.MaxTokens, DefaultMaxTokens)
	}
	if cfg.Speech.Format != "wav" {
		t.Errorf("format = %q, want wav", cfg.Speech.Format)
	}
	if cfg.Recording.MaxDuration.Std() != 2*time.Minute {
		t.Errorf("max duration = %v, want 2m", cfg.Recording.MaxDuration.Std())
	}
	if !errors.Is(cfg.RequireAPIKey(), ErrMissingAPIKey) {
		t.Errorf("RequireAPIKey() = %v, want ErrMissingAPIKey", cfg.RequireAPIKey())
	}
}

func TestLoadFromFileMergesDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"assistant":{"model":"llama-3.3-70b-versatile","temperature":0.2,"max_tokens":200,"timeout":"45s"},"speech":{"format":"flac"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if !cfg.OnDisk() {
		t.Error("OnDisk() = false for existing file")
	}
	if cfg.Assistant.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
	if cfg.Assistant.Timeout.Std() != 45*time.Second {
		t.Errorf("timeout = %v, want 45s", cfg.Assistant.Timeout.Std())
	}
	if cfg.Speech.Format != "flac" {
		t.Errorf("format = %q, want flac", cfg.Speech.Format)
	}
	// Untouched sections keep defaults.
	if cfg.Speech.Model != DefaultSTTModel {
		t.Errorf("stt model = %q, want %q", cfg.Speech.Model, DefaultSTTModel)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gsk-fallback")
	t.Setenv(EnvPrefix+"MODEL", "custom-model")
	t.Setenv(EnvPrefix+"BASE_URL", "https://llm.example.com/v1/")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "DEBUG")
	t.Setenv(EnvPrefix+"HOTKEY_BACKEND", "native")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIKey != "gsk-fallback" {
		t.Errorf("api key = %q, want GROQ_API_KEY fallback", cfg.APIKey)
	}
	if cfg.Assistant.Model != "custom-model" {
		t.Errorf("model = %q", cfg.Assistant.Model)
	}
	if cfg.API.BaseURL != "https://llm.example.com/v1/" {
		t.Errorf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Hotkeys.Backend != "native" {
		t.Errorf("backend = %q", cfg.Hotkeys.Backend)
	}

	t.Setenv(EnvPrefix+"API_KEY", "gsk-primary")
	cfg, err = LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIKey != "gsk-primary" {
		t.Errorf("api key = %q, want GLIMPSE_API_KEY to win", cfg.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad base url", func(c *Config) { c.API.BaseURL = "not a url" }, "BaseURL"},
		{"empty model", func(c *Config) { c.Assistant.Model = "" }, "Model"},
		{"temperature too high", func(c *Config) { c.Assistant.Temperature = 3 }, "Temperature"},
		{"zero max tokens", func(c *Config) { c.Assistant.MaxTokens = 0 }, "MaxTokens"},
		{"unknown format", func(c *Config) { c.Speech.Format = "mp3" }, "Format"},
		{"unknown backend", func(c *Config) { c.Hotkeys.Backend = "x11" }, "Backend"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "Level"},
		{"negative timeout", func(c *Config) { c.Assistant.Timeout = Duration(-time.Second) }, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveNeverWritesAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"API_KEY", "gsk-secret")
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !cfg.OnDisk() {
		t.Error("OnDisk() = false after Save")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if strings.Contains(string(data), "gsk-secret") {
		t.Fatal("saved config contains the api key")
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved config is not JSON: %v", err)
	}
	rec := raw["recording"].(map[string]any)
	if rec["max_duration"] != "2m0s" {
		t.Errorf("max_duration = %v, want \"2m0s\"", rec["max_duration"])
	}
}

func TestDurationRejectsNumbers(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`30`), &d); err == nil {
		t.Fatal("expected error for numeric duration")
	}
	if err := json.Unmarshal([]byte(`"1m30s"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("duration = %v, want 1m30s", d.Std())
	}
}
