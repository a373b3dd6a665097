package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

type Config struct {
	SampleRate         int          `json:"sample_rate"`
	Language           string       `json:"language"` // a BCP-47 language tag
	InterimResults     bool         `json:"interim_results"`
	StreamDeadlineSecs int          `json:"stream_deadline_secs"`
	Audio              AudioConfig  `json:"audio"`
	Search             SearchConfig `json:"search"`
	Speak              SpeakConfig  `json:"speak"`
	LogLevel           string       `json:"log_level"`
}

type AudioConfig struct {
	DeviceID string `json:"device_id"`
}

type SearchConfig struct {
	APIKey      string `json:"api_key"`
	EngineID    string `json:"engine_id"`
	ResultCount int    `json:"result_count"`
	UseBrowser  bool   `json:"use_browser"`
}

type SpeakConfig struct {
	Backend string `json:"backend"` // "command" or "google"
	Voice   string `json:"voice"`   // Google TTS voice name, e.g. "en-US-Standard-C"
	Command string `json:"command"` // overrides the platform default say command
}

// Load reads the config from disk or returns defaults. CSE credentials may
// also be supplied via GOOGLE_CSE_KEY / GOOGLE_CSE_ID, which take precedence
// over the file.
func Load() (*Config, error) {
	path := configPath()

	// The recognition service caps a streaming utterance at 60 seconds, so
	// keep the stream alive for three utterances plus transcription margin.
	cfg := &Config{
		SampleRate:         16000,
		Language:           "en-US",
		InterimResults:     true,
		StreamDeadlineSecs: 186,
		Audio: AudioConfig{
			DeviceID: "",
		},
		Search: SearchConfig{
			ResultCount: 10,
		},
		Speak: SpeakConfig{
			Backend: "command",
		},
		LogLevel: "info",
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if key := os.Getenv("GOOGLE_CSE_KEY"); key != "" {
		cfg.Search.APIKey = key
	}
	if id := os.Getenv("GOOGLE_CSE_ID"); id != "" {
		cfg.Search.EngineID = id
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ChunkFrames returns the number of frames per capture read: 100ms of audio.
func (c *Config) ChunkFrames() int {
	return c.SampleRate / 10
}

// StreamDeadline bounds the total lifetime of one recognize stream.
func (c *Config) StreamDeadline() time.Duration {
	return time.Duration(c.StreamDeadlineSecs) * time.Second
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "speech-search", "config.json")
}
