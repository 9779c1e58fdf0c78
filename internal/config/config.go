// Package config provides configuration loading and validation for the
// interview agent server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config represents the server configuration. Values can be loaded from a
// JSON file, overridden by environment variables, and finally by CLI flags.
type Config struct {
	// Server
	Port         int    `json:"port,omitempty"`          // HTTP listen port
	AllowOrigins string `json:"allow_origins,omitempty"` // CORS allowed origins, comma separated

	// Backends
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Audio
	AudioDir string `json:"audio_dir,omitempty"` // Root directory for session audio

	// Speech engine
	PythonPath     string `json:"python_path,omitempty"`     // Interpreter for engine scripts
	VoiceScriptDir string `json:"voice_script_dir,omitempty"` // Directory holding STT/TTS scripts

	// Timeouts, in seconds
	TranscribeTimeoutSec int `json:"transcribe_timeout_sec,omitempty"`
	SynthesizeTimeoutSec int `json:"synthesize_timeout_sec,omitempty"`
	GenerateTimeoutSec   int `json:"generate_timeout_sec,omitempty"`

	// Logging
	LogLevel  string `json:"log_level,omitempty"`  // debug, info, warn, error
	LogFormat string `json:"log_format,omitempty"` // json or console
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Unset
// variables leave zero values for MergeWithDefaults to fill.
func FromEnv() Config {
	return Config{
		Port:                 envInt("PORT"),
		AllowOrigins:         os.Getenv("ALLOW_ORIGINS"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		APIKey:               os.Getenv("GEMINI_API_KEY"),
		AudioDir:             os.Getenv("AUDIO_DIR"),
		PythonPath:           os.Getenv("PYTHON_PATH"),
		VoiceScriptDir:       os.Getenv("VOICE_SCRIPT_DIR"),
		TranscribeTimeoutSec: envInt("TRANSCRIBE_TIMEOUT_SEC"),
		SynthesizeTimeoutSec: envInt("SYNTHESIZE_TIMEOUT_SEC"),
		GenerateTimeoutSec:   envInt("GENERATE_TIMEOUT_SEC"),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		LogFormat:            os.Getenv("LOG_FORMAT"),
	}
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.TranscribeTimeoutSec < 0 || c.SynthesizeTimeoutSec < 0 || c.GenerateTimeoutSec < 0 {
		return fmt.Errorf("config error: timeouts must be non-negative")
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console")
	}
	if c.VoiceScriptDir != "" {
		if _, err := os.Stat(c.VoiceScriptDir); os.IsNotExist(err) {
			return fmt.Errorf("config error: voice script dir not found: %s", c.VoiceScriptDir)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Used to layer file config under environment variables.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.AllowOrigins == "" {
		result.AllowOrigins = defaults.AllowOrigins
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.AudioDir == "" {
		result.AudioDir = defaults.AudioDir
	}
	if result.PythonPath == "" {
		result.PythonPath = defaults.PythonPath
	}
	if result.VoiceScriptDir == "" {
		result.VoiceScriptDir = defaults.VoiceScriptDir
	}
	if result.TranscribeTimeoutSec == 0 {
		result.TranscribeTimeoutSec = defaults.TranscribeTimeoutSec
	}
	if result.SynthesizeTimeoutSec == 0 {
		result.SynthesizeTimeoutSec = defaults.SynthesizeTimeoutSec
	}
	if result.GenerateTimeoutSec == 0 {
		result.GenerateTimeoutSec = defaults.GenerateTimeoutSec
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}

	return result
}

// Defaults returns the built-in fallback configuration.
func Defaults() Config {
	return Config{
		Port:      8080,
		AudioDir:  "audio_storage",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// TranscribeTimeout returns the configured transcription bound.
func (c *Config) TranscribeTimeout() time.Duration {
	return time.Duration(c.TranscribeTimeoutSec) * time.Second
}

// SynthesizeTimeout returns the configured synthesis bound.
func (c *Config) SynthesizeTimeout() time.Duration {
	return time.Duration(c.SynthesizeTimeoutSec) * time.Second
}

// GenerateTimeout returns the configured generation bound.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.GenerateTimeoutSec) * time.Second
}
