// Package config manages application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Backends accepted by the backend setting.
const (
	// BackendWhisper downloads audio and runs local whisper inference.
	BackendWhisper = "whisper"
	// BackendCaptions fetches captions YouTube already has.
	BackendCaptions = "captions"
)

// Sentinel errors returned inside *Error by Validate.
var (
	ErrMissingInput   = errors.New("video IDs file is required")
	ErrWrongExtension = errors.New("video IDs file must be a .txt file")
	ErrInputNotFound  = errors.New("video IDs file not found")
	ErrMissingAPIKey  = errors.New("YouTube Data API key is required (set --api-key or YT_API_KEY in .env)")
	ErrUnknownBackend = errors.New("unknown backend")
	ErrOutOfRange     = errors.New("value out of range")
)

// Error is a configuration problem found before any work starts.
type Error struct {
	// Key is the configuration key at fault.
	Key string
	Err error
}

func (e *Error) Error() string {
	return "config: " + e.Key + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Config holds all settings for a transcription batch.
type Config struct {
	// VideoIDsFile is the .txt file listing one video ID per line.
	VideoIDsFile string `json:"video_ids_file"`
	// OutputPath receives audio and transcripts (default: "audio_files").
	OutputPath string `json:"output_path"`
	// APIKey is the YouTube Data API key.
	APIKey string `json:"api_key"`
	// Language is a display name or code from Languages. Empty means Hindi
	// unless the operator is prompted.
	Language string `json:"language"`
	// GPUID is the accelerator index; an unavailable index falls back to CPU.
	GPUID int `json:"gpu_id"`

	// Backend is "whisper" or "captions".
	Backend      string `json:"backend"`
	WhisperPath  string `json:"whisper_path"`
	WhisperModel string `json:"whisper_model"`
	YtdlpPath    string `json:"ytdlp_path"`
	// AudioQuality is the MP3 bitrate in kbps.
	AudioQuality int `json:"audio_quality"`
	// APIRPS paces Data API requests.
	APIRPS float64 `json:"api_rps"`
	// FailedOut, when set, receives the IDs to retry after the batch.
	FailedOut string `json:"failed_out"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		OutputPath:   "audio_files",
		Backend:      BackendWhisper,
		WhisperPath:  "whisper",
		WhisperModel: "large",
		YtdlpPath:    "yt-dlp",
		AudioQuality: 192,
		APIRPS:       1.0,
	}
}

// Load builds configuration from defaults, a JSON config file, .env and the
// environment, in increasing priority. When path is empty ytscribe.json is
// looked up in the working directory and then ~/.config/ytscribe. Load does
// not validate; callers apply flags first and then call Validate.
func Load(path string) (*Config, error) {
	return load(path, ".env")
}

func load(path, dotenvPath string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		// Config file is optional unless named explicitly
		if path != "" || !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	dotenv, err := godotenv.Read(dotenvPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	// Non-empty environment variables win over .env entries.
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}
	if err := cfg.loadFromEnv(lookup); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads path, or the first default location that exists.
func (c *Config) loadFromFile(path string) error {
	paths := []string{path}
	if path == "" {
		paths = []string{"ytscribe.json"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, ".config", "ytscribe", "ytscribe.json"))
		}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) && path == "" {
				continue
			}
			return err
		}

		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}

	return os.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv(getenv func(string) string) error {
	if v := getenv("YTSCRIBE_VIDEO_IDS_FILE"); v != "" {
		c.VideoIDsFile = v
	}
	if v := getenv("YTSCRIBE_OUTPUT_PATH"); v != "" {
		c.OutputPath = v
	}
	if v := getenv("YT_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := getenv("YTSCRIBE_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := getenv("YTSCRIBE_GPU_ID"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Key: "YTSCRIBE_GPU_ID", Err: err}
		}
		c.GPUID = n
	}
	if v := getenv("YTSCRIBE_BACKEND"); v != "" {
		c.Backend = strings.ToLower(v)
	}
	if v := getenv("YTSCRIBE_WHISPER_PATH"); v != "" {
		c.WhisperPath = v
	}
	if v := getenv("YTSCRIBE_WHISPER_MODEL"); v != "" {
		c.WhisperModel = v
	}
	if v := getenv("YTSCRIBE_YTDLP_PATH"); v != "" {
		c.YtdlpPath = v
	}
	if v := getenv("YTSCRIBE_AUDIO_QUALITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Key: "YTSCRIBE_AUDIO_QUALITY", Err: err}
		}
		c.AudioQuality = n
	}
	if v := getenv("YTSCRIBE_API_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return &Error{Key: "YTSCRIBE_API_RPS", Err: err}
		}
		c.APIRPS = f
	}
	if v := getenv("YTSCRIBE_FAILED_OUT"); v != "" {
		c.FailedOut = v
	}
	return nil
}

// Validate checks that configuration values are valid and consistent.
// Every failure is an *Error.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.VideoIDsFile) == "" {
		return &Error{Key: "video_ids_file", Err: ErrMissingInput}
	}
	if !strings.EqualFold(filepath.Ext(c.VideoIDsFile), ".txt") {
		return &Error{Key: "video_ids_file", Err: ErrWrongExtension}
	}
	if info, err := os.Stat(c.VideoIDsFile); err != nil || info.IsDir() {
		return &Error{Key: "video_ids_file", Err: fmt.Errorf("%w: %s", ErrInputNotFound, c.VideoIDsFile)}
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return &Error{Key: "api_key", Err: ErrMissingAPIKey}
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return &Error{Key: "output_path", Err: errors.New("output path must not be empty")}
	}
	if _, err := ParseLanguage(c.Language); err != nil {
		return &Error{Key: "language", Err: err}
	}
	if c.GPUID < 0 {
		return &Error{Key: "gpu_id", Err: fmt.Errorf("%w: must be non-negative", ErrOutOfRange)}
	}
	switch c.Backend {
	case BackendWhisper, BackendCaptions:
	default:
		return &Error{Key: "backend", Err: fmt.Errorf("%w %q (want %s or %s)", ErrUnknownBackend, c.Backend, BackendWhisper, BackendCaptions)}
	}
	if c.AudioQuality <= 0 {
		return &Error{Key: "audio_quality", Err: fmt.Errorf("%w: must be positive", ErrOutOfRange)}
	}
	if c.APIRPS < 0 {
		return &Error{Key: "api_rps", Err: fmt.Errorf("%w: must be non-negative", ErrOutOfRange)}
	}
	return nil
}
