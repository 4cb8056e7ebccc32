// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jeranaias/rigchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigchat configuration.
type Config struct {
	Completion CompletionConfig `toml:"completion" json:"completion"`
	Storage    StorageConfig    `toml:"storage" json:"storage"`
	UI         UIConfig         `toml:"ui" json:"ui"`
	Logging    LoggingConfig    `toml:"logging" json:"logging"`
}

// CompletionConfig configures the chat-completion endpoint.
type CompletionConfig struct {
	BaseURL           string `toml:"base_url" json:"base_url"`
	Model             string `toml:"model" json:"model"`
	APIKey            string `toml:"api_key" json:"api_key"`
	TimeoutSecs       int    `toml:"timeout_secs" json:"timeout_secs"`
	RequestsPerMinute int    `toml:"requests_per_minute" json:"requests_per_minute"`
}

// StorageConfig configures persistence.
type StorageConfig struct {
	// HistoryPath is the chat history document. A leading ~ is expanded.
	HistoryPath string `toml:"history_path" json:"history_path"`
	// ExportDir receives exported conversations.
	ExportDir string `toml:"export_dir" json:"export_dir"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme        string `toml:"theme" json:"theme"` // "dark", "light" or "auto"
	SidebarWidth int    `toml:"sidebar_width" json:"sidebar_width"`
	Markdown     bool   `toml:"markdown" json:"markdown"`
}

// LoggingConfig configures the log file. The terminal belongs to the UI,
// so logs never go to stdout.
type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
	File  string `toml:"file" json:"file"`
}

// Defaults and limits.
const (
	DefaultBaseURL           = "https://api.openai.com/v1"
	DefaultModel             = "gpt-4o-mini"
	DefaultTimeoutSecs       = 60
	DefaultRequestsPerMinute = 20
	DefaultSidebarWidth      = 28
	DefaultTheme             = "auto"
	DefaultLogLevel          = "info"

	MinSidebarWidth = 12
	MaxSidebarWidth = 80
	MaxTimeoutSecs  = 600
)

// Default returns the built-in configuration.
func Default() *Config {
	historyPath := "chat_history.json"
	logFile := "rigchat.log"
	exportDir := "exports"
	if dir, err := ConfigDir(); err == nil {
		historyPath = filepath.Join(dir, "chat_history.json")
		logFile = filepath.Join(dir, "rigchat.log")
		exportDir = filepath.Join(dir, "exports")
	}

	return &Config{
		Completion: CompletionConfig{
			BaseURL:           DefaultBaseURL,
			Model:             DefaultModel,
			TimeoutSecs:       DefaultTimeoutSecs,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Storage: StorageConfig{
			HistoryPath: historyPath,
			ExportDir:   exportDir,
		},
		UI: UIConfig{
			Theme:        DefaultTheme,
			SidebarWidth: DefaultSidebarWidth,
			Markdown:     true,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
			File:  logFile,
		},
	}
}

// Timeout returns the completion timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Completion.TimeoutSecs) * time.Second
}

// HistoryPath returns the expanded chat history path.
func (c *Config) HistoryPath() string {
	return ExpandPath(c.Storage.HistoryPath)
}

// ExportDir returns the expanded export directory.
func (c *Config) ExportDir() string {
	return ExpandPath(c.Storage.ExportDir)
}

// LogFile returns the expanded log file path.
func (c *Config) LogFile() string {
	return ExpandPath(c.Logging.File)
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rigchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// ConfigPath returns the config file path, honoring RIGCHAT_CONFIG.
func ConfigPath() (string, error) {
	if p := os.Getenv("RIGCHAT_CONFIG"); p != "" {
		return ExpandPath(p), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

// chmod is replaced in tests.
var chmod = os.Chmod

// ensureSecurePermissions tightens a config file to 0600.
// SECURITY: the file may hold an API key.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		if err := chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=value pairs from .env files into the environment.
// Missing files are ignored and existing variables are never overwritten.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ErrInvalidEnvironment marks validation failures caused by environment
// overrides alone, with no config file involved.
var ErrInvalidEnvironment = errors.New("invalid environment settings")

// Load loads configuration from the config file. A missing file is not an
// error. On a broken file the defaults (with env overrides) are returned
// together with the error, so the caller can warn and carry on. Without a
// file, invalid env overrides are reset to their defaults and reported as
// ErrInvalidEnvironment.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		return cfg, err
	}

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		cfg.SetDefaults()
		if err := cfg.Validate(); err != nil {
			var verrs ValidateErrors
			if errors.As(err, &verrs) {
				cfg.resetInvalid(verrs)
			}
			return cfg, fmt.Errorf("%w: %w", ErrInvalidEnvironment, err)
		}
		return cfg, nil
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		fallback := Default()
		fallback.ApplyEnvOverrides()
		fallback.SetDefaults()
		return fallback, err
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg. Keys absent from the file keep
// their current values.
func LoadTOML(cfg *Config, path string) error {
	// SECURITY: Check and fix file permissions if needed
	if err := ensureSecurePermissions(path); err != nil && !os.IsNotExist(err) {
		// Not fatal - permissions might not be fixable on all systems
		log.Warn().Err(err).Str("path", path).Msg("could not ensure secure config permissions")
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// EnsureFile writes the built-in defaults to path when no file exists yet,
// so the user has a file to edit and the watcher a directory to watch.
// Environment overrides are not written.
func EnsureFile(path string) (created bool, err error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to check config file: %w", err)
	}
	if err := SaveTOML(Default(), path); err != nil {
		return false, err
	}
	return true, nil
}

// SaveTOML writes cfg to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# rigchat configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS AND ENVIRONMENT
// =============================================================================

// SetDefaults fills zero values left by a partial file or environment.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Completion.BaseURL == "" {
		c.Completion.BaseURL = d.Completion.BaseURL
	}
	if c.Completion.Model == "" {
		c.Completion.Model = d.Completion.Model
	}
	if c.Completion.TimeoutSecs == 0 {
		c.Completion.TimeoutSecs = d.Completion.TimeoutSecs
	}
	if c.Storage.HistoryPath == "" {
		c.Storage.HistoryPath = d.Storage.HistoryPath
	}
	if c.Storage.ExportDir == "" {
		c.Storage.ExportDir = d.Storage.ExportDir
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.SidebarWidth == 0 {
		c.UI.SidebarWidth = d.UI.SidebarWidth
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = d.Logging.File
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - OPENAI_API_KEY: completion.api_key
//   - RIGCHAT_API_KEY: completion.api_key (wins over OPENAI_API_KEY)
//   - RIGCHAT_BASE_URL: completion.base_url
//   - RIGCHAT_MODEL: completion.model
//   - RIGCHAT_TIMEOUT: completion.timeout_secs
//   - RIGCHAT_HISTORY: storage.history_path
//   - RIGCHAT_THEME: ui.theme
//   - RIGCHAT_LOG_LEVEL: logging.level
//   - RIGCHAT_LOG_FILE: logging.file
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.Completion.APIKey = key
	}
	if key := os.Getenv("RIGCHAT_API_KEY"); key != "" {
		c.Completion.APIKey = key
	}
	if u := os.Getenv("RIGCHAT_BASE_URL"); u != "" {
		c.Completion.BaseURL = u
	}
	if model := os.Getenv("RIGCHAT_MODEL"); model != "" {
		c.Completion.Model = model
	}
	if timeout := os.Getenv("RIGCHAT_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil {
			c.Completion.TimeoutSecs = secs
		}
	}
	if history := os.Getenv("RIGCHAT_HISTORY"); history != "" {
		c.Storage.HistoryPath = history
	}
	if theme := os.Getenv("RIGCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("RIGCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("RIGCHAT_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Completion.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "completion.base_url",
			Message: fmt.Sprintf("invalid URL %q, must be http(s)://host[/path]", c.Completion.BaseURL),
		})
	}

	if strings.TrimSpace(c.Completion.Model) == "" {
		errs = append(errs, ValidationError{Field: "completion.model", Message: "must not be empty"})
	}

	if c.Completion.TimeoutSecs < 1 || c.Completion.TimeoutSecs > MaxTimeoutSecs {
		errs = append(errs, ValidationError{
			Field:   "completion.timeout_secs",
			Message: fmt.Sprintf("must be between 1 and %d, got %d", MaxTimeoutSecs, c.Completion.TimeoutSecs),
		})
	}

	if c.Completion.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{
			Field:   "completion.requests_per_minute",
			Message: "must not be negative (0 disables limiting)",
		})
	}

	if strings.TrimSpace(c.Storage.HistoryPath) == "" {
		errs = append(errs, ValidationError{Field: "storage.history_path", Message: "must not be empty"})
	}

	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.SidebarWidth < MinSidebarWidth || c.UI.SidebarWidth > MaxSidebarWidth {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinSidebarWidth, MaxSidebarWidth, c.UI.SidebarWidth),
		})
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// resetInvalid restores the default of every field named in errs.
func (c *Config) resetInvalid(errs ValidateErrors) {
	d := Default()
	for _, e := range errs {
		switch e.Field {
		case "completion.base_url":
			c.Completion.BaseURL = d.Completion.BaseURL
		case "completion.model":
			c.Completion.Model = d.Completion.Model
		case "completion.timeout_secs":
			c.Completion.TimeoutSecs = d.Completion.TimeoutSecs
		case "completion.requests_per_minute":
			c.Completion.RequestsPerMinute = d.Completion.RequestsPerMinute
		case "storage.history_path":
			c.Storage.HistoryPath = d.Storage.HistoryPath
		case "ui.theme":
			c.UI.Theme = d.UI.Theme
		case "ui.sidebar_width":
			c.UI.SidebarWidth = d.UI.SidebarWidth
		case "logging.level":
			c.Logging.Level = d.Logging.Level
		}
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as TOML with the API key redacted.
func (c *Config) String() string {
	redacted := c.Clone()
	if redacted.Completion.APIKey != "" {
		redacted.Completion.APIKey = "[REDACTED]"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(redacted); err != nil {
		return fmt.Sprintf("error encoding config: %v", err)
	}
	return buf.String()
}
