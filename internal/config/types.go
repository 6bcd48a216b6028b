// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corekit/corekit/pkg/types"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultMarkdownStyle is the glamour style used for issue rendering.
	DefaultMarkdownStyle = "auto"
	// DefaultConsoleAddress is where `corekit serve` listens without an argument.
	DefaultConsoleAddress types.ListenAddress = "127.0.0.1:2222"
	// DefaultHostKeyPath is relative to the config directory.
	DefaultHostKeyPath = "console_ed25519"
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidCacheConfig is returned for non-positive cache durations.
	ErrInvalidCacheConfig = errors.New("invalid cache config")
	// ErrInvalidConfig is the sentinel wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level the root logger emits.
	LogLevel string

	// InvalidLogLevelError carries the rejected value.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// InvalidConfigError collects every field-level failure of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config is the effective corekit configuration.
	Config struct {
		LogLevel LogLevel      `json:"log_level" mapstructure:"log_level"`
		Verbose  bool          `json:"verbose" mapstructure:"verbose"`
		UI       UIConfig      `json:"ui" mapstructure:"ui"`
		Cache    CacheConfig   `json:"cache" mapstructure:"cache"`
		Shell    ShellConfig   `json:"shell" mapstructure:"shell"`
		Console  ConsoleConfig `json:"console" mapstructure:"console"`
	}

	// UIConfig controls terminal rendering.
	UIConfig struct {
		// MarkdownStyle is a glamour style name or a path to a JSON style file.
		MarkdownStyle string `json:"markdown_style" mapstructure:"markdown_style"`
	}

	// CacheConfig sizes the in-memory cache service.
	CacheConfig struct {
		DefaultTTL      time.Duration `json:"default_ttl" mapstructure:"default_ttl"`
		CleanupInterval time.Duration `json:"cleanup_interval" mapstructure:"cleanup_interval"`
	}

	// ShellConfig configures the embedded shell used by `exec`.
	ShellConfig struct {
		// Dir is the working directory for scripts; empty means the process cwd.
		Dir string `json:"dir" mapstructure:"dir"`
	}

	// ConsoleConfig configures the SSH console started by `serve`.
	ConsoleConfig struct {
		Address types.ListenAddress `json:"address" mapstructure:"address"`
		// HostKeyPath is created on first start when missing.
		HostKeyPath string `json:"host_key_path" mapstructure:"host_key_path"`
		// Token is the session password; empty generates one per start.
		Token string `json:"token" mapstructure:"token"`
	}
)

// Validate reports whether l is a recognized level.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

func (l LogLevel) String() string { return string(l) }

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return "invalid config: " + strings.Join(msgs, "; ")
}

// Unwrap exposes ErrInvalidConfig and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: LogLevelWarn,
		UI:       UIConfig{MarkdownStyle: DefaultMarkdownStyle},
		Cache: CacheConfig{
			DefaultTTL:      5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Console: ConsoleConfig{
			Address:     DefaultConsoleAddress,
			HostKeyPath: DefaultHostKeyPath,
		},
	}
}

// Validate checks the fields CUE cannot: duration ranges and the listen
// address once environment overrides have been applied.
func (c *Config) Validate() error {
	var errs []error
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Cache.DefaultTTL <= 0 {
		errs = append(errs, fmt.Errorf("%w: default_ttl must be positive, got %s", ErrInvalidCacheConfig, c.Cache.DefaultTTL))
	}
	if c.Cache.CleanupInterval <= 0 {
		errs = append(errs, fmt.Errorf("%w: cleanup_interval must be positive, got %s", ErrInvalidCacheConfig, c.Cache.CleanupInterval))
	}
	if err := c.Console.Address.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}
