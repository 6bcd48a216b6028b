// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/corekit/corekit/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"
)

const (
	// AppName names the config directory.
	AppName = "corekit"
	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "COREKIT"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the corekit configuration directory: %APPDATA% on Windows,
// ~/Library/Application Support on macOS and $XDG_CONFIG_HOME (default
// ~/.config) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "Library", "Application Support")
	default:
		dir = os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(dir, AppName), nil
}

// EnvKey returns the environment variable overriding a dotted config key.
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", fmt.Errorf("load config canceled: %w", err)
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return nil, "", err
	}

	resolved := ""
	for _, candidate := range candidates(opts.ConfigFilePath, cfgDir) {
		if !fileExists(candidate) {
			if candidate == opts.ConfigFilePath {
				return nil, "", loadError(candidate, fmt.Errorf("config file not found: %s", candidate),
					"Verify the path passed with --config")
			}
			continue
		}
		if err := loadCUEIntoViper(v, candidate); err != nil {
			return nil, "", loadError(candidate, err,
				"Check that the file contains valid CUE syntax",
				"Verify the values match the configuration schema")
		}
		resolved = candidate
		break
	}

	applyEnv(v, opts.Env)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", loadError(resolved, fmt.Errorf("failed to parse config: %w", err),
			"Durations use Go syntax such as 30s or 5m")
	}
	if cfg.Console.HostKeyPath != "" && !filepath.IsAbs(cfg.Console.HostKeyPath) {
		cfg.Console.HostKeyPath = filepath.Join(cfgDir, cfg.Console.HostKeyPath)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolved).
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestion("Run 'corekit config' to print the effective values").
			Wrap(err).
			BuildError()
	}
	return &cfg, resolved, nil
}

// candidates lists the files to try in order. An explicit path is the only
// candidate when set.
func candidates(explicit, cfgDir string) []string {
	if explicit != "" {
		return []string{explicit}
	}
	name := ConfigFileName + "." + ConfigFileExt
	return []string{filepath.Join(cfgDir, name), name}
}

func loadError(path string, err error, suggestions ...string) error {
	ctx := issue.NewErrorContext().
		WithOperation("load configuration").
		WithResource(path).
		WithIssue(issue.ConfigLoadFailedId)
	for _, s := range suggestions {
		ctx.WithSuggestion(s)
	}
	return ctx.Wrap(err).BuildError()
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", string(d.LogLevel))
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("ui.markdown_style", d.UI.MarkdownStyle)
	v.SetDefault("cache.default_ttl", d.Cache.DefaultTTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("shell.dir", d.Shell.Dir)
	v.SetDefault("console.address", string(d.Console.Address))
	v.SetDefault("console.host_key_path", d.Console.HostKeyPath)
	v.SetDefault("console.token", d.Console.Token)
}

// applyEnv layers COREKIT_* overrides. With no lookup function viper reads
// the process environment itself.
func applyEnv(v *viper.Viper, lookup func(string) (string, bool)) {
	if lookup == nil {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
		return
	}
	for _, key := range v.AllKeys() {
		if val, ok := lookup(EnvKey(key)); ok {
			v.Set(key, val)
		}
	}
}

func configDirWithOverride(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	return ConfigDir()
}

// loadCUEIntoViper validates the file against #Config and merges it over the
// defaults already held by v. Fields are optional, so validation is not
// concrete.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxFileSize)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var m map[string]any
	if err := unified.Decode(&m); err != nil {
		return formatCUEError(err, path)
	}
	if err := v.MergeConfigMap(m); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a config.cue document that validates against
// the schema.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// corekit configuration\n\n")
	fmt.Fprintf(&sb, "log_level: %q\n", cfg.LogLevel)
	fmt.Fprintf(&sb, "verbose:   %v\n", cfg.Verbose)

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tmarkdown_style: %q\n", cfg.UI.MarkdownStyle)
	sb.WriteString("}\n")

	sb.WriteString("\ncache: {\n")
	fmt.Fprintf(&sb, "\tdefault_ttl:      %q\n", cfg.Cache.DefaultTTL.String())
	fmt.Fprintf(&sb, "\tcleanup_interval: %q\n", cfg.Cache.CleanupInterval.String())
	sb.WriteString("}\n")

	sb.WriteString("\nshell: {\n")
	fmt.Fprintf(&sb, "\tdir: %q\n", cfg.Shell.Dir)
	sb.WriteString("}\n")

	sb.WriteString("\nconsole: {\n")
	fmt.Fprintf(&sb, "\taddress: %q\n", cfg.Console.Address)
	if cfg.Console.HostKeyPath != "" {
		fmt.Fprintf(&sb, "\thost_key_path: %q\n", cfg.Console.HostKeyPath)
	}
	if cfg.Console.Token != "" {
		fmt.Fprintf(&sb, "\ttoken: %q\n", redacted)
	}
	sb.WriteString("}\n")

	return sb.String()
}
