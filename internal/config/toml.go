// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

const redacted = "<redacted>"

type (
	// tomlDocument mirrors Config with durations spelled the way the CUE
	// schema accepts them.
	tomlDocument struct {
		LogLevel string      `toml:"log_level"`
		Verbose  bool        `toml:"verbose"`
		UI       tomlUI      `toml:"ui"`
		Cache    tomlCache   `toml:"cache"`
		Shell    tomlShell   `toml:"shell"`
		Console  tomlConsole `toml:"console"`
	}

	tomlUI struct {
		MarkdownStyle string `toml:"markdown_style"`
	}

	tomlCache struct {
		DefaultTTL      string `toml:"default_ttl"`
		CleanupInterval string `toml:"cleanup_interval"`
	}

	tomlShell struct {
		Dir string `toml:"dir"`
	}

	tomlConsole struct {
		Address     string `toml:"address"`
		HostKeyPath string `toml:"host_key_path,omitempty"`
		Token       string `toml:"token,omitempty"`
	}
)

// GenerateTOML renders cfg as TOML for tools that do not read CUE. The
// console token is redacted.
func GenerateTOML(cfg *Config) (string, error) {
	doc := tomlDocument{
		LogLevel: cfg.LogLevel.String(),
		Verbose:  cfg.Verbose,
		UI:       tomlUI{MarkdownStyle: cfg.UI.MarkdownStyle},
		Cache: tomlCache{
			DefaultTTL:      cfg.Cache.DefaultTTL.String(),
			CleanupInterval: cfg.Cache.CleanupInterval.String(),
		},
		Shell: tomlShell{Dir: cfg.Shell.Dir},
		Console: tomlConsole{
			Address:     cfg.Console.Address.String(),
			HostKeyPath: cfg.Console.HostKeyPath,
		},
	}
	if cfg.Console.Token != "" {
		doc.Console.Token = redacted
	}
	data, err := toml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding config as TOML: %w", err)
	}
	return string(data), nil
}
