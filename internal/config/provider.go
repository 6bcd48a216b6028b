// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath forces a specific file; it must exist.
		ConfigFilePath string
		// ConfigDirPath replaces the platform config directory.
		ConfigDirPath string
		// Env supplies environment lookups; nil means os.LookupEnv.
		Env func(key string) (string, bool)
	}

	// Result is a loaded configuration with the file it came from, empty when
	// only defaults and environment applied.
	Result struct {
		Config *Config
		Path   string
	}

	// Provider loads configuration. Tests substitute fixtures through it.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Result, error)
	}

	fileProvider struct{}

	staticProvider struct {
		cfg *Config
	}
)

// NewProvider returns the file-backed provider.
func NewProvider() Provider {
	return &fileProvider{}
}

// Static returns a provider that always yields a copy of cfg.
func Static(cfg *Config) Provider {
	return &staticProvider{cfg: cfg}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Result, error) {
	cfg, path, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Config: cfg, Path: path}, nil
}

func (p *staticProvider) Load(ctx context.Context, _ LoadOptions) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c := *p.cfg
	return &Result{Config: &c}, nil
}
