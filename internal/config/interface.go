package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Loader reads configuration values from a file into cfg. Values missing
// from the file keep their current value.
type Loader interface {
	Load(ctx context.Context, path string, cfg *Config) error
}

// LoaderFor picks a loader by file extension.
func LoaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return &HCLLoader{}, nil
	case ".toml":
		return &TOMLLoader{}, nil
	default:
		return nil, fmt.Errorf("config file %s: unsupported format, want .hcl or .toml", path)
	}
}

// LoadFile reads path on top of cfg and validates the result.
func LoadFile(ctx context.Context, path string, cfg *Config) error {
	l, err := LoaderFor(path)
	if err != nil {
		return err
	}
	if err := l.Load(ctx, path, cfg); err != nil {
		return err
	}
	return cfg.Validate()
}
