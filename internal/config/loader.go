package config

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/nodedge/nodedge/internal/ctxlog"
)

// HCLLoader reads HCL files made of top-level attributes.
type HCLLoader struct{}

func (l *HCLLoader) Load(ctx context.Context, path string, cfg *Config) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading HCL config file.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	if diags := gohcl.DecodeBody(file.Body, nil, cfg); diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}
	return nil
}

// TOMLLoader reads TOML files.
type TOMLLoader struct{}

func (l *TOMLLoader) Load(ctx context.Context, path string, cfg *Config) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading TOML config file.", "path", path)

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("TOML file %s: unknown keys %v", path, undecoded)
	}
	return nil
}
