package app

import (
	"context"

	"github.com/nodedge/nodedge/internal/config"
	"github.com/nodedge/nodedge/internal/ctxlog"
)

// LoadConfig builds the configuration of an App: the defaults, then the
// optional file at path, then override, which the CLI uses for flags set on
// the command line. The result is validated.
func LoadConfig(ctx context.Context, path string, override func(*config.Config)) (config.Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := config.Default()
	if path != "" {
		logger.Debug("Loading config file.", "path", path)
		l, err := config.LoaderFor(path)
		if err != nil {
			return config.Config{}, err
		}
		if err := l.Load(ctx, path, &cfg); err != nil {
			return config.Config{}, err
		}
	}
	if override != nil {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
