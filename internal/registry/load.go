package registry

import (
	"context"
	"fmt"

	"github.com/nodedge/nodedge/internal/ctxlog"
)

// Load registers every module in order and stops at the first failure.
func (r *Registry) Load(ctx context.Context, modules ...Module) error {
	logger := ctxlog.FromContext(ctx)
	for _, m := range modules {
		if err := m.Register(r); err != nil {
			logger.Error("Failed to register module.", "module", fmt.Sprintf("%T", m), "error", err)
			return fmt.Errorf("registering %T: %w", m, err)
		}
	}
	logger.Debug("Registry loaded successfully.", "kinds", len(r.kinds))
	return nil
}
