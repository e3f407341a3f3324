package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidKind is returned for kinds that cannot be registered.
var ErrInvalidKind = errors.New("invalid block kind")

// validateKind checks a kind before registration. The content built by the
// factory must report the kind's own operation code.
func validateKind(k Kind) error {
	var errs []string
	if k.OpCode <= 0 {
		errs = append(errs, fmt.Sprintf("op code must be positive, got %d", k.OpCode))
	}
	if k.Name == "" {
		errs = append(errs, "name is empty")
	}
	if k.New == nil {
		errs = append(errs, "factory is nil")
	} else if c := k.New(); c == nil {
		errs = append(errs, "factory returned nil content")
	} else if c.OpCode() != k.OpCode {
		errs = append(errs, fmt.Sprintf("factory content reports op code %d", c.OpCode()))
	}

	if len(errs) > 0 {
		return fmt.Errorf("kind %q: %w:\n- %s", k.Name, ErrInvalidKind, strings.Join(errs, "\n- "))
	}
	return nil
}
