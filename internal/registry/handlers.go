package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOpCode is returned when two kinds claim the same
	// operation code.
	ErrDuplicateOpCode = errors.New("operation code already registered")
	// ErrDuplicateName is returned when two kinds claim the same name.
	ErrDuplicateName = errors.New("kind name already registered")
)

// RegisterKind adds a block kind. The kind is validated first.
func (r *Registry) RegisterKind(k Kind) error {
	if err := validateKind(k); err != nil {
		return err
	}
	if existing, exists := r.kinds[k.OpCode]; exists {
		return fmt.Errorf("kind %q with op code %d, taken by %q: %w", k.Name, k.OpCode, existing.Name, ErrDuplicateOpCode)
	}
	if _, exists := r.names[k.Name]; exists {
		return fmt.Errorf("kind %q: %w", k.Name, ErrDuplicateName)
	}
	if k.Title == "" {
		k.Title = k.Name
	}
	r.kinds[k.OpCode] = &k
	r.names[k.Name] = k.OpCode
	return nil
}
