package inmemorystore

import (
	"context"
	"sync"

	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/valuestore"
	"github.com/zclconf/go-cty/cty"
)

// Store is an in-memory implementation of valuestore.Store.
type Store struct {
	states sync.Map // scene.ID -> valuestore.Status
	values sync.Map // scene.ID -> cty.Value
	errors sync.Map // scene.ID -> error
}

// New creates a new, empty in-memory value store.
func New() *Store {
	return &Store{}
}

var _ valuestore.Store = (*Store)(nil)

// SetStatus updates the status of a node.
func (s *Store) SetStatus(ctx context.Context, id scene.ID, status valuestore.Status) error {
	s.states.Store(id, status)
	return nil
}

// GetStatus retrieves the status of a node.
// If a status has not been set, it returns StatusPending.
func (s *Store) GetStatus(ctx context.Context, id scene.ID) (valuestore.Status, error) {
	status, ok := s.states.Load(id)
	if !ok {
		return valuestore.StatusPending, nil
	}
	return status.(valuestore.Status), nil
}

// SetValue records the latest value of a node.
func (s *Store) SetValue(ctx context.Context, id scene.ID, value cty.Value) error {
	s.values.Store(id, value)
	return nil
}

// GetValue retrieves the latest value of a node.
func (s *Store) GetValue(ctx context.Context, id scene.ID) (cty.Value, error) {
	v, ok := s.values.Load(id)
	if !ok {
		return cty.NilVal, nil
	}
	return v.(cty.Value), nil
}

// SetError records the failure of a node. Only the first failure is kept.
func (s *Store) SetError(ctx context.Context, id scene.ID, nodeErr error) error {
	s.errors.LoadOrStore(id, nodeErr)
	return nil
}

// GetError retrieves the recorded failure of a node.
func (s *Store) GetError(ctx context.Context, id scene.ID) (error, error) {
	err, ok := s.errors.Load(id)
	if !ok {
		return nil, nil
	}
	return err.(error), nil
}

// Failed returns the ids of all nodes with a recorded failure, unordered.
func (s *Store) Failed() []scene.ID {
	var ids []scene.ID
	s.errors.Range(func(k, _ any) bool {
		ids = append(ids, k.(scene.ID))
		return true
	})
	return ids
}
