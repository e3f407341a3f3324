package inmemorystore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nodedge/nodedge/internal/scene"
	"github.com/nodedge/nodedge/internal/valuestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestSetAndGetStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Get status of a node that doesn't exist yet
	status, err := s.GetStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, valuestore.StatusPending, status)

	require.NoError(t, s.SetStatus(ctx, 7, valuestore.StatusRunning))

	status, err = s.GetStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, valuestore.StatusRunning, status)
	assert.Equal(t, "running", status.String())
}

func TestSetAndGetValue(t *testing.T) {
	s := New()
	ctx := context.Background()

	v, err := s.GetValue(ctx, 3)
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	require.NoError(t, s.SetValue(ctx, 3, cty.NumberIntVal(42)))
	v, err = s.GetValue(ctx, 3)
	require.NoError(t, err)
	assert.True(t, v.RawEquals(cty.NumberIntVal(42)))
}

func TestSetAndGetError(t *testing.T) {
	s := New()
	ctx := context.Background()

	// Get error for a node that doesn't exist yet should be nil
	retrievedErr, err := s.GetError(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, retrievedErr)

	first := errors.New("first failure")
	require.NoError(t, s.SetError(ctx, 1, first))
	require.NoError(t, s.SetError(ctx, 1, errors.New("second failure")))

	retrievedErr, err = s.GetError(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first, retrievedErr)
	assert.Equal(t, []scene.ID{1}, s.Failed())
}

// TestStore_ConcurrentAccess verifies that the store can be safely accessed by
// multiple goroutines simultaneously without data races or lost writes.
func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	numGoroutines := 100
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func(id scene.ID) {
			defer wg.Done()
			s.SetStatus(ctx, id, valuestore.StatusCompleted)
			s.SetValue(ctx, id, cty.NumberIntVal(int64(id)))
			s.SetError(ctx, id, fmt.Errorf("error for node %d", id))
		}(scene.ID(i))
	}
	wg.Wait()

	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func(id scene.ID) {
			defer wg.Done()

			status, err := s.GetStatus(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, valuestore.StatusCompleted, status, "mismatched status for node %d", id)

			v, err := s.GetValue(ctx, id)
			assert.NoError(t, err)
			assert.True(t, v.RawEquals(cty.NumberIntVal(int64(id))), "mismatched value for node %d", id)

			nodeErr, err := s.GetError(ctx, id)
			assert.NoError(t, err)
			assert.EqualError(t, nodeErr, fmt.Sprintf("error for node %d", id))
		}(scene.ID(i))
	}
	wg.Wait()

	assert.Len(t, s.Failed(), numGoroutines)
}
