package testutil

import (
	"testing"

	"github.com/nodedge/nodedge/internal/block"
	"github.com/nodedge/nodedge/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// RequireFloat converts v to float64 or stops the test.
func RequireFloat(t *testing.T, v cty.Value) float64 {
	t.Helper()
	f, err := block.Float(v)
	require.NoError(t, err)
	return f
}

// AssertOutputs evaluates the Output blocks of s in scene order and
// compares their values with want.
func AssertOutputs(t *testing.T, s *scene.Scene, want ...float64) {
	t.Helper()
	var got []float64
	for _, n := range s.Nodes() {
		if n.OpCode() != block.OpOutput {
			continue
		}
		v, err := n.Eval()
		require.NoError(t, err, "output %d %q", n.ID(), n.Title())
		got = append(got, RequireFloat(t, v))
	}
	assert.InDeltaSlice(t, want, got, 1e-9)
}
