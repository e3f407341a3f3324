package simulate

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned for time ranges that cannot be simulated.
var ErrInvalidConfig = errors.New("invalid simulation config")

// maxSamples bounds the length of a run.
const maxSamples = 10_000_000

// Config is the time range of a run. Samples are taken at Start,
// Start+Step, ... up to and including Stop.
type Config struct {
	Start float64
	Stop  float64
	Step  float64
}

// DefaultConfig simulates ten seconds at 100 Hz.
var DefaultConfig = Config{Start: 0, Stop: 10, Step: 0.01}

// Validate checks the time range.
func (c Config) Validate() error {
	for _, f := range []float64{c.Start, c.Stop, c.Step} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: times must be finite", ErrInvalidConfig)
		}
	}
	if c.Step <= 0 {
		return fmt.Errorf("%w: step %v must be positive", ErrInvalidConfig, c.Step)
	}
	if c.Stop < c.Start {
		return fmt.Errorf("%w: stop %v is before start %v", ErrInvalidConfig, c.Stop, c.Start)
	}
	if n := c.steps(); math.IsNaN(n) || math.IsInf(n, 0) || n+1 > maxSamples {
		return fmt.Errorf("%w: %v samples exceed the limit of %d", ErrInvalidConfig, n+1, maxSamples)
	}
	return nil
}

// Samples returns the number of time steps of a run, or 0 when the range
// cannot be simulated.
func (c Config) Samples() int {
	n := c.steps()
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 || n+1 > maxSamples {
		return 0
	}
	return int(n) + 1
}

func (c Config) steps() float64 {
	return math.Floor((c.Stop-c.Start)/c.Step + 1e-9)
}

// Time returns the time of sample i.
func (c Config) Time(i int) float64 {
	return c.Start + float64(i)*c.Step
}
