package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState reports NaN or Inf in a state vector.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	ErrInvalidConfig = errors.New("dynamo: invalid simulation config")

	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrStepTooSmall means adaptive stepping shrank dt below MinDt.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an error with the step at which it happened.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
