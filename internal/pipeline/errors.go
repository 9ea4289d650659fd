package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoValidTrials is returned when every Monte Carlo trial failed.
var ErrNoValidTrials = errors.New("pipeline: no trial produced a valid result")

// Stages of the formula chain, in evaluation order.
const (
	StageAtmosphere = "atmosphere"
	StageDensity    = "density"
	StageVelocity   = "velocity"
	StageLift       = "lift"
)

// StageError wraps a formula failure with the stage and the sampled inputs
// that produced it.
type StageError struct {
	Stage   string
	Sample  Sample
	Wrapped error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage (%s): %v", e.Stage, e.Sample, e.Wrapped)
}

func (e *StageError) Unwrap() error {
	return e.Wrapped
}

// TrialError identifies a failed Monte Carlo trial.
type TrialError struct {
	Trial   int
	Seed    int64
	Wrapped error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("trial %d (seed %d): %v", e.Trial, e.Seed, e.Wrapped)
}

func (e *TrialError) Unwrap() error {
	return e.Wrapped
}
