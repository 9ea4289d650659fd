package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/san-kum/liftsim/internal/metrics"
)

// EnsembleConfig controls a Monte Carlo ensemble.
type EnsembleConfig struct {
	Trials  int
	Seed    int64
	Workers int
}

// DefaultEnsembleConfig returns 1000 trials from seed 1 on 4 workers.
func DefaultEnsembleConfig() EnsembleConfig {
	return EnsembleConfig{Trials: 1000, Seed: 1, Workers: 4}
}

// EnsembleResult holds every successful trial in trial order, the failures,
// and a summary per derived quantity.
type EnsembleResult struct {
	Config   EnsembleConfig
	Trials   []*Result
	Failures []*TrialError
	Summary  map[string]metrics.Summary
}

// Values returns the named quantity across all successful trials.
func (r *EnsembleResult) Values(key string) []float64 {
	out := make([]float64, len(r.Trials))
	for i, t := range r.Trials {
		out[i] = t.Value(key)
	}
	return out
}

// Observer is notified after each trial. Calls may come from several
// goroutines at once.
type Observer interface {
	OnTrial(trial int, res *Result, err error)
}

// Ensemble runs independent pipeline trials in parallel. Trial i draws from
// its own source seeded Seed+i, so results do not depend on Workers.
type Ensemble struct {
	inputs    Inputs
	cfg       EnsembleConfig
	observers []Observer
}

// NewEnsemble prepares an ensemble over in. Nothing runs until Run.
func NewEnsemble(in Inputs, cfg EnsembleConfig) *Ensemble {
	return &Ensemble{inputs: in, cfg: cfg}
}

// AddObserver registers o for every subsequent Run.
func (e *Ensemble) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Ensemble) validateConfig() error {
	if e.cfg.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", e.cfg.Trials)
	}
	if e.cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", e.cfg.Workers)
	}
	return nil
}

// Run executes all trials. Failed trials are collected, not retried. It
// returns ErrNoValidTrials if none succeeded, and ctx.Err() if canceled.
func (e *Ensemble) Run(ctx context.Context) (*EnsembleResult, error) {
	if err := e.validateConfig(); err != nil {
		return nil, err
	}

	n := e.cfg.Trials
	results := make([]*Result, n)
	errs := make([]error, n)

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				results[i], errs[i] = RunSeeded(e.inputs, e.cfg.Seed+int64(i))
				for _, o := range e.observers {
					o.OnTrial(i, results[i], errs[i])
				}
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &EnsembleResult{
		Config:  e.cfg,
		Trials:  make([]*Result, 0, n),
		Summary: make(map[string]metrics.Summary, len(QuantityKeys)),
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			out.Failures = append(out.Failures, &TrialError{Trial: i, Seed: e.cfg.Seed + int64(i), Wrapped: errs[i]})
			continue
		}
		out.Trials = append(out.Trials, results[i])
	}

	if len(out.Trials) == 0 {
		return out, fmt.Errorf("%w: %d failures, first: %w", ErrNoValidTrials, len(out.Failures), out.Failures[0])
	}

	for _, k := range QuantityKeys {
		out.Summary[k] = metrics.Summarize(out.Values(k))
	}
	return out, nil
}

// FailureCauses counts failures by root sentinel error.
func (r *EnsembleResult) FailureCauses(sentinels ...error) map[error]int {
	counts := make(map[error]int)
	for _, f := range r.Failures {
		for _, s := range sentinels {
			if errors.Is(f, s) {
				counts[s]++
				break
			}
		}
	}
	return counts
}
