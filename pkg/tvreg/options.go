// Package tvreg implements total variation regularized image restoration.
// Given a noisy observation and a fidelity weight, it minimizes the
// TV-regularized fidelity functional for one of the supported noise models
// and writes the restored image over the caller's working buffer, so that
// repeated calls with decreasing tolerance warm-start from the previous
// solution.
package tvreg

import (
	"fmt"

	"tvdenoise/pkg/noise"
)

// PlotFunc receives solver progress after each iteration: the iteration
// number and the RMS change of the estimate during that iteration.
type PlotFunc func(iteration int, delta float64)

// Options configures a restoration run. One Options value is created per
// denoise invocation and mutated between calls: the tuning loop updates
// Lambda each round, and the orchestrator tightens Tol and MaxIter for the
// final solve.
type Options struct {
	// Lambda is the fidelity strength; larger values trust the noisy
	// observation more and remove less noise
	Lambda float64

	// Model selects the noise distribution assumed by the data term
	Model noise.Model

	// Tol is the convergence tolerance on the RMS update norm
	Tol float64

	// MaxIter caps the number of solver iterations; reaching the cap
	// without meeting Tol is a defined outcome, not an error
	MaxIter int

	// Plot, when non-nil, is invoked after every iteration
	Plot PlotFunc
}

// NewOptions returns solver options with the package defaults.
func NewOptions() *Options {
	return &Options{
		Lambda:  25.0,
		Model:   noise.Gaussian,
		Tol:     1e-3,
		MaxIter: 100,
	}
}

// Validate checks that the options describe a solvable problem.
func (o *Options) Validate() error {
	if o == nil {
		return fmt.Errorf("nil options")
	}
	if o.Lambda <= 0 {
		return fmt.Errorf("lambda must be positive, got %v", o.Lambda)
	}
	if o.Tol <= 0 {
		return fmt.Errorf("tolerance must be positive, got %v", o.Tol)
	}
	if o.MaxIter <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d", o.MaxIter)
	}
	return nil
}
