package denoise

import (
	"fmt"
	"io"

	"tvdenoise/internal/models"
	"tvdenoise/pkg/metrics"
	"tvdenoise/pkg/noise"
	"tvdenoise/pkg/tvreg"
)

// Tuner adjusts the fidelity strength so that the residual between the
// noisy input and the restored estimate matches a target noise level (the
// discrepancy principle). It starts from the model's closed-form empirical
// estimate and runs a fixed number of solve-measure-correct rounds; there
// is no early exit and no best-so-far tracking, the last lambda wins.
//
// Each round reuses the working image from the previous round as the
// initial guess. The solution for the previous lambda is a good estimate
// for the next one, which keeps the per-round iteration count low.
type Tuner struct {
	model    noise.Model
	sigma    float64
	rounds   int
	solver   Restorer
	progress io.Writer
}

// NewTuner creates a lambda tuner targeting the given noise standard
// deviation (in normalized intensity units). Progress lines are written to
// progress; pass io.Discard to silence them.
func NewTuner(model noise.Model, sigma float64, rounds int, solver Restorer, progress io.Writer) *Tuner {
	return &Tuner{
		model:    model,
		sigma:    sigma,
		rounds:   rounds,
		solver:   solver,
		progress: progress,
	}
}

// Tune runs the tuning rounds, mutating opts.Lambda in place and leaving
// the restored estimate for the last tried lambda in u. A solver failure
// at any round aborts tuning.
func (t *Tuner) Tune(u, f *models.Image, opts *tvreg.Options) error {
	if t.sigma <= 0 {
		return fmt.Errorf("sigma must be positive, got %v", t.sigma)
	}

	lambda := t.model.InitialLambda(t.sigma)
	opts.Lambda = lambda

	fmt.Fprintf(t.progress, "Tuning lambda...\n\n")
	fmt.Fprintf(t.progress, "  lambda    distance (target = %.5f)\n", noise.DisplayScale*t.sigma)
	fmt.Fprintf(t.progress, " --------------------\n")
	fmt.Fprintf(t.progress, "  %-9.4f", lambda)

	for k := 0; k < t.rounds; k++ {
		if err := t.solver.Restore(u, f, opts); err != nil {
			fmt.Fprintln(t.progress)
			return fmt.Errorf("solver failed at tuning round %d: %v", k+1, err)
		}

		rmse, err := metrics.Rmse(f, u)
		if err != nil {
			return fmt.Errorf("failed to measure residual: %v", err)
		}

		lambda = t.model.CorrectLambda(lambda, rmse, t.sigma)
		opts.Lambda = lambda
		fmt.Fprintf(t.progress, " %.5f\n  %-9.4f", noise.DisplayScale*rmse, lambda)
	}

	return nil
}
