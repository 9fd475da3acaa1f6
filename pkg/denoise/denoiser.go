// Package denoise drives TV-regularized denoising end to end: it owns the
// working image estimate and the solver options, decides whether the
// fidelity strength is user-fixed or must be tuned against a target noise
// level, and performs the final high-precision solve.
package denoise

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"tvdenoise/internal/models"
	"tvdenoise/pkg/metrics"
	"tvdenoise/pkg/noise"
	"tvdenoise/pkg/tvreg"
)

// Tuning and final-solve defaults. Intermediate precision during tuning is
// wasted work, so the tuning rounds run with a loose tolerance and a low
// iteration cap before the single tight final solve.
const (
	// DefaultTuneRounds is the fixed number of lambda tuning rounds
	DefaultTuneRounds = 5

	// DefaultCoarseTol is the solver tolerance during tuning
	DefaultCoarseTol = 1e-2

	// DefaultCoarseMaxIter caps solver iterations during tuning
	DefaultCoarseMaxIter = 40

	// DefaultFinalTol is the solver tolerance for the final solve
	DefaultFinalTol = 5e-4

	// DefaultFinalMaxIter caps solver iterations for the final solve
	DefaultFinalMaxIter = 100
)

// Restorer is the restoration solver contract the denoiser drives. Restore
// overwrites u in place with a TV-regularized restoration of f using the
// given options, and must be safe to call repeatedly with a warm-started u.
type Restorer interface {
	Restore(u, f *models.Image, opts *tvreg.Options) error
}

// Params holds the denoising configuration for one invocation.
type Params struct {
	// Model is the assumed noise distribution
	Model noise.Model

	// Sigma is the target noise standard deviation in normalized
	// intensity units. When Sigma <= 0, Lambda is used directly and no
	// tuning is performed.
	Sigma float64

	// Lambda is the user-supplied fidelity strength, consulted only
	// when Sigma <= 0
	Lambda float64

	// TuneRounds is the number of lambda tuning rounds; 0 selects the
	// default
	TuneRounds int

	// CoarseTol and CoarseMaxIter configure the solver during tuning;
	// zero values select the defaults
	CoarseTol     float64
	CoarseMaxIter int

	// FinalTol and FinalMaxIter configure the final solve; zero values
	// select the defaults
	FinalTol     float64
	FinalMaxIter int

	// Progress receives the human-readable tuning table; nil discards it
	Progress io.Writer

	// Log receives diagnostic events
	Log zerolog.Logger
}

// Denoiser performs TV-regularized denoising with optional automatic
// lambda selection. It owns the solver options and the working image for
// the duration of one Denoise call; nothing is shared across calls, so
// concurrent requests simply use separate Denoiser instances.
type Denoiser struct {
	params *Params
	solver Restorer
}

// NewDenoiser creates a denoiser with the given parameters, filling in
// defaults for unset tuning fields.
func NewDenoiser(params *Params, solver Restorer) *Denoiser {
	if params.TuneRounds == 0 {
		params.TuneRounds = DefaultTuneRounds
	}
	if params.CoarseTol == 0 {
		params.CoarseTol = DefaultCoarseTol
	}
	if params.CoarseMaxIter == 0 {
		params.CoarseMaxIter = DefaultCoarseMaxIter
	}
	if params.FinalTol == 0 {
		params.FinalTol = DefaultFinalTol
	}
	if params.FinalMaxIter == 0 {
		params.FinalMaxIter = DefaultFinalMaxIter
	}
	if params.Progress == nil {
		params.Progress = io.Discard
	}
	return &Denoiser{
		params: params,
		solver: solver,
	}
}

// validate rejects inconsistent parameters before any buffer is touched.
func (d *Denoiser) validate() error {
	p := d.params
	if !p.Model.Valid() {
		return fmt.Errorf("unrecognized noise model %q", p.Model.String())
	}
	if p.Sigma <= 0 && p.Lambda <= 0 {
		return fmt.Errorf("either sigma or lambda must be positive")
	}
	if p.TuneRounds < 0 {
		return fmt.Errorf("tune rounds must be non-negative, got %d", p.TuneRounds)
	}
	return nil
}

// Denoise restores the noisy image f into u. The working image u is
// warm-started as a copy of f, refined in place by each solver call
// during tuning, and finished by one high-precision solve. On any failure
// the error is returned immediately and u holds no meaningful result.
func (d *Denoiser) Denoise(u, f *models.Image) error {
	p := d.params

	if err := d.validate(); err != nil {
		return err
	}
	if !f.Valid() {
		return fmt.Errorf("invalid noisy image")
	}
	if !u.SameShape(f) {
		return fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			u.Width, u.Height, u.Channels, f.Width, f.Height, f.Channels)
	}

	p.Log.Info().
		Str("model", p.Model.String()).
		Int("width", f.Width).
		Int("height", f.Height).
		Int("channels", f.Channels).
		Msg("starting TV regularized denoising")

	// Warm start: the noisy image is the initial guess.
	if err := u.CopyFrom(f); err != nil {
		return err
	}

	opts := tvreg.NewOptions()
	opts.Model = p.Model
	opts.Tol = p.CoarseTol
	opts.MaxIter = p.CoarseMaxIter

	if p.Sigma <= 0 {
		opts.Lambda = p.Lambda
		p.Log.Debug().Float64("lambda", p.Lambda).Msg("lambda fixed by caller, skipping tuning")
	} else {
		tuner := NewTuner(p.Model, p.Sigma, p.TuneRounds, d.solver, p.Progress)
		if err := tuner.Tune(u, f, opts); err != nil {
			return fmt.Errorf("lambda tuning failed: %v", err)
		}
	}

	// Final solve at full precision.
	opts.Tol = p.FinalTol
	opts.MaxIter = p.FinalMaxIter
	if err := d.solver.Restore(u, f, opts); err != nil {
		return fmt.Errorf("final solve failed: %v", err)
	}

	if p.Sigma > 0 {
		rmse, err := metrics.Rmse(f, u)
		if err != nil {
			return fmt.Errorf("failed to measure final residual: %v", err)
		}
		fmt.Fprintf(p.Progress, " %.5f\n\n", noise.DisplayScale*rmse)
		d.logResidual(u, f, rmse)
	}

	p.Log.Info().Float64("lambda", opts.Lambda).Msg("denoising complete")
	return nil
}

// logResidual emits a diagnostic summary of the final residual. Failures
// here are not fatal, the denoised image is already computed.
func (d *Denoiser) logResidual(u, f *models.Image, rmse float64) {
	summary, err := metrics.Summarize(f, u)
	if err != nil {
		d.params.Log.Warn().Err(err).Msg("failed to summarize residual")
		return
	}
	psnr, err := metrics.Psnr(f, u)
	if err != nil {
		d.params.Log.Warn().Err(err).Msg("failed to compute psnr")
		return
	}
	d.params.Log.Debug().
		Float64("rmse", noise.DisplayScale*rmse).
		Float64("psnr", psnr).
		Float64("residualMean", noise.DisplayScale*summary.Mean).
		Float64("residualMedian", noise.DisplayScale*summary.Median).
		Float64("residualStdDev", noise.DisplayScale*summary.StdDev).
		Float64("residualMaxAbs", noise.DisplayScale*summary.MaxAbs).
		Msg("final residual statistics")
}
