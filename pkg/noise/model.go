// Package noise defines the noise models recognized by the denoiser and
// the lambda selection policy attached to each of them. Each model supplies
// a closed-form initial estimate of the fidelity strength for a given noise
// level and a multiplicative correction rule used by the tuning loop.
package noise

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DisplayScale maps normalized intensities in [0,1] to display units.
// Sigma values given on the command line are expressed in display units
// (e.g. 10 for a standard deviation of 10 gray levels out of 255).
const DisplayScale = 255.0

// minLambda is the floor applied to the initial lambda estimate so that
// the fidelity weight stays positive even when the empirical fits
// degenerate for extreme sigma values.
const minLambda = 1e-4

// Model identifies one of the supported noise distributions.
type Model int

const (
	// Gaussian is additive white Gaussian noise, Y[n] ~ Normal(X[n], sigma^2)
	Gaussian Model = iota

	// Laplace noise, Y[n] ~ Laplace(X[n], sigma/sqrt(2))
	Laplace

	// Poisson noise, Y[n] ~ Poisson(X[n]/a)*a with a chosen to match sigma
	Poisson
)

// ParseModel validates a noise model name. Exactly the three names
// "gaussian", "laplace" and "poisson" are recognized; anything else is an
// error, there is no default substitution.
func ParseModel(name string) (Model, error) {
	switch name {
	case "gaussian":
		return Gaussian, nil
	case "laplace":
		return Laplace, nil
	case "poisson":
		return Poisson, nil
	default:
		return 0, fmt.Errorf("unrecognized noise model %q", name)
	}
}

// ParseModelSpec parses a command-line noise selector of the form
// "model" or "model:sigma", where sigma is given in display units and is
// converted to normalized intensity units. A sigma of -1 is returned when
// the selector carries no sigma part.
func ParseModelSpec(spec string) (Model, float64, error) {
	name := spec
	sigma := -1.0

	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		name = spec[:idx]
		value, err := strconv.ParseFloat(spec[idx+1:], 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid sigma in %q: %v", spec, err)
		}
		sigma = value / DisplayScale
		if sigma <= 0 {
			return 0, 0, fmt.Errorf("sigma must be positive, got %v", value)
		}
	}

	model, err := ParseModel(name)
	if err != nil {
		return 0, 0, err
	}
	return model, sigma, nil
}

// Valid reports whether m is one of the recognized models.
func (m Model) Valid() bool {
	return m == Gaussian || m == Laplace || m == Poisson
}

// String returns the canonical model name.
func (m Model) String() string {
	switch m {
	case Gaussian:
		return "gaussian"
	case Laplace:
		return "laplace"
	case Poisson:
		return "poisson"
	default:
		return fmt.Sprintf("Model(%d)", int(m))
	}
}

// InitialLambda estimates the optimal fidelity strength for a given noise
// standard deviation using empirical fits, one per model. Sigma is in
// normalized intensity units. The result is clamped below by a small
// positive floor.
func (m Model) InitialLambda(sigma float64) float64 {
	var lambda float64
	switch m {
	case Gaussian:
		lambda = 0.7079/sigma + 0.002686/(sigma*sigma)
	case Laplace:
		lambda = (-0.00416*sigma + 0.001301) /
			(((sigma-0.2042)*sigma+0.01635)*sigma + 5.836e-4)
	case Poisson:
		lambda = 0.2839/sigma + 0.001502/(sigma*sigma)
	}

	if lambda < minLambda {
		lambda = minLambda
	}
	return lambda
}

// CorrectLambda applies the per-round multiplicative update from the
// discrepancy principle: when the measured residual exceeds the target
// sigma the estimate is still too noisy and lambda grows, tightening
// fidelity; when the residual undershoots, lambda shrinks. The Laplace
// model uses a square-root correction because its residual responds more
// steeply to lambda near the target.
func (m Model) CorrectLambda(lambda, rmse, sigma float64) float64 {
	switch m {
	case Laplace:
		return lambda * math.Sqrt(rmse/sigma)
	default:
		return lambda * (rmse / sigma)
	}
}
