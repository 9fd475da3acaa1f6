// Package metrics provides residual measurements between image buffers.
// The lambda tuning loop uses Rmse after every solver call to compare the
// achieved residual against the target noise level.
package metrics

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"tvdenoise/internal/models"
)

// Rmse computes the root mean-square error between two images of the same
// shape. It is symmetric in its arguments and zero for identical inputs.
func Rmse(a, b *models.Image) (float64, error) {
	if !a.SameShape(b) {
		return 0, fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}
	n := float64(len(a.Data))
	return floats.Distance(a.Data, b.Data, 2) / math.Sqrt(n), nil
}

// Psnr computes the peak signal-to-noise ratio in decibels for images with
// intensities in [0,1]. Identical images yield +Inf.
func Psnr(a, b *models.Image) (float64, error) {
	rmse, err := Rmse(a, b)
	if err != nil {
		return 0, err
	}
	if rmse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(1/rmse), nil
}

// ResidualSummary describes the distribution of the per-sample residual
// between the noisy input and the denoised estimate.
type ResidualSummary struct {
	// Mean is the average residual magnitude
	Mean float64

	// Median is the median residual magnitude
	Median float64

	// StdDev is the standard deviation of the signed residual
	StdDev float64

	// MaxAbs is the largest absolute residual
	MaxAbs float64
}

// Summarize computes residual distribution statistics between two images
// of the same shape. Used only for diagnostic reporting.
func Summarize(a, b *models.Image) (ResidualSummary, error) {
	if !a.SameShape(b) {
		return ResidualSummary{}, fmt.Errorf("shape mismatch: %dx%dx%d vs %dx%dx%d",
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}

	diff := make([]float64, len(a.Data))
	absDiff := make([]float64, len(a.Data))
	maxAbs := 0.0
	for i := range a.Data {
		d := a.Data[i] - b.Data[i]
		diff[i] = d
		absDiff[i] = math.Abs(d)
		if absDiff[i] > maxAbs {
			maxAbs = absDiff[i]
		}
	}

	mean, err := stats.Mean(absDiff)
	if err != nil {
		return ResidualSummary{}, fmt.Errorf("failed to compute residual mean: %v", err)
	}
	median, err := stats.Median(absDiff)
	if err != nil {
		return ResidualSummary{}, fmt.Errorf("failed to compute residual median: %v", err)
	}
	stdDev, err := stats.StandardDeviation(diff)
	if err != nil {
		return ResidualSummary{}, fmt.Errorf("failed to compute residual stddev: %v", err)
	}

	return ResidualSummary{
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		MaxAbs: maxAbs,
	}, nil
}
