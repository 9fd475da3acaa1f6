package noise

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"tvdenoise/internal/models"
)

// Laplacian kernel weights for noise estimation
var estimateWeights = []float64{
	1, -2, 1,
	-2, 4, -2,
	1, -2, 1,
}

// EstimateSigma estimates the standard deviation of Gaussian noise on a
// natural image, following J. Immerkær, "Fast Noise Variance Estimation",
// Computer Vision and Image Understanding, Vol. 64, No. 2, 1996. The
// estimate is computed independently per channel and the channel median is
// returned. Images must be at least 3x3.
func EstimateSigma(img *models.Image) (float64, error) {
	if !img.Valid() {
		return 0, fmt.Errorf("invalid image")
	}
	if img.Width < 3 || img.Height < 3 {
		return 0, fmt.Errorf("image %dx%d too small for noise estimation", img.Width, img.Height)
	}

	estimates := make([]float64, 0, img.Channels)
	for c := 0; c < img.Channels; c++ {
		estimates = append(estimates, estimatePlane(img.Plane(c), img.Width, img.Height))
	}

	sigma, err := stats.Median(estimates)
	if err != nil {
		return 0, fmt.Errorf("failed to combine channel estimates: %v", err)
	}
	return sigma, nil
}

// estimatePlane runs the 3x3 Laplacian convolution over one channel plane
// and converts the accumulated absolute response into a sigma estimate.
func estimatePlane(data []float64, width, height int) float64 {
	offsets := []int{
		-width - 1, -width, -width + 1,
		-1, 0, 1,
		width - 1, width, width + 1,
	}

	sum := 0.0
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			i := y*width + x
			conv := 0.0
			for j, o := range offsets {
				conv += data[i+o] * estimateWeights[j]
			}
			sum += math.Abs(conv)
		}
	}

	factor := math.Sqrt(0.5*math.Pi) / (6 * float64(width-2) * float64(height-2))
	return sum * factor
}
