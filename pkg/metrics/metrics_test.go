package metrics

import (
	"math"
	"testing"

	"tvdenoise/internal/models"
)

// makeImage creates a 1-channel image from a flat sample slice
func makeImage(t *testing.T, width, height int, samples []float64) *models.Image {
	t.Helper()
	img, err := models.NewImage(width, height, 1)
	if err != nil {
		t.Fatalf("Failed to create image: %v", err)
	}
	copy(img.Data, samples)
	return img
}

// TestRmseIdentical verifies that identical images have zero residual
func TestRmseIdentical(t *testing.T) {
	a := makeImage(t, 2, 2, []float64{0.1, 0.2, 0.3, 0.4})

	rmse, err := Rmse(a, a)
	if err != nil {
		t.Fatalf("Rmse failed: %v", err)
	}
	if rmse != 0 {
		t.Errorf("Expected zero RMSE for identical images, got %g", rmse)
	}
}

// TestRmseKnownValue checks the residual against a hand computed value
func TestRmseKnownValue(t *testing.T) {
	a := makeImage(t, 2, 2, []float64{0, 0, 0, 0})
	b := makeImage(t, 2, 2, []float64{0.4, 0, 0, 0})

	// Squared differences sum to 0.16 over 4 samples
	expected := math.Sqrt(0.16 / 4)
	rmse, err := Rmse(a, b)
	if err != nil {
		t.Fatalf("Rmse failed: %v", err)
	}
	if math.Abs(rmse-expected) > 1e-12 {
		t.Errorf("Expected RMSE %f, got %f", expected, rmse)
	}
}

// TestRmseSymmetry verifies Rmse(a, b) == Rmse(b, a)
func TestRmseSymmetry(t *testing.T) {
	a := makeImage(t, 2, 2, []float64{0.1, 0.9, 0.4, 0.7})
	b := makeImage(t, 2, 2, []float64{0.3, 0.2, 0.8, 0.5})

	ab, err := Rmse(a, b)
	if err != nil {
		t.Fatalf("Rmse failed: %v", err)
	}
	ba, err := Rmse(b, a)
	if err != nil {
		t.Fatalf("Rmse failed: %v", err)
	}
	if math.Abs(ab-ba) > 1e-15 {
		t.Errorf("RMSE should be symmetric, got %g vs %g", ab, ba)
	}
}

// TestRmseShapeMismatch verifies rejection of differently shaped images
func TestRmseShapeMismatch(t *testing.T) {
	a := makeImage(t, 2, 2, []float64{0, 0, 0, 0})
	b := makeImage(t, 4, 1, []float64{0, 0, 0, 0})

	if _, err := Rmse(a, b); err == nil {
		t.Error("Expected error for mismatched shapes")
	}
}

// TestPsnr verifies the PSNR computation and its degenerate case
func TestPsnr(t *testing.T) {
	a := makeImage(t, 2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	b := makeImage(t, 2, 2, []float64{0.6, 0.4, 0.6, 0.4})

	// RMSE is 0.1, so PSNR is 20 dB
	psnr, err := Psnr(a, b)
	if err != nil {
		t.Fatalf("Psnr failed: %v", err)
	}
	if math.Abs(psnr-20) > 1e-9 {
		t.Errorf("Expected PSNR 20, got %f", psnr)
	}

	psnr, err = Psnr(a, a)
	if err != nil {
		t.Fatalf("Psnr failed: %v", err)
	}
	if !math.IsInf(psnr, 1) {
		t.Errorf("Expected infinite PSNR for identical images, got %f", psnr)
	}
}

// TestSummarize verifies the residual distribution statistics
func TestSummarize(t *testing.T) {
	a := makeImage(t, 2, 2, []float64{0.5, 0.5, 0.5, 0.5})
	b := makeImage(t, 2, 2, []float64{0.5, 0.5, 0.7, 0.5})

	summary, err := Summarize(a, b)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if math.Abs(summary.Mean-0.05) > 1e-9 {
		t.Errorf("Expected mean 0.05, got %f", summary.Mean)
	}
	if summary.Median != 0 {
		t.Errorf("Expected median 0, got %f", summary.Median)
	}
	if math.Abs(summary.MaxAbs-0.2) > 1e-9 {
		t.Errorf("Expected max abs 0.2, got %f", summary.MaxAbs)
	}
	if summary.StdDev <= 0 {
		t.Errorf("Expected positive stddev, got %f", summary.StdDev)
	}
}
