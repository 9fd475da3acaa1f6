package noise

import (
	"math"
	"testing"
)

// TestParseModel verifies that exactly the three supported model names are
// accepted
func TestParseModel(t *testing.T) {
	cases := []struct {
		name  string
		model Model
	}{
		{"gaussian", Gaussian},
		{"laplace", Laplace},
		{"poisson", Poisson},
	}
	for _, c := range cases {
		model, err := ParseModel(c.name)
		if err != nil {
			t.Errorf("ParseModel(%q) failed: %v", c.name, err)
		}
		if model != c.model {
			t.Errorf("ParseModel(%q): expected %v, got %v", c.name, c.model, model)
		}
		if model.String() != c.name {
			t.Errorf("String(): expected %q, got %q", c.name, model.String())
		}
	}

	for _, name := range []string{"speckle", "Gaussian", "", "gauss"} {
		if _, err := ParseModel(name); err == nil {
			t.Errorf("ParseModel(%q) should fail", name)
		}
	}
}

// TestParseModelSpec verifies the model:sigma command-line selector
func TestParseModelSpec(t *testing.T) {
	model, sigma, err := ParseModelSpec("laplace:10")
	if err != nil {
		t.Fatalf("ParseModelSpec failed: %v", err)
	}
	if model != Laplace {
		t.Errorf("Expected laplace, got %v", model)
	}
	expected := 10.0 / DisplayScale
	if math.Abs(sigma-expected) > 1e-12 {
		t.Errorf("Expected sigma %f, got %f", expected, sigma)
	}

	// Without a sigma part, sigma is reported as unset
	model, sigma, err = ParseModelSpec("poisson")
	if err != nil {
		t.Fatalf("ParseModelSpec failed: %v", err)
	}
	if model != Poisson || sigma != -1 {
		t.Errorf("Expected poisson with sigma -1, got %v with %f", model, sigma)
	}

	for _, spec := range []string{"gaussian:", "gaussian:abc", "gaussian:0", "gaussian:-5", "speckle:10"} {
		if _, _, err := ParseModelSpec(spec); err == nil {
			t.Errorf("ParseModelSpec(%q) should fail", spec)
		}
	}
}

// TestInitialLambdaGaussian checks the empirical fit against a hand
// computed value for sigma = 10/255
func TestInitialLambdaGaussian(t *testing.T) {
	sigma := 10.0 / 255.0
	expected := 0.7079/sigma + 0.002686/(sigma*sigma)

	lambda := Gaussian.InitialLambda(sigma)
	if math.Abs(lambda-expected) > 1e-9 {
		t.Errorf("Expected lambda %f, got %f", expected, lambda)
	}

	// Sanity check the magnitude of the fit
	if lambda < 19 || lambda > 21 {
		t.Errorf("Expected lambda near 19.8 for sigma 10/255, got %f", lambda)
	}
}

// TestInitialLambdaFloor verifies the positive floor across the valid
// sigma range for all three models
func TestInitialLambdaFloor(t *testing.T) {
	models := []Model{Gaussian, Laplace, Poisson}
	for _, model := range models {
		for sigma := 0.001; sigma <= 0.5; sigma += 0.001 {
			lambda := model.InitialLambda(sigma)
			if lambda < 1e-4 {
				t.Fatalf("%v.InitialLambda(%f) = %g below floor", model, sigma, lambda)
			}
		}
	}

	// The laplace fit goes negative for large sigma and must be clamped
	if lambda := Laplace.InitialLambda(0.5); lambda != 1e-4 {
		t.Errorf("Expected floored lambda 1e-4, got %g", lambda)
	}
}

// TestCorrectLambda verifies the per-model correction rules and their
// direction
func TestCorrectLambda(t *testing.T) {
	lambda, sigma := 20.0, 0.04

	// Gaussian and Poisson scale linearly with the residual ratio
	if got := Gaussian.CorrectLambda(lambda, 0.08, sigma); math.Abs(got-40.0) > 1e-9 {
		t.Errorf("Gaussian: expected 40, got %f", got)
	}
	if got := Poisson.CorrectLambda(lambda, 0.02, sigma); math.Abs(got-10.0) > 1e-9 {
		t.Errorf("Poisson: expected 10, got %f", got)
	}

	// Laplace scales with the square root of the ratio
	if got := Laplace.CorrectLambda(lambda, 0.16, sigma); math.Abs(got-40.0) > 1e-9 {
		t.Errorf("Laplace: expected 40, got %f", got)
	}

	// Residual matching the target leaves lambda unchanged
	for _, model := range []Model{Gaussian, Laplace, Poisson} {
		if got := model.CorrectLambda(lambda, sigma, sigma); math.Abs(got-lambda) > 1e-9 {
			t.Errorf("%v: residual at target should keep lambda, got %f", model, got)
		}
	}
}

// TestCorrectLambdaMonotonic verifies that a larger residual never yields
// a smaller corrected lambda
func TestCorrectLambdaMonotonic(t *testing.T) {
	lambda, sigma := 15.0, 0.05
	for _, model := range []Model{Gaussian, Laplace, Poisson} {
		prev := model.CorrectLambda(lambda, 0, sigma)
		for rmse := 0.005; rmse <= 0.2; rmse += 0.005 {
			got := model.CorrectLambda(lambda, rmse, sigma)
			if got < prev {
				t.Fatalf("%v: correction not monotonic at rmse %f: %f < %f", model, rmse, got, prev)
			}
			prev = got
		}
	}
}

// TestModelValid verifies recognition of model values
func TestModelValid(t *testing.T) {
	for _, model := range []Model{Gaussian, Laplace, Poisson} {
		if !model.Valid() {
			t.Errorf("%v should be valid", model)
		}
	}
	if Model(99).Valid() {
		t.Error("Model(99) should not be valid")
	}
}
