package kalman

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

const eps = 1e-9

func TestFilter(t *testing.T) {
	x0 := 0.
	for i, c := range []struct {
		ys   []float64
		p    Params
		x, P float64
	}{
		// single observation: the seed is returned unchanged
		{
			ys: []float64{3.5},
			p:  Params{SigmaHat: 1, RHat: 2},
			x:  3.5, P: 4,
		},
		// one update step, hand-computed:
		// P=2, K=2/3, x=1+2/3, P=2/3
		{
			ys: []float64{1, 2},
			p:  Params{SigmaHat: 1, RHat: 1},
			x:  5. / 3, P: 2. / 3,
		},
		// initial estimate override
		{
			ys: []float64{1, 2},
			p:  Params{SigmaHat: 1, RHat: 1, X0: &x0},
			x:  4. / 3, P: 2. / 3,
		},
		// no diffusion: equal-weight averaging, P = R²/n
		{
			ys: []float64{2, 2, 2},
			p:  Params{SigmaHat: 0, RHat: 1},
			x:  2, P: 1. / 3,
		},
	} {
		s, err := Filter(c.ys, c.p)
		if err != nil {
			t.Errorf("%d: unexpected error: %v", i, err)
			continue
		}
		if math.Abs(s.X-c.x) > eps || math.Abs(s.P-c.P) > eps {
			t.Errorf("%d: got (%.8f, %.8f), want (%.8f, %.8f)",
				i, s.X, s.P, c.x, c.P)
		}
	}
}

func TestFilterConvergesToConstant(t *testing.T) {
	const c = 3.7
	x0 := 0.
	ys := make([]float64, 200)
	for i := range ys {
		ys[i] = c
	}
	s, err := Filter(ys, Params{SigmaHat: 0.5, RHat: 1, X0: &x0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(s.X-c) > eps {
		t.Errorf("estimate did not converge: got %.8f, want %g", s.X, c)
	}
	if s.P <= 0 {
		t.Errorf("variance must stay positive, got %v", s.P)
	}
}

func TestVarianceShrinksWithoutDiffusion(t *testing.T) {
	ys := []float64{1, 4, 2, 3, 5, 4, 3, 2}
	p := Params{SigmaHat: 0, RHat: 2}
	_, Ps, err := Predictions(ys, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 2; i < len(Ps); i++ {
		if Ps[i] > Ps[i-1] {
			t.Errorf("variance grew at %d: %.8f > %.8f",
				i, Ps[i], Ps[i-1])
		}
	}
	for i := 1; i < len(Ps); i++ {
		if Ps[i] < 0 {
			t.Errorf("negative variance at %d: %v", i, Ps[i])
		}
	}
}

func TestPredictionsMatchPrefixes(t *testing.T) {
	ys := []float64{100, 100.12, 100.45, 99.34, 99.66, 99.8}
	p := Params{SigmaHat: 0.5, RHat: 1}
	xs, Ps, err := Predictions(ys, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(xs) != len(ys) || len(Ps) != len(ys) {
		t.Fatalf("got lengths %d, %d, want %d", len(xs), len(Ps), len(ys))
	}
	if !math.IsNaN(xs[0]) || !math.IsNaN(Ps[0]) {
		t.Errorf("slot 0 must be NaN, got (%v, %v)", xs[0], Ps[0])
	}
	// The prediction at index i is the posterior after the first i
	// observations, with the variance grown by one step of diffusion.
	q := p.SigmaHat * p.SigmaHat
	for i := 1; i < len(ys); i++ {
		s, err := Filter(ys[:i], p)
		if err != nil {
			t.Fatalf("%d: unexpected error: %v", i, err)
		}
		if math.Abs(xs[i]-s.X) > eps || math.Abs(Ps[i]-(s.P+q)) > eps {
			t.Errorf("%d: got (%.8f, %.8f), want (%.8f, %.8f)",
				i, xs[i], Ps[i], s.X, s.P+q)
		}
	}
}

func TestPredictionsSingleObservation(t *testing.T) {
	xs, Ps, err := Predictions([]float64{42}, Params{SigmaHat: 1, RHat: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(xs) != 1 || len(Ps) != 1 {
		t.Fatalf("got lengths %d, %d, want 1", len(xs), len(Ps))
	}
	if !math.IsNaN(xs[0]) || !math.IsNaN(Ps[0]) {
		t.Errorf("the only slot must be NaN, got (%v, %v)", xs[0], Ps[0])
	}
}

func TestDeterminism(t *testing.T) {
	ys := []float64{100, 100.12, 100.45, 99.34, 99.66, 99.8}
	p := Params{SigmaHat: 0.5, RHat: 1, A: 0.25}

	s1, err1 := Filter(ys, p)
	s2, err2 := Filter(ys, p)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	if s1 != s2 {
		t.Errorf("terminal state not reproducible: %v != %v", s1, s2)
	}

	xs1, Ps1, _ := Predictions(ys, p)
	xs2, Ps2, _ := Predictions(ys, p)
	if !floats.Same(xs1, xs2) || !floats.Same(Ps1, Ps2) {
		t.Error("predictions not reproducible")
	}
}

func TestFilterValidation(t *testing.T) {
	nan := math.NaN()
	for i, c := range []struct {
		ys []float64
		p  Params
	}{
		{ys: []float64{1, 2}, p: Params{SigmaHat: 1, RHat: 0}},
		{ys: []float64{1, 2}, p: Params{SigmaHat: 1, RHat: -1}},
		{ys: []float64{1, 2}, p: Params{SigmaHat: -1, RHat: 1}},
		{ys: []float64{1, 2}, p: Params{SigmaHat: nan, RHat: 1}},
		{ys: []float64{1, 2}, p: Params{SigmaHat: 1, RHat: nan}},
		{ys: []float64{1, 2}, p: Params{SigmaHat: 1, RHat: 1, X0: &nan}},
	} {
		if _, err := Filter(c.ys, c.p); err == nil {
			t.Errorf("%d: expected a parameter error", i)
		}
		if _, _, err := Predictions(c.ys, c.p); err == nil {
			t.Errorf("%d: expected a parameter error from Predictions", i)
		}
	}

	if _, err := Filter(nil, DefaultParams()); !errors.Is(err, ErrNoObservations) {
		t.Errorf("got %v, want ErrNoObservations", err)
	}
	if _, _, err := Predictions(nil, DefaultParams()); !errors.Is(err, ErrNoObservations) {
		t.Errorf("got %v, want ErrNoObservations from Predictions", err)
	}

	// A malformed observation is reported, not returned as NaN.
	if _, err := Filter([]float64{1, nan}, DefaultParams()); !errors.Is(err, ErrDegenerate) {
		t.Errorf("got %v, want ErrDegenerate", err)
	}
}
