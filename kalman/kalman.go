// Package kalman implements one-dimensional recursive Bayesian estimation
// of a scalar time series. Two measurement-noise models are provided:
// independent Gaussian errors, and errors following a first-order
// autoregressive (AR1) process with known autocorrelation.
package kalman

import (
	"errors"
	"fmt"
	"math"
)

// State is a scalar estimate together with its variance.
type State struct {
	X float64 // state estimate
	P float64 // variance of the estimate
}

// Params holds the noise scales of the filters. Scales are standard
// deviations, not variances; they are squared internally, so a negative
// scale cannot produce a negative variance.
type Params struct {
	// SigmaHat is the standard deviation of the state increment per
	// step, the diffusion scale.
	SigmaHat float64

	// RHat is the standard deviation of the measurement error.
	RHat float64

	// A is the autocorrelation of the measurement error from one step
	// to the next. Only the AR1 filter uses it; |A| < 1 is required
	// there for the error process to be stationary.
	A float64

	// X0 optionally overrides the initial state estimate. When nil the
	// filter is seeded with the first observation.
	X0 *float64
}

// DefaultParams returns the default noise scales.
func DefaultParams() Params {
	return Params{SigmaHat: 1, RHat: 1, A: 0.25}
}

var (
	// ErrNoObservations is returned when the observation sequence is
	// empty and no seed state exists.
	ErrNoObservations = errors.New("kalman: no observations")

	// ErrDegenerate is returned when the recursion produces a
	// non-finite state, which can only happen on malformed
	// observations such as NaN.
	ErrDegenerate = errors.New("kalman: degenerate state")
)

// check validates the parameters once, before the recursion; the
// per-step updates perform no further checking.
func (p Params) check(ar1 bool) error {
	if !(p.SigmaHat >= 0) || math.IsInf(p.SigmaHat, 0) {
		return fmt.Errorf("kalman: sigmaHat must be finite and non-negative, got %v", p.SigmaHat)
	}
	if !(p.RHat > 0) || math.IsInf(p.RHat, 0) {
		return fmt.Errorf("kalman: rHat must be finite and positive, got %v", p.RHat)
	}
	if ar1 && !(math.Abs(p.A) < 1) {
		return fmt.Errorf("kalman: AR1 coefficient must satisfy |a| < 1, got %v", p.A)
	}
	if p.X0 != nil && (math.IsNaN(*p.X0) || math.IsInf(*p.X0, 0)) {
		return fmt.Errorf("kalman: initial estimate must be finite, got %v", *p.X0)
	}
	return nil
}

// seed returns the initial state: the supplied estimate, or the first
// observation when none was supplied, with variance equal to the
// measurement variance.
func (p Params) seed(ys []float64) State {
	x := ys[0]
	if p.X0 != nil {
		x = *p.X0
	}
	return State{X: x, P: p.RHat * p.RHat}
}

func (s State) finite() error {
	if math.IsNaN(s.X) || math.IsInf(s.X, 0) ||
		math.IsNaN(s.P) || math.IsInf(s.P, 0) {
		return fmt.Errorf("%w: x=%v, p=%v", ErrDegenerate, s.X, s.P)
	}
	return nil
}

// Filter folds the independent-error recursion over the observations
// and returns the final posterior state. A single observation yields
// the seed state unchanged.
func Filter(ys []float64, p Params) (State, error) {
	if err := p.check(false); err != nil {
		return State{}, err
	}
	if len(ys) == 0 {
		return State{}, ErrNoObservations
	}
	q := p.SigmaHat * p.SigmaHat
	r := p.RHat * p.RHat
	s := p.seed(ys)
	for _, y := range ys[1:] {
		s.P += q
		k := s.P / (s.P + r)
		s.X += k * (y - s.X)
		s.P *= 1 - k
	}
	return s, s.finite()
}

// Predictions runs the independent-error filter in trace mode. The
// returned slices hold, per time index, the one-step-ahead (prior)
// estimate and variance computed before the observation at that index
// is folded in. No prediction exists at index 0, where the first
// observation seeds the filter; both slots hold NaN there.
func Predictions(ys []float64, p Params) (xs, Ps []float64, err error) {
	if err := p.check(false); err != nil {
		return nil, nil, err
	}
	if len(ys) == 0 {
		return nil, nil, ErrNoObservations
	}
	q := p.SigmaHat * p.SigmaHat
	r := p.RHat * p.RHat
	s := p.seed(ys)
	xs = make([]float64, len(ys))
	Ps = make([]float64, len(ys))
	xs[0], Ps[0] = math.NaN(), math.NaN()
	for t := 1; t != len(ys); t++ {
		s.P += q
		xs[t], Ps[t] = s.X, s.P
		k := s.P / (s.P + r)
		s.X += k * (ys[t] - s.X)
		s.P *= 1 - k
	}
	return xs, Ps, s.finite()
}
