package kalman

import "math"

// The AR1 decomposition: a stationary error process with
// autocorrelation a and total variance R is driven by independent
// shocks of variance V = R·(1−a²). The recursion below absorbs the
// correlated part of the error into the state update, which changes
// both the gain and the posterior-variance formula. Neither reduces to
// the independent case with V substituted for R: the gain carries an
// extra step of diffusion in numerator and denominator, and the
// posterior variance is P+Q−K·(P+V), not P·(1−K).

// FilterAR1 folds the correlated-error recursion over the observations
// and returns the final posterior state. A single observation yields
// the seed state unchanged.
func FilterAR1(ys []float64, p Params) (State, error) {
	if err := p.check(true); err != nil {
		return State{}, err
	}
	if len(ys) == 0 {
		return State{}, ErrNoObservations
	}
	q := p.SigmaHat * p.SigmaHat
	r := p.RHat * p.RHat
	v := r * (1 - p.A*p.A)
	s := p.seed(ys)
	for _, y := range ys[1:] {
		s.P += q
		k := (s.P + q) / (s.P + q + v)
		s.X += k * (y - s.X)
		s.P = s.P + q - k*(s.P+v)
	}
	return s, s.finite()
}

// PredictionsAR1 runs the correlated-error filter in trace mode,
// symmetric with Predictions: per index, the prior estimate and
// variance before the observation at that index is folded in, with NaN
// placeholders at index 0.
func PredictionsAR1(ys []float64, p Params) (xs, Ps []float64, err error) {
	if err := p.check(true); err != nil {
		return nil, nil, err
	}
	if len(ys) == 0 {
		return nil, nil, ErrNoObservations
	}
	q := p.SigmaHat * p.SigmaHat
	r := p.RHat * p.RHat
	v := r * (1 - p.A*p.A)
	s := p.seed(ys)
	xs = make([]float64, len(ys))
	Ps = make([]float64, len(ys))
	xs[0], Ps[0] = math.NaN(), math.NaN()
	for t := 1; t != len(ys); t++ {
		s.P += q
		xs[t], Ps[t] = s.X, s.P
		k := (s.P + q) / (s.P + q + v)
		s.X += k * (ys[t] - s.X)
		s.P = s.P + q - k*(s.P+v)
	}
	return xs, Ps, s.finite()
}
