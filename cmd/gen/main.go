package main

import (
	"bitbucket.org/dtolpin/gogp/gp"
	"bitbucket.org/dtolpin/gogp/kernel"
	adkernel "bitbucket.org/dtolpin/gogp/kernel/ad"
	"bitbucket.org/dtolpin/infergo/ad"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"
)

var (
	N     = 100
	SIGMA = 1.0
	R     = 1.0
	A     = 0.25
	GP    = false
	SEED  = int64(0)
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Generate a test series: a latent scalar process observed
through AR1-correlated noise. Invocation:
	%s [OPTIONS] > OUTPUT
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.IntVar(&N, "n", N, "number of observations")
	flag.Float64Var(&SIGMA, "sigma", SIGMA,
		"standard deviation of the latent increment per step")
	flag.Float64Var(&R, "r", R,
		"stationary standard deviation of the measurement error")
	flag.Float64Var(&A, "a", A,
		"autocorrelation of the measurement error (0 for independent)")
	flag.BoolVar(&GP, "gp", GP,
		"draw the latent process from a Matern GP instead of a random walk")
	flag.Int64Var(&SEED, "seed", SEED, "random seed (0 for time-based)")
	ad.MTSafeOn()
}

const (
	trendVariance    = 1.
	trendLengthScale = 10.
)

// The latent-trend similarity kernel for -gp mode.
type trendkernel struct{}

var trendKernel trendkernel

func (trendkernel) Observe(x []float64) float64 {
	const (
		xa = iota
		xb
	)

	return trendVariance * kernel.Matern52.Cov(trendLengthScale, x[xa], x[xb])
}

func (trendkernel) Gradient() []float64 {
	return []float64{1, 1}
}

func (trendkernel) NTheta() int {
	return 0
}

// sample draws each latent value from the GP conditioned on the path
// sampled so far.
func sample(g *gp.GP, rng *rand.Rand, xs <-chan float64, ys chan<- float64) {
	for x := range xs {
		X := [][]float64{{x}}
		Y, Sigma, err := g.Produce(X)
		if err != nil {
			panic(fmt.Errorf("produce: %v", err))
		}
		y := Y[0] + Sigma[0]*rng.NormFloat64()
		ys <- y
		X = append(g.X, X...)
		Y = append(g.Y, y)
		if err := g.Absorb(X, Y); err != nil {
			panic(fmt.Errorf("absorb: %v", err))
		}
	}
	close(ys)
}

// walk draws the latent values from a random walk, the model the
// filters assume.
func walk(rng *rand.Rand, sigma float64, n int, ys chan<- float64) {
	x := 0.
	for i := 0; i != n; i++ {
		ys <- x
		x += sigma * rng.NormFloat64()
	}
	close(ys)
}

func main() {
	flag.Parse()
	if !(math.Abs(A) < 1) {
		fmt.Fprintf(os.Stderr, "the AR1 coefficient must satisfy |a| < 1, got %v\n", A)
		os.Exit(1)
	}
	seed := SEED
	if seed == 0 {
		seed = time.Now().UTC().UnixNano()
	}

	// Sampling the latent process
	latent := make(chan float64, 1)
	if GP {
		g := &gp.GP{
			NDim:  1,
			Simil: trendKernel,
			Noise: adkernel.ConstantNoise(0.01),
		}
		grid := make(chan float64, 1)
		go func() {
			for i := 0; i != N; i++ {
				grid <- float64(i)
			}
			close(grid)
		}()
		go sample(g, rand.New(rand.NewSource(seed)), grid, latent)
	} else {
		go walk(rand.New(rand.NewSource(seed)), SIGMA, N, latent)
	}

	// Observing through AR1 noise. The driving shock variance is
	// scaled so that the stationary variance of the error is R².
	rng := rand.New(rand.NewSource(seed + 1))
	v := R * R * (1 - A*A)
	e := R * rng.NormFloat64()
	for y := range latent {
		fmt.Printf("%f\n", y+e)
		e = A*e + math.Sqrt(v)*rng.NormFloat64()
	}
}
