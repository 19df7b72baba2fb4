package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"github.com/notbanker/filtering/kalman"
	"gonum.org/v1/gonum/stat/distuv"
	"io"
	"log"
	"math"
	"os"
	"strconv"
)

var (
	COMMA = ","
	SKIP  = 0
	SIGMA = 1.0
	R     = 1.0
	A     = 0.25
	AR1   = false
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Computes average negative log predictive density of the
one-step-ahead predictions on a series. Invocation:
	%s [OPTIONS] < INPUT
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&COMMA, "comma", COMMA, "field separator")
	flag.IntVar(&SKIP, "s", SKIP, "initial predictions to skip")
	flag.Float64Var(&SIGMA, "sigma", SIGMA,
		"standard deviation of the state increment per step")
	flag.Float64Var(&R, "r", R,
		"standard deviation of the measurement error")
	flag.Float64Var(&A, "a", A,
		"autocorrelation of the measurement error (with -ar1)")
	flag.BoolVar(&AR1, "ar1", AR1,
		"assume AR1-correlated measurement error")
}

func main() {
	flag.Parse()

	rdr := csv.NewReader(os.Stdin)
	rdr.Comma = rune(COMMA[0])

	var ys []float64
	for {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		y, err := strconv.ParseFloat(record[len(record)-1], 64)
		if err != nil {
			log.Fatal(err)
		}
		ys = append(ys, y)
	}

	params := kalman.Params{SigmaHat: SIGMA, RHat: R, A: A}
	var (
		xs, Ps []float64
		err    error
	)
	if AR1 {
		xs, Ps, err = kalman.PredictionsAR1(ys, params)
	} else {
		xs, Ps, err = kalman.Predictions(ys, params)
	}
	if err != nil {
		log.Fatal(err)
	}

	// The predictive variance of the next observation is the prior
	// state variance plus the measurement variance.
	r := R * R
	sum := 0.
	n := 0
	for t := 1 + SKIP; t < len(ys); t++ {
		pred := distuv.Normal{Mu: xs[t], Sigma: math.Sqrt(Ps[t] + r)}
		sum -= pred.LogProb(ys[t])
		n++
	}
	if n == 0 {
		log.Fatal("the series is too short to score")
	}
	fmt.Printf("%f\n", sum/float64(n))
}
