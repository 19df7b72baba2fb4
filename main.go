package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"github.com/notbanker/filtering/kalman"
	"gonum.org/v1/gonum/stat"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

var (
	SIGMA     = 1.0
	R         = 1.0
	A         = 0.25
	X0        = ""
	AR1       = false
	PREDICT   = false
	NORMALIZE = false
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Kalman filtering of a scalar series. Invocation:
  %s [OPTIONS] < INPUT > OUTPUT
or
  %s [OPTIONS] selfcheck
In 'selfcheck' mode, the data hard-coded into the program is used,
to demonstrate basic functionality.
`, os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Float64Var(&SIGMA, "sigma", SIGMA,
		"standard deviation of the state increment per step")
	flag.Float64Var(&R, "r", R,
		"standard deviation of the measurement error")
	flag.Float64Var(&A, "a", A,
		"autocorrelation of the measurement error (with -ar1)")
	flag.StringVar(&X0, "x0", X0,
		"initial state estimate (first observation if empty)")
	flag.BoolVar(&AR1, "ar1", AR1,
		"assume AR1-correlated measurement error")
	flag.BoolVar(&PREDICT, "predict", PREDICT,
		"output one-step-ahead predictions instead of the final state")
	flag.BoolVar(&NORMALIZE, "normalize", NORMALIZE,
		"standardize the series before filtering")
}

func main() {
	var (
		input  io.Reader = os.Stdin
		output io.Writer = os.Stdout
	)

	flag.Parse()
	switch {
	case flag.NArg() == 0:
	case flag.NArg() == 1 && flag.Arg(0) == "selfcheck":
		input = strings.NewReader(selfCheckData)
	default:
		flag.Usage()
		os.Exit(2)
	}

	params := kalman.Params{SigmaHat: SIGMA, RHat: R, A: A}
	if X0 != "" {
		x0, err := strconv.ParseFloat(X0, 64)
		if err != nil {
			panic(err)
		}
		params.X0 = &x0
	}

	// Load the data
	fmt.Fprint(os.Stderr, "loading...")
	ys, err := load(input)
	if err != nil {
		panic(err)
	}
	fmt.Fprintln(os.Stderr, "done")

	if NORMALIZE {
		meany, stdy := stat.MeanStdDev(ys, nil)
		for i := range ys {
			ys[i] = (ys[i] - meany) / stdy
		}
	}

	switch {
	case PREDICT:
		// One-step-ahead predictions, one line per observation. The
		// first line carries NaN placeholders: the first observation
		// seeds the filter.
		var xs, Ps []float64
		if AR1 {
			xs, Ps, err = kalman.PredictionsAR1(ys, params)
		} else {
			xs, Ps, err = kalman.Predictions(ys, params)
		}
		if err != nil {
			panic(err)
		}
		for t := range ys {
			fmt.Fprintf(output, "%f,%f,%f\n",
				ys[t], xs[t], math.Sqrt(Ps[t]))
		}
	default:
		var s kalman.State
		if AR1 {
			s, err = kalman.FilterAR1(ys, params)
		} else {
			s, err = kalman.Filter(ys, params)
		}
		if err != nil {
			panic(err)
		}
		fmt.Fprintf(output, "%.3f,%.3f\n", s.X, math.Sqrt(s.P))
	}
}

// load parses the data from csv and returns the observation sequence.
// The observation is the last field of each record, so that both bare
// series and x,y files are accepted.
func load(rdr io.Reader) (ys []float64, err error) {
	csv := csv.NewReader(rdr)
RECORDS:
	for {
		record, err := csv.Read()
		switch err {
		case nil:
			// record contains the data
			y, err := strconv.ParseFloat(record[len(record)-1], 64)
			if err != nil {
				// data error
				return ys, err
			}
			ys = append(ys, y)
		case io.EOF:
			// end of file
			break RECORDS
		default:
			// i/o error
			return ys, err
		}
	}

	return ys, err
}

var selfCheckData = `100
100.12
100.45
99.34
99.66
99.8
`
