package lp

import (
	"fmt"
	"strconv"

	"github.com/levenlabs/go-lflag"
)

// Configured sets up the LP solver based on flags.
func Configured() Solver {
	name := lflag.String("lp-solver", "cbc", "LP solver to use (available: cbc, simplex)")
	cbcPath := lflag.String("cbc-path", "cbc", "Path to the CBC executable")
	cbcWorkDir := lflag.String("cbc-workdir", "", "Directory for temporary model files (default: system temp dir)")
	tolerance := lflag.String("simplex-tolerance", strconv.FormatFloat(DefaultSimplexTolerance, 'g', -1, 64), "Optimality tolerance of the in-process simplex")

	var p struct{ Solver }

	lflag.Do(func() {
		switch *name {
		case "cbc":
			p.Solver = &CBCSolver{
				Path:    *cbcPath,
				WorkDir: *cbcWorkDir,
			}
		case "simplex":
			tol, err := parseTolerance(*tolerance)
			if err != nil {
				panic(err.Error())
			}
			p.Solver = NewSimplexSolver(tol)
		default:
			panic(fmt.Sprintf("unknown lp solver: %s", *name))
		}
	})

	return &p
}

func parseTolerance(s string) (float64, error) {
	tol, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid simplex tolerance %q: %w", s, err)
	}
	if tol <= 0 || tol >= 1 {
		return 0, fmt.Errorf("invalid simplex tolerance %q: must be in (0, 1)", s)
	}
	return tol, nil
}
