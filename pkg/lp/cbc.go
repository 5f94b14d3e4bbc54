package lp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/raterudder/ptxhub/pkg/log"
)

// CBCSolver hands problems to an external COIN-OR CBC process through an
// MPS file. It has no size limit beyond what CBC itself can handle.
type CBCSolver struct {
	// Path to the cbc executable.
	Path string
	// WorkDir holds the temporary model and solution files, empty means the
	// system temp dir.
	WorkDir string
}

// Name implements Solver.
func (s *CBCSolver) Name() string {
	return "cbc"
}

// Solve implements Solver.
func (s *CBCSolver) Solve(ctx context.Context, p *Problem) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}

	dir, err := os.MkdirTemp(s.WorkDir, "ptxhub-lp-")
	if err != nil {
		return Solution{}, fmt.Errorf("failed to create lp work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	modelPath := filepath.Join(dir, "model.mps")
	solPath := filepath.Join(dir, "model.sol")

	f, err := os.Create(modelPath)
	if err != nil {
		return Solution{}, fmt.Errorf("failed to create model file: %w", err)
	}
	if err := WriteMPS(f, p); err != nil {
		f.Close()
		return Solution{}, fmt.Errorf("failed to write model file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Solution{}, fmt.Errorf("failed to close model file: %w", err)
	}

	path := s.Path
	if path == "" {
		path = "cbc"
	}
	start := time.Now()
	cmd := exec.CommandContext(ctx, path, modelPath, "-printingOptions", "all", "-solve", "-solution", solPath)
	out, err := cmd.CombinedOutput()
	log.Ctx(ctx).DebugContext(
		ctx,
		"cbc finished",
		slog.Int("variables", p.NumVariables()),
		slog.Int("constraints", len(p.Constraints)),
		slog.Duration("elapsed", time.Since(start)),
	)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Solution{}, fmt.Errorf("cbc interrupted: %w", ctxErr)
	}
	if err != nil {
		return Solution{}, &NumericalError{
			Solver:     s.Name(),
			Diagnostic: tail(string(out), 2000),
			Err:        err,
		}
	}

	sf, err := os.Open(solPath)
	if err != nil {
		return Solution{}, &NumericalError{
			Solver:     s.Name(),
			Diagnostic: tail(string(out), 2000),
			Err:        fmt.Errorf("no solution file: %w", err),
		}
	}
	defer sf.Close()
	raw, err := readCBCSolution(sf)
	if err != nil {
		return Solution{}, &NumericalError{Solver: s.Name(), Err: err}
	}
	return s.decode(p, raw, string(out))
}

func (s *CBCSolver) decode(p *Problem, raw *cbcSolution, output string) (Solution, error) {
	switch raw.status {
	case "Optimal":
	case "Infeasible":
		return Solution{}, ErrInfeasible
	case "Unbounded":
		return Solution{}, ErrUnbounded
	default:
		return Solution{}, &NumericalError{
			Solver:     s.Name(),
			Diagnostic: tail(output, 2000),
			Err:        errors.New("solver stopped with status " + raw.status),
		}
	}

	x := make([]float64, p.NumVariables())
	for j := range x {
		// columns omitted by cbc are at zero
		x[j] = raw.values[colName(j)]
	}
	return Solution{
		X:         x,
		Objective: p.Objective(x),
	}, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
