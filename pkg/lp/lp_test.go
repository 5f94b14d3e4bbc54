package lp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classic returns min -3x - 5y s.t. x <= 4, 2y <= 12, 3x + 2y <= 18 whose
// optimum is x=2, y=6 with objective -36.
func classic() *Problem {
	p := &Problem{}
	x := p.AddVariable("x", 0, math.Inf(1), -3)
	y := p.AddVariable("y", 0, math.Inf(1), -5)
	p.AddConstraint("x", LessEqual, 4, Term{x, 1})
	p.AddConstraint("y", LessEqual, 12, Term{y, 2})
	p.AddConstraint("xy", LessEqual, 18, Term{x, 3}, Term{y, 2})
	return p
}

func TestSimplexSolver(t *testing.T) {
	ctx := context.Background()
	s := NewSimplexSolver(0)
	assert.Equal(t, DefaultSimplexTolerance, s.Tolerance)
	assert.Equal(t, "simplex", s.Name())

	t.Run("Classic", func(t *testing.T) {
		sol, err := s.Solve(ctx, classic())
		require.NoError(t, err)
		assert.InDelta(t, -36, sol.Objective, 1e-9)
		assert.InDelta(t, 2, sol.X[0], 1e-9)
		assert.InDelta(t, 6, sol.X[1], 1e-9)
	})

	t.Run("Greater Equal With Upper Bounds", func(t *testing.T) {
		p := &Problem{}
		x := p.AddVariable("x", 0, 10, 1)
		y := p.AddVariable("y", 0, 10, 1)
		p.AddConstraint("cover", GreaterEqual, 1, Term{x, 1}, Term{y, 1})
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.InDelta(t, 1, sol.Objective, 1e-9)
		worst, _ := p.MaxViolation(sol.X)
		assert.Less(t, worst, 1e-9)
	})

	t.Run("Equality And Shifted Lower Bound", func(t *testing.T) {
		p := &Problem{}
		x := p.AddVariable("x", 0.5, 1, 1)
		y := p.AddVariable("y", 0, math.Inf(1), 2)
		p.AddConstraint("sum", Equal, 3, Term{x, 1}, Term{y, 1})
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.InDelta(t, 1, sol.X[x], 1e-9)
		assert.InDelta(t, 2, sol.X[y], 1e-9)
		assert.InDelta(t, 5, sol.Objective, 1e-9)
	})

	t.Run("Unused Variables Are Fixed", func(t *testing.T) {
		p := classic()
		lo := p.AddVariable("idle", 1.5, math.Inf(1), 4)
		hi := p.AddVariable("reward", 0, 2, -1)
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, 1.5, sol.X[lo])
		assert.Equal(t, 2.0, sol.X[hi])
		assert.InDelta(t, -36+6-2, sol.Objective, 1e-9)
	})

	t.Run("Duplicate Terms Are Summed", func(t *testing.T) {
		p := &Problem{}
		x := p.AddVariable("x", 0, math.Inf(1), 1)
		p.AddConstraint("twice", GreaterEqual, 4, Term{x, 1}, Term{x, 1})
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.InDelta(t, 2, sol.X[x], 1e-9)
	})

	t.Run("Infeasible", func(t *testing.T) {
		p := &Problem{}
		x := p.AddVariable("x", 0, math.Inf(1), 1)
		p.AddConstraint("low", LessEqual, 1, Term{x, 1})
		p.AddConstraint("high", GreaterEqual, 2, Term{x, 1})
		_, err := s.Solve(ctx, p)
		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("Empty Infeasible Row", func(t *testing.T) {
		p := classic()
		p.AddConstraint("impossible", GreaterEqual, 1)
		_, err := s.Solve(ctx, p)
		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("Unbounded", func(t *testing.T) {
		p := &Problem{}
		x := p.AddVariable("x", 0, math.Inf(1), -1)
		y := p.AddVariable("y", 0, math.Inf(1), 0)
		p.AddConstraint("gap", LessEqual, 1, Term{x, 1}, Term{y, -1})
		_, err := s.Solve(ctx, p)
		assert.ErrorIs(t, err, ErrUnbounded)
	})

	t.Run("Free Unused Negative Cost", func(t *testing.T) {
		p := &Problem{}
		p.AddVariable("x", 0, math.Inf(1), -1)
		_, err := s.Solve(ctx, p)
		assert.ErrorIs(t, err, ErrUnbounded)
	})

	t.Run("Invalid Problem", func(t *testing.T) {
		p := &Problem{}
		p.AddVariable("x", 2, 1, 0)
		_, err := s.Solve(ctx, p)
		assert.ErrorContains(t, err, "inconsistent")
	})

	t.Run("Degenerate Cycling Example", func(t *testing.T) {
		// Beale's example cycles under Dantzig's rule without anti-cycling
		p := &Problem{}
		x4 := p.AddVariable("x4", 0, math.Inf(1), -0.75)
		x5 := p.AddVariable("x5", 0, math.Inf(1), 20)
		x6 := p.AddVariable("x6", 0, math.Inf(1), -0.5)
		x7 := p.AddVariable("x7", 0, math.Inf(1), 6)
		p.AddConstraint("r1", LessEqual, 0, Term{x4, 0.25}, Term{x5, -8}, Term{x6, -1}, Term{x7, 9})
		p.AddConstraint("r2", LessEqual, 0, Term{x4, 0.5}, Term{x5, -12}, Term{x6, -0.5}, Term{x7, 3})
		p.AddConstraint("r3", LessEqual, 1, Term{x6, 1})
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.InDelta(t, -1.25, sol.Objective, 1e-9)
		assert.InDelta(t, 1, sol.X[x4], 1e-9)
		assert.InDelta(t, 1, sol.X[x6], 1e-9)
	})

	t.Run("Linearly Dependent Rows", func(t *testing.T) {
		p := &Problem{}
		x := p.AddVariable("x", 0, math.Inf(1), 1)
		y := p.AddVariable("y", 0, math.Inf(1), 2)
		p.AddConstraint("sum", Equal, 2, Term{x, 1}, Term{y, 1})
		p.AddConstraint("again", Equal, 2, Term{x, 1}, Term{y, 1})
		p.AddConstraint("doubled", Equal, 4, Term{x, 2}, Term{y, 2})
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.InDelta(t, 2, sol.X[x], 1e-9)
		assert.InDelta(t, 0, sol.X[y], 1e-9)
		assert.InDelta(t, 2, sol.Objective, 1e-9)
	})

	t.Run("Cyclic Storage Chain", func(t *testing.T) {
		// a lossless store has to carry hour 1 supply to the later hours
		const hours = 6
		p := &Problem{}
		capacity := p.AddVariable("cap", 0, math.Inf(1), 1)
		gen := make([]int, hours)
		soc := make([]int, hours)
		ch := make([]int, hours)
		dis := make([]int, hours)
		for h := 0; h < hours; h++ {
			gen[h] = p.AddVariable(fmt.Sprintf("gen[%d]", h), 0, math.Inf(1), 0)
			soc[h] = p.AddVariable(fmt.Sprintf("soc[%d]", h), 0, math.Inf(1), 0)
			ch[h] = p.AddVariable(fmt.Sprintf("ch[%d]", h), 0, math.Inf(1), 0)
			dis[h] = p.AddVariable(fmt.Sprintf("dis[%d]", h), 0, math.Inf(1), 0)
		}
		for h := 0; h < hours; h++ {
			avail := 0.0
			if h == 0 {
				avail = 1
			}
			prev := (h - 1 + hours) % hours
			p.AddConstraint(fmt.Sprintf("gen[%d]", h), LessEqual, 0, Term{gen[h], 1}, Term{capacity, -avail})
			p.AddConstraint(fmt.Sprintf("balance[%d]", h), GreaterEqual, 1, Term{gen[h], 1}, Term{dis[h], 1}, Term{ch[h], -1})
			p.AddConstraint(fmt.Sprintf("soc[%d]", h), Equal, 0, Term{soc[h], 1}, Term{soc[prev], -1}, Term{ch[prev], -1}, Term{dis[prev], 1})
		}
		sol, err := s.Solve(ctx, p)
		require.NoError(t, err)
		assert.InDelta(t, hours, sol.X[capacity], 1e-9)
		worst, name := p.MaxViolation(sol.X)
		assert.Less(t, worst, 1e-9, name)
	})

	t.Run("Cancelled Before Pivoting", func(t *testing.T) {
		sf, err := toStandardForm(classic())
		require.NoError(t, err)
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = s.solveStandard(cctx, sf)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("Cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p := &Problem{}
		p.AddVariable("x", 0, 1, 1)
		_, err := s.Solve(cctx, p)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseTolerance(t *testing.T) {
	tol, err := parseTolerance("1e-8")
	require.NoError(t, err)
	assert.Equal(t, 1e-8, tol)

	tol, err = parseTolerance(strconv.FormatFloat(DefaultSimplexTolerance, 'g', -1, 64))
	require.NoError(t, err)
	assert.Equal(t, DefaultSimplexTolerance, tol)

	_, err = parseTolerance("tight")
	assert.ErrorContains(t, err, "tight")
	_, err = parseTolerance("0")
	assert.Error(t, err)
	_, err = parseTolerance("-1e-9")
	assert.Error(t, err)
}

func TestNumericalError(t *testing.T) {
	inner := errors.New("boom")
	err := error(&NumericalError{Solver: "simplex", Diagnostic: "singular basis", Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "lp: simplex failed: boom: singular basis", err.Error())
	var ne *NumericalError
	assert.True(t, errors.As(err, &ne))
}

func TestMaxViolation(t *testing.T) {
	p := classic()
	worst, name := p.MaxViolation([]float64{2, 6})
	assert.InDelta(t, 0, worst, 1e-12)

	worst, name = p.MaxViolation([]float64{5, 6})
	assert.InDelta(t, 9, worst, 1e-12)
	assert.Equal(t, "xy", name)

	worst, name = p.MaxViolation([]float64{-1, 0})
	assert.InDelta(t, 1, worst, 1e-12)
	assert.Equal(t, "x", name)
}

func TestWriteMPS(t *testing.T) {
	p := &Problem{}
	x := p.AddVariable("x", 0, 10, 1)
	y := p.AddVariable("y", 1, math.Inf(1), 2.5)
	z := p.AddVariable("z", 3, 3, 0)
	p.AddConstraint("a", GreaterEqual, 4, Term{x, 1}, Term{y, -0.5})
	p.AddConstraint("b", Equal, 0, Term{y, 1}, Term{z, 2})

	var buf bytes.Buffer
	require.NoError(t, WriteMPS(&buf, p))
	assert.Equal(t, strings.Join([]string{
		"NAME ptxhub",
		"ROWS",
		" N COST",
		" G R0000000",
		" E R0000001",
		"COLUMNS",
		" C0000000 COST 1",
		" C0000000 R0000000 1",
		" C0000001 COST 2.5",
		" C0000001 R0000000 -0.5",
		" C0000001 R0000001 1",
		" C0000002 COST 0",
		" C0000002 R0000001 2",
		"RHS",
		" RHS R0000000 4",
		"BOUNDS",
		" UP BND C0000000 10",
		" LO BND C0000001 1",
		" FX BND C0000002 3",
		"ENDATA",
		"",
	}, "\n"), buf.String())
}

func TestReadCBCSolution(t *testing.T) {
	t.Run("Optimal", func(t *testing.T) {
		raw, err := readCBCSolution(strings.NewReader(strings.Join([]string{
			"Optimal - objective value -36.00000000",
			"      0 R0000000               2                     0",
			"      0 C0000000               2                     0",
			"      1 C0000001               6                     0",
		}, "\n")))
		require.NoError(t, err)
		assert.Equal(t, "Optimal", raw.status)
		assert.Equal(t, -36.0, raw.objective)

		s := &CBCSolver{}
		sol, err := s.decode(classic(), raw, "")
		require.NoError(t, err)
		assert.Equal(t, []float64{2, 6}, sol.X)
		assert.InDelta(t, -36, sol.Objective, 1e-12)
	})

	t.Run("Infeasible", func(t *testing.T) {
		raw, err := readCBCSolution(strings.NewReader(strings.Join([]string{
			"Infeasible - objective value 0.00000000",
			"**    0 C0000000               5                     0",
		}, "\n")))
		require.NoError(t, err)
		assert.Equal(t, 5.0, raw.values["C0000000"])
		_, err = (&CBCSolver{}).decode(classic(), raw, "")
		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("Stopped", func(t *testing.T) {
		raw, err := readCBCSolution(strings.NewReader("Stopped on iterations - objective value 1.0\n"))
		require.NoError(t, err)
		_, err = (&CBCSolver{}).decode(classic(), raw, "iteration limit")
		var ne *NumericalError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "iteration limit", ne.Diagnostic)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := readCBCSolution(strings.NewReader(""))
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := readCBCSolution(strings.NewReader("Optimal - objective value 1\n 0 C0000000\n"))
		assert.ErrorContains(t, err, "malformed")
	})
}

func TestCBCSolver(t *testing.T) {
	path, err := exec.LookPath("cbc")
	if err != nil {
		t.Skip("cbc not installed")
	}
	s := &CBCSolver{Path: path, WorkDir: t.TempDir()}
	ctx := context.Background()

	sol, err := s.Solve(ctx, classic())
	require.NoError(t, err)
	assert.InDelta(t, -36, sol.Objective, 1e-6)

	p := &Problem{}
	x := p.AddVariable("x", 0, math.Inf(1), 1)
	p.AddConstraint("low", LessEqual, 1, Term{x, 1})
	p.AddConstraint("high", GreaterEqual, 2, Term{x, 1})
	_, err = s.Solve(ctx, p)
	assert.ErrorIs(t, err, ErrInfeasible)
}
