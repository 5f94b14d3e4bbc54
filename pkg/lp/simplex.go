package lp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/raterudder/ptxhub/pkg/log"
)

// DefaultSimplexTolerance is the optimality tolerance on the scaled reduced
// costs when none is configured.
const DefaultSimplexTolerance = 1e-9

const (
	// entries of a pivot column below pivotTolerance are treated as zero
	pivotTolerance = 1e-9
	// ratios closer than tieTolerance are ties
	tieTolerance = 1e-12
	// phase 1 residuals up to feasibilityTolerance times the right hand side
	// scale are accepted
	feasibilityTolerance = 1e-7
	// solutions violating a row by more than verifyTolerance times the
	// problem scale are rejected
	verifyTolerance = 1e-5
	// cancellation is checked every cancelCheckInterval pivots
	cancelCheckInterval = 64
	// maxTableauEntries caps the dense tableau at roughly 400MB
	maxTableauEntries = 50_000_000
)

var (
	errIterationLimit = errors.New("iteration limit reached")
	errPhaseOne       = errors.New("phase 1 did not converge")
	errTooLarge       = errors.New("problem too large for the dense simplex")
	errInaccurate     = errors.New("solution failed verification")
)

// SimplexSolver solves problems in-process with a two phase primal simplex
// on a dense tableau. It is meant for short horizons.
type SimplexSolver struct {
	Tolerance float64
}

// NewSimplexSolver returns a SimplexSolver with the given tolerance.
func NewSimplexSolver(tol float64) *SimplexSolver {
	if tol <= 0 {
		tol = DefaultSimplexTolerance
	}
	return &SimplexSolver{Tolerance: tol}
}

// Name implements Solver.
func (s *SimplexSolver) Name() string {
	return "simplex"
}

// standardForm is min c·y s.t. A·y = b, y >= 0 with b >= 0. The first
// columns map to shifted problem variables and the rest are slacks. Every
// row is scaled so its largest structural coefficient is 1.
type standardForm struct {
	c []float64
	a *mat.Dense
	b []float64
	// basic is the slack column with coefficient +1 of each row, -1 when
	// the row needs an artificial to start from
	basic []int
	cols  []int // problem variable -> column, -1 when fixed
	x     []float64
}

// toStandardForm shifts every variable by its lower bound, adds a slack per
// inequality and per finite upper bound and fixes variables that appear in
// no row at their cost-minimizing bound.
func toStandardForm(p *Problem) (*standardForm, error) {
	n := p.NumVariables()
	sf := &standardForm{
		cols: make([]int, n),
		x:    make([]float64, n),
	}

	// aggregate duplicate terms and drop zeros
	rows := make([]map[int]float64, 0, len(p.Constraints))
	kept := make([]Constraint, 0, len(p.Constraints))
	used := make([]bool, n)
	for _, c := range p.Constraints {
		agg := make(map[int]float64, len(c.Terms))
		for _, t := range c.Terms {
			agg[t.Var] += t.Coef
		}
		for v, coef := range agg {
			if coef == 0 {
				delete(agg, v)
				continue
			}
			used[v] = true
		}
		if len(agg) == 0 {
			// an empty row is either always satisfied or never
			if (c.Sense == LessEqual && c.RHS < 0) ||
				(c.Sense == GreaterEqual && c.RHS > 0) ||
				(c.Sense == Equal && c.RHS != 0) {
				return nil, fmt.Errorf("constraint %s has no terms: %w", c.Name, ErrInfeasible)
			}
			continue
		}
		rows = append(rows, agg)
		kept = append(kept, c)
	}

	var structural int
	var upperRows int
	for j := 0; j < n; j++ {
		if !used[j] {
			sf.cols[j] = -1
			switch {
			case p.Cost[j] >= 0:
				sf.x[j] = p.Lower[j]
			case math.IsInf(p.Upper[j], 1):
				return nil, fmt.Errorf("variable %s is free with negative cost: %w", p.Names[j], ErrUnbounded)
			default:
				sf.x[j] = p.Upper[j]
			}
			continue
		}
		sf.cols[j] = structural
		structural++
		if !math.IsInf(p.Upper[j], 1) {
			upperRows++
		}
	}

	var slacks int
	for _, c := range kept {
		if c.Sense != Equal {
			slacks++
		}
	}

	m := len(kept) + upperRows
	cols := structural + slacks + upperRows
	if m == 0 {
		return sf, nil
	}
	if m*(cols+m) > maxTableauEntries {
		return nil, &NumericalError{
			Solver:     "simplex",
			Diagnostic: fmt.Sprintf("%d rows and %d columns", m, cols),
			Err:        errTooLarge,
		}
	}
	sf.a = mat.NewDense(m, cols, nil)
	sf.b = make([]float64, m)
	sf.c = make([]float64, cols)
	sf.basic = make([]int, m)
	for j := 0; j < n; j++ {
		if sf.cols[j] >= 0 {
			sf.c[sf.cols[j]] = p.Cost[j]
		}
	}

	slack := structural
	for i, c := range kept {
		var scale float64
		for _, coef := range rows[i] {
			scale = math.Max(scale, math.Abs(coef))
		}
		row := sf.a.RawRowView(i)
		rhs := c.RHS
		for v, coef := range rows[i] {
			row[sf.cols[v]] = coef / scale
			rhs -= coef * p.Lower[v]
		}
		rhs /= scale

		sf.basic[i] = -1
		slackCoef := 0.0
		switch c.Sense {
		case LessEqual:
			slackCoef = 1
		case GreaterEqual:
			slackCoef = -1
		}
		if slackCoef != 0 {
			row[slack] = slackCoef
		}
		// flip so b >= 0, preferring a +1 slack when b is zero
		if rhs < 0 || (rhs == 0 && slackCoef < 0) {
			floats.Scale(-1, row)
			rhs = -rhs
			slackCoef = -slackCoef
		}
		if slackCoef > 0 {
			sf.basic[i] = slack
		}
		if slackCoef != 0 {
			slack++
		}
		sf.b[i] = rhs
	}

	i := len(kept)
	for j := 0; j < n; j++ {
		if sf.cols[j] < 0 || math.IsInf(p.Upper[j], 1) {
			continue
		}
		sf.a.Set(i, sf.cols[j], 1)
		sf.a.Set(i, slack, 1)
		sf.b[i] = p.Upper[j] - p.Lower[j]
		sf.basic[i] = slack
		i++
		slack++
	}
	return sf, nil
}

// tableau holds the constraint rows with the right hand side in the last
// column and the reduced costs of the current phase.
type tableau struct {
	t      *mat.Dense
	obj    []float64
	basis  []int
	isBase []bool
	// banned columns never enter, artificials during phase 2
	banned []bool
	rows   int
	cols   int
	// columns from artificial on are artificials
	artificial int
}

func newTableau(sf *standardForm) *tableau {
	m, n := sf.a.Dims()
	var artificials int
	for _, b := range sf.basic {
		if b < 0 {
			artificials++
		}
	}
	cols := n + artificials
	tb := &tableau{
		t:          mat.NewDense(m, cols+1, nil),
		obj:        make([]float64, cols+1),
		basis:      make([]int, m),
		isBase:     make([]bool, cols),
		banned:     make([]bool, cols),
		rows:       m,
		cols:       cols,
		artificial: n,
	}
	next := n
	for i := 0; i < m; i++ {
		row := tb.t.RawRowView(i)
		copy(row, sf.a.RawRowView(i))
		row[cols] = sf.b[i]
		col := sf.basic[i]
		if col < 0 {
			col = next
			row[col] = 1
			next++
		}
		tb.basis[i] = col
		tb.isBase[col] = true
	}
	return tb
}

// price sets the reduced costs of cost vector c, which covers the columns
// before the artificials.
func (tb *tableau) price(c []float64) {
	for j := range tb.obj {
		tb.obj[j] = 0
	}
	copy(tb.obj, c)
	for i, col := range tb.basis {
		var cb float64
		if col < len(c) {
			cb = c[col]
		}
		if cb != 0 {
			floats.AddScaled(tb.obj, -cb, tb.t.RawRowView(i))
		}
	}
	for _, col := range tb.basis {
		tb.obj[col] = 0
	}
}

func (tb *tableau) pivot(r, q int) {
	prow := tb.t.RawRowView(r)
	floats.Scale(1/prow[q], prow)
	prow[q] = 1
	for i := 0; i < tb.rows; i++ {
		if i == r {
			continue
		}
		row := tb.t.RawRowView(i)
		if f := row[q]; f != 0 {
			floats.AddScaled(row, -f, prow)
			row[q] = 0
		}
	}
	if f := tb.obj[q]; f != 0 {
		floats.AddScaled(tb.obj, -f, prow)
		tb.obj[q] = 0
	}
	tb.isBase[tb.basis[r]] = false
	tb.basis[r] = q
	tb.isBase[q] = true
}

// entering returns the column to bring into the basis or -1 at optimality.
// Bland picks the lowest eligible index, otherwise the most negative
// reduced cost wins.
func (tb *tableau) entering(tol float64, bland bool) int {
	q := -1
	best := -tol
	for j := 0; j < tb.cols; j++ {
		if tb.banned[j] || tb.isBase[j] {
			continue
		}
		if d := tb.obj[j]; d < best {
			if bland {
				return j
			}
			q, best = j, d
		}
	}
	return q
}

// leaving runs the ratio test on column q. It returns -1 when the column
// has no positive entry. Ties go to the lowest basic index under Bland and
// to the largest pivot otherwise.
func (tb *tableau) leaving(q int, bland bool) (int, float64) {
	r := -1
	var ratio, pivot float64
	for i := 0; i < tb.rows; i++ {
		row := tb.t.RawRowView(i)
		a := row[q]
		if a <= pivotTolerance {
			continue
		}
		v := math.Max(row[tb.cols], 0) / a
		switch {
		case r < 0 || v < ratio-tieTolerance*(1+ratio):
		case v <= ratio+tieTolerance*(1+ratio):
			if bland && tb.basis[i] > tb.basis[r] {
				continue
			}
			if !bland && a <= pivot {
				continue
			}
		default:
			continue
		}
		r, ratio, pivot = i, v, a
	}
	return r, ratio
}

// iterate pivots until no reduced cost is below -tol. Dantzig's rule is
// used until a degenerate pivot, then Bland's rule until the objective
// moves again.
func (tb *tableau) iterate(ctx context.Context, tol float64, limit int) (int, error) {
	var bland bool
	for iter := 0; ; iter++ {
		if iter%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return iter, err
			}
		}
		if iter >= limit {
			return iter, errIterationLimit
		}
		q := tb.entering(tol, bland)
		if q < 0 {
			return iter, nil
		}
		r, ratio := tb.leaving(q, bland)
		if r < 0 {
			return iter, ErrUnbounded
		}
		bland = ratio <= tieTolerance
		tb.pivot(r, q)
	}
}

// dropArtificials pivots basic artificials out on any structural entry.
// Rows where none is left are redundant and keep their artificial at zero.
func (tb *tableau) dropArtificials() int {
	var redundant int
	for i, col := range tb.basis {
		if col < tb.artificial {
			continue
		}
		row := tb.t.RawRowView(i)
		q := -1
		var best float64
		for j := 0; j < tb.artificial; j++ {
			if a := math.Abs(row[j]); a > pivotTolerance && a > best && !tb.isBase[j] {
				q, best = j, a
			}
		}
		if q < 0 {
			redundant++
			continue
		}
		tb.pivot(i, q)
	}
	for j := tb.artificial; j < tb.cols; j++ {
		tb.banned[j] = true
	}
	return redundant
}

// Solve implements Solver.
func (s *SimplexSolver) Solve(ctx context.Context, p *Problem) (Solution, error) {
	if err := ctx.Err(); err != nil {
		return Solution{}, err
	}
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}
	sf, err := toStandardForm(p)
	if err != nil {
		return Solution{}, err
	}

	x := sf.x
	if sf.a != nil {
		y, err := s.solveStandard(ctx, sf)
		if err != nil {
			return Solution{}, err
		}
		for j, col := range sf.cols {
			if col >= 0 {
				x[j] = p.Lower[j] + y[col]
			}
		}
		if worst, name := p.MaxViolation(x); worst > verifyTolerance*(1+problemScale(p)) {
			return Solution{}, &NumericalError{
				Solver:     s.Name(),
				Diagnostic: fmt.Sprintf("%s violated by %g", name, worst),
				Err:        errInaccurate,
			}
		}
	}

	return Solution{
		X:         x,
		Objective: p.Objective(x),
	}, nil
}

func (s *SimplexSolver) solveStandard(ctx context.Context, sf *standardForm) ([]float64, error) {
	tb := newTableau(sf)
	limit := 50*(tb.rows+tb.cols) + 1000
	log.Ctx(ctx).DebugContext(
		ctx,
		"solving standard form with simplex",
		slog.Int("rows", tb.rows),
		slog.Int("cols", tb.cols),
		slog.Int("artificials", tb.cols-tb.artificial),
		slog.Float64("tolerance", s.Tolerance),
	)

	// phase 1 minimizes the sum of the artificials
	if tb.cols > tb.artificial {
		phase1 := make([]float64, tb.cols)
		for j := tb.artificial; j < tb.cols; j++ {
			phase1[j] = 1
		}
		tb.price(phase1)
		iters, err := tb.iterate(ctx, s.Tolerance, limit)
		switch {
		case errors.Is(err, ErrUnbounded):
			// the phase 1 objective is bounded below by zero
			return nil, &NumericalError{Solver: s.Name(), Diagnostic: "unbounded ray in phase 1", Err: errPhaseOne}
		case errors.Is(err, errIterationLimit):
			return nil, &NumericalError{Solver: s.Name(), Diagnostic: fmt.Sprintf("phase 1 after %d pivots", iters), Err: err}
		case err != nil:
			return nil, err
		}
		residual := -tb.obj[tb.cols]
		if residual > feasibilityTolerance*(1+floats.Norm(sf.b, math.Inf(1))) {
			return nil, ErrInfeasible
		}
		redundant := tb.dropArtificials()
		log.Ctx(ctx).DebugContext(
			ctx,
			"simplex found feasible basis",
			slog.Int("pivots", iters),
			slog.Float64("residual", residual),
			slog.Int("redundantRows", redundant),
		)
	}

	c := make([]float64, len(sf.c))
	copy(c, sf.c)
	if scale := floats.Norm(c, math.Inf(1)); scale > 0 {
		floats.Scale(1/scale, c)
	}
	tb.price(c)
	iters, err := tb.iterate(ctx, s.Tolerance, limit)
	switch {
	case errors.Is(err, errIterationLimit):
		return nil, &NumericalError{Solver: s.Name(), Diagnostic: fmt.Sprintf("phase 2 after %d pivots", iters), Err: err}
	case err != nil:
		return nil, err
	}
	log.Ctx(ctx).DebugContext(ctx, "simplex reached optimum", slog.Int("pivots", iters))

	_, n := sf.a.Dims()
	y := make([]float64, n)
	for i, col := range tb.basis {
		if col < n {
			y[col] = math.Max(tb.t.At(i, tb.cols), 0)
		}
	}
	return y, nil
}

// problemScale is the largest finite right hand side or bound magnitude.
func problemScale(p *Problem) float64 {
	var scale float64
	for _, c := range p.Constraints {
		scale = math.Max(scale, math.Abs(c.RHS))
	}
	for j := range p.Cost {
		scale = math.Max(scale, math.Abs(p.Lower[j]))
		if !math.IsInf(p.Upper[j], 1) {
			scale = math.Max(scale, math.Abs(p.Upper[j]))
		}
	}
	return scale
}
