package lp

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInfeasible is returned when no assignment satisfies every constraint.
	ErrInfeasible = errors.New("lp: problem is infeasible")
	// ErrUnbounded is returned when the objective decreases without limit.
	ErrUnbounded = errors.New("lp: problem is unbounded")
)

// NumericalError is returned when a solver aborts or fails to converge.
type NumericalError struct {
	Solver     string
	Diagnostic string
	Err        error
}

func (e *NumericalError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("lp: %s failed: %v", e.Solver, e.Err)
	}
	return fmt.Sprintf("lp: %s failed: %v: %s", e.Solver, e.Err, e.Diagnostic)
}

func (e *NumericalError) Unwrap() error {
	return e.Err
}

// Sense is the relation of a constraint's left hand side to its right hand
// side.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "=="
	}
	return fmt.Sprintf("Sense(%d)", int(s))
}

// Term is a coefficient applied to a variable.
type Term struct {
	Var  int
	Coef float64
}

// Constraint is a single linear row.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Problem is a sparse linear program: minimize Cost·x subject to the
// constraints and Lower <= x <= Upper.
type Problem struct {
	Cost        []float64
	Lower       []float64
	Upper       []float64
	Names       []string
	Constraints []Constraint
}

// AddVariable declares a new variable and returns its index. Upper may be
// math.Inf(1).
func (p *Problem) AddVariable(name string, lower, upper, cost float64) int {
	p.Cost = append(p.Cost, cost)
	p.Lower = append(p.Lower, lower)
	p.Upper = append(p.Upper, upper)
	p.Names = append(p.Names, name)
	return len(p.Cost) - 1
}

// AddCost adds c to the objective coefficient of variable v.
func (p *Problem) AddCost(v int, c float64) {
	p.Cost[v] += c
}

// AddConstraint appends a row and returns its index.
func (p *Problem) AddConstraint(name string, sense Sense, rhs float64, terms ...Term) int {
	p.Constraints = append(p.Constraints, Constraint{
		Name:  name,
		Terms: terms,
		Sense: sense,
		RHS:   rhs,
	})
	return len(p.Constraints) - 1
}

// NumVariables returns the number of declared variables.
func (p *Problem) NumVariables() int {
	return len(p.Cost)
}

// NonZeros returns the number of constraint coefficients.
func (p *Problem) NonZeros() int {
	var n int
	for _, c := range p.Constraints {
		n += len(c.Terms)
	}
	return n
}

// Validate checks the problem for structural defects.
func (p *Problem) Validate() error {
	n := len(p.Cost)
	if len(p.Lower) != n || len(p.Upper) != n || len(p.Names) != n {
		return fmt.Errorf("lp: inconsistent variable slices")
	}
	for j := 0; j < n; j++ {
		if math.IsNaN(p.Cost[j]) || math.IsInf(p.Cost[j], 0) {
			return fmt.Errorf("lp: cost of %s is not finite", p.Names[j])
		}
		if math.IsInf(p.Lower[j], 0) || math.IsNaN(p.Lower[j]) {
			return fmt.Errorf("lp: lower bound of %s must be finite", p.Names[j])
		}
		if math.IsNaN(p.Upper[j]) || p.Upper[j] < p.Lower[j] {
			return fmt.Errorf("lp: bounds of %s are inconsistent: [%v, %v]", p.Names[j], p.Lower[j], p.Upper[j])
		}
	}
	for _, c := range p.Constraints {
		if math.IsNaN(c.RHS) || math.IsInf(c.RHS, 0) {
			return fmt.Errorf("lp: right hand side of %s is not finite", c.Name)
		}
		for _, t := range c.Terms {
			if t.Var < 0 || t.Var >= n {
				return fmt.Errorf("lp: constraint %s references unknown variable %d", c.Name, t.Var)
			}
			if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
				return fmt.Errorf("lp: coefficient of %s in %s is not finite", p.Names[t.Var], c.Name)
			}
		}
	}
	return nil
}

// Objective evaluates the objective at x.
func (p *Problem) Objective(x []float64) float64 {
	var v float64
	for j, c := range p.Cost {
		v += c * x[j]
	}
	return v
}

// Activity evaluates the left hand side of c at x.
func Activity(c Constraint, x []float64) float64 {
	var v float64
	for _, t := range c.Terms {
		v += t.Coef * x[t.Var]
	}
	return v
}

// MaxViolation returns the largest absolute violation of any bound or
// constraint at x together with the name of the offending row or variable.
func (p *Problem) MaxViolation(x []float64) (float64, string) {
	var worst float64
	var name string
	check := func(v float64, n string) {
		if v > worst {
			worst = v
			name = n
		}
	}
	for j := range p.Cost {
		check(p.Lower[j]-x[j], p.Names[j])
		if !math.IsInf(p.Upper[j], 1) {
			check(x[j]-p.Upper[j], p.Names[j])
		}
	}
	for _, c := range p.Constraints {
		lhs := Activity(c, x)
		switch c.Sense {
		case LessEqual:
			check(lhs-c.RHS, c.Name)
		case GreaterEqual:
			check(c.RHS-lhs, c.Name)
		case Equal:
			check(math.Abs(lhs-c.RHS), c.Name)
		}
	}
	return worst, name
}

// Solution is an optimal assignment.
type Solution struct {
	X         []float64
	Objective float64
}

// Solver solves linear programs. Implementations return ErrInfeasible,
// ErrUnbounded or a *NumericalError when no optimum is found.
type Solver interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (Solution, error)
}
