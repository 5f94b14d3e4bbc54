package hub

import (
	"errors"
	"fmt"

	"github.com/raterudder/ptxhub/pkg/types"
)

// ProfileLengthError is returned when a profile does not cover every hour of
// the horizon.
type ProfileLengthError struct {
	Profile types.ProfileKind
	Got     int
	Want    int
}

func (e *ProfileLengthError) Error() string {
	return fmt.Sprintf("%s profile has %d values, want %d", e.Profile, e.Got, e.Want)
}

// InfeasibleModelError is returned when the solver proves that no dispatch
// satisfies every constraint.
type InfeasibleModelError struct {
	Scenario string
	Err      error
}

func (e *InfeasibleModelError) Error() string {
	return fmt.Sprintf("scenario %q is infeasible: %v", e.Scenario, e.Err)
}

func (e *InfeasibleModelError) Unwrap() error {
	return e.Err
}

// UnboundedModelError is returned when the objective can be decreased
// without limit, which means a bound or cost coefficient is missing.
type UnboundedModelError struct {
	Scenario string
	Err      error
}

func (e *UnboundedModelError) Error() string {
	return fmt.Sprintf("scenario %q is unbounded: %v", e.Scenario, e.Err)
}

func (e *UnboundedModelError) Unwrap() error {
	return e.Err
}

// SolverNumericalError is returned when the solver aborts or does not
// converge. Diagnostic holds the solver's own output.
type SolverNumericalError struct {
	Scenario   string
	Solver     string
	Diagnostic string
	Err        error
}

func (e *SolverNumericalError) Error() string {
	return fmt.Sprintf("solver %s failed on scenario %q: %v", e.Solver, e.Scenario, e.Err)
}

func (e *SolverNumericalError) Unwrap() error {
	return e.Err
}

// RunStatus classifies the error returned by Optimize.
func RunStatus(err error) types.RunStatus {
	var (
		infeasible *InfeasibleModelError
		unbounded  *UnboundedModelError
	)
	switch {
	case err == nil:
		return types.RunStatusOptimal
	case errors.As(err, &infeasible):
		return types.RunStatusInfeasible
	case errors.As(err, &unbounded):
		return types.RunStatusUnbounded
	}
	return types.RunStatusFailed
}
