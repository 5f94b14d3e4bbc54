package assumptions

import (
	"fmt"
	"math"
	"sort"

	"github.com/raterudder/ptxhub/pkg/types"
)

// DiscountRate is the rate used to annualize capital expenditure.
const DiscountRate = 0.07

// Row is one line of an assumption table: a value per horizon year for a
// (technology, component) pair.
type Row struct {
	Technology types.Technology `json:"technology"`
	Component  types.Component  `json:"component"`
	Values     map[int]float64  `json:"values"`
}

// Key identifies a parameter.
type Key struct {
	Technology types.Technology
	Component  types.Component
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Technology, k.Component)
}

// ParameterNotFoundError is returned when no row matches a lookup.
type ParameterNotFoundError struct {
	Key  Key
	Year int
}

func (e *ParameterNotFoundError) Error() string {
	return fmt.Sprintf("parameter %s not found for year %d", e.Key, e.Year)
}

// AmbiguousParameterError is returned when more than one row matches a key.
type AmbiguousParameterError struct {
	Key   Key
	Count int
}

func (e *AmbiguousParameterError) Error() string {
	return fmt.Sprintf("parameter %s matched %d rows", e.Key, e.Count)
}

// Table resolves technology parameters for a single horizon year. It is
// immutable once built and safe for concurrent use.
type Table struct {
	year   int
	values map[Key]float64
}

// New builds a table for the given horizon year. Rows with unknown
// technologies or components are rejected and every key must be unique.
func New(year int, rows []Row) (*Table, error) {
	t := &Table{
		year:   year,
		values: make(map[Key]float64, len(rows)),
	}
	counts := make(map[Key]int, len(rows))
	for _, r := range rows {
		if !r.Technology.Valid() {
			return nil, fmt.Errorf("unknown technology %q", r.Technology)
		}
		if !r.Component.Valid() {
			return nil, fmt.Errorf("unknown component %q for %s", r.Component, r.Technology)
		}
		k := Key{r.Technology, r.Component}
		counts[k]++
		if v, ok := r.Values[year]; ok {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("parameter %s for year %d is not a finite number", k, year)
			}
			t.values[k] = v
		}
	}
	for k, n := range counts {
		if n > 1 {
			return nil, &AmbiguousParameterError{Key: k, Count: n}
		}
	}
	return t, nil
}

// Year returns the horizon year the table resolves.
func (t *Table) Year() int {
	return t.year
}

// Lookup returns the value of a component of a technology.
func (t *Table) Lookup(tech types.Technology, comp types.Component) (float64, error) {
	k := Key{tech, comp}
	v, ok := t.values[k]
	if !ok {
		return 0, &ParameterNotFoundError{Key: k, Year: t.year}
	}
	return v, nil
}

// CapitalRecoveryFactor converts a one-time payment into an equivalent
// uniform annual payment over lifetime years.
func CapitalRecoveryFactor(rate, lifetime float64) float64 {
	if rate == 0 {
		return 1 / lifetime
	}
	return rate / (1 - math.Pow(1+rate, -lifetime))
}

// AnnualizedCapex returns CAPEX times the capital recovery factor at
// DiscountRate over the technology's lifetime.
func (t *Table) AnnualizedCapex(tech types.Technology) (float64, error) {
	capex, err := t.Lookup(tech, types.CompCAPEX)
	if err != nil {
		return 0, err
	}
	lifetime, err := t.Lookup(tech, types.CompLifetime)
	if err != nil {
		return 0, err
	}
	if lifetime <= 0 {
		return 0, fmt.Errorf("lifetime of %s must be positive: %v", tech, lifetime)
	}
	return capex * CapitalRecoveryFactor(DiscountRate, lifetime), nil
}

// Check verifies that CAPEX, OPEX and Lifetime are present and strictly
// positive for each technology.
func (t *Table) Check(techs ...types.Technology) error {
	for _, tech := range techs {
		for _, comp := range []types.Component{types.CompCAPEX, types.CompOPEX, types.CompLifetime} {
			v, err := t.Lookup(tech, comp)
			if err != nil {
				return err
			}
			if v <= 0 {
				return fmt.Errorf("%s of %s must be positive: %v", comp, tech, v)
			}
		}
	}
	return nil
}

// Rows returns the resolved table as rows holding only its year.
func (t *Table) Rows() []Row {
	rows := make([]Row, 0, len(t.values))
	for k, v := range t.values {
		rows = append(rows, Row{
			Technology: k.Technology,
			Component:  k.Component,
			Values:     map[int]float64{t.year: v},
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Technology != rows[j].Technology {
			return rows[i].Technology < rows[j].Technology
		}
		return rows[i].Component < rows[j].Component
	})
	return rows
}
