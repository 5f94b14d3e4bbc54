package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const mpsObjective = "COST"

func colName(j int) string {
	return fmt.Sprintf("C%07d", j)
}

func rowName(i int) string {
	return fmt.Sprintf("R%07d", i)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteMPS writes p in free MPS format. Variables and rows are renamed to
// fixed width identifiers so names never contain whitespace.
func WriteMPS(w io.Writer, p *Problem) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "NAME ptxhub")

	fmt.Fprintln(bw, "ROWS")
	fmt.Fprintf(bw, " N %s\n", mpsObjective)
	for i, c := range p.Constraints {
		var t string
		switch c.Sense {
		case LessEqual:
			t = "L"
		case GreaterEqual:
			t = "G"
		case Equal:
			t = "E"
		default:
			return fmt.Errorf("constraint %s has unknown sense %v", c.Name, c.Sense)
		}
		fmt.Fprintf(bw, " %s %s\n", t, rowName(i))
	}

	// MPS is column major so transpose the rows first
	type entry struct {
		row  int
		coef float64
	}
	columns := make([][]entry, p.NumVariables())
	for i, c := range p.Constraints {
		for _, t := range c.Terms {
			if t.Coef == 0 {
				continue
			}
			columns[t.Var] = append(columns[t.Var], entry{i, t.Coef})
		}
	}

	fmt.Fprintln(bw, "COLUMNS")
	for j, entries := range columns {
		name := colName(j)
		// always emit the cost so every column is declared
		fmt.Fprintf(bw, " %s %s %s\n", name, mpsObjective, formatFloat(p.Cost[j]))
		for _, e := range entries {
			fmt.Fprintf(bw, " %s %s %s\n", name, rowName(e.row), formatFloat(e.coef))
		}
	}

	fmt.Fprintln(bw, "RHS")
	for i, c := range p.Constraints {
		if c.RHS != 0 {
			fmt.Fprintf(bw, " RHS %s %s\n", rowName(i), formatFloat(c.RHS))
		}
	}

	fmt.Fprintln(bw, "BOUNDS")
	for j := range p.Cost {
		lower, upper := p.Lower[j], p.Upper[j]
		if lower == upper {
			fmt.Fprintf(bw, " FX BND %s %s\n", colName(j), formatFloat(lower))
			continue
		}
		if lower != 0 {
			fmt.Fprintf(bw, " LO BND %s %s\n", colName(j), formatFloat(lower))
		}
		if !math.IsInf(upper, 1) {
			fmt.Fprintf(bw, " UP BND %s %s\n", colName(j), formatFloat(upper))
		}
	}
	fmt.Fprintln(bw, "ENDATA")
	return bw.Flush()
}

// cbcSolution is the parsed content of a CBC solution file.
type cbcSolution struct {
	status    string
	objective float64
	values    map[string]float64
}

// readCBCSolution parses the file written by "cbc -solution". The first line
// holds the status and objective, every following line an index, a name, a
// value and a reduced cost, optionally prefixed by "**" when the entry is
// infeasible.
func readCBCSolution(r io.Reader) (*cbcSolution, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("empty solution file")
	}
	header := strings.TrimSpace(sc.Text())
	sol := &cbcSolution{
		values: make(map[string]float64),
	}
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, fmt.Errorf("missing status line")
	}
	sol.status = fields[0]
	if idx := strings.Index(header, "objective value"); idx >= 0 {
		rest := strings.Fields(header[idx+len("objective value"):])
		if len(rest) > 0 {
			v, err := strconv.ParseFloat(rest[0], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid objective value %q: %w", rest[0], err)
			}
			sol.objective = v
		}
	}

	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}
		if f[0] == "**" {
			f = f[1:]
		}
		if len(f) < 3 {
			return nil, fmt.Errorf("malformed solution line %q", sc.Text())
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", f[1], err)
		}
		sol.values[f[1]] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sol, nil
}
