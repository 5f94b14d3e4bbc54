package types

import "time"

// ReportRow is a single labelled quantity.
type ReportRow struct {
	Label string  `json:"label"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// ReportSection groups related rows.
type ReportSection struct {
	Title string      `json:"title"`
	Rows  []ReportRow `json:"rows"`
}

// Report is the structured result of one optimization. It is the only
// contract handed to exporters.
type Report struct {
	ScenarioID string          `json:"scenarioID"`
	Year       int             `json:"year"`
	Hours      int             `json:"hours"`
	Sections   []ReportSection `json:"sections"`
	TotalCost  float64         `json:"totalCost"`
}

// Section returns the section with the given title.
func (r Report) Section(title string) (ReportSection, bool) {
	for _, s := range r.Sections {
		if s.Title == title {
			return s, true
		}
	}
	return ReportSection{}, false
}

// Value returns the value of the row with the given label.
func (s ReportSection) Value(label string) (float64, bool) {
	for _, row := range s.Rows {
		if row.Label == label {
			return row.Value, true
		}
	}
	return 0, false
}

// RunStatus is the outcome of an optimization run.
type RunStatus string

const (
	RunStatusOptimal    RunStatus = "optimal"
	RunStatusInfeasible RunStatus = "infeasible"
	RunStatusUnbounded  RunStatus = "unbounded"
	RunStatusFailed     RunStatus = "failed"
)

// Run records one optimization of a stored scenario.
type Run struct {
	ID         string    `json:"id"`
	ScenarioID string    `json:"scenarioID"`
	Solver     string    `json:"solver"`
	Status     RunStatus `json:"status"`
	Error      string    `json:"error,omitempty"`
	Objective  float64   `json:"objective"`
	Report     *Report   `json:"report,omitempty"`
	TSStart    time.Time `json:"tsStart"`
	TSEnd      time.Time `json:"tsEnd"`
}
