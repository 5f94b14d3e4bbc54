package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/raterudder/ptxhub/pkg/types"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ptxhub_runs_total",
		Help: "Optimization runs by solver and outcome.",
	}, []string{"solver", "status"})

	solveSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ptxhub_solve_seconds",
		Help:    "Wall time of optimization runs.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"solver"})

	lastObjective = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ptxhub_last_objective_eur",
		Help: "System cost of the last optimal run by solver.",
	}, []string{"solver"})
)

// observeRun records a finished run.
func observeRun(run types.Run) {
	runsTotal.WithLabelValues(run.Solver, string(run.Status)).Inc()
	solveSeconds.WithLabelValues(run.Solver).Observe(run.TSEnd.Sub(run.TSStart).Seconds())
	if run.Status == types.RunStatusOptimal {
		lastObjective.WithLabelValues(run.Solver).Set(run.Objective)
	}
}

