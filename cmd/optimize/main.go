// Command optimize solves a batch of scenarios and writes one JSON line per
// scenario to stdout.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/common"
	"github.com/raterudder/ptxhub/pkg/hub"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/report"
	"github.com/raterudder/ptxhub/pkg/types"
)

// line is written for every scenario, in input order.
type line struct {
	Scenario  string          `json:"scenario"`
	Status    types.RunStatus `json:"status"`
	Error     string          `json:"error,omitempty"`
	Objective float64         `json:"objective,omitempty"`
	Report    *types.Report   `json:"report,omitempty"`
}

func main() {
	solver := lp.Configured()
	scenarioFiles := lflag.RequiredString("scenarios", "comma-delimited scenario JSON files or http(s) URLs")
	assumptionsFile := lflag.String("assumptions", "", "assumption rows JSON file or http(s) URL (default: built-in)")
	concurrency := lflag.Int("concurrency", runtime.NumCPU(), "maximum number of scenarios solved at once")
	fetchTimeout := lflag.Duration("fetch-timeout", time.Minute, "timeout for fetching remote inputs")

	lflag.Configure()
	// stdout carries the results
	log.SetOutput(os.Stderr)
	if err := log.Configure(); err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	src := sources{client: common.HTTPClient(*fetchTimeout)}
	scenarios, err := src.scenarios(ctx, strings.Split(*scenarioFiles, ","))
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to load scenarios", slog.Any("error", err))
		os.Exit(1)
	}
	rows := assumptions.DefaultRows()
	if *assumptionsFile != "" {
		if err := src.load(ctx, *assumptionsFile, &rows); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to load assumptions", slog.Any("error", err))
			os.Exit(1)
		}
	}

	failed, err := run(ctx, hub.NewOptimizer(solver), scenarios, rows, *concurrency, os.Stdout)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "batch failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "batch finished", slog.Int("scenarios", len(scenarios)), slog.Int("failed", failed))
	if failed > 0 {
		os.Exit(2)
	}
}

// run optimizes every scenario against rows and writes a line per scenario
// to w. Scenarios naming a stored assumption table fail. It returns the
// number of scenarios without an optimal report.
func run(ctx context.Context, opt *hub.Optimizer, scenarios []types.Scenario, rows []assumptions.Row, concurrency int, w io.Writer) (int, error) {
	tables := make(map[int]*assumptions.Table)
	for _, sc := range scenarios {
		if _, ok := tables[sc.Year]; ok {
			continue
		}
		table, err := assumptions.New(sc.Year, rows)
		if err != nil {
			return 0, fmt.Errorf("failed to build assumptions for %d: %w", sc.Year, err)
		}
		tables[sc.Year] = table
	}
	// stored tables only exist behind the server
	resolve := func(ctx context.Context, sc types.Scenario) (*assumptions.Table, error) {
		if sc.Assumptions != "" {
			return nil, fmt.Errorf("scenario %q names stored assumptions %q, pass the rows with -assumptions instead", sc.ID, sc.Assumptions)
		}
		return tables[sc.Year], nil
	}

	enc := json.NewEncoder(w)
	var failed int
	for _, out := range opt.OptimizeAll(ctx, scenarios, resolve, concurrency) {
		l := line{
			Scenario: out.Scenario.ID,
			Status:   hub.RunStatus(out.Err),
		}
		if out.Err == nil {
			rep, err := report.Compile(tables[out.Scenario.Year], out.Result)
			if err != nil {
				out.Err = fmt.Errorf("failed to compile report: %w", err)
				l.Status = types.RunStatusFailed
			} else {
				l.Objective = out.Result.Objective
				l.Report = &rep
			}
		}
		if out.Err != nil {
			l.Error = out.Err.Error()
			failed++
		}
		if err := enc.Encode(l); err != nil {
			return failed, fmt.Errorf("failed to write result: %w", err)
		}
	}
	return failed, nil
}
