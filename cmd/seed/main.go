package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/ptxhub/pkg/assumptions"
	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/profile"
	"github.com/raterudder/ptxhub/pkg/storage"
	"github.com/raterudder/ptxhub/pkg/types"
)

// site is a synthetic location seeded for local development.
type site struct {
	id     string
	name   string
	land   float64
	wave   float64
	demand types.Demand
}

var sites = []site{
	{
		id:     "north-sea-coast",
		name:   "North Sea coast",
		land:   120,
		wave:   80,
		demand: types.Demand{AmmoniaMWH: 500_000, MethanolMWH: 150_000},
	},
	{
		id:     "desert-inland",
		name:   "Desert inland",
		land:   400,
		demand: types.Demand{AmmoniaMWH: 1_000_000, FTLiquidMWH: 200_000},
	},
	{
		id:     "atlantic-island",
		name:   "Atlantic island",
		land:   15,
		wave:   250,
		demand: types.Demand{MethaneMWH: 120_000},
	},
}

func main() {
	os.Setenv("FIRESTORE_EMULATOR_HOST", "127.0.0.1:8087")
	s := storage.Configured()
	year := lflag.Int("seed-year", 2030, "assumption year of the seeded scenarios")
	hours := lflag.Int("seed-hours", types.HoursPerYear, "horizon of the seeded scenarios")
	lflag.Configure()
	if err := log.Configure(); err != nil {
		panic(err)
	}

	ctx := context.Background()
	defer s.Close()

	log.Ctx(ctx).InfoContext(ctx, "seeding mock data")

	if err := s.SetAssumptions(ctx, "default", assumptions.DefaultRows()); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to seed assumptions", slog.Any("error", err))
		os.Exit(1)
	}

	for i, st := range sites {
		sc := types.Scenario{
			ID:              st.id,
			Name:            st.name,
			Year:            *year,
			Hours:           *hours,
			Demand:          st.demand,
			LandAreaKM2:     st.land,
			WavePotentialMW: st.wave,
			Profiles:        profile.Synthetic(*hours, uint64(i+1)),
			Assumptions:     "default",
		}
		if *hours == types.HoursPerYear {
			sc.Hours = 0
		}
		if err := sc.Validate(); err != nil {
			panic(fmt.Errorf("seeded scenario %s is invalid: %w", sc.ID, err))
		}

		attrs := []any{slog.String("scenario", sc.ID)}
		for _, sum := range profile.Summarize(sc.Profiles) {
			attrs = append(attrs, slog.Group(string(sum.Kind),
				slog.Float64("mean", sum.Mean),
				slog.Float64("std", sum.Std),
				slog.Float64("fullLoadHours", sum.FullLoadHours),
			))
		}
		if err := s.SaveScenario(ctx, sc); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to seed scenario", slog.String("scenario", sc.ID), slog.Any("error", err))
			os.Exit(1)
		}
		log.Ctx(ctx).InfoContext(ctx, "seeded scenario", attrs...)
	}

	log.Ctx(ctx).InfoContext(ctx, "seeding complete")
}
