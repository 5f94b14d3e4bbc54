package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/levenlabs/go-lflag"

	"github.com/raterudder/ptxhub/pkg/log"
	"github.com/raterudder/ptxhub/pkg/lp"
	"github.com/raterudder/ptxhub/pkg/server"
	"github.com/raterudder/ptxhub/pkg/storage"
)

func main() {
	// init packages
	s := storage.Configured()
	solver := lp.Configured()

	// init server
	srv := server.Configured(s, solver)

	// parse flags
	lflag.Configure()
	if err := log.Configure(); err != nil {
		panic(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	defer func() {
		if err := s.Close(); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to close storage", slog.Any("error", err))
		}
	}()

	log.Ctx(ctx).InfoContext(ctx, "solver configured", slog.String("solver", solver.Name()))

	// Run will block until context is canceled or error happens
	if err := srv.Run(ctx); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "server failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Ctx(ctx).InfoContext(ctx, "server exited cleanly")
}
