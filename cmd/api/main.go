package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	accountHandler "github.com/MrJamesThe3rd/tally/internal/http/account"
	categoryHandler "github.com/MrJamesThe3rd/tally/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/tally/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/tally/internal/http/importcsv"
	statsHandler "github.com/MrJamesThe3rd/tally/internal/http/statistics"
	txHandler "github.com/MrJamesThe3rd/tally/internal/http/transaction"
	"github.com/MrJamesThe3rd/tally/internal/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := log.New(log.Config{Level: cfg.Log.Level, Format: log.Format(cfg.Log.Format), Output: os.Stdout})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	router := tallyHttp.New(tallyHttp.Handlers{
		Accounts:     accountHandler.NewHandler(a.Accounts, a.Ledger),
		Categories:   categoryHandler.NewHandler(a.Categories),
		Transactions: txHandler.NewHandler(a.Transactions, a.Ledger),
		Statistics:   statsHandler.NewHandler(a.Statistics),
		Export:       exportHandler.NewHandler(a.Export),
		Import:       importHandler.NewHandler(a.Import),
	}, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           http.TimeoutHandler(router, cfg.Server.Timeout, "request timed out"),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr, "driver", cfg.DB.Driver)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
