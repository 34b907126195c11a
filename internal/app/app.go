// Package app assembles stores, use cases and the notification bus from
// configuration. Every binary builds one App and closes it on exit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/tally/internal/account"
	accountmemory "github.com/MrJamesThe3rd/tally/internal/account/memory"
	accountstore "github.com/MrJamesThe3rd/tally/internal/account/store"
	"github.com/MrJamesThe3rd/tally/internal/category"
	categorymemory "github.com/MrJamesThe3rd/tally/internal/category/memory"
	categorystore "github.com/MrJamesThe3rd/tally/internal/category/store"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/export"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	"github.com/MrJamesThe3rd/tally/internal/log"
	"github.com/MrJamesThe3rd/tally/internal/notify"
	"github.com/MrJamesThe3rd/tally/internal/notify/amqp"
	"github.com/MrJamesThe3rd/tally/internal/statistics"
	"github.com/MrJamesThe3rd/tally/internal/transaction"
	transactionmemory "github.com/MrJamesThe3rd/tally/internal/transaction/memory"
	transactionstore "github.com/MrJamesThe3rd/tally/internal/transaction/store"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Bus    *notify.Bus

	Accounts     *account.Service
	Categories   *category.Service
	Transactions *transaction.Service
	Ledger       *ledger.Service
	Statistics   *statistics.Service
	Export       *export.Service
	Import       *importer.Service

	closers []func() error
}

type repositories struct {
	transactions transaction.Repository
	accounts     account.Repository
	categories   category.Repository
}

// New opens storage, runs migrations, wires the services and seeds the
// default account and categories. Call Close when done.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	repos, err := a.openRepositories(cfg)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Bus = notify.NewBus(log.WithComponent(logger, log.ComponentBus))

	if cfg.AMQP.URL != "" {
		if err := a.forwardToAMQP(cfg); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Accounts = account.NewService(repos.accounts, cfg.App.CurrencyCode, log.WithComponent(logger, log.ComponentAccount))
	a.Categories = category.NewService(repos.categories, log.WithComponent(logger, log.ComponentCategory))
	a.Transactions = transaction.NewService(repos.transactions)
	a.Ledger = ledger.NewService(repos.transactions, repos.accounts, a.Bus, log.WithComponent(logger, log.ComponentLedger))
	a.Statistics = statistics.NewService(repos.transactions, repos.categories, log.WithComponent(logger, log.ComponentStatistics))
	a.Export = export.NewService(repos.transactions, loc)
	a.Import = importer.NewService(a.Ledger, log.WithComponent(logger, log.ComponentImport))

	if err := a.seed(ctx); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

func (a *App) openRepositories(cfg *config.Config) (*repositories, error) {
	if cfg.DB.Driver == config.DriverMemory {
		a.Logger.Warn("using in-memory storage; data will not survive a restart")

		return &repositories{
			transactions: transactionmemory.New(),
			accounts:     accountmemory.New(),
			categories:   categorymemory.New(),
		}, nil
	}

	driver := database.Driver(cfg.DB.Driver)
	dsn := cfg.ConnectionString()

	if err := database.Migrate(driver, dsn); err != nil {
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	db, err := database.New(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	a.closers = append(a.closers, db.Close)

	return &repositories{
		transactions: transactionstore.New(db),
		accounts:     accountstore.New(db),
		categories:   categorystore.New(db),
	}, nil
}

func (a *App) forwardToAMQP(cfg *config.Config) error {
	client, err := amqp.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return fmt.Errorf("connecting to AMQP: %w", err)
	}

	a.closers = append(a.closers, client.Close)

	forwarder := amqp.NewForwarder(client.Channel(), cfg.AMQP.Exchange, log.WithComponent(a.Logger, log.ComponentAMQP))
	a.Bus.Subscribe(forwarder.Handle)

	a.Logger.Info("forwarding ledger events", "exchange", cfg.AMQP.Exchange)

	return nil
}

func (a *App) seed(ctx context.Context) error {
	created, err := a.Accounts.EnsureDefault(ctx)
	if err != nil {
		return fmt.Errorf("seeding default account: %w", err)
	}

	if created != nil {
		a.Logger.Info("created default account", "account_id", created.ID, "name", created.Name)
	}

	n, err := a.Categories.EnsureDefaults(ctx)
	if err != nil {
		return fmt.Errorf("seeding default categories: %w", err)
	}

	if n > 0 {
		a.Logger.Info("created default categories", "count", n)
	}

	return nil
}

// Close stops the bus, then releases connections in reverse order of opening.
func (a *App) Close() error {
	if a.Bus != nil {
		a.Bus.Close()
	}

	var errs []error

	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}

	a.closers = nil

	return errors.Join(errs...)
}
