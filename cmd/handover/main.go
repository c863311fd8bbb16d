package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-handover/cmd/handover/config"
	"go-handover/internal/handover"
	"go-handover/internal/handover/data/database"
	"go-handover/internal/handover/data/dbrepository"
	"go-handover/internal/handover/data/dbstorage"
	"go-handover/internal/handover/data/sqliterepository"
	"go-handover/internal/handover/notifier"
	"go-handover/internal/handover/notifier/rabbitmq"
	"go-handover/internal/handover/notifier/telegram"
	"go-handover/internal/handover/service"
	"go-handover/pkg/logging"
	"go-handover/pkg/pgxstorage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := logging.NewZapLogger(cfg.LogLevel, logging.WithInitialFields(map[string]any{"service": "handover"}))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync() //nolint:errcheck // nothing to do on exit

	rootCtx, cancelCtx := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
		syscall.SIGABRT,
	)
	defer cancelCtx()

	journalOption, closeJournal, err := openJournal(rootCtx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeJournal()

	sinks, closeSinks := openSinks(rootCtx, cfg, logger)
	defer closeSinks()
	dispatcher := notifier.NewDispatcher(cfg.Notifier, logger, sinks...)

	opts := []service.Option{service.WithNotifier(dispatcher)}
	if journalOption != nil {
		opts = append(opts, journalOption)
	}
	handoverService := service.NewHandover(logger, opts...)

	summary, resumed, err := handoverService.Resume(rootCtx)
	if err != nil {
		log.Fatal(err)
	}
	if resumed {
		logger.InfoCtx(rootCtx, "handover resumed", zap.Stringer("datasetID", summary.DatasetID))
	}

	server := handover.New(cfg.Server, handoverService, logger)

	if err := run(rootCtx, cfg, server, dispatcher, logger); err != nil {
		logger.ErrorCtx(rootCtx, "Server shutdown with error", zap.Error(err))
	} else {
		logger.InfoCtx(rootCtx, "Server shutdown gracefully")
	}
}

// openJournal picks PostgreSQL when a connection string is configured, a local
// SQLite file when a journal path is, and no journal otherwise.
func openJournal(ctx context.Context, cfg *config.Config, logger *logging.ZapLogger) (service.Option, func(), error) {
	switch {
	case cfg.DB.ConnectionString != "":
		storage, err := pgxstorage.New(database.NewPgxDatabaseFactory(cfg.DB))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres journal: %w", err)
		}
		repository := dbrepository.New(storage, logger)
		transactionManager := pgxstorage.NewTransactionsManager(storage)
		logger.InfoCtx(ctx, "journaling to postgres")
		return service.WithJournal(repository, transactionManager), storage.Close, nil
	case cfg.JournalPath != "":
		storage, err := dbstorage.New(dbstorage.NewSQLiteFactory(cfg.JournalPath))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite journal: %w", err)
		}
		repository := sqliterepository.New(storage, logger)
		logger.InfoCtx(ctx, "journaling to sqlite", zap.String("path", cfg.JournalPath))
		return service.WithJournal(repository, storage), func() {
			if err := storage.Close(); err != nil {
				logger.ErrorCtx(ctx, "failed to close journal", zap.Error(err))
			}
		}, nil
	default:
		logger.WarnCtx(ctx, "no journal configured, scans are kept in memory only")
		return nil, func() {}, nil
	}
}

// openSinks connects the configured notification sinks. A sink that cannot be
// set up is skipped, scanning works without it.
func openSinks(ctx context.Context, cfg *config.Config, logger *logging.ZapLogger) ([]notifier.Sink, func()) {
	sinks := make([]notifier.Sink, 0, 2)
	closers := make([]func() error, 0, 1)

	telegramSink, err := telegram.New(cfg.Telegram)
	switch {
	case err == nil:
		sinks = append(sinks, telegramSink)
	case errors.Is(err, telegram.ErrNotConfigured):
		logger.InfoCtx(ctx, "telegram notifications disabled")
	default:
		logger.WarnCtx(ctx, "failed to set up telegram notifications", zap.Error(err))
	}

	if cfg.AMQP.URL != "" {
		publisher, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			logger.WarnCtx(ctx, "failed to connect to rabbitmq, scan events will not be published", zap.Error(err))
		} else {
			sinks = append(sinks, publisher)
			closers = append(closers, publisher.Close)
		}
	}

	return sinks, func() {
		for _, closeSink := range closers {
			if err := closeSink(); err != nil {
				logger.ErrorCtx(ctx, "failed to close notification sink", zap.Error(err))
			}
		}
	}
}

func run(
	rootCtx context.Context,
	cfg *config.Config,
	server *handover.Server,
	dispatcher *notifier.Dispatcher,
	logger *logging.ZapLogger,
) error {
	g, ctx := errgroup.WithContext(rootCtx)

	context.AfterFunc(ctx, func() {
		ctx, cancelCtx := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelCtx()

		<-ctx.Done()
		log.Fatal("failed to gracefully shutdown the server")
	})

	g.Go(func() error {
		if err := server.Run(); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		dispatcher.Run()
		return nil
	})

	g.Go(func() error {
		defer logger.InfoCtx(ctx, "Shutting down server")
		<-ctx.Done()
		defer dispatcher.Stop()
		if err := server.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("goroutine error occured: %w", err)
	}

	return nil
}
