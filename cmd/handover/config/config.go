package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap/zapcore"

	"go-handover/internal/handover"
	"go-handover/internal/handover/data/database"
	"go-handover/internal/handover/notifier"
	"go-handover/internal/handover/notifier/rabbitmq"
	"go-handover/internal/handover/notifier/telegram"
	"go-handover/pkg/logging"
)

const (
	serverAddressFlag         = "a"
	serverAddressEnv          = "RUN_ADDRESS"
	serverAddressDefault      = "localhost:8080"
	dbConnectionStringFlag    = "d"
	dbConnectionStringEnv     = "DATABASE_URI"
	dbConnectionStringDefault = ""
	journalPathFlag           = "j"
	journalPathEnv            = "JOURNAL_PATH"
	journalPathDefault        = ""
	logLevelFlag              = "l"
	logLevelEnv               = "LOG_LEVEL"
	logLevelDefault           = "info"

	amqpURLEnv         = "AMQP_URL"
	amqpExchangeEnv    = "AMQP_EXCHANGE"
	telegramTokenEnv   = "TELEGRAM_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	telegramAPIURLEnv  = "TELEGRAM_API_URL"
	notifyWorkersEnv   = "NOTIFY_WORKERS"
	notifyBufferEnv    = "NOTIFY_BUFFER"
	notifyWorkersCount = 2
	notifyBufferLength = 64
	notifySendTimeout  = 5 * time.Second
	shutdownTimeout    = 5 * time.Second
)

type Config struct {
	Server          handover.Config
	DB              database.Config
	JournalPath     string
	LogLevel        zapcore.Level
	AMQP            AMQPConfig
	Telegram        telegram.Config
	Notifier        notifier.Config
	ShutdownTimeout time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

func Load() (*Config, error) {
	return load(os.Args[0], os.Args[1:], os.LookupEnv)
}

// load parses flags first, then lets environment variables override them.
func load(name string, args []string, lookupEnv func(string) (string, bool)) (*Config, error) {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)

	serverAddress := flags.String(
		serverAddressFlag,
		serverAddressDefault,
		"Server address host:port",
	)

	dbConnectionString := flags.String(
		dbConnectionStringFlag,
		dbConnectionStringDefault,
		"PostgreSQL connection string",
	)

	journalPath := flags.String(
		journalPathFlag,
		journalPathDefault,
		"SQLite journal file, used when no PostgreSQL connection string is set",
	)

	logLevel := flags.String(
		logLevelFlag,
		logLevelDefault,
		"Log level (debug, info, warn, error)",
	)

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if valStr, ok := lookupEnv(serverAddressEnv); ok {
		*serverAddress = valStr
	}

	if valStr, ok := lookupEnv(dbConnectionStringEnv); ok {
		*dbConnectionString = valStr
	}

	if valStr, ok := lookupEnv(journalPathEnv); ok {
		*journalPath = valStr
	}

	if valStr, ok := lookupEnv(logLevelEnv); ok {
		*logLevel = valStr
	}

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped
	}

	workers, err := intFromEnv(lookupEnv, notifyWorkersEnv, notifyWorkersCount)
	if err != nil {
		return nil, err
	}

	buffer, err := intFromEnv(lookupEnv, notifyBufferEnv, notifyBufferLength)
	if err != nil {
		return nil, err
	}

	exchange := rabbitmq.DefaultExchange
	if valStr, ok := lookupEnv(amqpExchangeEnv); ok && valStr != "" {
		exchange = valStr
	}

	telegramAPIURL := telegram.DefaultServerAddress
	if valStr, ok := lookupEnv(telegramAPIURLEnv); ok && valStr != "" {
		telegramAPIURL = valStr
	}

	amqpURL, _ := lookupEnv(amqpURLEnv)
	telegramToken, _ := lookupEnv(telegramTokenEnv)
	telegramChatID, _ := lookupEnv(telegramChatIDEnv)

	return &Config{
		Server: handover.Config{
			ServerAddress:   *serverAddress,
			ShutdownTimeout: shutdownTimeout,
		},
		DB: database.Config{
			ConnectionString: *dbConnectionString,
			RetryAttemptDelays: []time.Duration{
				time.Second,
				time.Second * 3,
				time.Second * 5,
			},
		},
		JournalPath: *journalPath,
		LogLevel:    level,
		AMQP: AMQPConfig{
			URL:      amqpURL,
			Exchange: exchange,
		},
		Telegram: telegram.Config{
			ServerAddress: telegramAPIURL,
			Token:         telegramToken,
			ChatID:        telegramChatID,
		},
		Notifier: notifier.Config{
			WorkersCount:      workers,
			TasksBufferLength: buffer,
			SendTimeout:       notifySendTimeout,
		},
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func intFromEnv(lookupEnv func(string) (string, bool), name string, fallback int) (int, error) {
	valStr, ok := lookupEnv(name)
	if !ok || valStr == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", name, valStr)
	}
	return val, nil
}
