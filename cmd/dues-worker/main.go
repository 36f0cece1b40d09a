package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"smartdues/internal/amqp"
	"smartdues/internal/config"
	applog "smartdues/internal/log"
	"smartdues/internal/notify"
	"smartdues/internal/sheets"
	gsheet "smartdues/internal/sheets/google"
	"smartdues/internal/worker"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the dues worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sender notify.Sender
	if cfg.SMTPEnabled() {
		var err error
		sender, err = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
		if err != nil {
			logger.Error("failed to configure SMTP", "error", err)
			os.Exit(1)
		}
		logger.Info("email delivery enabled", "host", cfg.SMTPHost)
	} else {
		sender = notify.LogSender{}
		logger.Info("email delivery disabled, reminders will be logged")
	}

	var ledger sheets.LedgerAppender
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
			CredentialsFile: cfg.GoogleCredentialsFile,
		})
		if err != nil {
			logger.Error("failed to initialize sheets ledger", "error", err)
			os.Exit(1)
		}
		ledger = client
		logger.Info("payments ledger enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("payments ledger disabled")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewDuesWorker(sender, ledger)

	logger.Info("starting dues worker", "queue", cfg.AMQPQueue)
	err = amqpClient.Consume(ctx, func(env *amqp.Envelope) error {
		return w.Handle(ctx, env)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("dues worker stopped gracefully")
}
