// ops-worker consumes recorded-operation events and writes them to the
// process log, giving operators an audit trail of ledger activity without
// touching the spreadsheet.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"splitbot/internal/config"
	"splitbot/internal/events"
	applog "splitbot/internal/log"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New()
	logger.Info("Starting ops-worker")

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for ops-worker")
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	audit := applog.WithComponent(logger, "audit")
	err = client.ConsumeOperationRecorded(ctx, func(msg *events.OperationRecorded) error {
		audit.Info("Operation recorded",
			"operation_id", msg.OperationID,
			"group_id", msg.GroupID,
			"type", msg.Type,
			"person_id", msg.PersonID,
			"category", msg.Category,
			"amount", msg.Amount,
			"at", msg.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ops-worker stopped gracefully")
}
