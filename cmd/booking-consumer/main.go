// Command booking-consumer drains the reservation.confirmed queue into a
// rotated journal file.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/queue"
)

func main() {
	cfg, err := config.LoadConsumer()
	if err != nil {
		config.NewLogger("dev", "info").WithError(err).Fatal("load config")
	}
	log := config.NewLogger(cfg.Env, cfg.LogLevel)

	journal := queue.NewJournal(cfg.JournalPath, cfg.JournalMaxSizeMB, cfg.JournalMaxBackups)
	defer journal.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("journal", cfg.JournalPath).Info("consumer starting")
	if err := queue.NewConsumer(cfg.AMQPURL, journal, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("consumer stopped")
	}
	log.Info("consumer stopped")
}
