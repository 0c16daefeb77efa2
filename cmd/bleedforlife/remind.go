package main

import (
	"context"
	"fmt"

	"bleedforlife/internal/db"
	"bleedforlife/internal/notify"
	"bleedforlife/internal/reminder"
	"bleedforlife/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var remindCommand = &cli.Command{
	Name:  "remind",
	Usage: "Notify donors whose donation cooldown ended in the last day",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logger := logrus.New()
		notifier := notify.New(logger, store.NewNotificationRepository(pool))
		sweeper := reminder.NewSweeper(logger, store.NewDonationRepository(pool), notifier, newEngine(cfg))

		notified, err := sweeper.Sweep(ctx)
		if err != nil {
			return err
		}

		logger.WithField("notified", notified).Info("reminder sweep complete")
		return nil
	},
}
