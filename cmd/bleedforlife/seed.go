package main

import (
	"context"
	"fmt"

	"bleedforlife/internal/db"
	"bleedforlife/internal/seed"
	"bleedforlife/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with fake donors, donations and blood requests",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "donations",
			Usage: "Maximum donations generated per fake donor",
			Value: 8,
		},
		&cli.IntFlag{
			Name:  "requests",
			Usage: "Number of fake blood requests to open",
			Value: 5,
		},
		&cli.BoolFlag{
			Name:  "reset",
			Usage: "Delete previously seeded donations and requests first",
		},
	},
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

		logrus.Info("Connected to database")

		logrus.Info("Seeding donors...")
		if err := seed.SeedFakeDonors(ctx, store.NewProfileRepository(pool)); err != nil {
			return fmt.Errorf("failed to seed donors: %w", err)
		}

		logrus.Info("Seeding donations...")
		if err := seed.SeedFakeDonations(ctx, pool, store.NewDonationRepository(pool), c.Int("donations"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed donations: %w", err)
		}

		logrus.Info("Seeding blood requests...")
		if err := seed.SeedFakeRequests(ctx, pool, store.NewBloodRequestRepository(pool), c.Int("requests"), c.Bool("reset")); err != nil {
			return fmt.Errorf("failed to seed blood requests: %w", err)
		}

		logrus.Info("Seed data loaded successfully")

		return nil
	},
}
