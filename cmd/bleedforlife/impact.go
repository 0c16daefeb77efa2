package main

import (
	"context"
	"fmt"
	"time"

	"bleedforlife/internal/db"
	"bleedforlife/internal/impact"
	"bleedforlife/internal/store"
	"bleedforlife/internal/utils"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var impactCommand = &cli.Command{
	Name:      "impact",
	Usage:     "Print the computed impact summary for a donor",
	ArgsUsage: "<donor-user-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "policy",
			Usage: "Override COUNTING_POLICY (completed or all)",
		},
		&cli.TimestampFlag{
			Name:   "at",
			Usage:  "Evaluate eligibility as of this date",
			Layout: "2006-01-02",
		},
	},
	Action: func(c *cli.Context) error {
		donorID, ok := utils.NormalizeUserID(c.Args().First())
		if !ok {
			return fmt.Errorf("pass a donor user id (uuid)")
		}

		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		engine := newEngine(cfg)
		if name := c.String("policy"); name != "" {
			policy, err := impact.ParseCountingPolicy(name)
			if err != nil {
				return err
			}
			engine = impact.NewEngine(policy)
		}

		now := time.Now()
		if at := c.Timestamp("at"); at != nil {
			now = *at
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		donations, err := store.NewDonationRepository(pool).DonationsByDonor(ctx, donorID)
		if err != nil {
			return err
		}

		summary, err := engine.Summarize(donations, now)
		if err != nil {
			return fmt.Errorf("failed to summarize donor %s: %w", donorID, err)
		}

		fmt.Printf("Policy: %s, donations on record: %d\n", engine.Policy(), len(donations))
		pp.Println(summary)
		pp.Println(impact.Achievements(summary.TotalDonations))

		return nil
	},
}
