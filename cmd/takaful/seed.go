package main

import (
	"context"
	"fmt"

	"takaful/internal/db"
	"takaful/internal/seed"
	"takaful/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with sample families",
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

		families := store.NewFamilyRepository(pool)

		logrus.Info("Seeding families...")
		if err := seed.SeedFamilies(ctx, families); err != nil {
			return fmt.Errorf("failed to seed families: %w", err)
		}

		logrus.Info("Families seeded successfully")

		return nil
	},
}
