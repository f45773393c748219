package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"takaful/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var syncCommand = &cli.Command{
	Name:  "sync",
	Usage: "Synchronize the family registry with the contact directory",
	Subcommands: []*cli.Command{
		{
			Name:   "pull",
			Usage:  "Apply reviewer edits from the directory back to the registry",
			Action: runPull,
		},
		{
			Name:  "push",
			Usage: "Reconcile registry records into the directory",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "id",
					Usage: "Push a single family by id",
				},
				&cli.BoolFlag{
					Name:  "all",
					Usage: "Push every family",
				},
			},
			Action: runPush,
		},
	},
}

func syncContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runPull(cCtx *cli.Context) error {
	ctx, stop := syncContext()
	defer stop()

	logger := newLogger()
	config, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := buildDeps(ctx, config, logger)
	if err != nil {
		return err
	}
	defer d.close()

	report, err := d.pull.ReverseSync(ctx)
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"total":     report.Total,
		"updated":   report.Updated,
		"unchanged": report.Unchanged,
		"not_found": report.NotFound,
		"errors":    report.Errors,
	}).Info("pull finished")
	return nil
}

func runPush(cCtx *cli.Context) error {
	id := cCtx.Int("id")
	all := cCtx.Bool("all")
	if (id != 0) == all {
		return fmt.Errorf("pass exactly one of --id or --all")
	}

	ctx, stop := syncContext()
	defer stop()

	logger := newLogger()
	config, err := loadConfig()
	if err != nil {
		return err
	}

	d, err := buildDeps(ctx, config, logger)
	if err != nil {
		return err
	}
	defer d.close()

	if id != 0 {
		record, err := d.families.Family(ctx, id)
		if err != nil {
			return err
		}
		if err := d.push.SyncFamilyContact(ctx, record); err != nil {
			return fmt.Errorf("push failed for family %d: %w", id, err)
		}
		logger.WithField("family_id", id).Info("push finished")
		return nil
	}

	return pushAll(ctx, d, logger)
}

// pushAll reconciles every record against the directory: VALIDATED rows
// get an entry, everything else gets its entry removed.
func pushAll(ctx context.Context, d *deps, logger *logrus.Logger) error {
	families, err := d.families.Families(ctx)
	if err != nil {
		return err
	}

	pushed, failed := 0, 0
	for _, record := range families {
		if err := d.push.SyncFamilyContact(ctx, record); err != nil {
			logger.WithError(err).WithField("family_id", record.ID).Warn("push failed")
			failed++
			continue
		}
		if record.Status == types.FamilyStatusValidated {
			pushed++
		}
	}

	logger.WithFields(logrus.Fields{"pushed": pushed, "failed": failed}).Info("push finished")
	return nil
}
