package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "Import families from an xlsx file",
	ArgsUsage: "<file>",
	Action: func(cCtx *cli.Context) error {
		path := cCtx.Args().First()
		if path == "" {
			return fmt.Errorf("usage: takaful import <file>")
		}

		ctx := context.Background()
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

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		report, err := d.bulk.Import(ctx, f)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"total":    report.Total,
			"created":  report.Created,
			"merged":   report.Merged,
			"rejected": report.Rejected,
		}).Info("import finished")
		for _, e := range report.Errors {
			logger.Warn(e)
		}
		return nil
	},
}

var exportCommand = &cli.Command{
	Name:      "export",
	Usage:     "Export all families to an xlsx file",
	ArgsUsage: "<file>",
	Action: func(cCtx *cli.Context) error {
		path := cCtx.Args().First()
		if path == "" {
			return fmt.Errorf("usage: takaful export <file>")
		}

		ctx := context.Background()
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

		data, err := d.bulk.Export(ctx)
		if err != nil {
			return err
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}

		logger.WithField("file", path).Info("export finished")
		return nil
	},
}
