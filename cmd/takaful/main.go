package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "takaful",
		Usage: "Family case registry with directory and spreadsheet sync",
		Commands: []*cli.Command{
			serveCommand,
			syncCommand,
			importCommand,
			exportCommand,
			seedCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
