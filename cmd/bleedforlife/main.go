package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "bleedforlife",
		Usage: "Blood donor web app and impact tooling",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			nanoidCommand,
			impactCommand,
			remindCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
