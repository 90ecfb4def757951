package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "speedsolve",
		Usage: "manage attempts and record ledgers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the configuration file",
				EnvVars: []string{"SPEEDSOLVE_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			seedCommand(),
			importCommand(),
			rebuildCommand(),
			watchCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
