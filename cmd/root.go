package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "chirp",
		Usage: "A tiny social feed of short posts",
		Description: `Chirp serves a feed of short posts written by signed in users.

		Posts are stored in PostgreSQL and joined with author profiles from an
		external user directory (clerk, bluesky or a static list in the config
		file). The feed is available as HTML pages and as JSON procedures
		under /api/trpc.

		Flags can generally be set via environment variables, e.g.:

		--port => CHIRP_PORT=8080
		--db-host => CHIRP_DB_HOST=postgres
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				EnvVars: []string{"CHIRP_LOG_LEVEL"},
				Value:   "info",
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
			rollbackCmd(),
			feedCmd(),
			postCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

// Execute runs the CLI with the process arguments
func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
