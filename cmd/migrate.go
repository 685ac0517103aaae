package cmd

import (
	"fmt"

	"chirp/db"

	"github.com/urfave/cli/v2"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Run database migrations",
		Description: `Applies every pending migration to the configured database.`,
		Flags:       dbFlags(),
		Action: func(ctx *cli.Context) error {
			fmt.Printf("Database configured: %s:%d/%s\n",
				ctx.String("db-host"),
				ctx.Int("db-port"),
				ctx.String("db-name"),
			)
			return db.Migrate(connConfig(ctx))
		},
	}
}

func rollbackCmd() *cli.Command {
	return &cli.Command{
		Name:        "rollback",
		Usage:       "Rollback database migration",
		Description: `Rolls back the last database migration`,
		Flags:       dbFlags(),
		Action: func(ctx *cli.Context) error {
			fmt.Printf("Database configured: %s:%d/%s\n",
				ctx.String("db-host"),
				ctx.Int("db-port"),
				ctx.String("db-name"),
			)
			return db.Rollback(connConfig(ctx))
		},
	}
}
