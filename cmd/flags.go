package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chirp/bluesky"
	"chirp/config"
	"chirp/db"
	"chirp/directory"
	"chirp/posts"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db-host",
			Usage:   "PostgreSQL host",
			EnvVars: []string{"CHIRP_DB_HOST"},
			Value:   "localhost",
		},
		&cli.IntFlag{
			Name:    "db-port",
			Usage:   "PostgreSQL port",
			EnvVars: []string{"CHIRP_DB_PORT"},
			Value:   5432,
		},
		&cli.StringFlag{
			Name:    "db-user",
			Usage:   "PostgreSQL user",
			EnvVars: []string{"CHIRP_DB_USER"},
			Value:   "chirp",
		},
		&cli.StringFlag{
			Name:    "db-password",
			Usage:   "PostgreSQL password",
			EnvVars: []string{"CHIRP_DB_PASSWORD"},
			Value:   "chirp",
		},
		&cli.StringFlag{
			Name:    "db-name",
			Usage:   "PostgreSQL database name",
			EnvVars: []string{"CHIRP_DB_NAME"},
			Value:   "chirp",
		},
	}
}

// serviceFlags are needed by every command that reads or writes posts
func serviceFlags() []cli.Flag {
	return append(dbFlags(),
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   "config/chirp.toml",
			Usage:   "Path to the TOML configuration file",
			EnvVars: []string{"CHIRP_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "directory-secret",
			Usage:   "Secret key for the clerk user directory",
			EnvVars: []string{"CHIRP_DIRECTORY_SECRET"},
		},
		&cli.DurationFlag{
			Name:    "db-wait",
			Usage:   "How long to wait for the database at start-up",
			EnvVars: []string{"CHIRP_DB_WAIT"},
			Value:   30 * time.Second,
		},
	)
}

func connConfig(ctx *cli.Context) db.ConnConfig {
	return db.ConnConfig{
		Host:     ctx.String("db-host"),
		Port:     ctx.Int("db-port"),
		User:     ctx.String("db-user"),
		Password: ctx.String("db-password"),
		Name:     ctx.String("db-name"),
	}
}

// newDirectory builds the configured user directory, instrumented with metrics
func newDirectory(cfg config.TomlDirectory, secret string) (directory.Directory, error) {
	var dir directory.Directory
	switch cfg.Provider {
	case config.ProviderClerk:
		if secret == "" {
			return nil, errors.New("the clerk directory needs --directory-secret")
		}
		dir = directory.NewClerk(cfg.ApiUrl, secret)
	case config.ProviderBluesky:
		dir = bluesky.NewDirectory(bluesky.NewClient(cfg.BlueskyHost, nil))
	case config.ProviderStatic:
		dir = directory.StaticFromConfig(cfg.Profiles)
	default:
		return nil, fmt.Errorf("unknown directory provider %q", cfg.Provider)
	}
	return directory.NewInstrumented(cfg.Provider, dir), nil
}

// setup loads the configuration and wires the post service to the database
// and the user directory. The returned database must be closed by the caller.
func setup(ctx context.Context, c *cli.Context) (*posts.Service, *config.TomlConfig, *db.DB, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, nil, err
	}

	dir, err := newDirectory(cfg.Directory, c.String("directory-secret"))
	if err != nil {
		return nil, nil, nil, err
	}

	conn := connConfig(c)
	log.WithFields(log.Fields{
		"host":     conn.Host,
		"port":     conn.Port,
		"database": conn.Name,
		"provider": cfg.Directory.Provider,
	}).Info("Connecting to database")

	database, err := db.Connect(ctx, conn, c.Duration("db-wait"))
	if err != nil {
		return nil, nil, nil, err
	}

	svc := posts.NewService(database, dir, posts.Rules{
		MinLength: cfg.Validation.MinLength,
		MaxLength: cfg.Validation.MaxLength,
	})
	return svc, cfg, database, nil
}
