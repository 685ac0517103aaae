package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chirp/server"
	"chirp/web"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the chirp feed",
		Description: `Starts the chirp HTTP server.

Serves the feed pages, the JSON procedures under /api/trpc and
Prometheus metrics under /metrics on the specified or default port.`,
		Flags: append(serviceFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to serve the feed on",
				EnvVars: []string{"CHIRP_PORT"},
			},
			&cli.StringFlag{
				Name:    "jwt-secret",
				Usage:   "HS256 secret used to verify session tokens",
				EnvVars: []string{"CHIRP_JWT_SECRET"},
			},
			&cli.StringFlag{
				Name:    "cors-origins",
				Usage:   "Comma separated list of origins allowed to call the procedures",
				EnvVars: []string{"CHIRP_CORS_ORIGINS"},
			},
		),
		Action: func(ctx *cli.Context) error {
			svc, cfg, database, err := setup(ctx.Context, ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			if ctx.String("jwt-secret") == "" {
				log.Warn("No --jwt-secret configured, every visitor is anonymous")
			}

			renderer, err := web.New()
			if err != nil {
				return err
			}

			app := server.Server(&server.ServerConfig{
				Service:     svc,
				Pages:       renderer,
				JwtSecret:   ctx.String("jwt-secret"),
				CorsOrigins: ctx.String("cors-origins"),
				SignInUrl:   cfg.Web.SignInUrl,
			})

			// Graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				log.Info("Starting server...")
				errChan <- app.Listen(fmt.Sprintf(":%d", ctx.Int("port")))
			}()

			select {
			case <-sigChan:
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					return fmt.Errorf("shutdown failed: %w", err)
				}
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("server stopped: %w", err)
				}
			}

			log.Info("Done!")
			return nil
		},
	}
}
