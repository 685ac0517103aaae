package server

import (
	"context"
	"time"

	"chirp/models"
	"chirp/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// FeedService is what the procedures and pages call into
type FeedService interface {
	GetAll(ctx context.Context) ([]models.FeedEntry, error)
	GetById(ctx context.Context, id string) (models.FeedEntry, error)
	GetByAuthor(ctx context.Context, authorId string) ([]models.FeedEntry, error)
	ProfileByUsername(ctx context.Context, username string) (models.AuthorProfile, error)
	ProfileById(ctx context.Context, id string) (models.AuthorProfile, error)
	Create(ctx context.Context, authorId string, content string) (models.Post, error)
}

type ServerConfig struct {
	// The feed operations exposed over procedures and pages
	Service FeedService

	// Renders the HTML pages
	Pages *web.Renderer

	// Secret used to verify session tokens. Empty means every caller is anonymous.
	JwtSecret string

	// Comma separated list of allowed origins, empty disables CORS
	CorsOrigins string

	// Where anonymous visitors are sent to sign in
	SignInUrl string
}

// Returns a fiber.App instance serving the procedures, pages and metrics
func Server(config *ServerConfig) *fiber.App {
	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":     c.Method(),
			"route":      c.Route().Path,
			"status":     c.Response().StatusCode(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			"latency":    time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(compress.New())

	if config.CorsOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     config.CorsOrigins,
			AllowHeaders:     "Authorization, Content-Type",
			AllowCredentials: config.CorsOrigins != "*",
		}))
	}

	app.Use(OptionalAuth([]byte(config.JwtSecret)))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.All("/api/trpc/*", procedureHandler(config.Service))

	app.Use("/static", filesystem.New(filesystem.Config{
		Browse: false,
		Root:   web.Static(),
	}))

	p := &pages{
		svc:       config.Service,
		renderer:  config.Pages,
		signInUrl: config.SignInUrl,
	}

	app.Get("/", p.index)
	app.Get("/partials/feed", p.feed)
	app.Post("/compose", p.compose)
	app.Get("/post/:id", p.post)
	app.Get("/:handle", p.profile)

	return app
}
