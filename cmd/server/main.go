package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/nimbusworks/opsdesk/internal/config"
	"github.com/nimbusworks/opsdesk/internal/database"
	"github.com/nimbusworks/opsdesk/internal/handlers"
	"github.com/nimbusworks/opsdesk/internal/mailer"
	"github.com/nimbusworks/opsdesk/internal/middleware"
	"github.com/nimbusworks/opsdesk/internal/pdf"
	"github.com/nimbusworks/opsdesk/internal/services"
	"github.com/nimbusworks/opsdesk/internal/storage"
	"github.com/nimbusworks/opsdesk/internal/utils"
	"github.com/rs/zerolog"

	_ "github.com/nimbusworks/opsdesk/docs/api" // Swagger docs
)

// @title OpsDesk API
// @version 1.0.0
// @description Business operations backend for technical services contracting
// @contact.name API Support
// @contact.url https://github.com/nimbusworks/opsdesk

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	store, err := storage.NewMinioStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to object storage")
	}

	var m mailer.Mailer
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(cfg)
	}
	notifier := services.NewNotifier(db, m, log, cfg.MailEnabled && m != nil)

	renderer := pdf.NewRenderer(cfg)

	if err := services.InitAuthorizer(cfg, "http", "localhost:"+cfg.Port); err != nil {
		// The client retries lazily on the first authenticated request.
		log.Warn().Err(err).Msg("authorizer not reachable at startup")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: utils.ErrorHandler,
		BodyLimit:    32 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestLogger(log))
	app.Use(compress.New())
	app.Use(middleware.VersionMiddleware())

	prometheus := fiberprometheus.New("opsdesk")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	h := handlers.New(db, cfg, store, notifier, renderer, log)
	h.RegisterRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return utils.Error(c, fiber.StatusNotFound, "Resource not found")
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	// Let in-flight notification sends finish before exit.
	notifier.Wait()
	log.Info().Msg("server stopped")
}

// requestLogger emits one structured log line per request.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
