package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"pulse_server/adapter/in/http"
	"pulse_server/config"
	"pulse_server/infra/middleware"
	"pulse_server/pkg/logger"
)

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := newApp(cfg)

	healthHandler := http.NewHealthHandler(deps.ReadinessDeps())
	healthHandler.Register(app)

	insightHandler := http.NewInsightHandler(deps.Insight)
	insightHandler.Register(app)

	logger.Info("Routes registered (scrape=%v stub=%v llm=%v cache=%v)",
		cfg.ScrapeEnabled, cfg.StubEnabled, deps.LLM != nil, deps.Cache != nil)

	return app, cleanup, nil
}

// newApp builds the fiber app and the global middleware stack.
func newApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    cfg.MaxBodyBytes,
		ReadTimeout:  cfg.LLMTimeout + cfg.ProviderTimeout,
		WriteTimeout: cfg.LLMTimeout + cfg.ProviderTimeout,

		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.RequestID())       // 1. Request ID
	app.Use(middleware.RequestLogger())   // 2. Request logging, sees recovered panics
	app.Use(middleware.Recover())         // 3. Panic recovery
	app.Use(middleware.SecurityHeaders()) // 4. Security headers

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: "X-Request-ID",
		MaxAge:        86400,
	}))

	return app
}
