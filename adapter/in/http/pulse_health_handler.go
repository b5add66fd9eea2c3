package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"pulse_server/core/agent/llm"
	"pulse_server/core/port/out"
	"pulse_server/pkg/metrics"
	"pulse_server/pkg/resilience"
)

// BreakerReporter is anything guarded by a circuit breaker.
type BreakerReporter interface {
	BreakerStats() resilience.CircuitBreakerStats
}

// ReadinessDeps is what /ready reports on. Nil fields are reported as
// not configured.
type ReadinessDeps struct {
	Credential    func() string
	Sources       []string
	Breakers      []BreakerReporter
	SourceStats   *metrics.SourceRegistry
	Cache         out.ResultCache
	CacheStats    func() any
	LLMConfigured bool
	LLMUsage      func() llm.UsageStats
}

type HealthHandler struct {
	deps ReadinessDeps
}

func NewHealthHandler(deps ReadinessDeps) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Register(app fiber.Router) {
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready fails only when a configured dependency is unreachable. Open
// breakers degrade the service but the chain still answers from the
// fallback sources.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Ping(ctx); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	checks["reddit_credential"] = "not configured"
	if h.deps.Credential != nil {
		checks["reddit_credential"] = h.deps.Credential()
	}

	checks["llm"] = "not configured"
	if h.deps.LLMConfigured {
		checks["llm"] = "configured"
	}

	breakers := make([]resilience.CircuitBreakerStats, 0, len(h.deps.Breakers))
	degraded := false
	for _, b := range h.deps.Breakers {
		s := b.BreakerStats()
		if s.State == "open" {
			degraded = true
		}
		breakers = append(breakers, s)
	}

	var sources []metrics.SourceStats
	if h.deps.SourceStats != nil {
		sources = h.deps.SourceStats.All()
	}

	status := "ready"
	statusCode := fiber.StatusOK
	switch {
	case !healthy:
		status = "not ready"
		statusCode = fiber.StatusServiceUnavailable
	case degraded:
		status = "degraded"
	}

	body := fiber.Map{
		"status":       status,
		"checks":       checks,
		"source_chain": h.deps.Sources,
		"breakers":     breakers,
		"sources":      sources,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	if h.deps.CacheStats != nil {
		body["cache_pool"] = h.deps.CacheStats()
	}
	if h.deps.LLMUsage != nil {
		body["llm_usage"] = h.deps.LLMUsage()
	}
	return c.Status(statusCode).JSON(body)
}
