package reddit

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/pkg/resilience"
)

// BreakerSource guards a network source with a circuit breaker. An open
// breaker surfaces as resilience.ErrCircuitOpen, which the chain treats as
// an ordinary failure.
type BreakerSource struct {
	inner out.ContentSource
	cb    *resilience.CircuitBreaker
}

var _ out.ContentSource = (*BreakerSource)(nil)

// WithBreaker wraps src using the default provider breaker settings.
func WithBreaker(src out.ContentSource, log zerolog.Logger) *BreakerSource {
	cfg := resilience.DefaultCircuitBreakerConfig("reddit-" + src.Name())
	cfg.IsSuccessful = isHealthy
	return &BreakerSource{
		inner: src,
		cb:    resilience.NewCircuitBreaker(cfg, log),
	}
}

// isHealthy excludes outcomes that say nothing about the provider.
func isHealthy(err error) bool {
	return err == nil ||
		errors.Is(err, domain.ErrSourceUnavailable) ||
		errors.Is(err, domain.ErrFetchUnsupported) ||
		errors.Is(err, context.Canceled)
}

func (b *BreakerSource) Name() string { return b.inner.Name() }

func (b *BreakerSource) SearchByKeyword(ctx context.Context, keyword string, limit int, mode domain.RecencyMode) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := b.cb.Execute(func() error {
		var err error
		posts, err = b.inner.SearchByKeyword(ctx, keyword, limit, mode)
		return err
	})
	return posts, err
}

func (b *BreakerSource) FetchByID(ctx context.Context, id string) (*domain.Post, error) {
	var post *domain.Post
	err := b.cb.Execute(func() error {
		var err error
		post, err = b.inner.FetchByID(ctx, id)
		return err
	})
	return post, err
}

// BreakerStats reports the breaker snapshot for readiness checks.
func (b *BreakerSource) BreakerStats() resilience.CircuitBreakerStats {
	return b.cb.Stats()
}
