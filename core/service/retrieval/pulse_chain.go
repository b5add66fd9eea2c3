// Package retrieval runs the ordered content source chain. Each source is
// tried in turn and the first one producing content wins.
package retrieval

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
)

// SearchResult is the winning source's posts. Synthetic is set when the
// posts are sample data rather than live threads.
type SearchResult struct {
	Posts     []*domain.Post
	Source    string
	Synthetic bool
}

// Chain tries content sources in priority order.
type Chain struct {
	sources []out.ContentSource
	stats   *metrics.SourceRegistry
	log     zerolog.Logger
}

// NewChain builds a chain. A nil stats registry disables outcome recording.
func NewChain(log zerolog.Logger, stats *metrics.SourceRegistry, sources ...out.ContentSource) *Chain {
	return &Chain{
		sources: sources,
		stats:   stats,
		log:     log.With().Str("component", "retrieval").Logger(),
	}
}

// SourceNames lists the chain in priority order.
func (c *Chain) SourceNames() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// Search returns the first non-empty result. It fails with
// domain.ErrAllSourcesFailed when no source answered at all and with
// domain.ErrNoResults when at least one answered with nothing.
func (c *Chain) Search(ctx context.Context, keyword string, limit int, mode domain.RecencyMode) (*SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	answered := false
	var lastErr error

	for _, src := range c.sources {
		start := time.Now()
		posts, err := src.SearchByKeyword(ctx, keyword, limit, mode)
		elapsed := time.Since(start)

		switch {
		case errors.Is(err, domain.ErrSourceUnavailable):
			c.record(ctx, src.Name(), "search", metrics.OutcomeSkipped, 0, nil)
			continue
		case err != nil:
			lastErr = err
			c.record(ctx, src.Name(), "search", metrics.OutcomeError, elapsed, err)
			continue
		}

		answered = true
		if len(posts) == 0 {
			c.record(ctx, src.Name(), "search", metrics.OutcomeEmpty, elapsed, nil)
			continue
		}

		log := logger.Ctx(ctx, c.log)
		log.Info().
			Str("source", src.Name()).
			Str("mode", mode.String()).
			Int("count", len(posts)).
			Dur("latency", elapsed).
			Msg("search served")
		c.record(ctx, src.Name(), "search", metrics.OutcomeOK, elapsed, nil)
		return &SearchResult{Posts: posts, Source: src.Name(), Synthetic: isSynthetic(src)}, nil
	}

	if !answered {
		return nil, chainFailure(lastErr)
	}
	return nil, domain.ErrNoResults
}

// Fetch resolves one thread id. Sources that cannot resolve ids are skipped.
func (c *Chain) Fetch(ctx context.Context, id string) (*domain.Post, string, error) {
	answered := false
	var lastErr error

	for _, src := range c.sources {
		start := time.Now()
		post, err := src.FetchByID(ctx, id)
		elapsed := time.Since(start)

		switch {
		case errors.Is(err, domain.ErrSourceUnavailable), errors.Is(err, domain.ErrFetchUnsupported):
			c.record(ctx, src.Name(), "fetch", metrics.OutcomeSkipped, 0, nil)
			continue
		case err != nil:
			lastErr = err
			c.record(ctx, src.Name(), "fetch", metrics.OutcomeError, elapsed, err)
			continue
		}

		answered = true
		if post == nil {
			c.record(ctx, src.Name(), "fetch", metrics.OutcomeEmpty, elapsed, nil)
			continue
		}

		log := logger.Ctx(ctx, c.log)
		log.Info().
			Str("source", src.Name()).
			Str("thread_id", id).
			Dur("latency", elapsed).
			Msg("fetch served")
		c.record(ctx, src.Name(), "fetch", metrics.OutcomeOK, elapsed, nil)
		return post, src.Name(), nil
	}

	if !answered {
		return nil, "", chainFailure(lastErr)
	}
	return nil, "", domain.ErrNoResults
}

func isSynthetic(src out.ContentSource) bool {
	s, ok := src.(out.SyntheticSource)
	return ok && s.Synthetic()
}

func (c *Chain) record(ctx context.Context, source, op string, outcome metrics.Outcome, d time.Duration, err error) {
	log := logger.Ctx(ctx, c.log)
	ev := log.Debug()
	if outcome == metrics.OutcomeError {
		ev = log.Warn().Err(err)
	}
	ev.Str("source", source).
		Str("op", op).
		Str("outcome", string(outcome)).
		Dur("latency", d).
		Msg("source attempt")

	if c.stats != nil {
		c.stats.Record(source, outcome, d, err)
	}
}

func chainFailure(lastErr error) error {
	if lastErr == nil {
		return domain.ErrAllSourcesFailed
	}
	return errors.Join(domain.ErrAllSourcesFailed, lastErr)
}
