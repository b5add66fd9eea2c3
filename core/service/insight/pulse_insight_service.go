// Package insight implements the request-level use cases: keyword search,
// thread fetch, reply generation and cross-post analysis.
package insight

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"pulse_server/core/agent/llm"
	"pulse_server/core/domain"
	"pulse_server/core/port/in"
	"pulse_server/core/port/out"
	"pulse_server/core/service/classify"
	"pulse_server/core/service/enrich"
	"pulse_server/core/service/retrieval"
	"pulse_server/pkg/apperr"
	"pulse_server/pkg/logger"
)

const (
	DefaultSearchLimit = 10
	DefaultCacheTTL    = 15 * time.Minute

	cacheKeyPrefix = "pulse:search:top:"
)

type Config struct {
	SearchLimit int
	CacheTTL    time.Duration
}

// Service implements in.InsightService.
type Service struct {
	chain    *retrieval.Chain
	enricher *enrich.Enricher
	cache    out.ResultCache // nil disables caching
	limit    int
	cacheTTL time.Duration
	log      zerolog.Logger
}

var _ in.InsightService = (*Service)(nil)

func NewService(log zerolog.Logger, chain *retrieval.Chain, enricher *enrich.Enricher, cache out.ResultCache, cfg Config) *Service {
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	return &Service{
		chain:    chain,
		enricher: enricher,
		cache:    cache,
		limit:    cfg.SearchLimit,
		cacheTTL: cfg.CacheTTL,
		log:      log.With().Str("component", "insight").Logger(),
	}
}

// =============================================================================
// Search
// =============================================================================

func (s *Service) SearchKeyword(ctx context.Context, req *in.SearchRequest) (*in.SearchResult, error) {
	if req == nil {
		return nil, apperr.MissingField("keyword")
	}
	keyword := strings.TrimSpace(req.Keyword)
	if keyword == "" {
		return nil, apperr.MissingField("keyword")
	}
	if classify.LooksLikeURL(keyword) {
		return nil, apperr.URLNotKeyword()
	}

	mode := domain.RecencyTop
	if req.ForceRefresh {
		mode = domain.RecencyLatest
	}

	key := cacheKey(keyword)
	if cached, ok := s.cached(ctx, key, mode); ok {
		return cached, nil
	}

	res, err := s.chain.Search(ctx, keyword, s.limit, mode)
	if err != nil {
		return nil, s.mapChainError(ctx, err, http.StatusServiceUnavailable, "posts for this keyword")
	}

	result := &in.SearchResult{
		Posts:       res.Posts,
		Count:       len(res.Posts),
		RefreshMode: mode.RefreshLabel(),
		Source:      res.Source,
	}
	if analysis, ok := s.enricher.Summarize(ctx, keyword, res.Posts); ok {
		result.Analysis = analysis
	}

	if !res.Synthetic {
		s.store(ctx, key, result)
	}
	return result, nil
}

func cacheKey(keyword string) string {
	return cacheKeyPrefix + strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}

// cached serves Top-mode searches only; Latest always goes to the sources.
func (s *Service) cached(ctx context.Context, key string, mode domain.RecencyMode) (*in.SearchResult, bool) {
	if s.cache == nil || mode != domain.RecencyTop {
		return nil, false
	}
	log := logger.Ctx(ctx, s.log)
	var result in.SearchResult
	hit, err := s.cache.GetJSON(ctx, key, &result)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	if !hit || len(result.Posts) == 0 {
		return nil, false
	}
	log.Debug().Str("key", key).Msg("cache hit")
	return &result, true
}

// store refreshes the Top-mode entry after a search served by a live source.
func (s *Service) store(ctx context.Context, key string, result *in.SearchResult) {
	if s.cache == nil || result.RefreshMode != domain.RecencyTop.RefreshLabel() {
		return
	}
	if err := s.cache.SetJSON(ctx, key, result, s.cacheTTL); err != nil {
		log := logger.Ctx(ctx, s.log)
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// =============================================================================
// Fetch
// =============================================================================

func (s *Service) FetchByURL(ctx context.Context, rawURL string) (*domain.Post, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, apperr.MissingField("url")
	}
	if classify.Classify(rawURL) != classify.ThreadURL {
		return nil, apperr.InvalidInput("url", "not a Reddit thread URL")
	}
	id, ok := classify.ThreadID(rawURL)
	if !ok {
		return nil, apperr.InvalidInput("url", "could not extract thread id")
	}

	post, _, err := s.chain.Fetch(ctx, id)
	if err != nil {
		return nil, s.mapChainError(ctx, err, http.StatusInternalServerError, "post")
	}
	return post, nil
}

func (s *Service) mapChainError(ctx context.Context, err error, unavailableStatus int, resource string) error {
	switch {
	case errors.Is(err, domain.ErrNoResults):
		return apperr.NotFound(resource)
	case errors.Is(err, domain.ErrAllSourcesFailed):
		log := logger.Ctx(ctx, s.log)
		log.Error().Err(err).Msg("all content sources failed")
		return apperr.Unavailable(unavailableStatus, err)
	default:
		return apperr.InternalWithError(err)
	}
}

// =============================================================================
// Enrichment
// =============================================================================

func (s *Service) GenerateReply(ctx context.Context, req *in.ReplyRequest) (*in.ReplyResult, error) {
	if req == nil || strings.TrimSpace(req.CommentText) == "" {
		return nil, apperr.MissingField("comment_text")
	}

	reply, err := s.enricher.GenerateReply(ctx, req.CommentText, req.BrandName, req.IsMainPost)
	if err != nil {
		if errors.Is(err, enrich.ErrLLMNotConfigured) {
			return nil, apperr.ConfigError("OpenAI API key not configured")
		}
		return nil, apperr.InternalWithError(err)
	}

	return &in.ReplyResult{
		Reply:     reply.Text,
		Sentiment: reply.Sentiment,
		Emotion:   reply.Emotion,
		BrandUsed: reply.BrandUsed,
	}, nil
}

func (s *Service) AnalyzePosts(ctx context.Context, req *in.AnalyzeRequest) (*in.AnalyzeResult, error) {
	if req == nil || strings.TrimSpace(req.SearchQuery) == "" {
		return nil, apperr.MissingField("search_query")
	}
	if len(req.RedditPosts) == 0 {
		return nil, apperr.MissingField("reddit_posts")
	}

	analysis, err := s.enricher.Analyze(ctx, req.SearchQuery, req.RedditPosts)
	if err != nil {
		if errors.Is(err, enrich.ErrLLMNotConfigured) {
			return nil, apperr.ConfigError("OpenAI API key not configured")
		}
		log := logger.Ctx(ctx, s.log)
		log.Warn().Err(err).Msg("analysis failed")
		return nil, apperr.ExternalError("llm", err)
	}

	return &in.AnalyzeResult{
		Analysis:      analysis,
		Query:         req.SearchQuery,
		SourcesUsed:   llm.SourcesUsed(req.RedditPosts),
		PostsAnalyzed: len(req.RedditPosts),
	}, nil
}
