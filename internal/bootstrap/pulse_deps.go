package bootstrap

import (
	"context"
	nethttp "net/http"
	"time"

	"pulse_server/adapter/in/http"
	"pulse_server/adapter/out/cache"
	"pulse_server/adapter/out/reddit"
	"pulse_server/adapter/out/scorer"
	"pulse_server/config"
	"pulse_server/core/agent/llm"
	"pulse_server/core/port/out"
	"pulse_server/core/service/enrich"
	"pulse_server/core/service/insight"
	"pulse_server/core/service/retrieval"
	"pulse_server/pkg/httputil"
	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
)

// sourceStatsWindow is the number of latency samples kept per source.
const sourceStatsWindow = 200

type Dependencies struct {
	Config *config.Config

	Credential  reddit.Credential
	Chain       *retrieval.Chain
	SourceStats *metrics.SourceRegistry
	Breakers    []http.BreakerReporter

	Scorer    *scorer.Client
	LLM       out.LLMClient
	llmClient *llm.Client
	Cache     *cache.SearchCache
	Enricher  *enrich.Enricher
	Insight   *insight.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	redditHTTP := httputil.NewOptimizedClient(httputil.RedditClientConfig(cfg.ProviderTimeout, cfg.RedditUserAgent))

	// Token exchange happens once; an unavailable credential only removes
	// the authenticated source from play.
	if !cfg.HasRedditCredentials() {
		logger.Warn("Reddit client credentials not set, authenticated source disabled")
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProviderTimeout)
	deps.Credential = reddit.AcquireCredential(ctx, reddit.CredentialConfig{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		TokenURL:     cfg.RedditTokenURL,
	}, redditHTTP, logger.Component("reddit"))
	cancel()

	if err := deps.buildChain(cfg, redditHTTP); err != nil {
		return nil, nil, err
	}

	deps.buildEnrichment(cfg)

	if cfg.RedisURL != "" {
		client, err := cache.NewRedis(cfg.RedisURL, nil)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, search cache disabled")
		} else {
			deps.Cache = cache.NewSearchCache(client)
			cleanups = append(cleanups, func() { _ = deps.Cache.Close() })
			logger.Info("Search cache enabled (ttl %v)", cfg.CacheTTL)
		}
	}

	var resultCache out.ResultCache
	if deps.Cache != nil {
		resultCache = deps.Cache
	}
	deps.Insight = insight.NewService(logger.Default().Zerolog(), deps.Chain, deps.Enricher, resultCache, insight.Config{
		SearchLimit: cfg.SearchLimit,
		CacheTTL:    cfg.CacheTTL,
	})

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return deps, cleanup, nil
}

// buildChain assembles authenticated -> public -> scrape -> stub. Each
// network source sits behind its own breaker.
func (d *Dependencies) buildChain(cfg *config.Config, redditHTTP *nethttp.Client) error {
	log := logger.Component("reddit")
	d.SourceStats = metrics.NewSourceRegistry(sourceStatsWindow)

	authenticated := reddit.WithBreaker(reddit.NewAuthenticatedSource(d.Credential, redditHTTP, cfg.RedditOAuthBaseURL, log), log)
	public := reddit.WithBreaker(reddit.NewPublicSource(redditHTTP, cfg.RedditPublicURL, log), log)

	sources := []out.ContentSource{authenticated, public}
	d.Breakers = []http.BreakerReporter{authenticated, public}

	if cfg.ScrapeEnabled {
		scrape, err := reddit.NewScrapeSource(reddit.ScrapeConfig{
			BaseURL:   cfg.RedditScrapeURL,
			UserAgent: cfg.RedditUserAgent,
			Timeout:   cfg.ProviderTimeout,
			Transport: redditHTTP.Transport,
		}, log)
		if err != nil {
			return err
		}
		guarded := reddit.WithBreaker(scrape, log)
		sources = append(sources, guarded)
		d.Breakers = append(d.Breakers, guarded)
	}
	if cfg.StubEnabled {
		sources = append(sources, reddit.NewStubSource())
	}

	d.Chain = retrieval.NewChain(logger.Default().Zerolog(), d.SourceStats, sources...)
	logger.Info("Content source chain: %v", d.Chain.SourceNames())
	return nil
}

func (d *Dependencies) buildEnrichment(cfg *config.Config) {
	d.Scorer = scorer.New(scorer.Config{
		SentimentURL: cfg.SentimentAPIURL,
		EmotionURL:   cfg.EmotionAPIURL,
		APIKey:       cfg.ScorerAPIKey,
		APIHost:      cfg.ScorerAPIHost,
		HTTPClient:   httputil.NewOptimizedClient(httputil.ScorerClientConfig(cfg.ProviderTimeout)),
	}, logger.Default().Zerolog())
	if d.Scorer != nil {
		d.Breakers = append(d.Breakers, d.Scorer)
	}

	if cfg.LLMConfigured() {
		d.llmClient = llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:      cfg.OpenAIAPIKey,
			BaseURL:     cfg.LLMBaseURL,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
			HTTPClient:  httputil.NewOptimizedClient(httputil.OpenAIClientConfig(cfg.LLMTimeout + 5*time.Second)),
		})
		d.LLM = d.llmClient
	} else {
		logger.Warn("OPENAI_API_KEY not set, LLM stages disabled")
	}

	d.Enricher = enrich.NewEnricher(
		logger.Default().Zerolog(),
		d.Scorer.SentimentScorer(),
		d.Scorer.EmotionScorer(),
		d.LLM,
	)
}

// ReadinessDeps exposes what /ready reports on.
func (d *Dependencies) ReadinessDeps() http.ReadinessDeps {
	rd := http.ReadinessDeps{
		Credential:    func() string { return reddit.CredentialState(d.Credential) },
		Sources:       d.Chain.SourceNames(),
		Breakers:      d.Breakers,
		SourceStats:   d.SourceStats,
		LLMConfigured: d.LLM != nil,
	}
	if d.Cache != nil {
		rd.Cache = d.Cache
		rd.CacheStats = func() any { return d.Cache.Stats() }
	}
	if d.llmClient != nil {
		rd.LLMUsage = d.llmClient.Usage
	}
	return rd
}
