package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse_server/core/agent/llm"
	"pulse_server/core/domain"
	"pulse_server/core/port/in"
	"pulse_server/infra/middleware"
	"pulse_server/pkg/apperr"
	"pulse_server/pkg/metrics"
	"pulse_server/pkg/resilience"
)

type fakeInsight struct {
	searchReq *in.SearchRequest
	search    *in.SearchResult
	fetchURL  string
	post      *domain.Post
	reply     *in.ReplyResult
	analyze   *in.AnalyzeResult
	err       error
}

func (f *fakeInsight) SearchKeyword(_ context.Context, req *in.SearchRequest) (*in.SearchResult, error) {
	f.searchReq = req
	return f.search, f.err
}

func (f *fakeInsight) FetchByURL(_ context.Context, rawURL string) (*domain.Post, error) {
	f.fetchURL = rawURL
	return f.post, f.err
}

func (f *fakeInsight) GenerateReply(context.Context, *in.ReplyRequest) (*in.ReplyResult, error) {
	return f.reply, f.err
}

func (f *fakeInsight) AnalyzePosts(context.Context, *in.AnalyzeRequest) (*in.AnalyzeResult, error) {
	return f.analyze, f.err
}

func newInsightApp(svc in.InsightService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	app.Use(middleware.RequestID())
	NewInsightHandler(svc).Register(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestSearchKeyword(t *testing.T) {
	svc := &fakeInsight{search: &in.SearchResult{
		Posts:       []*domain.Post{{ID: "a1", Title: "Best CRM", Author: "jane", Subreddit: "realestate", URL: "https://reddit.com/r/realestate/comments/a1/", Comments: []domain.Comment{}}},
		Count:       1,
		RefreshMode: "latest",
		Source:      "public",
	}}
	app := newInsightApp(svc)

	status, body := postJSON(t, app, "/search-keyword", `{"keyword":"crm","force_refresh":true}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "latest", body["refresh_mode"])
	assert.Equal(t, "public", body["source"])
	assert.NotContains(t, body, "chatgpt_analysis")
	require.Len(t, body["posts"], 1)

	require.NotNil(t, svc.searchReq)
	assert.Equal(t, "crm", svc.searchReq.Keyword)
	assert.True(t, svc.searchReq.ForceRefresh)
}

func TestSearchKeyword_WithAnalysis(t *testing.T) {
	svc := &fakeInsight{search: &in.SearchResult{
		Posts:       []*domain.Post{},
		RefreshMode: "relevant",
		Source:      "stub",
		Analysis:    "Redditors like it.",
	}}
	status, body := postJSON(t, newInsightApp(svc), "/search-keyword", `{"keyword":"crm"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Redditors like it.", body["chatgpt_analysis"])
}

func TestSearchKeyword_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"missing", apperr.MissingField("keyword"), fiber.StatusBadRequest, apperr.CodeMissingField},
		{"url", apperr.URLNotKeyword(), fiber.StatusBadRequest, apperr.CodeURLNotKeyword},
		{"none", apperr.NotFound("posts for this keyword"), fiber.StatusNotFound, apperr.CodeNotFound},
		{"down", apperr.Unavailable(fiber.StatusServiceUnavailable, errors.New("dial tcp")), fiber.StatusServiceUnavailable, apperr.CodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := postJSON(t, newInsightApp(&fakeInsight{err: tt.err}), "/search-keyword", `{"keyword":"x"}`)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestSearchKeyword_InvalidBody(t *testing.T) {
	status, body := postJSON(t, newInsightApp(&fakeInsight{}), "/search-keyword", `{"keyword":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, apperr.CodeBadRequest, body["code"])
}

func TestFetchByURL(t *testing.T) {
	svc := &fakeInsight{post: &domain.Post{ID: "abc", Title: "T", Author: "a", Subreddit: "s", URL: "https://reddit.com/comments/abc/", Comments: []domain.Comment{}}}
	status, body := postJSON(t, newInsightApp(svc), "/fetch-by-url", `{"url":"https://www.reddit.com/r/s/comments/abc/t/"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "https://www.reddit.com/r/s/comments/abc/t/", svc.fetchURL)

	post, ok := body["post"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc", post["id"])
}

func TestGenerateReply(t *testing.T) {
	svc := &fakeInsight{reply: &in.ReplyResult{
		Reply:     "Glad it helped! Acme has a guide for that.",
		Sentiment: domain.SentimentResult{Type: domain.SentimentPositive, Score: 0.7},
		Emotion:   domain.DefaultEmotion(),
		BrandUsed: true,
	}}
	status, body := postJSON(t, newInsightApp(svc), "/generate-reply", `{"comment_text":"thanks","brand_name":"Acme"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["brand_used"])
	assert.Contains(t, body["reply"], "Acme")

	sentiment, ok := body["sentiment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "positive", sentiment["type"])
}

func TestGenerateReply_ConfigError(t *testing.T) {
	svc := &fakeInsight{err: apperr.ConfigError("OpenAI API key not configured")}
	status, body := postJSON(t, newInsightApp(svc), "/generate-reply", `{"comment_text":"thanks"}`)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "OpenAI API key not configured", body["error"])
}

func TestAnalyzeChatGPT(t *testing.T) {
	svc := &fakeInsight{analyze: &in.AnalyzeResult{
		Analysis:      "People recommend FUB.",
		Query:         "crm",
		SourcesUsed:   []string{"r/realestate"},
		PostsAnalyzed: 2,
	}}
	status, body := postJSON(t, newInsightApp(svc), "/analyze-chatgpt", `{"search_query":"crm","reddit_posts":[{"title":"a"},{"title":"b"}]}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "People recommend FUB.", body["analysis"])
	assert.Equal(t, float64(2), body["reddit_posts_analyzed"])
	assert.Equal(t, []any{"r/realestate"}, body["sources_used"])
}

// =============================================================================
// Health
// =============================================================================

type fakeCache struct{ pingErr error }

func (f fakeCache) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (f fakeCache) SetJSON(context.Context, string, any, time.Duration) error {
	return nil
}
func (f fakeCache) Ping(context.Context) error { return f.pingErr }

type fakeBreaker struct{ stats resilience.CircuitBreakerStats }

func (f fakeBreaker) BreakerStats() resilience.CircuitBreakerStats { return f.stats }

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	app := fiber.New()
	NewHealthHandler(ReadinessDeps{}).Register(app)

	status, body := getJSON(t, app, "/health")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestReady(t *testing.T) {
	stats := metrics.NewSourceRegistry(10)
	stats.Record("public", metrics.OutcomeOK, 120*time.Millisecond, nil)

	deps := ReadinessDeps{
		Credential:  func() string { return "granted" },
		Sources:     []string{"authenticated", "public", "stub"},
		Breakers:    []BreakerReporter{fakeBreaker{resilience.CircuitBreakerStats{Name: "reddit-public", State: "closed"}}},
		SourceStats: stats,
		Cache:       fakeCache{},
	}

	t.Run("ready", func(t *testing.T) {
		app := fiber.New()
		NewHealthHandler(deps).Register(app)

		status, body := getJSON(t, app, "/ready")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "ready", body["status"])

		checks := body["checks"].(map[string]any)
		assert.Equal(t, "healthy", checks["redis"])
		assert.Equal(t, "granted", checks["reddit_credential"])
		assert.Equal(t, "not configured", checks["llm"])
		assert.Len(t, body["sources"], 1)
		assert.Len(t, body["source_chain"], 3)
	})

	t.Run("llm usage", func(t *testing.T) {
		d := deps
		d.LLMConfigured = true
		d.LLMUsage = func() llm.UsageStats { return llm.UsageStats{RequestCount: 3, TotalTokens: 900} }
		app := fiber.New()
		NewHealthHandler(d).Register(app)

		_, body := getJSON(t, app, "/ready")
		assert.Equal(t, "configured", body["checks"].(map[string]any)["llm"])
		usage, ok := body["llm_usage"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(3), usage["request_count"])
	})

	t.Run("cache pool stats", func(t *testing.T) {
		d := deps
		d.CacheStats = func() any { return map[string]uint32{"hits": 4, "total_conns": 2} }
		app := fiber.New()
		NewHealthHandler(d).Register(app)

		_, body := getJSON(t, app, "/ready")
		pool, ok := body["cache_pool"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(4), pool["hits"])
	})

	t.Run("degraded when a breaker is open", func(t *testing.T) {
		d := deps
		d.Breakers = []BreakerReporter{fakeBreaker{resilience.CircuitBreakerStats{Name: "reddit-public", State: "open"}}}
		app := fiber.New()
		NewHealthHandler(d).Register(app)

		status, body := getJSON(t, app, "/ready")
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "degraded", body["status"])
	})

	t.Run("not ready when redis is down", func(t *testing.T) {
		d := deps
		d.Cache = fakeCache{pingErr: errors.New("connection refused")}
		app := fiber.New()
		NewHealthHandler(d).Register(app)

		status, body := getJSON(t, app, "/ready")
		assert.Equal(t, fiber.StatusServiceUnavailable, status)
		assert.Equal(t, "not ready", body["status"])
	})
}
