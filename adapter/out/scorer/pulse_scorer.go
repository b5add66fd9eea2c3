// Package scorer calls the hosted sentiment and emotion scoring endpoints.
package scorer

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/pkg/resilience"
)

// Config describes the scorer endpoints. An empty URL leaves that stage
// unconfigured.
type Config struct {
	SentimentURL string
	EmotionURL   string
	APIKey       string
	APIHost      string
	HTTPClient   *http.Client
}

// Client scores text through RapidAPI-style endpoints. Both stages share one
// resty client and one circuit breaker.
type Client struct {
	http         *resty.Client
	sentimentURL string
	emotionURL   string
	cb           *resilience.CircuitBreaker
	log          zerolog.Logger
}

// New returns nil when neither endpoint is configured.
func New(cfg Config, log zerolog.Logger) *Client {
	if cfg.SentimentURL == "" && cfg.EmotionURL == "" {
		return nil
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	rc := resty.NewWithClient(hc).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		rc.SetHeader("X-RapidAPI-Key", cfg.APIKey)
	}
	if cfg.APIHost != "" {
		rc.SetHeader("X-RapidAPI-Host", cfg.APIHost)
	}

	log = log.With().Str("component", "scorer").Logger()
	return &Client{
		http:         rc,
		sentimentURL: cfg.SentimentURL,
		emotionURL:   cfg.EmotionURL,
		cb:           resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("scorer"), log),
		log:          log,
	}
}

// SentimentScorer returns the sentiment port, or nil when unconfigured so the
// enricher falls back to its default.
func (c *Client) SentimentScorer() out.SentimentScorer {
	if c == nil || c.sentimentURL == "" {
		return nil
	}
	return c
}

// EmotionScorer returns the emotion port, or nil when unconfigured.
func (c *Client) EmotionScorer() out.EmotionScorer {
	if c == nil || c.emotionURL == "" {
		return nil
	}
	return c
}

// BreakerStats reports the shared breaker snapshot.
func (c *Client) BreakerStats() resilience.CircuitBreakerStats {
	return c.cb.Stats()
}

type sentimentResponse struct {
	Type      string  `json:"type"`
	Score     float64 `json:"score"`
	Sentiment *struct {
		Type  string  `json:"type"`
		Score float64 `json:"score"`
	} `json:"sentiment"`
}

func (c *Client) ScoreSentiment(ctx context.Context, text string) (domain.SentimentResult, error) {
	var resp sentimentResponse
	if err := c.post(ctx, c.sentimentURL, text, &resp); err != nil {
		return domain.SentimentResult{}, err
	}
	label, score := resp.Type, resp.Score
	if label == "" && resp.Sentiment != nil {
		label, score = resp.Sentiment.Type, resp.Sentiment.Score
	}
	if label == "" {
		return domain.SentimentResult{}, fmt.Errorf("sentiment: response has no type")
	}
	return domain.SentimentResult{
		Type:  domain.ParseSentimentType(strings.ToLower(label)),
		Score: score,
	}, nil
}

// emotionResponse accepts either an ordered list or an emotion->score map.
type emotionResponse struct {
	EmotionsDetected []domain.EmotionScore `json:"emotions_detected"`
	EmotionScores    map[string]float64    `json:"emotion_scores"`
}

func (r emotionResponse) result() domain.EmotionResult {
	if len(r.EmotionsDetected) > 0 {
		return domain.EmotionResult{EmotionsDetected: r.EmotionsDetected}
	}
	scores := make([]domain.EmotionScore, 0, len(r.EmotionScores))
	for name, score := range r.EmotionScores {
		scores = append(scores, domain.EmotionScore{Emotion: name, Score: score})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Emotion < scores[j].Emotion
	})
	return domain.EmotionResult{EmotionsDetected: scores}
}

func (c *Client) ScoreEmotion(ctx context.Context, text string) (domain.EmotionResult, error) {
	var resp emotionResponse
	if err := c.post(ctx, c.emotionURL, text, &resp); err != nil {
		return domain.EmotionResult{}, err
	}
	res := resp.result()
	if len(res.EmotionsDetected) == 0 {
		return domain.EmotionResult{}, fmt.Errorf("emotion: response has no emotions")
	}
	return res, nil
}

func (c *Client) post(ctx context.Context, endpoint, text string, dest any) error {
	if endpoint == "" {
		return fmt.Errorf("scorer endpoint not configured")
	}
	return c.cb.Execute(func() error {
		resp, err := c.http.R().
			SetContext(ctx).
			SetFormData(map[string]string{"text": text}).
			Post(endpoint)
		if err != nil {
			return fmt.Errorf("scorer request: %w", err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("scorer returned status %d", resp.StatusCode())
		}
		if err := json.Unmarshal(resp.Body(), dest); err != nil {
			return fmt.Errorf("scorer decode: %w", err)
		}
		return nil
	})
}
