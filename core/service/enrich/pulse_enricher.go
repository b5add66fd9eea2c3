// Package enrich runs the best-effort enrichment stages. Sentiment, emotion
// and reply generation never fail: each has a fixed fallback. Cross-post
// analysis is optional and reported as absent instead.
package enrich

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"pulse_server/core/agent/llm"
	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/pkg/logger"
)

// ErrLLMNotConfigured is returned by stages that cannot run without an LLM.
var ErrLLMNotConfigured = errors.New("llm client not configured")

// Enricher holds the optional scorers and LLM. Any of them may be nil.
type Enricher struct {
	sentiment out.SentimentScorer
	emotion   out.EmotionScorer
	llm       out.LLMClient
	log       zerolog.Logger
}

func NewEnricher(log zerolog.Logger, sentiment out.SentimentScorer, emotion out.EmotionScorer, client out.LLMClient) *Enricher {
	return &Enricher{
		sentiment: sentiment,
		emotion:   emotion,
		llm:       client,
		log:       log.With().Str("component", "enrich").Logger(),
	}
}

// LLMConfigured reports whether reply generation and analysis can run.
func (e *Enricher) LLMConfigured() bool {
	return e.llm != nil
}

// Sentiment scores text, falling back to neutral 0.0.
func (e *Enricher) Sentiment(ctx context.Context, text string) domain.SentimentResult {
	if e.sentiment == nil {
		return domain.DefaultSentiment()
	}
	res, err := e.sentiment.ScoreSentiment(ctx, text)
	if err != nil {
		log := logger.Ctx(ctx, e.log)
		log.Warn().Err(err).Str("stage", "sentiment").Msg("using default")
		return domain.DefaultSentiment()
	}
	res.Type = domain.ParseSentimentType(string(res.Type))
	return res
}

// Emotion scores text, falling back to neutral 0.5.
func (e *Enricher) Emotion(ctx context.Context, text string) domain.EmotionResult {
	if e.emotion == nil {
		return domain.DefaultEmotion()
	}
	res, err := e.emotion.ScoreEmotion(ctx, text)
	if err != nil {
		log := logger.Ctx(ctx, e.log)
		log.Warn().Err(err).Str("stage", "emotion").Msg("using default")
		return domain.DefaultEmotion()
	}
	if len(res.EmotionsDetected) == 0 {
		return domain.DefaultEmotion()
	}
	return res
}

// Reply is the outcome of the reply-generation stage.
type Reply struct {
	Text      string
	Sentiment domain.SentimentResult
	Emotion   domain.EmotionResult
	BrandUsed bool
	Fallback  bool
}

// GenerateReply scores the text and asks the LLM for a reply. It returns
// ErrLLMNotConfigured only when no LLM exists; LLM failures yield the
// fixed fallback reply.
func (e *Enricher) GenerateReply(ctx context.Context, text, brand string, isMainPost bool) (*Reply, error) {
	if e.llm == nil {
		return nil, ErrLLMNotConfigured
	}

	sentiment := e.Sentiment(ctx, text)
	emotion := e.Emotion(ctx, text)

	system, user := llm.BuildReplyPrompt(llm.ReplyInput{
		Text:       text,
		BrandName:  brand,
		IsMainPost: isMainPost,
		Sentiment:  sentiment,
		Emotion:    emotion,
	})

	result := &Reply{Sentiment: sentiment, Emotion: emotion}
	reply, err := e.llm.CompleteWithSystem(ctx, system, user)
	if err != nil || strings.TrimSpace(reply) == "" {
		log := logger.Ctx(ctx, e.log)
		log.Warn().Err(err).Str("stage", "reply").Msg("using fallback reply")
		result.Text = llm.FallbackReply
		result.Fallback = true
		return result, nil
	}

	result.Text = strings.TrimSpace(reply)
	result.BrandUsed = llm.MentionsBrand(result.Text, brand)
	return result, nil
}

// Analyze asks the LLM to answer query from posts. Errors are returned so
// an explicit caller can report them.
func (e *Enricher) Analyze(ctx context.Context, query string, posts []*domain.Post) (string, error) {
	if e.llm == nil {
		return "", ErrLLMNotConfigured
	}
	system, user := llm.BuildAnalysisPrompt(query, posts)
	return e.llm.CompleteWithSystem(ctx, system, user)
}

// Summarize is the search-flow variant of Analyze: any failure, including a
// missing LLM, yields ok=false and the caller omits the field.
func (e *Enricher) Summarize(ctx context.Context, query string, posts []*domain.Post) (string, bool) {
	if e.llm == nil || len(posts) == 0 {
		return "", false
	}
	analysis, err := e.Analyze(ctx, query, posts)
	if err != nil {
		log := logger.Ctx(ctx, e.log)
		log.Warn().Err(err).Str("stage", "summarize").Msg("omitting analysis")
		return "", false
	}
	return analysis, true
}
