package out

import (
	"context"

	"pulse_server/core/domain"
)

// SentimentScorer is the external sentiment service.
type SentimentScorer interface {
	ScoreSentiment(ctx context.Context, text string) (domain.SentimentResult, error)
}

// EmotionScorer is the external emotion service.
type EmotionScorer interface {
	ScoreEmotion(ctx context.Context, text string) (domain.EmotionResult, error)
}

// LLMClient is the only capability the enrichment stages need from a
// text-generation provider.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
