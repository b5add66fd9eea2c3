package domain

// SentimentType is the polarity reported by the sentiment scorer.
type SentimentType string

const (
	SentimentPositive SentimentType = "positive"
	SentimentNegative SentimentType = "negative"
	SentimentNeutral  SentimentType = "neutral"
)

// ParseSentimentType maps any unrecognised label to neutral.
func ParseSentimentType(s string) SentimentType {
	switch SentimentType(s) {
	case SentimentPositive, SentimentNegative:
		return SentimentType(s)
	default:
		return SentimentNeutral
	}
}

type SentimentResult struct {
	Type  SentimentType `json:"type"`
	Score float64       `json:"score"`
}

// DefaultSentiment is returned whenever the sentiment stage fails.
func DefaultSentiment() SentimentResult {
	return SentimentResult{Type: SentimentNeutral, Score: 0.0}
}

type EmotionScore struct {
	Emotion string  `json:"emotion"`
	Score   float64 `json:"score"`
}

// EmotionResult lists detected emotions, highest priority first.
type EmotionResult struct {
	EmotionsDetected []EmotionScore `json:"emotions_detected"`
}

// DefaultEmotion is returned whenever the emotion stage fails.
func DefaultEmotion() EmotionResult {
	return EmotionResult{EmotionsDetected: []EmotionScore{{Emotion: "neutral", Score: 0.5}}}
}

// Primary returns the first detected emotion.
func (r EmotionResult) Primary() EmotionScore {
	if len(r.EmotionsDetected) == 0 {
		return DefaultEmotion().EmotionsDetected[0]
	}
	return r.EmotionsDetected[0]
}
