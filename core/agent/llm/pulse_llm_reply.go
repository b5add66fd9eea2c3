package llm

import (
	"fmt"
	"strings"

	"pulse_server/core/domain"
)

// FallbackReply is returned to the caller whenever reply generation fails.
const FallbackReply = "Thanks for sharing your thoughts! This is a great discussion and I appreciate you taking the time to contribute."

const maxReplySource = 2000

// ReplyInput carries everything the reply prompt is built from.
type ReplyInput struct {
	Text       string
	BrandName  string
	IsMainPost bool
	Sentiment  domain.SentimentResult
	Emotion    domain.EmotionResult
}

// BuildReplyPrompt returns the system and user prompts for a Reddit reply.
func BuildReplyPrompt(in ReplyInput) (string, string) {
	target := "comment"
	if in.IsMainPost {
		target = "post"
	}

	var brandLine string
	if brand := strings.TrimSpace(in.BrandName); brand != "" {
		brandLine = fmt.Sprintf(`
If it fits naturally, mention %q as something that helped you. Never force it, never sound like an advertisement,
and leave it out entirely if it would be off-topic.`, brand)
	}

	systemPrompt := fmt.Sprintf(`You are a helpful, genuine Reddit user writing a reply to a %s.
Match the tone of the thread: be conversational, specific and empathetic. Keep it to 2-4 sentences.
Do not use hashtags, emojis or marketing language. Only output the reply text.%s`, target, brandLine)

	primary := in.Emotion.Primary()
	userPrompt := fmt.Sprintf(`Detected sentiment: %s (score %.2f)
Primary emotion: %s (score %.2f)

Original %s:
%s

Write the reply:`,
		in.Sentiment.Type, in.Sentiment.Score,
		primary.Emotion, primary.Score,
		target, truncateBody(in.Text, maxReplySource))

	return systemPrompt, userPrompt
}

// MentionsBrand reports whether reply names brand, ignoring case.
func MentionsBrand(reply, brand string) bool {
	brand = strings.TrimSpace(brand)
	if brand == "" {
		return false
	}
	return strings.Contains(strings.ToLower(reply), strings.ToLower(brand))
}
