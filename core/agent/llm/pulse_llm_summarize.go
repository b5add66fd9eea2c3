package llm

import (
	"fmt"
	"strings"

	"pulse_server/core/domain"
)

const (
	analysisCommentsPerPost = 3
	analysisCommentLen      = 200
)

// BuildAnalysisPrompt returns the system and user prompts asking the model to
// answer query with the retrieved Reddit threads as its cited source.
func BuildAnalysisPrompt(query string, posts []*domain.Post) (string, string) {
	systemPrompt := `You are a research assistant that answers questions using Reddit discussions as your source.
Base your answer only on the threads provided. Cite subreddits (for example r/realestate) when you use a point
from them, summarise where the community agrees or disagrees, and say so plainly when the threads do not answer
the question. Use short paragraphs or bullet points.`

	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\nReddit threads:\n", query)
	for i, p := range posts {
		if p == nil {
			continue
		}
		fmt.Fprintf(&b, "\n%d. %q (r/%s, score %d)\n", i+1, p.Title, p.Subreddit, p.Score)
		for j, c := range p.Comments {
			if j >= analysisCommentsPerPost {
				break
			}
			fmt.Fprintf(&b, "   - %s: %s\n", c.Author, truncateBody(c.Body, analysisCommentLen))
		}
	}
	b.WriteString("\nAnswer the question using these threads:")

	return systemPrompt, b.String()
}

// SourcesUsed lists the distinct subreddits in first-seen order as "r/<name>".
func SourcesUsed(posts []*domain.Post) []string {
	seen := make(map[string]bool)
	sources := make([]string, 0, len(posts))
	for _, p := range posts {
		if p == nil || p.Subreddit == "" {
			continue
		}
		key := "r/" + p.Subreddit
		if seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, key)
	}
	return sources
}
