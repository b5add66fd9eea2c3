// Package relevance filters and orders keyword search candidates by how many
// keyword tokens appear in their titles.
package relevance

import (
	"sort"
	"strings"
	"unicode/utf8"

	"pulse_server/core/domain"
)

// minTokenLen is the exclusive lower bound on keyword token length.
const minTokenLen = 2

// Policy is one inclusion rule: a post passes when its relevance ratio
// reaches Threshold or its title contains any HighValueTerms entry.
type Policy struct {
	Name           string
	Threshold      float64
	HighValueTerms []string
}

// The primary and broad authenticated queries use separately tuned rules.
// They are kept apart on purpose pending product confirmation.
var (
	PrimaryPolicy = Policy{
		Name:           "primary",
		Threshold:      0.4,
		HighValueTerms: []string{"best", "top", "recommended", "vs", "comparison", "review"},
	}

	BroadPolicy = Policy{
		Name:           "broad",
		Threshold:      0.5,
		HighValueTerms: []string{"best", "top", "recommended", "review", "alternative"},
	}
)

// Tokenize lower-cases the keyword and keeps words longer than two characters.
func Tokenize(keyword string) []string {
	fields := strings.Fields(strings.ToLower(keyword))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Ratio is the fraction of tokens present in title. Zero tokens yields 0.
func Ratio(title string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	lower := strings.ToLower(title)
	matches := 0
	for _, tok := range tokens {
		if strings.Contains(lower, tok) {
			matches++
		}
	}
	return float64(matches) / float64(len(tokens))
}

// HasHighValueTerm reports whether title mentions any of the policy terms.
func (p Policy) HasHighValueTerm(title string) bool {
	lower := strings.ToLower(title)
	for _, term := range p.HighValueTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Keep applies the inclusion rule to one title and returns its ratio.
func (p Policy) Keep(title string, tokens []string) (float64, bool) {
	ratio := Ratio(title, tokens)
	return ratio, ratio >= p.Threshold || p.HasHighValueTerm(title)
}

// Filter returns the retained posts with RelevanceScore set, ordered by
// descending relevance then descending score. The input slice is not modified.
func (p Policy) Filter(keyword string, posts []*domain.Post) []*domain.Post {
	tokens := Tokenize(keyword)
	kept := make([]*domain.Post, 0, len(posts))
	for _, post := range posts {
		if post == nil {
			continue
		}
		ratio, ok := p.Keep(post.Title, tokens)
		if !ok {
			continue
		}
		r := ratio
		post.RelevanceScore = &r
		kept = append(kept, post)
	}
	Rank(kept)
	return kept
}

// Rank sorts in place by (relevance_score, score) descending. Posts without a
// relevance score sort as zero.
func Rank(posts []*domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		ri, rj := relevanceOf(posts[i]), relevanceOf(posts[j])
		if ri != rj {
			return ri > rj
		}
		return posts[i].Score > posts[j].Score
	})
}

func relevanceOf(p *domain.Post) float64 {
	if p.RelevanceScore == nil {
		return 0
	}
	return *p.RelevanceScore
}
