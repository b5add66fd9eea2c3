// Package normalize maps raw provider records into the canonical Post and
// Comment shape. It is the only place provider-specific shapes are handled.
package normalize

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"pulse_server/core/domain"
)

// Normalize converts any raw provider record, keeping at most commentCap
// comments. It returns nil for a nil record.
func Normalize(raw domain.RawPost, commentCap int) *domain.Post {
	switch r := raw.(type) {
	case domain.ListingPost:
		return fromListing(r, commentCap)
	case *domain.ListingPost:
		if r == nil {
			return nil
		}
		return fromListing(*r, commentCap)
	case domain.ScrapedPost:
		return fromScraped(r, commentCap)
	case *domain.ScrapedPost:
		if r == nil {
			return nil
		}
		return fromScraped(*r, commentCap)
	case domain.StubPost:
		return fromStub(r, commentCap)
	case *domain.StubPost:
		if r == nil {
			return nil
		}
		return fromStub(*r, commentCap)
	default:
		return nil
	}
}

// NormalizeAll drops records that fail to normalize.
func NormalizeAll[T domain.RawPost](raws []T, commentCap int) []*domain.Post {
	posts := make([]*domain.Post, 0, len(raws))
	for _, raw := range raws {
		if p := Normalize(raw, commentCap); p != nil {
			posts = append(posts, p)
		}
	}
	return posts
}

func fromListing(r domain.ListingPost, commentCap int) *domain.Post {
	comments := make([]domain.Comment, 0, min(len(r.Comments), commentCap))
	for _, c := range r.Comments {
		if len(comments) >= commentCap {
			break
		}
		score := c.Score
		comments = append(comments, domain.Comment{
			Author: Author(c.Author),
			Body:   TruncateBody(c.Body),
			Score:  &score,
		})
	}
	return &domain.Post{
		ID:        r.ID,
		Title:     title(r.Title),
		Author:    Author(r.Author),
		Score:     r.Score,
		Subreddit: subreddit(r.Subreddit),
		URL:       CanonicalURL(r.Permalink, r.ID, r.Subreddit),
		Comments:  comments,
	}
}

func fromScraped(r domain.ScrapedPost, commentCap int) *domain.Post {
	comments := make([]domain.Comment, 0, min(len(r.Comments), commentCap))
	for _, c := range r.Comments {
		if len(comments) >= commentCap {
			break
		}
		comments = append(comments, domain.Comment{
			Author: Author(c.Author),
			Body:   TruncateBody(c.Body),
		})
	}
	id := strings.TrimPrefix(r.FullName, "t3_")
	sub := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(r.Subreddit), "/"), "r/")
	return &domain.Post{
		ID:        id,
		Title:     title(r.Title),
		Author:    Author(r.Author),
		Score:     ParseScoreText(r.ScoreText),
		Subreddit: subreddit(sub),
		URL:       CanonicalURL(r.Href, id, sub),
		Comments:  comments,
	}
}

func fromStub(r domain.StubPost, commentCap int) *domain.Post {
	comments := make([]domain.Comment, 0, min(len(r.Comments), commentCap))
	for _, c := range r.Comments {
		if len(comments) >= commentCap {
			break
		}
		comments = append(comments, domain.Comment{
			Author: Author(c.Author),
			Body:   TruncateBody(c.Body),
		})
	}
	return &domain.Post{
		Title:     title(r.Title),
		Author:    Author(r.Author),
		Score:     r.Score,
		Subreddit: subreddit(r.Subreddit),
		URL:       CanonicalURL(r.Path, "", r.Subreddit),
		Comments:  comments,
	}
}

// Author substitutes the deleted sentinel for a missing author.
func Author(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.DeletedAuthor
	}
	return name
}

// TruncateBody caps a comment body at domain.MaxCommentBody characters and
// appends the ellipsis marker when it had to cut.
func TruncateBody(body string) string {
	runes := []rune(body)
	if len(runes) <= domain.MaxCommentBody {
		return body
	}
	return string(runes[:domain.MaxCommentBody]) + domain.TruncatedSuffix
}

// CanonicalURL prefixes a relative permalink with the fixed Reddit origin.
// Absolute links are reduced to their path first. When no permalink is known
// the thread id or subreddit is used so the result is never empty.
func CanonicalURL(permalink, id, sub string) string {
	p := strings.TrimSpace(permalink)
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		if u, err := url.Parse(p); err == nil {
			p = u.EscapedPath()
			if u.RawQuery != "" {
				p += "?" + u.RawQuery
			}
		}
	}
	if p == "" || p == "/" {
		switch {
		case id != "":
			p = "/comments/" + id + "/"
		case strings.TrimSpace(sub) != "":
			p = "/r/" + strings.TrimSpace(sub) + "/"
		default:
			p = "/"
		}
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return domain.RedditOrigin + p
}

// ParseScoreText reads the score old.reddit.com renders, e.g. "247 points",
// "1.2k points" or "•" for hidden scores. Non-finite values read as 0 and
// the result is clamped to the int32 range.
func ParseScoreText(text string) int {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return 0
	}
	s := strings.ReplaceAll(fields[0], ",", "")
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult, s = 1000, strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult, s = 1000000, strings.TrimSuffix(s, "m")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v *= mult
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(v)
}

func title(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return domain.UntitledPost
	}
	return t
}

func subreddit(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.UnknownSubreddit
	}
	return s
}
