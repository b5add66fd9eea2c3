package reddit

import (
	"github.com/goccy/go-json"

	"pulse_server/core/domain"
)

const (
	kindPost    = "t3"
	kindComment = "t1"
)

// listing is Reddit's paginated container.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// thing is one listing child. Data is decoded lazily because its shape
// depends on Kind.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Subreddit string `json:"subreddit"`
	Permalink string `json:"permalink"`
	Score     int    `json:"score"`
	Stickied  bool   `json:"stickied"`
}

type commentData struct {
	Author   string `json:"author"`
	Body     string `json:"body"`
	Score    int    `json:"score"`
	Stickied bool   `json:"stickied"`
}

func (p postData) toRaw() domain.ListingPost {
	return domain.ListingPost{
		ID:        p.ID,
		Title:     p.Title,
		Author:    p.Author,
		Subreddit: p.Subreddit,
		Permalink: p.Permalink,
		Score:     p.Score,
	}
}

// posts decodes every t3 child, skipping malformed entries.
func (l *listing) posts() []domain.ListingPost {
	out := make([]domain.ListingPost, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != kindPost {
			continue
		}
		var p postData
		if err := json.Unmarshal(child.Data, &p); err != nil || p.ID == "" {
			continue
		}
		out = append(out, p.toRaw())
	}
	return out
}

// comments decodes top-level t1 children; "more" placeholders and
// stickied moderator notes are dropped.
func (l *listing) comments() []domain.ListingComment {
	out := make([]domain.ListingComment, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		if child.Kind != kindComment {
			continue
		}
		var c commentData
		if err := json.Unmarshal(child.Data, &c); err != nil || c.Stickied {
			continue
		}
		out = append(out, domain.ListingComment{
			Author: c.Author,
			Body:   c.Body,
			Score:  c.Score,
		})
	}
	return out
}
