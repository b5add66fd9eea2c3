package domain

import "errors"

const (
	// RedditOrigin is prefixed to every relative permalink.
	RedditOrigin = "https://reddit.com"

	DeletedAuthor    = "[deleted]"
	UnknownSubreddit = "unknown"
	UntitledPost     = "Untitled post"

	MaxCommentBody  = 500
	TruncatedSuffix = "..."

	SearchCommentCap = 3
	ThreadCommentCap = 10
)

var (
	ErrNoResults         = errors.New("no results")
	ErrAllSourcesFailed  = errors.New("all content sources failed")
	ErrSourceUnavailable = errors.New("content source unavailable")
	ErrFetchUnsupported  = errors.New("fetch by id not supported")
)

// Post is one discussion thread in its canonical, provider-independent shape.
type Post struct {
	ID             string    `json:"id,omitempty"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Score          int       `json:"score"`
	Subreddit      string    `json:"subreddit"`
	URL            string    `json:"url"`
	Comments       []Comment `json:"comments"`
	RelevanceScore *float64  `json:"relevance_score,omitempty"`
}

// Comment is one reply under a Post.
type Comment struct {
	Author string `json:"author"`
	Body   string `json:"body"`
	Score  *int   `json:"score,omitempty"`
}

// RecencyMode selects between popularity-ordered and newest-first retrieval.
type RecencyMode int

const (
	RecencyTop RecencyMode = iota
	RecencyLatest
)

func (m RecencyMode) String() string {
	switch m {
	case RecencyLatest:
		return "latest"
	default:
		return "top"
	}
}

// RefreshLabel is the value reported to clients as refresh_mode.
func (m RecencyMode) RefreshLabel() string {
	if m == RecencyLatest {
		return "latest"
	}
	return "relevant"
}
