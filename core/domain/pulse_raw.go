package domain

// RawPost is a provider record before normalization. The set of variants is
// closed: ListingPost, ScrapedPost and StubPost.
type RawPost interface {
	rawPost()
}

// ListingPost comes from the Reddit JSON API (authenticated or public).
type ListingPost struct {
	ID        string
	Title     string
	Author    string
	Subreddit string
	Permalink string
	Score     int
	Comments  []ListingComment
}

type ListingComment struct {
	Author string
	Body   string
	Score  int
}

// ScrapedPost comes from old.reddit.com HTML. Score is the raw text shown
// next to the post ("1.2k points", "•").
type ScrapedPost struct {
	FullName  string
	Title     string
	Author    string
	Subreddit string
	Href      string
	ScoreText string
	Comments  []ScrapedComment
}

type ScrapedComment struct {
	Author string
	Body   string
}

// StubPost is locally synthesized sample content.
type StubPost struct {
	Title     string
	Author    string
	Subreddit string
	Path      string
	Score     int
	Comments  []StubComment
}

type StubComment struct {
	Author string
	Body   string
}

func (ListingPost) rawPost() {}
func (ScrapedPost) rawPost() {}
func (StubPost) rawPost()    {}
