package in

import (
	"context"

	"pulse_server/core/domain"
)

type InsightService interface {
	SearchKeyword(ctx context.Context, req *SearchRequest) (*SearchResult, error)
	FetchByURL(ctx context.Context, rawURL string) (*domain.Post, error)
	GenerateReply(ctx context.Context, req *ReplyRequest) (*ReplyResult, error)
	AnalyzePosts(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResult, error)
}

type SearchRequest struct {
	Keyword      string `json:"keyword"`
	ForceRefresh bool   `json:"force_refresh"`
}

type SearchResult struct {
	Posts       []*domain.Post `json:"posts"`
	Count       int            `json:"count"`
	RefreshMode string         `json:"refresh_mode"`
	Source      string         `json:"source"`
	Analysis    string         `json:"chatgpt_analysis,omitempty"`
}

type ReplyRequest struct {
	CommentText string `json:"comment_text"`
	BrandName   string `json:"brand_name"`
	IsMainPost  bool   `json:"is_main_post"`
}

type ReplyResult struct {
	Reply     string                 `json:"reply"`
	Sentiment domain.SentimentResult `json:"sentiment"`
	Emotion   domain.EmotionResult   `json:"emotion"`
	BrandUsed bool                   `json:"brand_used"`
}

type AnalyzeRequest struct {
	SearchQuery string         `json:"search_query"`
	RedditPosts []*domain.Post `json:"reddit_posts"`
}

type AnalyzeResult struct {
	Analysis      string   `json:"analysis"`
	Query         string   `json:"query"`
	SourcesUsed   []string `json:"sources_used"`
	PostsAnalyzed int      `json:"reddit_posts_analyzed"`
}
