package reddit

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/core/service/normalize"
)

const (
	DefaultPublicBaseURL = "https://www.reddit.com"

	NamePublic = "public"
)

// PublicSource uses the unauthenticated .json endpoints. Results are
// returned in Reddit's order without relevance filtering.
type PublicSource struct {
	api *apiClient
	log zerolog.Logger
}

var _ out.ContentSource = (*PublicSource)(nil)

func NewPublicSource(httpClient *http.Client, baseURL string, log zerolog.Logger) *PublicSource {
	if baseURL == "" {
		baseURL = DefaultPublicBaseURL
	}
	return &PublicSource{
		api: newAPIClient(httpClient, baseURL, "", ".json"),
		log: log.With().Str("source", NamePublic).Logger(),
	}
}

func (s *PublicSource) Name() string { return NamePublic }

func (s *PublicSource) SearchByKeyword(ctx context.Context, keyword string, limit int, mode domain.RecencyMode) ([]*domain.Post, error) {
	params := searchParams{Query: keyword, Sort: "relevance", Time: "all", Limit: limit}
	if mode == domain.RecencyLatest {
		params.Sort, params.Time = "new", "week"
	}

	raws, err := s.api.search(ctx, params)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(raws) > limit {
		raws = raws[:limit]
	}

	budget := newCommentBudget()
	posts := make([]*domain.Post, 0, len(raws))
	for _, raw := range raws {
		if budget.take(ctx) {
			comments, err := s.api.comments(ctx, raw.ID, domain.ThreadCommentCap)
			if err != nil {
				budget.fail()
				s.log.Debug().Err(err).Str("thread_id", raw.ID).Msg("comments unavailable, skipping the rest")
			}
			raw.Comments = comments
		}
		posts = append(posts, normalize.Normalize(raw, domain.SearchCommentCap))
	}
	return posts, nil
}

func (s *PublicSource) FetchByID(ctx context.Context, id string) (*domain.Post, error) {
	raw, err := s.api.thread(ctx, id, domain.ThreadCommentCap*2)
	if err != nil || raw == nil {
		return nil, err
	}
	return normalize.Normalize(*raw, domain.ThreadCommentCap), nil
}
