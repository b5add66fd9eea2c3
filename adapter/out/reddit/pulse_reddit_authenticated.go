package reddit

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"
	"pulse_server/core/service/normalize"
	"pulse_server/core/service/relevance"
)

const (
	DefaultOAuthBaseURL = "https://oauth.reddit.com"

	NameAuthenticated = "authenticated"
)

// queryPlan is one search request plus the relevance rule applied to it.
type queryPlan struct {
	params searchParams
	policy relevance.Policy
}

// AuthenticatedSource searches the OAuth API with precision-tuned queries
// and relevance filtering.
type AuthenticatedSource struct {
	api  *apiClient
	cred Credential
	log  zerolog.Logger
}

var _ out.ContentSource = (*AuthenticatedSource)(nil)

// NewAuthenticatedSource binds the startup credential. With an Unavailable
// credential every call reports domain.ErrSourceUnavailable.
func NewAuthenticatedSource(cred Credential, httpClient *http.Client, baseURL string, log zerolog.Logger) *AuthenticatedSource {
	if baseURL == "" {
		baseURL = DefaultOAuthBaseURL
	}
	var bearer string
	if g, ok := cred.(Granted); ok && g.Token != nil {
		bearer = g.Token.AccessToken
	}
	return &AuthenticatedSource{
		api:  newAPIClient(httpClient, baseURL, bearer, ""),
		cred: cred,
		log:  log.With().Str("source", NameAuthenticated).Logger(),
	}
}

func (s *AuthenticatedSource) Name() string { return NameAuthenticated }

func (s *AuthenticatedSource) available() bool {
	_, ok := s.cred.(Granted)
	return ok
}

// plans returns the primary query and, for multi-word keywords, the broad
// fallback query.
func plans(keyword string, limit int, mode domain.RecencyMode) []queryPlan {
	multiWord := len(strings.Fields(keyword)) > 1

	primary := queryPlan{
		params: searchParams{Query: keyword, Sort: "relevance", Time: "year", Limit: limit},
		policy: relevance.PrimaryPolicy,
	}
	if multiWord {
		primary.params.Query = `"` + keyword + `"`
	}
	if mode == domain.RecencyLatest {
		primary.params.Sort, primary.params.Time = "new", "week"
	}
	if !multiWord {
		return []queryPlan{primary}
	}

	broad := queryPlan{
		params: searchParams{Query: keyword, Sort: "top", Time: "all", Limit: limit},
		policy: relevance.BroadPolicy,
	}
	if mode == domain.RecencyLatest {
		broad.params.Sort, broad.params.Time = "new", "month"
	}
	return []queryPlan{primary, broad}
}

func (s *AuthenticatedSource) SearchByKeyword(ctx context.Context, keyword string, limit int, mode domain.RecencyMode) ([]*domain.Post, error) {
	if !s.available() {
		return nil, domain.ErrSourceUnavailable
	}

	for _, plan := range plans(keyword, limit, mode) {
		raws, err := s.api.search(ctx, plan.params)
		if err != nil {
			return nil, err
		}

		kept := s.filter(keyword, plan.policy, raws, limit)
		s.log.Debug().
			Str("query", plan.params.Query).
			Str("policy", plan.policy.Name).
			Int("candidates", len(raws)).
			Int("kept", len(kept)).
			Msg("authenticated query")
		if len(kept) > 0 {
			return s.withComments(ctx, kept), nil
		}
	}
	return []*domain.Post{}, nil
}

type rankedRaw struct {
	raw   domain.ListingPost
	score float64
}

// filter ranks raw posts by the policy and keeps at most limit.
func (s *AuthenticatedSource) filter(keyword string, policy relevance.Policy, raws []domain.ListingPost, limit int) []rankedRaw {
	byID := make(map[string]domain.ListingPost, len(raws))
	posts := make([]*domain.Post, 0, len(raws))
	for _, raw := range raws {
		byID[raw.ID] = raw
		if p := normalize.Normalize(raw, domain.SearchCommentCap); p != nil {
			posts = append(posts, p)
		}
	}

	ranked := policy.Filter(keyword, posts)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	kept := make([]rankedRaw, 0, len(ranked))
	for _, p := range ranked {
		kept = append(kept, rankedRaw{raw: byID[p.ID], score: *p.RelevanceScore})
	}
	return kept
}

// withComments attaches top comments to the kept posts within the comment
// budget. Posts past the budget or a failed fetch keep no comments.
func (s *AuthenticatedSource) withComments(ctx context.Context, kept []rankedRaw) []*domain.Post {
	budget := newCommentBudget()
	posts := make([]*domain.Post, 0, len(kept))
	for _, k := range kept {
		raw := k.raw
		if budget.take(ctx) {
			comments, err := s.api.comments(ctx, raw.ID, domain.ThreadCommentCap)
			if err != nil {
				budget.fail()
				s.log.Debug().Err(err).Str("thread_id", raw.ID).Msg("comments unavailable, skipping the rest")
			}
			raw.Comments = comments
		}

		p := normalize.Normalize(raw, domain.SearchCommentCap)
		score := k.score
		p.RelevanceScore = &score
		posts = append(posts, p)
	}
	return posts
}

func (s *AuthenticatedSource) FetchByID(ctx context.Context, id string) (*domain.Post, error) {
	if !s.available() {
		return nil, domain.ErrSourceUnavailable
	}
	raw, err := s.api.thread(ctx, id, domain.ThreadCommentCap*2)
	if err != nil || raw == nil {
		return nil, err
	}
	return normalize.Normalize(*raw, domain.ThreadCommentCap), nil
}
