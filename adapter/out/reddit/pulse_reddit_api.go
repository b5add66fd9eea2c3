package reddit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"pulse_server/core/domain"
)

// apiClient talks to either the OAuth or the public JSON API. The two only
// differ in base URL, auth header and the ".json" path suffix.
type apiClient struct {
	client *resty.Client
	suffix string
}

func newAPIClient(httpClient *http.Client, baseURL, bearer, suffix string) *apiClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json")
	if bearer != "" {
		c.SetAuthToken(bearer)
	}
	return &apiClient{client: c, suffix: suffix}
}

// statusError carries a non-2xx response code.
type statusError struct {
	Status int
	Path   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("reddit %s: unexpected status %d", e.Path, e.Status)
}

type searchParams struct {
	Query string
	Sort  string
	Time  string
	Limit int
}

func (a *apiClient) search(ctx context.Context, p searchParams) ([]domain.ListingPost, error) {
	path := "/search" + a.suffix
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        p.Query,
			"sort":     p.Sort,
			"t":        p.Time,
			"limit":    strconv.Itoa(p.Limit),
			"type":     "link",
			"raw_json": "1",
		}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("reddit search: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, &statusError{Status: resp.StatusCode(), Path: path}
	}

	var l listing
	if err := json.Unmarshal(resp.Body(), &l); err != nil {
		return nil, fmt.Errorf("reddit search: decode: %w", err)
	}
	return l.posts(), nil
}

// thread loads a post and its top-level comments. A 404 or an empty post
// listing means the thread does not exist and yields (nil, nil).
func (a *apiClient) thread(ctx context.Context, id string, commentLimit int) (*domain.ListingPost, error) {
	path := "/comments/" + url.PathEscape(id) + a.suffix
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"limit":    strconv.Itoa(commentLimit),
			"depth":    "1",
			"sort":     "top",
			"raw_json": "1",
		}).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("reddit thread: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, &statusError{Status: resp.StatusCode(), Path: path}
	}

	// The comments endpoint answers with [post listing, comment listing].
	var pair []listing
	if err := json.Unmarshal(resp.Body(), &pair); err != nil {
		return nil, fmt.Errorf("reddit thread: decode: %w", err)
	}
	if len(pair) == 0 {
		return nil, nil
	}
	posts := pair[0].posts()
	if len(posts) == 0 {
		return nil, nil
	}

	post := posts[0]
	if len(pair) > 1 {
		post.Comments = pair[1].comments()
	}
	return &post, nil
}

// comments returns only the comment list, used to decorate search hits.
func (a *apiClient) comments(ctx context.Context, id string, limit int) ([]domain.ListingComment, error) {
	post, err := a.thread(ctx, id, limit)
	if err != nil || post == nil {
		return nil, err
	}
	return post.Comments, nil
}

// SearchCommentFetches caps the per-post comment calls one search may make.
const SearchCommentFetches = 5

// commentBudget stops comment decoration once the cap is spent or a call
// fails, so a slow upstream costs at most one extra timeout per search.
type commentBudget struct {
	remaining int
	failed    bool
}

func newCommentBudget() *commentBudget {
	return &commentBudget{remaining: SearchCommentFetches}
}

func (b *commentBudget) take(ctx context.Context) bool {
	if b.failed || b.remaining <= 0 || ctx.Err() != nil {
		return false
	}
	b.remaining--
	return true
}

func (b *commentBudget) fail() {
	b.failed = true
}
