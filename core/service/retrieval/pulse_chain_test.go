package retrieval

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse_server/core/domain"
	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
)

type fakeSource struct {
	name        string
	posts       []*domain.Post
	post        *domain.Post
	err         error
	searchCalls int
	fetchCalls  int
	lastMode    domain.RecencyMode
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) SearchByKeyword(_ context.Context, _ string, _ int, mode domain.RecencyMode) ([]*domain.Post, error) {
	f.searchCalls++
	f.lastMode = mode
	return f.posts, f.err
}

func (f *fakeSource) FetchByID(_ context.Context, _ string) (*domain.Post, error) {
	f.fetchCalls++
	return f.post, f.err
}

var errNetwork = errors.New("connection refused")

func posts(titles ...string) []*domain.Post {
	out := make([]*domain.Post, len(titles))
	for i, t := range titles {
		out[i] = &domain.Post{Title: t}
	}
	return out
}

func TestChain_Search(t *testing.T) {
	tests := []struct {
		name       string
		sources    func() []*fakeSource
		wantSource string
		wantErr    error
		wantCalls  []int
	}{
		{
			name: "first source wins",
			sources: func() []*fakeSource {
				return []*fakeSource{
					{name: "authenticated", posts: posts("a")},
					{name: "public", posts: posts("b")},
				}
			},
			wantSource: "authenticated",
			wantCalls:  []int{1, 0},
		},
		{
			name: "unavailable credential falls through",
			sources: func() []*fakeSource {
				return []*fakeSource{
					{name: "authenticated", err: domain.ErrSourceUnavailable},
					{name: "public", posts: posts("b")},
				}
			},
			wantSource: "public",
			wantCalls:  []int{1, 1},
		},
		{
			name: "errors and empties fall through to stub",
			sources: func() []*fakeSource {
				return []*fakeSource{
					{name: "authenticated", err: errNetwork},
					{name: "public", posts: []*domain.Post{}},
					{name: "scrape", err: errNetwork},
					{name: "stub", posts: posts("canned")},
				}
			},
			wantSource: "stub",
			wantCalls:  []int{1, 1, 1, 1},
		},
		{
			name: "all errored",
			sources: func() []*fakeSource {
				return []*fakeSource{
					{name: "authenticated", err: domain.ErrSourceUnavailable},
					{name: "public", err: errNetwork},
				}
			},
			wantErr:   domain.ErrAllSourcesFailed,
			wantCalls: []int{1, 1},
		},
		{
			name: "answered but empty",
			sources: func() []*fakeSource {
				return []*fakeSource{
					{name: "authenticated", err: errNetwork},
					{name: "public", posts: nil},
				}
			},
			wantErr:   domain.ErrNoResults,
			wantCalls: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakes := tt.sources()
			chain := newTestChain(fakes)

			res, err := chain.Search(context.Background(), "best crm", 10, domain.RecencyTop)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSource, res.Source)
				assert.NotEmpty(t, res.Posts)
			}
			for i, f := range fakes {
				assert.Equal(t, tt.wantCalls[i], f.searchCalls, f.name)
			}
		})
	}
}

func TestChain_SearchPassesMode(t *testing.T) {
	src := &fakeSource{name: "public", posts: posts("x")}
	chain := newTestChain([]*fakeSource{src})

	_, err := chain.Search(context.Background(), "crm", 5, domain.RecencyLatest)
	require.NoError(t, err)
	assert.Equal(t, domain.RecencyLatest, src.lastMode)
}

func TestChain_Fetch(t *testing.T) {
	found := &domain.Post{ID: "abc123", Title: "t"}

	t.Run("falls through to public", func(t *testing.T) {
		fakes := []*fakeSource{
			{name: "authenticated", err: errNetwork},
			{name: "public", post: found},
			{name: "stub", err: domain.ErrFetchUnsupported},
		}
		post, source, err := newTestChain(fakes).Fetch(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, "public", source)
		assert.Same(t, found, post)
		assert.Equal(t, 0, fakes[2].fetchCalls)
	})

	t.Run("absent is not found", func(t *testing.T) {
		fakes := []*fakeSource{
			{name: "authenticated", err: domain.ErrSourceUnavailable},
			{name: "public"},
			{name: "stub", err: domain.ErrFetchUnsupported},
		}
		_, _, err := newTestChain(fakes).Fetch(context.Background(), "abc123")
		assert.ErrorIs(t, err, domain.ErrNoResults)
	})

	t.Run("all failed", func(t *testing.T) {
		fakes := []*fakeSource{
			{name: "authenticated", err: errNetwork},
			{name: "public", err: errNetwork},
			{name: "stub", err: domain.ErrFetchUnsupported},
		}
		_, _, err := newTestChain(fakes).Fetch(context.Background(), "abc123")
		assert.ErrorIs(t, err, domain.ErrAllSourcesFailed)
		assert.ErrorIs(t, err, errNetwork)
	})
}

func TestChain_RecordsStats(t *testing.T) {
	stats := metrics.NewSourceRegistry(10)
	fakes := []*fakeSource{
		{name: "authenticated", err: domain.ErrSourceUnavailable},
		{name: "public", err: errNetwork},
		{name: "stub", posts: posts("x")},
	}
	chain := NewChain(zerolog.Nop(), stats, fakes[0], fakes[1], fakes[2])

	_, err := chain.Search(context.Background(), "crm", 10, domain.RecencyTop)
	require.NoError(t, err)

	auth, _ := stats.Stats("authenticated")
	pub, _ := stats.Stats("public")
	stub, _ := stats.Stats("stub")
	assert.Equal(t, int64(1), auth.Outcomes[metrics.OutcomeSkipped])
	assert.Equal(t, int64(1), pub.Outcomes[metrics.OutcomeError])
	assert.Equal(t, int64(1), stub.Outcomes[metrics.OutcomeOK])
	assert.Equal(t, []string{"authenticated", "public", "stub"}, chain.SourceNames())
}

func newTestChain(fakes []*fakeSource) *Chain {
	chain := &Chain{log: zerolog.Nop()}
	for _, f := range fakes {
		chain.sources = append(chain.sources, f)
	}
	return chain
}

type sampleSource struct{ *fakeSource }

func (sampleSource) Synthetic() bool { return true }

func TestChain_SearchMarksSyntheticResults(t *testing.T) {
	live := &fakeSource{name: "public", posts: posts("live")}
	res, err := newTestChain([]*fakeSource{live}).Search(context.Background(), "crm", 10, domain.RecencyTop)
	require.NoError(t, err)
	assert.False(t, res.Synthetic)

	down := &fakeSource{name: "public", err: errNetwork}
	chain := NewChain(zerolog.Nop(), nil, down, sampleSource{&fakeSource{name: "stub", posts: posts("canned")}})
	res, err = chain.Search(context.Background(), "crm", 10, domain.RecencyTop)
	require.NoError(t, err)
	assert.Equal(t, "stub", res.Source)
	assert.True(t, res.Synthetic)
}

func TestChain_LogsCarryRequestID(t *testing.T) {
	var buf bytes.Buffer
	chain := NewChain(zerolog.New(&buf), nil,
		&fakeSource{name: "public", err: errNetwork},
		&fakeSource{name: "stub", posts: posts("canned")},
	)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	_, err := chain.Search(ctx, "crm", 10, domain.RecencyTop)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-42"`)
	assert.Contains(t, out, `"source":"public"`)
	assert.Contains(t, out, "search served")
}
