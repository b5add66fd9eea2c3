package reddit

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"pulse_server/core/domain"
	"pulse_server/pkg/resilience"
)

type countingSource struct {
	err   error
	calls int
}

func (c *countingSource) Name() string { return "counting" }

func (c *countingSource) SearchByKeyword(context.Context, string, int, domain.RecencyMode) ([]*domain.Post, error) {
	c.calls++
	return nil, c.err
}

func (c *countingSource) FetchByID(context.Context, string) (*domain.Post, error) {
	c.calls++
	return nil, c.err
}

func TestBreakerSource_TripsOnProviderErrors(t *testing.T) {
	inner := &countingSource{err: errors.New("connection reset")}
	src := WithBreaker(inner, zerolog.Nop())
	assert.Equal(t, "counting", src.Name())
	assert.Equal(t, "reddit-counting", src.BreakerStats().Name)

	for i := 0; i < 6; i++ {
		_, err := src.SearchByKeyword(context.Background(), "crm", 10, domain.RecencyTop)
		assert.EqualError(t, err, "connection reset")
	}
	assert.Equal(t, "open", src.BreakerStats().State)

	_, err := src.SearchByKeyword(context.Background(), "crm", 10, domain.RecencyTop)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 6, inner.calls)
}

func TestBreakerSource_IgnoresUnavailable(t *testing.T) {
	inner := &countingSource{err: domain.ErrSourceUnavailable}
	src := WithBreaker(inner, zerolog.Nop())

	for i := 0; i < 10; i++ {
		_, err := src.SearchByKeyword(context.Background(), "crm", 10, domain.RecencyTop)
		assert.ErrorIs(t, err, domain.ErrSourceUnavailable)
	}
	assert.Equal(t, "closed", src.BreakerStats().State)
	assert.Equal(t, 10, inner.calls)
}

func TestBreakerSource_FetchUnsupportedIsHealthy(t *testing.T) {
	src := WithBreaker(NewStubSource(), zerolog.Nop())
	for i := 0; i < 8; i++ {
		_, err := src.FetchByID(context.Background(), "x")
		assert.ErrorIs(t, err, domain.ErrFetchUnsupported)
	}
	stats := src.BreakerStats()
	assert.Equal(t, "closed", stats.State)
	assert.Zero(t, stats.TotalFailures)
}
