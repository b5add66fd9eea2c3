package out

import (
	"context"

	"pulse_server/core/domain"
)

// ContentSource is one retrieval strategy. All strategies return posts in
// the canonical domain shape.
type ContentSource interface {
	Name() string

	// SearchByKeyword returns an empty slice (not an error) when the source
	// answered but found nothing.
	SearchByKeyword(ctx context.Context, keyword string, limit int, mode domain.RecencyMode) ([]*domain.Post, error)

	// FetchByID returns (nil, nil) when the thread does not exist and
	// domain.ErrFetchUnsupported when the source cannot resolve ids.
	FetchByID(ctx context.Context, id string) (*domain.Post, error)
}

// SyntheticSource is implemented by sources that return sample data instead
// of live threads. Their results must not outlive the request.
type SyntheticSource interface {
	Synthetic() bool
}
