package out

import (
	"context"
	"time"
)

// ResultCache stores serialized search results.
type ResultCache interface {
	// GetJSON reports false when the key is missing.
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Ping(ctx context.Context) error
}
