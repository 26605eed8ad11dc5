// Package ratelimit counts requests per caller in fixed windows.
package ratelimit

import (
	"context"
	"time"
)

// Store answers whether one more request under key fits into limit per window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
