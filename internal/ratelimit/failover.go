package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const recheckInterval = time.Minute

// FailoverStore uses primary until it errors, then serves from fallback and
// probes primary again once per recheckInterval.
type FailoverStore struct {
	primary   Store
	fallback  Store
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *FailoverStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !s.isDown.Load() {
		allowed, err := s.primary.Allow(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		s.logger.Error().Err(err).Msg("Primary rate limit store failed, falling back to memory")
		s.markDown()
		return s.fallback.Allow(ctx, key, limit, window)
	}

	if s.now().Sub(time.Unix(0, s.lastCheck.Load())) > recheckInterval {
		allowed, err := s.primary.Allow(ctx, key, limit, window)
		if err == nil {
			s.logger.Info().Msg("Primary rate limit store recovered")
			s.isDown.Store(false)
			return allowed, nil
		}
		s.lastCheck.Store(s.now().UnixNano())
	}

	return s.fallback.Allow(ctx, key, limit, window)
}

func (s *FailoverStore) markDown() {
	s.isDown.Store(true)
	s.lastCheck.Store(s.now().UnixNano())
}
