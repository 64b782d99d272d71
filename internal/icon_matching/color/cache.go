package color

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iconsmith/iconsmith-backend/internal/icon_matching/domain"
	"github.com/iconsmith/iconsmith-backend/internal/logger"
)

const (
	cacheKeyPrefix  = "color:resolve:" // color:resolve:{lower(input)}
	defaultCacheTTL = 24 * time.Hour
)

type cachedStage struct {
	next   Stage
	client *redis.Client
	ttl    time.Duration
}

// Cached memoizes positive answers of next in Redis. Redis failures fall
// through to next.
func Cached(client *redis.Client, ttl time.Duration) func(Stage) Stage {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return func(next Stage) Stage {
		if client == nil {
			return next
		}
		return &cachedStage{next: next, client: client, ttl: ttl}
	}
}

func (s *cachedStage) Name() string { return s.next.Name() }

func (s *cachedStage) Resolve(ctx context.Context, input string) (domain.ColorResolution, bool) {
	key := cacheKey(input)
	log := logger.FromContext(ctx)

	data, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var res domain.ColorResolution
		if jerr := json.Unmarshal(data, &res); jerr == nil {
			if _, ok := domain.LookupColor(res.ResolvedColor); ok {
				return res, true
			}
		}
		log.Warn("discarding malformed color cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		log.Warn("color cache read failed", "key", key, "error", err)
	}

	res, ok := s.next.Resolve(ctx, input)
	if !ok {
		return res, false
	}
	if payload, err := json.Marshal(res); err == nil {
		if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
			log.Warn("color cache write failed", "key", key, "error", err)
		}
	}
	return res, true
}

func cacheKey(input string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(input))
}
