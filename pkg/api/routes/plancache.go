package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeyplanner/pkg/planner"
)

// PlanCache keeps planned journeys in Redis keyed by their request. A nil
// PlanCache caches nothing.
type PlanCache struct {
	Cache *cache.Cache[string]
}

func NewPlanCache(client *redis.Client, expiration time.Duration) *PlanCache {
	if client == nil {
		return nil
	}

	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return &PlanCache{
		Cache: cache.New[string](redisStore),
	}
}

func (p *PlanCache) Get(ctx context.Context, request *planner.Request) (*planner.Result, bool) {
	if p == nil {
		return nil, false
	}

	key, err := planCacheKey(request)
	if err != nil {
		return nil, false
	}

	value, err := p.Cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var result planner.Result
	if err := json.Unmarshal([]byte(value), &result); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Dropping unreadable cached plan")
		return nil, false
	}
	return &result, true
}

func (p *PlanCache) Set(ctx context.Context, request *planner.Request, result *planner.Result) {
	if p == nil {
		return
	}

	key, err := planCacheKey(request)
	if err != nil {
		return
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return
	}

	if err := p.Cache.Set(ctx, key, string(resultJSON)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to cache plan")
	}
}

func planCacheKey(request *planner.Request) (string, error) {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("journeyplanner:plan:%s", requestJSON), nil
}
