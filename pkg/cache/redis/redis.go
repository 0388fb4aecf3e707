// Package redis caches triplet extractions in Redis so re-ingesting a
// document does not pay for the same model calls twice.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sakshi-kadian/aurelius/pkg/common"
	"github.com/sakshi-kadian/aurelius/pkg/graph"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultTTL = 7 * 24 * time.Hour

type cmdable interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// TripletCache is a graph.TripletCache backed by Redis.
type TripletCache struct {
	rdb    cmdable
	closer func() error
	ttl    time.Duration
}

var _ graph.TripletCache = (*TripletCache)(nil)

// NewTripletCacheParams configures a TripletCache. TTL defaults to a week.
type NewTripletCacheParams struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewTripletCache connects to Redis and verifies the connection with a ping.
func NewTripletCache(ctx context.Context, params NewTripletCacheParams) (*TripletCache, error) {
	if params.Addr == "" {
		return nil, errors.New("missing redis address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        params.Addr,
		Password:    params.Password,
		DB:          params.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	c := newTripletCache(rdb, params.TTL)
	c.closer = rdb.Close
	return c, nil
}

func newTripletCache(rdb cmdable, ttl time.Duration) *TripletCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TripletCache{rdb: rdb, ttl: ttl}
}

func (c *TripletCache) Get(ctx context.Context, key string) ([]common.Triplet, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var triplets []common.Triplet
	if err := json.Unmarshal(raw, &triplets); err != nil {
		return nil, false, fmt.Errorf("decode cached triplets: %w", err)
	}
	if triplets == nil {
		triplets = []common.Triplet{}
	}
	return triplets, true, nil
}

func (c *TripletCache) Set(ctx context.Context, key string, triplets []common.Triplet) error {
	if triplets == nil {
		triplets = []common.Triplet{}
	}
	raw, err := json.Marshal(triplets)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *TripletCache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
