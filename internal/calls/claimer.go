package calls

import (
	"context"
	"errors"
	"time"

	"call-recording/pkg/logger"
	"call-recording/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const claimKeyPrefix = "call-recording:ingest-claim:"

// RedisClaimer holds a per-call claim in Redis for the duration of an ingest
// run. The TTL caps how long a crashed worker blocks the call.
type RedisClaimer struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisClaimer(rdb *redis.Client, ttl time.Duration) (*RedisClaimer, error) {
	if rdb == nil {
		return nil, errors.New("calls: redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("calls: claim ttl must be > 0")
	}
	return &RedisClaimer{rdb: rdb, ttl: ttl}, nil
}

func (c *RedisClaimer) Claim(ctx context.Context, callUUID string) (func(), bool, error) {
	key := claimKeyPrefix + callUUID
	token := uuid.NewString()

	ok, err := utils.TryClaim(ctx, c.rdb, key, token, c.ttl)
	if err != nil || !ok {
		return func() {}, ok, err
	}

	release := func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := utils.ReleaseClaim(rctx, c.rdb, key, token); err != nil {
			logger.From(ctx).Warn("completion claim release failed", "call_uuid", callUUID, "err", err)
		}
	}
	return release, true, nil
}
