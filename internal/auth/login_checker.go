package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/soodoh/openfit/internal/telemetry/tracing"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
	now         func() time.Time
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		now:         time.Now,
	}
}

func (c *LoginChecker) Identity(ctx context.Context, token string) (_ Identity, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.checker.identity")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := c.redisClient.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return Identity{}, false, nil
	}
	if err != nil {
		return Identity{}, false, err
	}

	id, createdAt, err := parseSessionValue(val)
	if err != nil {
		log.Warnf("login checker: dropping unreadable session: %s", err)
		return Identity{}, false, nil
	}
	if c.now().Sub(createdAt) > c.ttl {
		return Identity{}, false, nil
	}
	return id, true, nil
}
