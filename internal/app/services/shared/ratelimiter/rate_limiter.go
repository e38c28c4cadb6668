package ratelimiter

import (
	"context"
	"fmt"
	"strings"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// ResourceLimiter is a fixed-window counter in redis shared by every API
// instance. The window key expires one second after the window closes.
type ResourceLimiter struct {
	redis contracts.RedisRepository
	log   *zap.Logger
}

func NewResourceLimiter(redis contracts.RedisRepository, log *zap.Logger) *ResourceLimiter {
	return &ResourceLimiter{redis: redis, log: log}
}

type ApplyResourceLimiterInput struct {
	// Group namespaces the counter, for example "payments".
	Group string
	// Subject is who is being limited, usually a principal id.
	Subject  string
	Window   time.Duration
	MaxQuota int
	NowUTC   time.Time
}

type ApplyResourceLimiterOutput struct {
	Allowed    bool
	RetryAfter time.Duration
}

// ApplyResourceLimiter counts one hit for Subject in the current window.
// A non-positive MaxQuota disables the limit.
func (l *ResourceLimiter) ApplyResourceLimiter(ctx context.Context, in *ApplyResourceLimiterInput) (*ApplyResourceLimiterOutput, error) {
	if in.MaxQuota <= 0 {
		return &ApplyResourceLimiterOutput{Allowed: true}, nil
	}

	window := in.Window
	if window < time.Second {
		window = time.Minute
	}
	windowSecs := int64(window / time.Second)

	subject := strings.TrimSpace(in.Subject)
	group := strings.ToLower(strings.TrimSpace(in.Group))
	if subject == "" || group == "" {
		return &ApplyResourceLimiterOutput{Allowed: false, RetryAfter: window}, nil
	}

	now := in.NowUTC
	if now.IsZero() {
		now = time.Now().UTC()
	}

	windowID := now.Unix() / windowSecs
	key := fmt.Sprintf("ratelimit:%s:%s:%d", group, subject, windowID)

	count, err := l.redis.IncrementWithTTL(ctx, key, window+time.Second)
	if err != nil {
		l.log.Error("ResourceLimiter.ApplyResourceLimiter error calling redis.IncrementWithTTL",
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return nil, err
	}

	if count > int64(in.MaxQuota) {
		nextWindow := time.Unix((windowID+1)*windowSecs, 0)
		return &ApplyResourceLimiterOutput{
			Allowed:    false,
			RetryAfter: nextWindow.Sub(now) + time.Second,
		}, nil
	}
	return &ApplyResourceLimiterOutput{Allowed: true}, nil
}
