package routers

import (
	"net/http"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/delivery/http/middlewares"
	"time"
)

const principalQuotaPerMinute = 20

// moneyGuard stacks the per-IP token bucket and the per-principal redis
// quota in front of routes that move money.
type moneyGuard struct {
	perIP       *middlewares.RateLimiter
	middlewares *middlewares.Middlewares
	quotaPerMin int
}

func newMoneyGuard(internalConfig *config.InternalConfig, m *middlewares.Middlewares) *moneyGuard {
	perMinute := internalConfig.App.MoneyRequestsPerMinute
	if perMinute <= 0 {
		perMinute = principalQuotaPerMinute
	}
	blockMinutes := internalConfig.App.MoneyRequestsBlockMinutes
	if blockMinutes <= 0 {
		blockMinutes = 1
	}
	return &moneyGuard{
		perIP:       middlewares.NewRateLimiter(m.Log, perMinute, time.Minute, time.Duration(blockMinutes)*time.Minute),
		middlewares: m,
		quotaPerMin: perMinute,
	}
}

func (g *moneyGuard) For(group string) func(http.Handler) http.Handler {
	principalLimit := g.middlewares.LimitPrincipal(group, g.quotaPerMin, time.Minute)
	return func(next http.Handler) http.Handler {
		return g.perIP.Limit(principalLimit(next))
	}
}
