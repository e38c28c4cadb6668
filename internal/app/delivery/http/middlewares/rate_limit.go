package middlewares

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"telemed-service/internal/app/services/shared/ratelimiter"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

// LimitPrincipal caps how often one principal may hit a route group across
// every API instance. Redis failures let the request through.
func (m *Middlewares) LimitPrincipal(group string, maxQuota int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || m.PrincipalLimiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

			out, err := m.PrincipalLimiter.ApplyResourceLimiter(r.Context(), &ratelimiter.ApplyResourceLimiterInput{
				Group:    group,
				Subject:  principal.ID,
				Window:   window,
				MaxQuota: maxQuota,
			})
			if err != nil {
				m.Log.Warn("Middlewares.LimitPrincipal limiter unavailable",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Error(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if !out.Allowed {
				utils.LogSecurityEvent(m.Log, "principal_rate_limited", requestID, "warning",
					zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
					zap.String("group", group),
				)
				w.Header().Set(constvars.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(out.RetryAfter.Seconds()))))
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrRateLimited(fmt.Errorf("principal %s exceeded %d requests on %s", principal.ID, maxQuota, group)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
