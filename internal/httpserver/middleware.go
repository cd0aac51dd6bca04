package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"figurinha-studio/internal/domain"
	identitysvc "figurinha-studio/internal/service/identity"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ctxKey string

const profileCtxKey ctxKey = "profile"

type authorizer interface {
	Authorize(ctx context.Context, bearer, requiredRole string) (identitysvc.Access, *domain.Profile, error)
}

// requireRole guards a route group. The resolved profile is stored on the request context.
func requireRole(auth authorizer, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, profile, err := auth.Authorize(c.Request.Context(), c.GetHeader("Authorization"), role)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to authorize"})
			return
		}
		switch access {
		case identitysvc.AccessUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		case identitysvc.AccessUnauthorized:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), profileCtxKey, profile)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func profileFrom(ctx context.Context) (*domain.Profile, bool) {
	p, ok := ctx.Value(profileCtxKey).(*domain.Profile)
	return p, ok && p != nil
}

// currentProfile aborts with 401 when the guard did not run.
func currentProfile(c *gin.Context) (*domain.Profile, bool) {
	p, ok := profileFrom(c.Request.Context())
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	return p, true
}

// ipLimiter keeps one token bucket per client IP and drops buckets idle for longer than idleTTL.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(perMinute int, now func() time.Time) *ipLimiter {
	burst := perMinute
	if burst > 10 {
		burst = 10
	}
	return &ipLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		idleTTL:  3 * time.Minute,
		now:      now,
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *ipLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
