package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/persistorai/degrees/internal/httputil"
)

// maxClients bounds the number of tracked client IPs. The least recently
// seen client is evicted first.
const maxClients = 10_000

// RateLimiter applies a token bucket per client IP.
type RateLimiter struct {
	clients *lru.Cache[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows rps requests per second per client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	clients, _ := lru.New[string, *rate.Limiter](maxClients) //nolint:errcheck // size is a positive constant.

	return &RateLimiter{clients: clients, limit: rate.Limit(rps), burst: burst}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if l, ok := rl.clients.Get(ip); ok {
		return l
	}

	l := rate.NewLimiter(rl.limit, rl.burst)
	if prev, ok, _ := rl.clients.PeekOrAdd(ip, l); ok {
		return prev
	}

	return l
}

// Handler returns the gin middleware. Client IPs come from the socket since
// the server trusts no proxies.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			httputil.RespondError(c, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded")
			return
		}

		c.Next()
	}
}
