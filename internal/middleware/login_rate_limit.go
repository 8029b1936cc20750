package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/ultraauth/auth-api/internal/response"
)

const (
	loginRateKeyPrefix = "rl:login:"
	loginRateWindow    = time.Minute
	limiterIdleTTL     = 10 * time.Minute
	limiterSweepSize   = 10_000
)

var errTooManyAttempts = response.NewError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "too many login attempts, try again later")

// LoginRateLimit limits login attempts per email/phone number, or per IP when
// neither is present. Redis keeps a shared one-minute window; without Redis
// each process throttles with its own token buckets.
func LoginRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	local := newLocalLimiter(maxPerMin)
	return func(c *fiber.Ctx) error {
		key := loginRateKey(c)
		if cache == nil {
			if !local.allow(key) {
				return errTooManyAttempts
			}
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 500*time.Millisecond)
		defer cancel()
		redisKey := loginRateKeyPrefix + key
		var incr *redis.IntCmd
		_, err := cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, redisKey)
			// NX keeps the window fixed and repairs a key left without a TTL.
			pipe.ExpireNX(ctx, redisKey, loginRateWindow)
			return nil
		})
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if incr.Val() > int64(maxPerMin) {
			return errTooManyAttempts
		}
		return c.Next()
	}
}

func loginRateKey(c *fiber.Ctx) string {
	var req struct {
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
	}
	_ = c.BodyParser(&req)
	if email := strings.ToLower(strings.TrimSpace(req.Email)); email != "" {
		return email
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		return phone
	}
	return c.IP()
}

type localLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(perMin int) *localLimiter {
	return &localLimiter{perMin: perMin, limiters: make(map[string]*limiterEntry)}
}

func (l *localLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.limiters) >= limiterSweepSize {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(l.limiters, k)
			}
		}
	}

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(l.perMin)/60, l.perMin)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
