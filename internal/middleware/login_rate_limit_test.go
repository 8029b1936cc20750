package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ultraauth/auth-api/internal/logging"
	"github.com/ultraauth/auth-api/internal/response"
)

func newLoginApp(cache *redis.Client, perMin int) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(logging.Discard())})
	app.Post("/auth/login", LoginRateLimit(cache, perMin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func login(t *testing.T, app *fiber.App, body string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestLoginRateLimitRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()
	app := newLoginApp(cache, 2)

	jane := `{"email":"Jane@example.com","password":"x"}`
	for i := 0; i < 2; i++ {
		if status := login(t, app, jane); status != fiber.StatusOK {
			t.Fatalf("attempt %d: status %d", i+1, status)
		}
	}
	if status := login(t, app, jane); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if status := login(t, app, `{"email":"john@example.com","password":"x"}`); status != fiber.StatusOK {
		t.Fatalf("other identifiers must not be throttled, got %d", status)
	}
	if !mr.Exists(loginRateKeyPrefix + "jane@example.com") {
		t.Fatal("expected counter keyed by normalised email")
	}
}

func TestLoginRateLimitWindowAlwaysExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()
	app := newLoginApp(cache, 1)

	key := loginRateKeyPrefix + "jane@example.com"
	// counter left behind without a TTL
	if err := mr.Set(key, "5"); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	body := `{"email":"jane@example.com","password":"x"}`
	if status := login(t, app, body); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("expected counter ttl of 1m, got %s", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if status := login(t, app, body); status != fiber.StatusOK {
		t.Fatalf("window should reset, got %d", status)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("new window should carry a ttl, got %s", ttl)
	}
}

func TestLoginRateLimitLocal(t *testing.T) {
	app := newLoginApp(nil, 1)
	body := `{"phone_number":"+15550000001","password":"x"}`

	if status := login(t, app, body); status != fiber.StatusOK {
		t.Fatalf("first attempt: status %d", status)
	}
	if status := login(t, app, body); status != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
}

func TestLoginRateLimitDisabled(t *testing.T) {
	app := newLoginApp(nil, 0)
	for i := 0; i < 5; i++ {
		if status := login(t, app, `{"email":"a@b.co"}`); status != fiber.StatusOK {
			t.Fatalf("attempt %d: status %d", i+1, status)
		}
	}
}
