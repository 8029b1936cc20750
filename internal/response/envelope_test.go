package response

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ultraauth/auth-api/internal/logging"
)

func fixClock(t *testing.T) {
	t.Helper()
	clock = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 123e6, time.UTC) }
	t.Cleanup(func() { clock = time.Now })
}

func TestSuccessEnvelope(t *testing.T) {
	fixClock(t)
	env, err := Success("Login successful", struct{ UserID string }{UserID: "u-1"})
	if err != nil {
		t.Fatalf("success: %v", err)
	}
	raw, _ := json.Marshal(env)
	want := `{"status":"SUCCESS","message":"Login successful","timestamp":"2024-05-01T10:30:00.123Z","payload":{"data":{"user_id":"u-1"}}}`
	if string(raw) != want {
		t.Fatalf("got %s\nwant %s", raw, want)
	}
}

func TestFailureEnvelope(t *testing.T) {
	fixClock(t)
	raw, _ := json.Marshal(Failure("invalid credentials", "INVALID_CREDENTIALS", nil))
	want := `{"status":"ERROR","message":"invalid credentials","timestamp":"2024-05-01T10:30:00.123Z","payload":{"error":{"code":"INVALID_CREDENTIALS"}}}`
	if string(raw) != want {
		t.Fatalf("got %s\nwant %s", raw, want)
	}
}

var errDomain = errors.New("domain failure")

func newErrorApp(handler fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(logging.Discard(), func(err error) *Error {
			if errors.Is(err, errDomain) {
				return NewError(http.StatusConflict, "DOMAIN", "domain failure")
			}
			return nil
		}),
	})
	app.Get("/", handler)
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return out
}

func errorCode(env map[string]any) string {
	payload, _ := env["payload"].(map[string]any)
	errBody, _ := payload["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestErrorHandlerClassifies(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"classifier", errDomain, http.StatusConflict, "DOMAIN", "domain failure"},
		{"api error", NewError(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "slow down"), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "slow down"},
		{"fiber error", fiber.NewError(fiber.StatusNotFound, "Cannot GET /"), http.StatusNotFound, "NOT_FOUND", "Cannot GET /"},
		{"unknown", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newErrorApp(func(c *fiber.Ctx) error { return tc.err })
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("status %d, want %d", resp.StatusCode, tc.status)
			}
			env := decodeEnvelope(t, resp)
			if env["status"] != StatusError || env["message"] != tc.message || errorCode(env) != tc.code {
				t.Fatalf("unexpected envelope %v", env)
			}
		})
	}
}
