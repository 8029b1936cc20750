package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ultraauth/auth-api/internal/auth"
)

// AuthMiddleware groups the per-route guards of the /auth endpoints.
type AuthMiddleware struct {
	Bearer      fiber.Handler
	LoginLimit  fiber.Handler
	Idempotency fiber.Handler
}

// RegisterAuthRoutes wires authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, mw AuthMiddleware) {
	group := r.Group("/auth")
	group.Post("/register", withGuards(h.Register, mw.Idempotency)...)
	group.Post("/login", withGuards(h.Login, mw.LoginLimit)...)
	group.Post("/refresh", h.Refresh)
	group.Get("/me", withGuards(h.Me, mw.Bearer)...)
	group.Post("/logout", withGuards(h.Logout, mw.Bearer)...)
}

func withGuards(h fiber.Handler, guards ...fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(guards)+1)
	for _, g := range guards {
		if g != nil {
			chain = append(chain, g)
		}
	}
	return append(chain, h)
}
