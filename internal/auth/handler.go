package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ultraauth/auth-api/internal/identity"
	"github.com/ultraauth/auth-api/internal/response"
)

// LocalsClaims is the fiber.Ctx locals key under which the bearer middleware
// stores the verified *Claims.
const LocalsClaims = "auth_claims"

const (
	msgRegistered = "User registered successfully"
	msgLoggedIn   = "Login successful"
	msgRefreshed  = "Token refreshed successfully"
	msgProfile    = "Profile retrieved successfully"
	msgLoggedOut  = "Logout successful"
)

// Handler exposes the /auth endpoints.
type Handler struct {
	svc *Service
}

// NewHandler constructs an auth HTTP handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=100"`
	PhoneNumber string `json:"phone_number" validate:"required,min=10,max=20"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=6,bcrypt_len"`
}

type loginRequest struct {
	Email       string `json:"email" validate:"omitempty,email,max=254"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=10,max=20"`
	Password    string `json:"password" validate:"required,bcrypt_len"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type profileResponse struct {
	User identity.PublicUser
}

type logoutResponse struct {
	Revoked bool
	Message string
}

// Register handles user sign-up.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.svc.Register(c.UserContext(), RegisterInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return response.Send(c, http.StatusCreated, msgRegistered, session)
}

// Login validates credentials and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.svc.Login(c.UserContext(), LoginInput{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return response.OK(c, msgLoggedIn, session)
}

// Refresh issues a new token pair from a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	session, err := h.svc.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return response.OK(c, msgRefreshed, session)
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	claims, ok := c.Locals(LocalsClaims).(*Claims)
	if !ok || claims == nil {
		return ErrUnauthorized
	}
	user, err := h.svc.Profile(c.UserContext(), claims.Subject)
	if err != nil {
		return err
	}
	return response.OK(c, msgProfile, profileResponse{User: user})
}

// Logout revokes the presented access token when revocation is configured.
func (h *Handler) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals(LocalsClaims).(*Claims)
	revoked, err := h.svc.Logout(c.UserContext(), claims)
	if err != nil {
		return err
	}
	msg := "Token invalidated successfully"
	if !revoked {
		msg = "Logged out; token remains valid until it expires"
	}
	return response.OK(c, msgLoggedOut, logoutResponse{Revoked: revoked, Message: msg})
}

func bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return ErrMalformedBody
	}
	return Validate(req)
}
