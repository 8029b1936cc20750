package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ultraauth/auth-api/internal/identity"
	"github.com/ultraauth/auth-api/internal/notification"
)

// RegisterInput is a pre-validated registration request.
type RegisterInput struct {
	FullName    string
	PhoneNumber string
	Email       string
	Password    string
}

// LoginInput is a pre-validated login request. At least one of Email or
// PhoneNumber must be set.
type LoginInput struct {
	Email       string
	PhoneNumber string
	Password    string
}

// Session is what a successful register, login or refresh hands back.
type Session struct {
	User   identity.PublicUser
	Tokens TokenPair
}

// Service orchestrates registration, login, refresh, profile and logout.
type Service struct {
	users   identity.Repository
	hasher  *Hasher
	tokens  *Issuer
	revoker  Revoker
	notifier notification.Notifier
	logger   *slog.Logger
	now      func() time.Time

	decoyOnce sync.Once
	decoy     string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithNotifier sends account notifications after registration and login.
func WithNotifier(n notification.Notifier) ServiceOption {
	return func(s *Service) { s.notifier = n }
}

// NewService wires the auth service. revoker may be nil, in which case
// logout only acknowledges and refresh tokens are reusable until expiry.
func NewService(users identity.Repository, hasher *Hasher, tokens *Issuer, revoker Revoker, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		revoker: revoker,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user with its profile and returns the public fields plus tokens.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, error) {
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.PhoneNumber)

	_, err := s.users.FindByEmailOrPhone(ctx, email, phone)
	switch {
	case err == nil:
		return Session{}, ErrDuplicateUser
	case !errors.Is(err, identity.ErrNotFound):
		return Session{}, s.unavailable("register lookup", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, ErrPasswordTooLong) {
		return Session{}, passwordTooLong()
	}
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Microsecond)
	user, err := s.users.CreateWithProfile(ctx, identity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PhoneNumber:  phone,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(in.FullName),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, identity.ErrConflict) {
		return Session{}, ErrDuplicateUser
	}
	if err != nil {
		return Session{}, s.unavailable("register create", err)
	}

	pair, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}

	s.logger.Info("auth.register completed", slog.String("user_id", user.ID))
	s.notify(ctx, notification.Message{
		Kind:        notification.KindWelcome,
		UserID:      user.ID,
		Destination: user.Email,
		Body:        "Welcome, " + user.FullName,
	})
	return Session{User: user.Public(), Tokens: pair}, nil
}

// Login authenticates by email (preferred when both are given) or phone number.
func (s *Service) Login(ctx context.Context, in LoginInput) (Session, error) {
	email := normalizeEmail(in.Email)
	phone := strings.TrimSpace(in.PhoneNumber)
	if email == "" && phone == "" {
		return Session{}, ErrBadRequest
	}
	if len(in.Password) > MaxPasswordBytes {
		return Session{}, passwordTooLong()
	}
	if email != "" {
		phone = ""
	}

	user, err := s.users.FindByEmailOrPhone(ctx, email, phone)
	if errors.Is(err, identity.ErrNotFound) {
		// Burn the same bcrypt time as a real comparison.
		s.hasher.Verify(in.Password, s.decoyHash())
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, s.unavailable("login lookup", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		s.logger.Debug("auth.login rejected", slog.String("user_id", user.ID))
		return Session{}, ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}
	s.notify(ctx, notification.Message{
		Kind:        notification.KindSignIn,
		UserID:      user.ID,
		Destination: user.Email,
		Body:        "New sign-in to your account",
	})
	return Session{User: user.Public(), Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a new pair. With a revoker
// configured the presented token is consumed, so each one redeems once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return Session{}, ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if errors.Is(err, identity.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, s.unavailable("refresh lookup", err)
	}

	if s.revoker != nil {
		claimed, err := s.revoker.Consume(ctx, claims.ID, claims.ExpiresAt.Time)
		if err != nil {
			return Session{}, s.unavailable("refresh rotation", err)
		}
		if !claimed {
			return Session{}, ErrInvalidRefreshToken
		}
	}

	pair, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user.Public(), Tokens: pair}, nil
}

// Profile returns the public fields of an authenticated subject.
func (s *Service) Profile(ctx context.Context, userID string) (identity.PublicUser, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, identity.ErrNotFound) {
		return identity.PublicUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return identity.PublicUser{}, s.unavailable("profile lookup", err)
	}
	return user.Public(), nil
}

// Authenticate verifies a bearer access token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*Claims, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, s.unavailable("access revocation check", err)
		}
		if revoked {
			return nil, ErrUnauthorized
		}
	}
	return claims, nil
}

// Logout revokes the presented access token when a revocation store is
// configured and reports whether it did. Without one it only acknowledges.
func (s *Service) Logout(ctx context.Context, claims *Claims) (bool, error) {
	if s.revoker == nil || claims == nil {
		return false, nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return false, s.unavailable("logout", err)
	}
	s.logger.Info("auth.logout completed", slog.String("user_id", claims.Subject))
	return true, nil
}

// notify never fails the calling operation.
func (s *Service) notify(ctx context.Context, msg notification.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Warn("notification failed", slog.String("kind", msg.Kind), slog.Any("error", err))
	}
}

func (s *Service) unavailable(op string, err error) error {
	s.logger.Error("user store failure", slog.String("op", op), slog.Any("error", err))
	return fmt.Errorf("%w: %s", ErrStoreUnavailable, op)
}

func (s *Service) decoyHash() string {
	s.decoyOnce.Do(func() {
		s.decoy, _ = s.hasher.Hash(uuid.NewString())
	})
	return s.decoy
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
