package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the single failure of token verification: a bad
// signature, an expired token and a malformed token are indistinguishable.
var ErrInvalidToken = errors.New("invalid token")

const tokenTypeBearer = "Bearer"

// TokenConfig carries the signing material and lifetimes of both token kinds.
type TokenConfig struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

// Claims is the payload embedded in access and refresh tokens.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenPair is returned on registration, login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
}

// Issuer mints and verifies HS256 tokens.
type Issuer struct {
	cfg TokenConfig
	now func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithClock overrides the time source used for iat/exp and for verification.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg TokenConfig, opts ...IssuerOption) (*Issuer, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	i := &Issuer{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Issue signs a fresh access/refresh pair for the subject.
func (i *Issuer) Issue(subjectID, subjectEmail string) (TokenPair, error) {
	now := i.now()
	access, err := i.sign(subjectID, subjectEmail, now, i.cfg.AccessTTL, i.cfg.AccessSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := i.sign(subjectID, subjectEmail, now, i.cfg.RefreshTTL, i.cfg.RefreshSecret)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(i.cfg.AccessTTL.Seconds()),
	}, nil
}

func (i *Issuer) sign(sub, email string, now time.Time, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Verify checks signature and expiry of token against secret.
func (i *Issuer) Verify(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess verifies an access token.
func (i *Issuer) VerifyAccess(token string) (*Claims, error) {
	return i.Verify(token, i.cfg.AccessSecret)
}

// VerifyRefresh verifies a refresh token.
func (i *Issuer) VerifyRefresh(token string) (*Claims, error) {
	return i.Verify(token, i.cfg.RefreshSecret)
}
