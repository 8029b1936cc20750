package auth

import (
	"errors"
	"net/http"

	"github.com/ultraauth/auth-api/internal/response"
)

var (
	// ErrDuplicateUser is returned when the email or phone number is already registered.
	ErrDuplicateUser = errors.New("user with this email or phone number already exists")
	// ErrInvalidCredentials covers both an unknown identifier and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken covers malformed, expired, revoked and wrongly signed refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrBadRequest is returned when a login carries neither email nor phone number.
	ErrBadRequest = errors.New("either email or phone number must be provided")
	// ErrStoreUnavailable wraps transient failures of the user or revocation store.
	ErrStoreUnavailable = errors.New("database is currently unavailable, please try again later")
	// ErrUnauthorized is returned for a missing, invalid or revoked access token.
	ErrUnauthorized = errors.New("missing or invalid access token")
	// ErrMalformedBody is returned when the request body cannot be decoded.
	ErrMalformedBody = errors.New("request body must be valid JSON")
)

// Error codes carried in the error envelope.
const (
	CodeDuplicateUser       = "DUPLICATE_USER"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeBadRequest          = "BAD_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeUnauthorized        = "UNAUTHORIZED"
)

// Classify maps service failures onto their HTTP representation. It returns
// nil for errors it does not own.
func Classify(err error) *response.Error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return &response.Error{Status: http.StatusBadRequest, Code: CodeValidation, Message: "validation failed", Details: verr.Fields}
	case errors.Is(err, ErrDuplicateUser):
		return response.NewError(http.StatusConflict, CodeDuplicateUser, ErrDuplicateUser.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return response.NewError(http.StatusUnauthorized, CodeInvalidCredentials, ErrInvalidCredentials.Error())
	case errors.Is(err, ErrInvalidRefreshToken):
		return response.NewError(http.StatusUnauthorized, CodeInvalidRefreshToken, ErrInvalidRefreshToken.Error())
	case errors.Is(err, ErrUnauthorized):
		return response.NewError(http.StatusUnauthorized, CodeUnauthorized, ErrUnauthorized.Error())
	case errors.Is(err, ErrBadRequest):
		return response.NewError(http.StatusBadRequest, CodeBadRequest, ErrBadRequest.Error())
	case errors.Is(err, ErrMalformedBody):
		return response.NewError(http.StatusBadRequest, CodeBadRequest, ErrMalformedBody.Error())
	case errors.Is(err, ErrStoreUnavailable):
		return response.NewError(http.StatusServiceUnavailable, CodeStoreUnavailable, ErrStoreUnavailable.Error())
	default:
		return nil
	}
}
