package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Error is a failure already mapped onto its HTTP status and envelope code.
type Error struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *Error) Error() string { return e.Message }

// NewError builds an Error without details.
func NewError(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Classifier maps a domain error onto an Error, or returns nil if it does not
// recognise it.
type Classifier func(error) *Error

// ErrorHandler renders every error returned by a handler or middleware as an
// error envelope. Unrecognised errors become an opaque 500.
func ErrorHandler(logger *slog.Logger, classifiers ...Classifier) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		apiErr := classify(err, classifiers)

		details := map[string]any{
			"status_code": apiErr.Status,
			"path":        c.Path(),
			"method":      c.Method(),
		}
		if apiErr.Details != nil {
			details["details"] = apiErr.Details
		}

		requestID, _ := c.Locals("X-Request-ID").(string)
		attrs := []any{
			slog.Int("status", apiErr.Status),
			slog.String("code", apiErr.Code),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		}
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", attrs...)
		} else {
			logger.Debug("request rejected", attrs...)
		}

		return c.Status(apiErr.Status).JSON(Failure(apiErr.Message, apiErr.Code, details))
	}
}

func classify(err error, classifiers []Classifier) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	for _, fn := range classifiers {
		if mapped := fn(err); mapped != nil {
			return mapped
		}
	}
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < http.StatusInternalServerError {
		return NewError(fe.Code, CodeForStatus(fe.Code), fe.Message)
	}
	return NewError(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// CodeForStatus returns the generic envelope code for an HTTP status.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case http.StatusTooManyRequests:
		return "RATE_LIMIT_EXCEEDED"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
