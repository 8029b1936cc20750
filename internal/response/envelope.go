// Package response shapes every HTTP reply into the standard envelope and
// converts internal field names to snake_case on the way out.
package response

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var clock = time.Now

// Envelope is the uniform wrapper around every response body.
type Envelope struct {
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
	Payload   Payload `json:"payload"`
}

// Payload carries either data or an error.
type Payload struct {
	Data  any        `json:"data,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// ErrorBody is the machine-readable part of a failure.
type ErrorBody struct {
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Success wraps value, normalising its field names.
func Success(message string, value any) (Envelope, error) {
	data, err := Normalize(value)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Status:    StatusSuccess,
		Message:   message,
		Timestamp: timestamp(),
		Payload:   Payload{Data: data},
	}, nil
}

// Failure builds an error envelope. details are normalised when they can be.
func Failure(message, code string, details any) Envelope {
	if normalized, err := Normalize(details); err == nil {
		details = normalized
	}
	return Envelope{
		Status:    StatusError,
		Message:   message,
		Timestamp: timestamp(),
		Payload:   Payload{Error: &ErrorBody{Code: code, Details: details}},
	}
}

// Send writes a success envelope with the given HTTP status.
func Send(c *fiber.Ctx, status int, message string, value any) error {
	env, err := Success(message, value)
	if err != nil {
		return err
	}
	return c.Status(status).JSON(env)
}

// OK is Send with 200.
func OK(c *fiber.Ctx, message string, value any) error {
	return Send(c, http.StatusOK, message, value)
}

func timestamp() string {
	return clock().UTC().Format(timestampLayout)
}
