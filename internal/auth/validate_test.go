package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRegisterRequest(t *testing.T) {
	err := Validate(&registerRequest{
		FullName:    "J",
		PhoneNumber: "123",
		Email:       "not-an-email",
		Password:    "short",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"full_name", "phone_number", "email", "password"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("expected %s to fail, got %v", field, verr.Fields)
		}
	}
	if verr.Fields["email"] != "must be a valid email address" {
		t.Fatalf("unexpected email message %q", verr.Fields["email"])
	}
}

func TestValidateAcceptsValidRequests(t *testing.T) {
	if err := Validate(&registerRequest{
		FullName:    "Jane Doe",
		PhoneNumber: "+15550000001",
		Email:       "jane@example.com",
		Password:    "secret123",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Validate(&loginRequest{PhoneNumber: "+15550000001", Password: "x"}); err != nil {
		t.Fatalf("phone-only login should validate: %v", err)
	}
}

func TestClassifyMapsServiceErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{ErrDuplicateUser, 409, CodeDuplicateUser},
		{ErrInvalidCredentials, 401, CodeInvalidCredentials},
		{ErrInvalidRefreshToken, 401, CodeInvalidRefreshToken},
		{ErrBadRequest, 400, CodeBadRequest},
		{ErrMalformedBody, 400, CodeBadRequest},
		{ErrUnauthorized, 401, CodeUnauthorized},
		{&ValidationError{Fields: map[string]string{"email": "is required"}}, 400, CodeValidation},
	}
	for _, tc := range cases {
		got := Classify(tc.err)
		if got == nil || got.Status != tc.status || got.Code != tc.code {
			t.Fatalf("%v: got %+v", tc.err, got)
		}
	}

	wrapped := Classify(errors.Join(errors.New("op"), ErrStoreUnavailable))
	if wrapped == nil || wrapped.Status != 503 || wrapped.Code != CodeStoreUnavailable {
		t.Fatalf("wrapped store error: got %+v", wrapped)
	}
	if Classify(errors.New("boom")) != nil {
		t.Fatal("unknown errors must not be classified")
	}
}

func TestValidatePasswordCountsBytes(t *testing.T) {
	req := registerRequest{
		FullName:    "Jane Doe",
		PhoneNumber: "+15550000001",
		Email:       "jane@example.com",
		Password:    strings.Repeat("é", 36),
	}
	if err := Validate(&req); err != nil {
		t.Fatalf("72-byte password should pass: %v", err)
	}

	req.Password = strings.Repeat("é", 40)
	var verr *ValidationError
	if err := Validate(&req); !errors.As(err, &verr) || verr.Fields["password"] != "must be at most 72 bytes" {
		t.Fatalf("expected password byte-length failure, got %v", err)
	}

	err := Validate(&loginRequest{Email: "jane@example.com", Password: strings.Repeat("é", 40)})
	if !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Fatalf("expected login password failure, got %v", err)
	}
}
