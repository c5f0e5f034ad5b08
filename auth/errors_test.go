package auth

import (
	"errors"
	"fmt"
	"testing"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "email already in use",
			err:      &Error{Code: "EMAIL_EXISTS"},
			expected: msgEmailExists,
		},
		{
			name:     "invalid email",
			err:      &Error{Code: "INVALID_EMAIL"},
			expected: msgInvalidEmail,
		},
		{
			name:     "weak password with suffix",
			err:      &Error{Code: "WEAK_PASSWORD : Password should be at least 6 characters"},
			expected: msgWeakPassword,
		},
		{
			name:     "unknown account",
			err:      &Error{Code: "EMAIL_NOT_FOUND"},
			expected: msgBadCredentials,
		},
		{
			name:     "wrong password",
			err:      &Error{Code: "INVALID_PASSWORD"},
			expected: msgBadCredentials,
		},
		{
			name:     "invalid credential",
			err:      &Error{Code: "INVALID_LOGIN_CREDENTIALS"},
			expected: msgBadCredentials,
		},
		{
			name:     "unmapped code",
			err:      &Error{Code: "TOO_MANY_ATTEMPTS_TRY_LATER"},
			expected: msgGenericFailure,
		},
		{
			name:     "wrapped api error",
			err:      fmt.Errorf("sign in: %w", &Error{Code: "EMAIL_EXISTS"}),
			expected: msgEmailExists,
		},
		{
			name:     "non-api error",
			err:      errors.New("connection refused"),
			expected: msgGenericFailure,
		},
		{
			name:     "missing fields",
			err:      ErrMissingCredentials,
			expected: msgFillAllFields,
		},
		{
			name:     "short password",
			err:      ErrShortPassword,
			expected: msgPasswordTooWeak,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage(%v) = %q; want %q", tt.err, got, tt.expected)
			}
		})
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{name: "valid", email: "a@x.com", password: "secret1", expected: nil},
		{name: "blank email", email: "  ", password: "secret1", expected: ErrMissingCredentials},
		{name: "blank password", email: "a@x.com", password: "", expected: ErrMissingCredentials},
		{name: "short password", email: "a@x.com", password: "12345", expected: ErrShortPassword},
		{name: "exactly six characters", email: "a@x.com", password: "123456", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateCredentials(tt.email, tt.password); !errors.Is(got, tt.expected) {
				t.Errorf("ValidateCredentials(%q, %q) = %v; want %v", tt.email, tt.password, got, tt.expected)
			}
		})
	}
}
