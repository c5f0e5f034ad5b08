package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotSignedIn is returned by operations that need a session.
var ErrNotSignedIn = errors.New("not signed in")

// Validation errors surfaced before any backend call.
var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrShortPassword      = errors.New("password must be at least 6 characters")
)

const minPasswordLen = 6

// ValidateCredentials applies the pre-flight checks the login form performs
// before touching the backend.
func ValidateCredentials(email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return ErrMissingCredentials
	}
	if len(password) < minPasswordLen {
		return ErrShortPassword
	}
	return nil
}

// Error is a failure reported by the Identity Toolkit API. Code is the
// backend's error identifier, e.g. EMAIL_EXISTS or INVALID_PASSWORD.
type Error struct {
	Code string
}

func (e *Error) Error() string {
	return fmt.Sprintf("auth: %s", e.Code)
}

// User-facing messages. The three credential failures collapse into one so
// the login form does not reveal which of email or password was wrong.
const (
	msgEmailExists     = "This email is already registered. Please sign in instead."
	msgInvalidEmail    = "Please enter a valid email address."
	msgWeakPassword    = "Password is too weak. Please use a stronger password."
	msgBadCredentials  = "Invalid email or password. Please try again."
	msgGenericFailure  = "An error occurred. Please try again."
	msgFillAllFields   = "Please fill in all fields."
	msgPasswordTooWeak = "Password must be at least 6 characters."
)

// UserMessage maps an authentication failure to the message shown in the
// login alert.
func UserMessage(err error) string {
	if errors.Is(err, ErrMissingCredentials) {
		return msgFillAllFields
	}
	if errors.Is(err, ErrShortPassword) {
		return msgPasswordTooWeak
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return msgGenericFailure
	}

	// WEAK_PASSWORD arrives as "WEAK_PASSWORD : Password should be ...".
	code := apiErr.Code
	if i := strings.IndexByte(code, ' '); i > 0 {
		code = code[:i]
	}

	switch code {
	case "EMAIL_EXISTS":
		return msgEmailExists
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return msgInvalidEmail
	case "WEAK_PASSWORD":
		return msgWeakPassword
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return msgBadCredentials
	default:
		return msgGenericFailure
	}
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func parseAPIError(data []byte) *Error {
	var body apiErrorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Message == "" {
		return &Error{Code: "UNKNOWN"}
	}
	return &Error{Code: body.Error.Message}
}
