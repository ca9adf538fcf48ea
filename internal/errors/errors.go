package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match wrapped domain errors by code.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// Credential errors
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "incorrect email or password")
	ErrEmailUnverified    = NewDomainError("EMAIL_UNVERIFIED", "your email address is not verified")
	ErrEmailExists        = NewDomainError("EMAIL_EXISTS", "email already exists")
	ErrUsernameExists     = NewDomainError("USERNAME_EXISTS", "username already exists")
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrIncorrectPassword  = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")
	ErrPasswordUnchanged  = NewDomainError("PASSWORD_UNCHANGED", "new password must differ from the current password")
	ErrAlreadyVerified    = NewDomainError("ALREADY_VERIFIED", "this email is already verified")

	// Authentication errors
	ErrUnauthenticated = NewDomainError("UNAUTHENTICATED", "unauthenticated")
	ErrForbidden       = NewDomainError("FORBIDDEN", "access forbidden")
	ErrTokenExpired    = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidToken    = NewDomainError("INVALID_TOKEN", "invalid or expired token")

	// Two-factor errors
	ErrTwoFaAlreadyActive  = NewDomainError("TWO_FA_ALREADY_ACTIVE", "two-factor authentication is already activated")
	ErrTwoFaNotSetUp       = NewDomainError("TWO_FA_NOT_SET_UP", "two-factor authentication has not been set up")
	ErrTwoFaNotEnabled     = NewDomainError("TWO_FA_NOT_ENABLED", "two-factor authentication is not enabled")
	ErrTwoFaNotRequired    = NewDomainError("TWO_FA_NOT_REQUIRED", "two-factor authentication is not required for this session")
	ErrInvalidTwoFaCode    = NewDomainError("INVALID_TWO_FA_CODE", "invalid two-factor code")
	ErrInvalidRecoveryCode = NewDomainError("INVALID_RECOVERY_CODE", "invalid recovery code")
	ErrInvalidTwoFaSession = NewDomainError("INVALID_TWO_FA_SESSION", "two-factor session cookie is missing, invalid or expired")

	// Validation errors
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "invalid input")

	// System errors
	ErrConflict = NewDomainError("CONFLICT", "conflicting request")
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 401 Unauthorized
	case "UNAUTHENTICATED", "INVALID_CREDENTIALS", "TOKEN_EXPIRED",
		"INCORRECT_PASSWORD", "INVALID_TWO_FA_CODE", "INVALID_RECOVERY_CODE",
		"INVALID_TWO_FA_SESSION":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "FORBIDDEN", "EMAIL_UNVERIFIED":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS", "USERNAME_EXISTS", "CONFLICT", "ALREADY_VERIFIED",
		"TWO_FA_ALREADY_ACTIVE", "TWO_FA_NOT_SET_UP", "TWO_FA_NOT_ENABLED",
		"TWO_FA_NOT_REQUIRED":
		return http.StatusConflict

	// 422 Unprocessable Entity
	case "INVALID_INPUT", "INVALID_TOKEN", "PASSWORD_UNCHANGED":
		return http.StatusUnprocessableEntity

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts the user-facing error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
