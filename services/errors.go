package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies a DomainError for callers that translate it
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// Status is the HTTP status a handler answers with. Validation failures
// are 400 and anything unclassified is 500.
func (t ErrorType) Status() int {
	switch t {
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DomainError carries a client-safe Message next to the underlying cause.
// Only Message and Details ever reach a response body.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

func (e *DomainError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// Is reports whether target is a DomainError with the same type and
// message, so a decorated copy still matches its sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Type == e.Type && t.Message == e.Message
}

// WithDetail returns a copy of e carrying one more detail. The receiver is
// left untouched, so sentinels are safe to decorate.
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	out := *e
	out.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		out.Details[k] = v
	}
	out.Details[key] = value
	return &out
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{Type: errType, Message: message, Err: err}
}

// Validation reports bad client input with a message shown as-is
func Validation(message string) *DomainError {
	return NewDomainError(ErrorTypeValidation, message, nil)
}

// WrapInternal hides err behind a generic response; message is for logs.
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

var (
	ErrUserNotFound  = NewDomainError(ErrorTypeNotFound, "User not found", nil)
	ErrOrderNotFound = NewDomainError(ErrorTypeNotFound, "Order not found", nil)

	ErrInvalidInput      = Validation("Invalid input")
	ErrUserExists        = Validation("User already exists")
	ErrIncorrectPassword = Validation("Current password is incorrect")
	ErrInvalidAction     = Validation("Invalid action")

	ErrDuplicateOrderNumber = NewDomainError(ErrorTypeConflict, "Order number already exists", nil)
	ErrUnauthorized         = NewDomainError(ErrorTypeUnauthorized, "Unauthorized", nil)
	ErrForbidden            = NewDomainError(ErrorTypeForbidden, "Forbidden", nil)
)

func asDomain(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	return nil
}

// GetErrorType returns the type of the first DomainError in err's chain,
// or "" when there is none.
func GetErrorType(err error) ErrorType {
	if de := asDomain(err); de != nil {
		return de.Type
	}
	return ""
}

// GetErrorMessage returns the client-safe message, or "".
func GetErrorMessage(err error) string {
	if de := asDomain(err); de != nil {
		return de.Message
	}
	return ""
}

func GetErrorDetails(err error) map[string]interface{} {
	if de := asDomain(err); de != nil {
		return de.Details
	}
	return nil
}

func IsNotFoundError(err error) bool     { return GetErrorType(err) == ErrorTypeNotFound }
func IsValidationError(err error) bool   { return GetErrorType(err) == ErrorTypeValidation }
func IsUnauthorizedError(err error) bool { return GetErrorType(err) == ErrorTypeUnauthorized }
func IsForbiddenError(err error) bool    { return GetErrorType(err) == ErrorTypeForbidden }
func IsConflictError(err error) bool     { return GetErrorType(err) == ErrorTypeConflict }
func IsInternalError(err error) bool     { return GetErrorType(err) == ErrorTypeInternal }
