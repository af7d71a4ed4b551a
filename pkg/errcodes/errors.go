package errcodes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

const (
	CodeNotFound         = "not_found"
	CodeValidationFailed = "validation_failed"
	CodeIntegrityBlocked = "integrity_blocked"
	CodeStoreUnavailable = "store_unavailable"
	CodeTimeout          = "timeout"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
	// Cause is the underlying failure, if any. It is never shown to clients.
	Cause error
}

func (err *Error) Error() string {
	if err.Cause != nil {
		return err.Message + ": " + err.Cause.Error()
	}
	return err.Message
}

func (err *Error) Unwrap() error {
	return err.Cause
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		HTTPCode: http.StatusNotFound,
		Message:  resource + " not found.",
		Code:     CodeNotFound,
	}
}

// StoreUnavailable wraps a failed storage round-trip. It is propagated as-is;
// nothing in the catalog retries it.
func StoreUnavailable(cause error) error {
	return &Error{
		HTTPCode: http.StatusServiceUnavailable,
		Message:  "Store unavailable.",
		Code:     CodeStoreUnavailable,
		Cause:    cause,
	}
}

// Timeout reports that the named operation ran past its deadline.
func Timeout(operation string) error {
	return &Error{
		HTTPCode: http.StatusGatewayTimeout,
		Message:  fmt.Sprintf("Operation %q timed out.", operation),
		Code:     CodeTimeout,
		Cause:    context.DeadlineExceeded,
	}
}

// ValidationFailed is the status used when a write is rejected by its field
// rules. The field errors travel alongside it in the response body.
func ValidationFailed() error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  "One or more fields are invalid.",
		Code:     CodeValidationFailed,
	}
}

// IntegrityBlocked is the status used when a delete is refused because other
// records still reference the target.
func IntegrityBlocked(resource string) error {
	return &Error{
		HTTPCode: http.StatusConflict,
		Message:  resource + " is still referenced and can't be deleted.",
		Code:     CodeIntegrityBlocked,
	}
}

func UnsupportedMediaType() error {
	return &Error{
		HTTPCode: http.StatusUnsupportedMediaType,
		Message:  "Unsupported Media Type",
		Code:     "unsupported_media_type",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  fmt.Sprintf("Unknown Parameter %q", param),
		Code:     "unknown_parameter",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_type_error",
	}
}

func ValidationError(msg string) error {
	return &Error{
		HTTPCode: http.StatusUnprocessableEntity,
		Message:  msg,
		Code:     "validation_error",
	}
}

func MalformedPayload() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Malformed Payload",
		Code:     "malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		HTTPCode: http.StatusBadRequest,
		Message:  "Request body can't be empty.",
		Code:     "empty_request_body",
	}
}

// HasCode reports whether err is, or wraps, an *Error with the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
