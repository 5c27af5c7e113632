package core

import "fmt"

type ErrorCode string

const (
	ErrBadRequest    ErrorCode = "SNIPER_BAD_REQUEST"
	ErrNotFound      ErrorCode = "SNIPER_NOT_FOUND"
	ErrNotConfigured ErrorCode = "SNIPER_NOT_CONFIGURED"
	ErrProviderError ErrorCode = "SNIPER_PROVIDER_ERROR"
	ErrInternal      ErrorCode = "SNIPER_INTERNAL"
)

// HTTPStatus returns the HTTP status code for this error code.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	case ErrBadRequest:
		return 400
	case ErrNotFound:
		return 404
	case ErrNotConfigured:
		return 409
	case ErrProviderError:
		return 502
	default:
		return 500
	}
}

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
