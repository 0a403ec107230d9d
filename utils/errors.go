package utils

import "net/http"

// Error kinds. Every failure the API surfaces carries one of these stable,
// machine-readable kinds next to the human message.
const (
	KindAuthentication = "authentication"
	KindAuthorization  = "authorization"
	KindInvariant      = "invariant"
	KindValidation     = "validation"
	KindNotFound       = "not_found"
	KindUnavailable    = "unavailable"
)

type AppError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// HTTPStatus maps an error kind to its HTTP status code.
func HTTPStatus(kind string) int {
	switch kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvariant:
		return http.StatusConflict
	case KindValidation:
		return http.StatusBadRequest
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
