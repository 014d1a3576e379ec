package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain error codes pass through unchanged;
// these cover failures that never reach the domain.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInternal     = "INTERNAL"
)

// statusByCode maps domain error codes to HTTP status codes
var statusByCode = map[string]int{
	"NOT_FOUND":              http.StatusNotFound,
	"ALREADY_EXISTS":         http.StatusConflict,
	"CONCURRENCY_CONFLICT":   http.StatusConflict,
	"INVALID_STATE":          http.StatusConflict,
	"UNAUTHORIZED":           http.StatusUnauthorized,
	"FORBIDDEN":              http.StatusForbidden,
	"DEPENDENCY_UNAVAILABLE": http.StatusServiceUnavailable,
	"NO_ENTRIES":             http.StatusUnprocessableEntity,
	"BAD_REQUEST":            http.StatusBadRequest,
	"INTERNAL":               http.StatusInternalServerError,
}

// GetHTTPStatus maps an error code to its HTTP status. Validation codes
// (INVALID_*) map to 400; anything unknown is treated as an internal error.
func GetHTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
