package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/infrastructure/auth"
	"github.com/weighbridge/backend/internal/interfaces/http/dto"
)

const (
	// ScopeKey is the gin context key for the caller's access scope
	ScopeKey = "scope"
	// AuthHeaderKey is the HTTP header carrying the bearer token
	AuthHeaderKey = "Authorization"
	// BearerPrefix prefixes the token in the Authorization header
	BearerPrefix = "Bearer "
)

// Auth validates the bearer token and places the caller's access scope in
// the gin context. Requests without a valid token never reach a handler.
func Auth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		token := strings.TrimPrefix(header, BearerPrefix)
		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		scope, err := claims.Scope()
		if err != nil {
			abortUnauthorized(c, "Invalid token claims")
			return
		}

		c.Set(ScopeKey, scope)
		c.Next()
	}
}

// RequireReviewer rejects callers whose role cannot review entries. Must
// run after Auth.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := GetScope(c)
		if !ok {
			abortUnauthorized(c, "Missing access scope")
			return
		}
		if !scope.Role.CanReview() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Reviewer role required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := GetScope(c)
		if !ok {
			abortUnauthorized(c, "Missing access scope")
			return
		}
		if !scope.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Admin role required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// GetScope retrieves the caller's access scope from the gin context
func GetScope(c *gin.Context) (identity.Scope, bool) {
	value, exists := c.Get(ScopeKey)
	if !exists {
		return identity.Scope{}, false
	}
	scope, ok := value.(identity.Scope)
	return scope, ok
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, message, GetRequestID(c)))
}
