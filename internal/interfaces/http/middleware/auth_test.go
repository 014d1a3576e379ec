package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weighbridge/backend/internal/domain/identity"
	"github.com/weighbridge/backend/internal/infrastructure/auth"
	"github.com/weighbridge/backend/internal/infrastructure/config"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key",
		AccessTokenExpiration: expiration,
		Issuer:                "weighbridge-test",
	})
}

func newAuthTestRouter(t *testing.T, jwtService *auth.JWTService, extra ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), Auth(jwtService))
	handlers := append(extra, func(c *gin.Context) {
		scope, ok := GetScope(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": scope.UserID.String()})
	})
	router.GET("/protected", handlers...)
	return router
}

func issueToken(t *testing.T, jwtService *auth.JWTService, role identity.Role, plantID uuid.UUID) string {
	t.Helper()
	token, err := jwtService.GenerateToken(auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "gatekeeper",
		Role:     role,
		PlantID:  plantID,
	})
	require.NoError(t, err)
	return token.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService(time.Hour)

	t.Run("valid token passes and scope is set", func(t *testing.T) {
		router := newAuthTestRouter(t, jwtService)
		token := issueToken(t, jwtService, identity.RoleOperator, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		router := newAuthTestRouter(t, jwtService)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		router := newAuthTestRouter(t, jwtService)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, "Token abc")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		expiredService := newTestJWTService(-time.Hour)
		router := newAuthTestRouter(t, jwtService)
		token := issueToken(t, expiredService, identity.RoleOperator, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("operator fails reviewer gate", func(t *testing.T) {
		router := newAuthTestRouter(t, jwtService, RequireReviewer())
		token := issueToken(t, jwtService, identity.RoleOperator, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("supervisor passes reviewer gate", func(t *testing.T) {
		router := newAuthTestRouter(t, jwtService, RequireReviewer())
		token := issueToken(t, jwtService, identity.RoleSupervisor, uuid.New())

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin passes admin gate", func(t *testing.T) {
		router := newAuthTestRouter(t, jwtService, RequireAdmin())
		token := issueToken(t, jwtService, identity.RoleAdmin, uuid.Nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	t.Run("generates an ID when none supplied", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
	})

	t.Run("honors a client supplied ID", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "client-id-42")
		router.ServeHTTP(w, req)

		assert.Equal(t, "client-id-42", w.Body.String())
	})
}
