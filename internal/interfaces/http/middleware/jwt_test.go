package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func newTestTokenPair(t *testing.T, jwtService *auth.JWTService, role identity.Role) (*auth.TokenPair, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: userID,
		Email:  "user@example.com",
		Role:   string(role),
	})
	require.NoError(t, err)
	return pair, userID
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func protectedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw...)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": GetJWTUserID(c), "role": GetJWTRole(c)})
	})
	return router
}

func doGet(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	pair, userID := newTestTokenPair(t, jwtService, identity.RoleCustomer)

	w := doGet(protectedRouter(JWTAuthMiddleware(jwtService)), pair.AccessToken)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), "CUSTOMER")
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	router := protectedRouter(JWTAuthMiddleware(jwtService))

	t.Run("missing header", func(t *testing.T) {
		w := doGet(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeError(t, w).Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(AuthHeaderKey, "Basic abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doGet(router, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w).Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, identity.RoleCustomer)
		w := doGet(router, pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenInvalid, decodeError(t, w).Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestJWTService(-time.Minute)
		pair, _ := newTestTokenPair(t, expired, identity.RoleCustomer)
		w := doGet(router, pair.AccessToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeTokenExpired, decodeError(t, w).Code)
	})
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	blacklist := auth.NewInMemoryTokenBlacklist()
	router := protectedRouter(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))
	pair, _ := newTestTokenPair(t, jwtService, identity.RoleCustomer)

	assert.Equal(t, http.StatusOK, doGet(router, pair.AccessToken).Code)

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	w := doGet(router, pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, w).Code)
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	router := protectedRouter(OptionalJWTAuthMiddleware(JWTMiddlewareConfig{JWTService: jwtService}))

	t.Run("anonymous passes", func(t *testing.T) {
		w := doGet(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":"","role":""}`, w.Body.String())
	})

	t.Run("invalid token is anonymous", func(t *testing.T) {
		w := doGet(router, "garbage")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":"","role":""}`, w.Body.String())
	})

	t.Run("valid token populates user", func(t *testing.T) {
		pair, userID := newTestTokenPair(t, jwtService, identity.RoleCustomer)
		w := doGet(router, pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), userID.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	router := protectedRouter(JWTAuthMiddleware(jwtService), RequireAdmin())

	t.Run("no token is 401", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, doGet(router, "").Code)
	})

	t.Run("customer is 403", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, identity.RoleCustomer)
		w := doGet(router, pair.AccessToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		pair, _ := newTestTokenPair(t, jwtService, identity.RoleAdmin)
		assert.Equal(t, http.StatusOK, doGet(router, pair.AccessToken).Code)
	})
}

func TestGetUserUUID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetUserUUID(c))

	c.Set(JWTUserIDKey, "not-a-uuid")
	assert.Nil(t, GetUserUUID(c))

	id := uuid.New()
	c.Set(JWTUserIDKey, id.String())
	require.NotNil(t, GetUserUUID(c))
	assert.Equal(t, id, *GetUserUUID(c))
}
