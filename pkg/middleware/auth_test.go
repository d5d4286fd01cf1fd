package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/internal/dto"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/service"
	"github.com/HarshRohra14/INVENTORY-SYSTEM-BACKEND-sub002/pkg/utils"
)

// authHarness mounts a protected route the way the real router does and
// records the claims the middleware hands to the handler.
type authHarness struct {
	echo   *echo.Echo
	jwtSvc service.JWTService
	seen   *dto.UserClaims
}

func newAuthHarness(t *testing.T, accessTTL time.Duration) *authHarness {
	t.Helper()
	logger := zap.NewNop()
	h := &authHarness{
		echo:   echo.New(),
		jwtSvc: service.NewJWTService("middleware-test-secret", accessTTL, 24*time.Hour, logger),
	}
	authMW := NewAuthMiddleware(h.jwtSvc, logger)
	h.echo.GET("/api/orders", func(c echo.Context) error {
		claims, err := utils.GetClaimsFromContext(c.Request().Context())
		if err != nil {
			return utils.ErrorResponse(c, err, logger)
		}
		h.seen = claims
		return c.JSON(http.StatusOK, map[string]uint64{"user_id": claims.UserID})
	}, authMW.Auth)
	return h
}

func (h *authHarness) request(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	h.echo.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("passes claims through to the handler", func(t *testing.T) {
		h := newAuthHarness(t, 15*time.Minute)
		branchID := uint64(3)
		access, _, err := h.jwtSvc.GenerateTokens(42, "MANAGER", &branchID)
		require.NoError(t, err)

		rec := h.request("Bearer " + access)
		assert.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
		require.NotNil(t, h.seen)
		assert.Equal(t, uint64(42), h.seen.UserID)
		assert.Equal(t, "MANAGER", h.seen.Role)
		require.NotNil(t, h.seen.BranchID)
		assert.Equal(t, branchID, *h.seen.BranchID)
	})

	t.Run("missing header", func(t *testing.T) {
		h := newAuthHarness(t, 15*time.Minute)
		rec := h.request("")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "authorization header is missing")
		assert.Nil(t, h.seen)
	})

	t.Run("malformed header", func(t *testing.T) {
		h := newAuthHarness(t, 15*time.Minute)
		rec := h.request("Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid authorization header format")
	})

	t.Run("garbage token", func(t *testing.T) {
		h := newAuthHarness(t, 15*time.Minute)
		rec := h.request("Bearer not.a.token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid token")
	})

	t.Run("expired token", func(t *testing.T) {
		h := newAuthHarness(t, -time.Minute)
		access, _, err := h.jwtSvc.GenerateTokens(42, "MANAGER", nil)
		require.NoError(t, err)

		rec := h.request("Bearer " + access)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, h.seen)
	})

	t.Run("refresh token cannot reach the API", func(t *testing.T) {
		h := newAuthHarness(t, 15*time.Minute)
		_, refresh, err := h.jwtSvc.GenerateTokens(42, "MANAGER", nil)
		require.NoError(t, err)

		rec := h.request("Bearer " + refresh)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token is not an access token")
		assert.Nil(t, h.seen)
	})

	t.Run("token with a non-user role is rejected", func(t *testing.T) {
		h := newAuthHarness(t, 15*time.Minute)
		access, _, err := h.jwtSvc.GenerateTokens(99, "SYSTEM", nil)
		require.NoError(t, err)

		rec := h.request("Bearer " + access)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid token")
		assert.Nil(t, h.seen)
	})
}
