package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/booknest/catalog-service/internal/core/domain/auth"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver/helpers"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/booknest/catalog-service/test/mocks"
)

func signed(t *testing.T, method jwt.SigningMethod, key any, claims auth.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims(role string) auth.Claims {
	return auth.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-7",
			Issuer:    "accounts",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func runJWT(m *middleware.JWTMiddleware, header string, next echo.HandlerFunc) (echo.Context, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	return c, m.RequireJWT()(next)(c)
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestJWTMiddleware_MissingTokenReturns401(t *testing.T) {
	m := middleware.NewJWTMiddleware("secret", "", logrus.New())
	_, err := runJWT(m, "", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	_, err = runJWT(m, "Token abc", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestJWTMiddleware_SetsSubjectAndRole(t *testing.T) {
	m := middleware.NewJWTMiddleware("secret", "accounts", nil)
	tok := signed(t, jwt.SigningMethodHS256, []byte("secret"), validClaims("admin"))

	c, err := runJWT(m, "Bearer "+tok, func(c echo.Context) error { return nil })
	require.NoError(t, err)
	sub, err := helpers.GetSubjectFromContext(c)
	require.NoError(t, err)
	require.Equal(t, "u-7", sub)
	role, err := helpers.GetUserRoleFromContext(c)
	require.NoError(t, err)
	require.Equal(t, "admin", role)
}

func TestJWTMiddleware_RejectsBadTokens(t *testing.T) {
	m := middleware.NewJWTMiddleware("secret", "accounts", nil)
	next := func(c echo.Context) error { return nil }

	wrongKey := signed(t, jwt.SigningMethodHS256, []byte("other"), validClaims("admin"))
	_, err := runJWT(m, "Bearer "+wrongKey, next)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	wrongIssuer := validClaims("admin")
	wrongIssuer.Issuer = "someone-else"
	_, err = runJWT(m, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte("secret"), wrongIssuer), next)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	noExpiry := validClaims("admin")
	noExpiry.ExpiresAt = nil
	_, err = runJWT(m, "Bearer "+signed(t, jwt.SigningMethodHS256, []byte("secret"), noExpiry), next)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))

	unsigned := signed(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("admin"))
	_, err = runJWT(m, "Bearer "+unsigned, next)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}

func TestRequireRole(t *testing.T) {
	m := middleware.NewJWTMiddleware("secret", "", nil)
	e := echo.New()
	h := m.RequireRole("admin")(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.Equal(t, http.StatusUnauthorized, httpCode(t, h(c)))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	helpers.SetUserRole(c, "reader")
	require.Equal(t, http.StatusForbidden, httpCode(t, h(c)))

	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	helpers.SetUserRole(c, "admin")
	require.NoError(t, h(c))
}

func TestRateLimitMiddleware(t *testing.T) {
	var subject string
	limiter := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, s string) (bool, int, int, time.Time, error) {
		subject = s
		return false, 0, 10, time.Unix(1000, 0), nil
	}}
	m := middleware.NewRateLimitMiddleware(limiter, nil)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := m.Handler()(func(c echo.Context) error { return nil })(c)
	require.Equal(t, http.StatusTooManyRequests, httpCode(t, err))
	require.Equal(t, "203.0.113.9", subject)
	require.Equal(t, "10", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1000", rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	limiter := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, s string) (bool, int, int, time.Time, error) {
		return true, 0, 10, time.Now(), errors.New("redis down")
	}}
	m := middleware.NewRateLimitMiddleware(limiter, logrus.New())
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	called := false
	next := func(c echo.Context) error {
		called = true
		return nil
	}
	require.NoError(t, m.Handler()(next)(c))
	require.True(t, called)
}
