package middleware

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/booknest/catalog-service/internal/core/domain/auth"
	"github.com/booknest/catalog-service/internal/infrastructure/httpserver/helpers"
)

// JWTMiddleware verifies HS256 bearer tokens issued by the account service.
type JWTMiddleware struct {
	secret []byte
	issuer string
	logger *logrus.Logger
}

func NewJWTMiddleware(secret, issuer string, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{secret: []byte(secret), issuer: issuer, logger: logger}
}

func (m *JWTMiddleware) parse(tokenString string) (*auth.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// RequireJWT creates middleware that validates JWT tokens and sets user context
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.parse(tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("JWT validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			helpers.SetSubject(c, claims.Subject)
			helpers.SetUserRole(c, claims.Role)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"subject": claims.Subject, "role": claims.Role}).Debug("jwt validated and user context set")
			}
			return next(c)
		}
	}
}

// RequireRole rejects requests whose validated token does not carry role.
// It must run after RequireJWT.
func (m *JWTMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, err := helpers.GetUserRoleFromContext(c)
			if err != nil {
				return err
			}
			if got != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}
