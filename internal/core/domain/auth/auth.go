package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the bearer token claims the catalog trusts. Tokens are issued by the
// account service; the catalog only verifies them.
type Claims struct {
	Role string `json:"role"`

	jwt.RegisteredClaims
}

// IsRole reports whether the token carries role.
func (c *Claims) IsRole(role string) bool {
	return c != nil && role != "" && c.Role == role
}
