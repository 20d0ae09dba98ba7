package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
)

const (
	Issuer = "avax-workflow"
	JwtAlg = "HS256"

	// subject of keys issued to api clients
	ApiKeySubject = "apikey"
)

type ApiRole string

const (
	AdminRole    ApiRole = "admin"
	ReadonlyRole ApiRole = "readonly"
)

var (
	ErrorInvalidToken        = errors.New("authorization header is not a bearer token")
	ErrorMalformedAuthHeader = errors.New("bearer token is empty")
	ErrorMissingRole         = errors.New("API key lacks the required role")
)

type APIClaim struct {
	*jwt.RegisteredClaims
	Roles []ApiRole `json:"roles"`
}

// HasRole reports whether the claim grants role. Admin implies every role.
func (c *APIClaim) HasRole(role ApiRole) bool {
	return lo.Contains(c.Roles, AdminRole) || lo.Contains(c.Roles, role)
}
