package auth

import (
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// CreateAPIKey issues an HS256 token for the given roles. A zero ttl means
// the key never expires.
func CreateAPIKey(secret []byte, roles []ApiRole, ttl time.Duration) (string, error) {
	now := time.Now()
	registered := &jwt.RegisteredClaims{
		Issuer:   Issuer,
		Subject:  ApiKeySubject,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ttl > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &APIClaim{
		RegisteredClaims: registered,
		Roles:            roles,
	})
	return token.SignedString(secret)
}

// VerifyAPIKey parses a token signed with secret and checks its subject
func VerifyAPIKey(secret []byte, key string) (*APIClaim, error) {
	claims := &APIClaim{RegisteredClaims: &jwt.RegisteredClaims{}}

	token, err := jwt.ParseWithClaims(key, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}

		if token.Header["alg"] != JwtAlg {
			return nil, fmt.Errorf("invalid signing algorithm")
		}

		return secret, nil
	}, jwt.WithIssuer(Issuer))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", InvalidAPIKey, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s", InvalidAPIKey)
	}

	if claims.Subject != ApiKeySubject {
		return nil, fmt.Errorf("%s: unexpected subject %q", InvalidAPIKey, claims.Subject)
	}

	return claims, nil
}

// BearerToken extracts the token of an `Authorization: Bearer <token>` header
func BearerToken(header string) (string, error) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) < 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrorInvalidToken
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", ErrorMalformedAuthHeader
	}
	return token, nil
}
