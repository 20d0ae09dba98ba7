package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestCreateAndVerifyAPIKey(t *testing.T) {
	key, err := CreateAPIKey(testSecret, []ApiRole{ReadonlyRole}, time.Hour)
	require.NoError(t, err)

	claims, err := VerifyAPIKey(testSecret, key)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(ReadonlyRole))
	assert.False(t, claims.HasRole(AdminRole))

	admin, err := CreateAPIKey(testSecret, []ApiRole{AdminRole}, 0)
	require.NoError(t, err)
	claims, err = VerifyAPIKey(testSecret, admin)
	require.NoError(t, err)
	assert.True(t, claims.HasRole(ReadonlyRole), "admin implies every role")
	assert.Nil(t, claims.ExpiresAt)
}

func TestVerifyAPIKeyRejects(t *testing.T) {
	key, err := CreateAPIKey(testSecret, []ApiRole{AdminRole}, time.Hour)
	require.NoError(t, err)

	_, err = VerifyAPIKey([]byte("other"), key)
	assert.Error(t, err)

	past := jwt.NewWithClaims(jwt.SigningMethodHS256, &APIClaim{
		RegisteredClaims: &jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   ApiKeySubject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	pastKey, err := past.SignedString(testSecret)
	require.NoError(t, err)
	_, err = VerifyAPIKey(testSecret, pastKey)
	assert.Error(t, err)

	wrongSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, &APIClaim{
		RegisteredClaims: &jwt.RegisteredClaims{Issuer: Issuer, Subject: "0xabc"},
	})
	wrongKey, err := wrongSubject.SignedString(testSecret)
	require.NoError(t, err)
	_, err = VerifyAPIKey(testSecret, wrongKey)
	assert.Error(t, err)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &APIClaim{
		RegisteredClaims: &jwt.RegisteredClaims{Issuer: Issuer, Subject: ApiKeySubject},
	})
	hs512Key, err := hs512.SignedString(testSecret)
	require.NoError(t, err)
	_, err = VerifyAPIKey(testSecret, hs512Key)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = BearerToken("abc.def")
	assert.ErrorIs(t, err, ErrorInvalidToken)

	_, err = BearerToken("Bearer  ")
	assert.Error(t, err)
}
