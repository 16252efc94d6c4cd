package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	Init("test-secret", "market_chat", 10)

	token, err := GenerateAccessToken("U100")
	require.NoError(t, err)

	claims, err := ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "U100", claims.UserID)
	assert.Equal(t, "market_chat", claims.Issuer)
}

func TestParseAccessTokenRejectsWrongSubject(t *testing.T) {
	Init("test-secret", "market_chat", 10)

	claims := Claims{
		UserID: "U100",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Subject:   "refresh_token",
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidSubject)
}

func TestParseTokenRejectsOtherSecret(t *testing.T) {
	Init("secret-a", "market_chat", 10)
	token, err := GenerateAccessToken("U100")
	require.NoError(t, err)

	Init("secret-b", "market_chat", 10)
	_, err = ParseToken(token)
	assert.Error(t, err)
}
