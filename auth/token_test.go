package auth

import (
	"testing"
	"time"

	"tabulator/config"
	"tabulator/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	actor := service.Actor{ID: 42, Role: service.RoleTallyMaster}

	token, err := CreateToken(actor)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, claims.Actor())
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	sign := func(secret string, claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	secret := config.Env().JWTSecret

	_, err := ParseToken(sign(secret, jwt.MapClaims{
		"user_id": 1, "role": "judge", "exp": time.Now().Add(-time.Minute).Unix(),
	}))
	assert.Error(t, err, "expired token")

	_, err = ParseToken(sign("someone-else", jwt.MapClaims{
		"user_id": 1, "role": "judge", "exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Error(t, err, "wrong secret")

	_, err = ParseToken(sign(secret, jwt.MapClaims{
		"user_id": 1, "role": "spectator", "exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Error(t, err, "unknown role")

	_, err = ParseToken(sign(secret, jwt.MapClaims{
		"role": "judge", "exp": time.Now().Add(time.Hour).Unix(),
	}))
	assert.Error(t, err, "missing user")
}
