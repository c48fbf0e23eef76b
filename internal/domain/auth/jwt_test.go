package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "venueledger/internal/core/context"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret", "venue-platform"))

	token, expiresAt, err := svc.GenerateAccessToken(appctx.UserContext{
		UserID:      "u1",
		Email:       "manager@example.com",
		Permissions: []string{"finance:report:read"},
		CompanyIDs:  []string{"c1", "c2"},
	})
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	user, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, []string{"c1", "c2"}, user.CompanyIDs)
	assert.False(t, user.IsAdmin)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret", "venue-platform"))

	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "venue-platform",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: "u1",
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	foreign := valid
	foreign.Issuer = "someone-else"

	noExpiry := valid
	noExpiry.ExpiresAt = nil

	anonymous := valid
	anonymous.UserID = ""

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), valid)},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte("secret"), expired)},
		{"foreign issuer", sign(t, jwt.SigningMethodHS256, []byte("secret"), foreign)},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte("secret"), noExpiry)},
		{"other algorithm", sign(t, jwt.SigningMethodHS512, []byte("secret"), valid)},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte("secret"), anonymous)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}
