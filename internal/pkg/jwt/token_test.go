package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestConfig() models.JWTConfig {
	return models.JWTConfig{
		Secret: "test-secret-key-for-jwt-signing",
		Issuer: "auth-service",
	}
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	cfg := getTestConfig()
	secret := []byte(cfg.Secret)
	future := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name        string
		token       string
		cfg         models.JWTConfig
		expectError error
	}{
		{
			name: "Valid token",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"user_id": "rider-1", "role": "passenger", "iss": "auth-service", "exp": future,
			}),
			cfg: cfg,
		},
		{
			name: "Issuer not enforced when unset",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"user_id": "rider-1", "exp": future,
			}),
			cfg: models.JWTConfig{Secret: cfg.Secret},
		},
		{
			name: "Expired token",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"user_id": "rider-1", "iss": "auth-service", "exp": time.Now().Add(-time.Minute).Unix(),
			}),
			cfg:         cfg,
			expectError: ErrInvalidToken,
		},
		{
			name: "Wrong secret",
			token: sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{
				"user_id": "rider-1", "iss": "auth-service", "exp": future,
			}),
			cfg:         cfg,
			expectError: ErrInvalidToken,
		},
		{
			name: "Wrong issuer",
			token: sign(t, jwt.SigningMethodHS256, secret, jwt.MapClaims{
				"user_id": "rider-1", "iss": "someone-else", "exp": future,
			}),
			cfg:         cfg,
			expectError: ErrWrongIssuer,
		},
		{
			name: "Unsigned token",
			token: sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{
				"user_id": "rider-1", "iss": "auth-service", "exp": future,
			}),
			cfg:         cfg,
			expectError: ErrInvalidToken,
		},
		{
			name:        "Garbage",
			token:       "not.a.token",
			cfg:         cfg,
			expectError: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.cfg)
			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "rider-1", claims["user_id"])
		})
	}
}
