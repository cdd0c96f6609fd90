package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
	"github.com/piresc/triptrack/internal/pkg/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongIssuer  = errors.New("token issuer mismatch")
)

// ValidateToken verifies an HS256 token issued by the auth service and
// returns its claims. The issuer is only checked when cfg.Issuer is set.
func ValidateToken(tokenString string, cfg models.JWTConfig) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if cfg.Issuer != "" && !claims.VerifyIssuer(cfg.Issuer, true) {
		return nil, ErrWrongIssuer
	}

	return claims, nil
}
