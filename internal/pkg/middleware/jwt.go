package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/triptrack/internal/pkg/jwt"
	"github.com/piresc/triptrack/internal/pkg/models"
	"github.com/piresc/triptrack/internal/utils"
)

// TokenQueryParam carries the token for clients that cannot set headers
// (EventSource, browser WebSocket)
const TokenQueryParam = "access_token"

// JWTAuthMiddleware verifies tokens issued by the auth service. It only
// authenticates; whether the caller may watch a given trip is decided elsewhere.
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractToken(c)
			if err != nil {
				return utils.UnauthorizedResponse(c, err.Error())
			}

			claims, err := jwtpkg.ValidateToken(tokenString, config)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			userID, ok := claims["user_id"]
			if !ok {
				return utils.UnauthorizedResponse(c, "Invalid token: missing user_id claim")
			}

			c.Set("user_id", fmt.Sprintf("%v", userID))
			if role, ok := claims["role"]; ok {
				c.Set("user_role", fmt.Sprintf("%v", role))
			}

			return next(c)
		}
	}
}

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam(TokenQueryParam); token != "" {
			return token, nil
		}
		return "", errors.New("Authorization header is required")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errors.New("Invalid authorization format")
	}
	return parts[1], nil
}
