package middleware

import (
	"context"
	"strings"

	"quiz-author/internal/dto"
	"quiz-author/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	AccessTokenCookie   = "access_token"
	UserIDKey           = "userID" // Key for storing UserID in fiber.Ctx locals
)

// TokenValidator is the part of service.AuthService the middleware needs.
type TokenValidator interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

// Protected requires a valid access token, taken from the Authorization
// header or, for browser pages, the access_token cookie.
func Protected(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, code, message := extractToken(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    code,
				Message: message,
				Status:  fiber.StatusUnauthorized,
			})
		}

		claims, err := validator.ValidateJWT(c.Context(), tokenString)
		if err != nil {
			logger.Get().Debug("JWT validation failed",
				zap.String("path", c.Path()),
				zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: err.Error(),
				Status:  fiber.StatusUnauthorized,
			})
		}

		c.Locals(UserIDKey, claims.UserID)
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) (token, code, message string) {
	authHeader := c.Get(AuthorizationHeader)
	if authHeader == "" {
		if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
			return cookie, "", ""
		}
		return "", "MISSING_AUTH_HEADER", "Authorization header is missing"
	}
	if !strings.HasPrefix(authHeader, BearerSchema) {
		return "", "INVALID_AUTH_SCHEME", "Authorization scheme is not Bearer"
	}
	token = strings.TrimPrefix(authHeader, BearerSchema)
	if token == "" {
		return "", "EMPTY_TOKEN", "Token is empty"
	}
	return token, "", ""
}

// UserID returns the authenticated author, or "" when authentication is
// disabled.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}
