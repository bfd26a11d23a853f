package middleware

import (
	"strconv"
	"strings"
	"time"

	"intake-app/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware verifies the Bearer token and stores the operator in
// ctx.Locals ("userID", "username"). With AUTH_ENABLED=false every request
// runs as "system".
func AuthMiddleware(ctx *fiber.Ctx) error {
	if !config.AuthEnabled {
		ctx.Locals("username", "system")
		return ctx.Next()
	}

	authHeader := ctx.Get("Authorization")
	if authHeader == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Missing Authorization header",
		})
	}

	// Ambil token dari "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Invalid Authorization header format",
		})
	}

	claims, err := ParseToken(tokenParts[1], config.JWTSecret)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid token",
			"error":   err.Error(),
		})
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized: Invalid user ID",
		})
	}
	username, _ := claims["username"].(string)

	ctx.Locals("userID", userID)
	ctx.Locals("username", username)
	return ctx.Next()
}

// ParseToken validates an HMAC-signed token and returns its claims.
func ParseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized: Invalid signing method")
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// IssueToken signs an operator token. Used by the seed command and tests.
func IssueToken(userID int, username, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// Actor returns the operator recorded by AuthMiddleware.
func Actor(ctx *fiber.Ctx) string {
	if name, ok := ctx.Locals("username").(string); ok && name != "" {
		return name
	}
	if id, ok := ctx.Locals("userID").(float64); ok {
		return "user:" + strconv.FormatInt(int64(id), 10)
	}
	return "system"
}
