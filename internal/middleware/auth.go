package middleware

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"quill/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "quill_session"

var cfg *config.Config

// InitAuth initializes authentication middleware with the given config.
func InitAuth(c *config.Config) {
	cfg = c
}

// ParseUserToken validates a session token and returns the user ID from its
// subject claim.
func ParseUserToken(tokenString, secret string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	// User ID lives in the "sub" claim (subject claim per RFC 7519)
	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("invalid token subject")
	}

	userID, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in token")
	}
	return uint(userID), nil
}

// CurrentUser resolves the acting user from the session cookie (or a Bearer
// header) and stores it in c.Locals("userID"). Anonymous requests pass
// through without a user; handlers that require authentication stack
// LoginRequired after this.
func CurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Next()
		}

		if userID, err := ParseUserToken(tokenString, cfg.JWTSecret); err == nil {
			c.Locals("userID", userID)
		}
		return c.Next()
	}
}

// LoginRequired redirects anonymous users to the login page, preserving the
// requested URL in a next parameter. Must be placed after CurrentUser.
func LoginRequired(loginPath string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if uid := c.Locals("userID"); uid != nil {
			return c.Next()
		}
		target := loginPath + "?next=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusSeeOther)
	}
}
