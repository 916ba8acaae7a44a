package middleware

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie is the cookie carrying the signed session token.
	SessionCookie = "quill_session"
	// LoginPath is where unauthenticated browsers are sent.
	LoginPath = "/auth/login/"

	TokenIssuer   = "quill-api"
	TokenAudience = "quill-web"
)

// AuthRequired enforces authentication for protected routes. Unauthenticated
// requests are redirected to the login page rather than answered with an
// error body, preserving the traditional web flow.
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := ParseIdentity(c, secret)
		if !ok {
			return c.Redirect(LoginPath+"?next="+url.QueryEscape(c.Path()), fiber.StatusFound)
		}

		setIdentity(c, userID)
		return c.Next()
	}
}

// OptionalAuth resolves the requesting identity when credentials are present
// but never rejects the request. Public pages use it so view payloads can
// still reflect the signed-in user.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, ok := ParseIdentity(c, secret); ok {
			setIdentity(c, userID)
		}
		return c.Next()
	}
}

// ParseIdentity extracts and validates the session token from the session
// cookie or the Authorization header.
func ParseIdentity(c *fiber.Ctx, secret string) (uint, bool) {
	tokenString := c.Cookies(SessionCookie)
	if tokenString == "" {
		authHeader := c.Get("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		return 0, false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != TokenIssuer {
		return 0, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != TokenAudience {
		return 0, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(userID), true
}

func setIdentity(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}
