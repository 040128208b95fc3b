package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// authClaims are the JWT claims carried by Strollcast access tokens.
type authClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a JWT for a user. Subject is the user ID.
func IssueToken(secret, userID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := authClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "strollcast",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// AuthRequired validates the Bearer token and stores the user identity in
// request locals as "userID" and "userRole".
func AuthRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return errUnauthorized(c, "missing Authorization header")
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return errUnauthorized(c, "Authorization header must be a Bearer token")
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return errUnauthorized(c, "invalid or expired token")
		}

		c.Locals("userID", claims.Subject)
		c.Locals("userRole", claims.Role)
		return c.Next()
	}
}

// OptionalAuth parses the Bearer token when present but lets anonymous
// requests through. Invalid tokens are treated as anonymous rather than
// rejected.
func OptionalAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return c.Next()
		}

		claims := &authClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err == nil && token.Valid {
			c.Locals("userID", claims.Subject)
			c.Locals("userRole", claims.Role)
		}
		return c.Next()
	}
}

// AdminRequired rejects non-admin users. Must run after AuthRequired.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role, _ := c.Locals("userRole").(string); role != "admin" {
			return errForbidden(c, "admin access required")
		}
		return c.Next()
	}
}

// currentUserID returns the authenticated user's ID, or "" for anonymous
// requests.
func currentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
