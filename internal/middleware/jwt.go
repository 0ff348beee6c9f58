package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys populated by JWTAuth for downstream handlers.
const (
	CtxUserID = "user_id" // uint64 subject of the token
	CtxRole   = "role"    // string role claim
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request context.
// The provided secret must match the one used when issuing tokens.  The
// subject is parsed into a uint64 up front so handlers never repeat the
// conversion; a token whose subject is not numeric is rejected outright.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Parse with HS256 and our secret; any other signing method is
			// rejected by the key callback.
			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			uid, err := subjectID(claims["sub"])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			role, _ := claims["role"].(string)

			c.Set(CtxUserID, uid)
			c.Set(CtxRole, role)
			return next(c)
		}
	}
}

// subjectID normalizes the "sub" claim into a uint64 user ID.  JSON
// numbers arrive as float64; string subjects are parsed as decimal.
func subjectID(v interface{}) (uint64, error) {
	switch s := v.(type) {
	case float64:
		if s < 0 {
			return 0, fmt.Errorf("negative subject")
		}
		return uint64(s), nil
	case string:
		return strconv.ParseUint(s, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected subject type %T", v)
	}
}

// UserID returns the authenticated user's ID from the context, or 0
// when the request passed through no JWTAuth middleware.
func UserID(c echo.Context) uint64 {
	id, _ := c.Get(CtxUserID).(uint64)
	return id
}
