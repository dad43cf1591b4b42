package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"fulfillment/internal/core/domain/model/kernel"
)

const identityContextKey = "identity"

// Identity is the authenticated caller, extracted from the bearer token.
type Identity struct {
	ID   kernel.UUID
	Role kernel.Role
}

// NewAuthMiddleware returns an Echo middleware that authenticates requests
// with an HS256 bearer token. The token's "sub" claim carries the user id
// and "role" the platform role.
func NewAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return ctx.JSON(http.StatusUnauthorized, errorResponse{
					Code:    http.StatusUnauthorized,
					Message: "Missing bearer token",
				})
			}

			identity, err := ParseIdentity(token, secret)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, errorResponse{
					Code:    http.StatusUnauthorized,
					Message: "Invalid bearer token",
				})
			}

			ctx.Set(identityContextKey, identity)
			return next(ctx)
		}
	}
}

// ParseIdentity validates an HS256 token and extracts the caller's identity.
// Shared with the websocket handshake, which cannot rely on middleware.
func ParseIdentity(token, secret string) (Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("unexpected claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil {
		return Identity{}, err
	}
	id, err := kernel.UUIDFromString(subject)
	if err != nil {
		return Identity{}, err
	}

	roleClaim, ok := claims["role"].(string)
	if !ok {
		return Identity{}, fmt.Errorf("role claim is missing")
	}
	role, err := kernel.RoleFromString(roleClaim)
	if err != nil {
		return Identity{}, err
	}

	return Identity{ID: id, Role: role}, nil
}

// IdentityFrom returns the authenticated identity stored by the middleware.
func IdentityFrom(ctx echo.Context) (Identity, bool) {
	identity, ok := ctx.Get(identityContextKey).(Identity)
	return identity, ok
}
