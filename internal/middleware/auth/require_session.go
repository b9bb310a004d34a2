package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/tokens"
)

const (
	ContextUsername = "username"
	ContextClaims   = "claims"
)

type Verifier interface {
	Verify(token string) (*tokens.SessionClaims, error)
}

type SessionAuth struct {
	Tokens Verifier
}

func NewSessionAuth(v Verifier) *SessionAuth {
	return &SessionAuth{Tokens: v}
}

// RequireSession admits requests carrying a valid bearer session token.
// No token is 401; a bad or expired one is 403.
func (m *SessionAuth) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "require_session")

		raw := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if raw == "" {
			l.Warn("auth_rejected", "status", http.StatusUnauthorized, "reason", "no token provided")
			return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
		}

		claims, err := m.Tokens.Verify(raw)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, tokens.ErrTokenExpired) {
				reason = "token expired"
			}
			l.Warn("auth_rejected", "status", http.StatusForbidden, "reason", reason, "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "invalid token")
		}

		c.Set(ContextUsername, claims.Username)
		c.Set(ContextClaims, claims)
		return next(c)
	}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header has another scheme or no token.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func Username(c echo.Context) string {
	s, _ := c.Get(ContextUsername).(string)
	return s
}

func Claims(c echo.Context) *tokens.SessionClaims {
	claims, _ := c.Get(ContextClaims).(*tokens.SessionClaims)
	return claims
}
