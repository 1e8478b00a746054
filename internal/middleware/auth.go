package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/repo"
	"github.com/pnedelko/user-service/internal/service"
	"github.com/pnedelko/user-service/internal/tokens"
)

const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
)

// TokenGuard parses and verifies the bearer token before the handler
// runs. Handlers read the verified claims from the echo context.
type TokenGuard struct {
	Tokens *service.TokenService
	Repo   *repo.GormRepo
}

func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

func (g *TokenGuard) require(typ string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := BearerToken(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			claims, err := g.Tokens.Validate(c.Request().Context(), raw, typ)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, guardMessage(err))
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

func (g *TokenGuard) RequireAccess() echo.MiddlewareFunc {
	return g.require(tokens.TypeAccess)
}

func (g *TokenGuard) RequireRefresh() echo.MiddlewareFunc {
	return g.require(tokens.TypeRefresh)
}

// RequireAdmin runs after RequireAccess and checks the account's role
// against the database, so a role change or block takes effect without
// waiting for token expiry.
func (g *TokenGuard) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get(UserIDKey).(uuid.UUID)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			user, err := g.Repo.FindActiveUserByID(c.Request().Context(), userID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if user.Role != models.RoleAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin only")
			}
			return next(c)
		}
	}
}

func guardMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, service.ErrTokenRevoked):
		return "token revoked"
	case errors.Is(err, service.ErrTokenTypeMismatch):
		return "wrong token type"
	default:
		return "invalid token"
	}
}

func ClaimsFrom(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*tokens.Claims)
	return claims, ok
}

func UserIDFrom(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(UserIDKey).(uuid.UUID)
	return id, ok
}
