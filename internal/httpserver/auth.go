package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/middleware"
	"github.com/pnedelko/user-service/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

const minPasswordLen = 8

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login failed", "status", 400)
			return echo.NewHTTPError(http.StatusBadRequest, "Login failed. Please enter a valid login name and password.")
		}
		l.Error("login failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"role":          res.Role,
	})
}

// Logout revokes whichever token the route guard validated; it backs
// both the access and the refresh logout routes.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	if err := h.Svc.Logout(ctx, claims); err != nil {
		logging.FromContext(ctx).Error("logout failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func (h *AuthHTTP) TokenRefresh(c echo.Context) error {
	ctx := c.Request().Context()

	raw, err := middleware.BearerToken(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	accessToken, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, tokenErrorMessage(err))
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": accessToken})
}

func (h *AuthHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req struct {
		Password           string `json:"password"`
		NewPassword        string `json:"new_password"`
		NewPasswordConfirm string `json:"new_password_confirm"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.NewPassword) < minPasswordLen {
		return echo.NewHTTPError(http.StatusBadRequest, "new password is too short")
	}
	if req.NewPassword != req.NewPasswordConfirm {
		return echo.NewHTTPError(http.StatusBadRequest, "new passwords do not match")
	}

	if err := h.Svc.ChangePassword(ctx, userID, req.Password, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusBadRequest, "Password is incorrect")
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "User not found")
		}
		logging.FromContext(ctx).Error("change password failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email is required")
	}

	if err := h.Svc.ForgotPassword(ctx, req.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "email is not found")
		}
		logging.FromContext(ctx).Error("forgot password failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Password        string `json:"password"`
		PasswordConfirm string `json:"password_confirm"`
		SetPasswordCode string `json:"set_password_code"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.SetPasswordCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "set password code is required")
	}
	if len(req.Password) < minPasswordLen {
		return echo.NewHTTPError(http.StatusBadRequest, "password is too short")
	}
	if req.Password != req.PasswordConfirm {
		return echo.NewHTTPError(http.StatusBadRequest, "passwords do not match")
	}

	if err := h.Svc.ResetPassword(ctx, req.SetPasswordCode, req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "set password code is not found")
		case errors.Is(err, service.ErrResetCodeExpired):
			return echo.NewHTTPError(http.StatusBadRequest, "set password code is expired")
		}
		logging.FromContext(ctx).Error("reset password failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func tokenErrorMessage(err error) string {
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
