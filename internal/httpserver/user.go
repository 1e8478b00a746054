package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/middleware"
	"github.com/pnedelko/user-service/internal/models"
	"github.com/pnedelko/user-service/internal/repo"
	"github.com/pnedelko/user-service/internal/search"
	"github.com/pnedelko/user-service/internal/service"
	"github.com/pnedelko/user-service/internal/util"
)

type UserHTTP struct {
	Svc     *service.UserService
	ES      *elasticsearch.Client
	ESIndex string
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func (h *UserHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if len(req.Password) < minPasswordLen {
		return echo.NewHTTPError(http.StatusBadRequest, "password is too short")
	}

	user, err := h.Svc.Create(ctx, service.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Role:     models.Role(req.Role),
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusBadRequest, "email already in use")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user data")
		}
		logging.FromContext(ctx).Error("create user failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	filter := repo.UserFilter{
		Role:     c.QueryParam("role"),
		Status:   c.QueryParam("status"),
		SortBy:   c.QueryParam("sort_by"),
		SortDesc: c.QueryParam("sort_type") == "desc",
		Offset:   offset,
		Limit:    limit,
	}

	users, total, err := h.Svc.List(ctx, filter)
	if err != nil {
		logging.FromContext(ctx).Error("list users failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": users,
		"meta": echo.Map{
			"offset": offset,
			"limit":  limit,
			"total":  total,
		},
	})
}

func (h *UserHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, limit := util.Calculate(page, size)

	ctx := c.Request().Context()
	total, users, err := search.SearchUsers(ctx, h.ES, h.ESIndex, q, from, limit)
	if err != nil {
		logging.FromContext(ctx).Error("user search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search unavailable")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "users": users})
}

func (h *UserHTTP) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return h.respondWithUser(c, id)
}

func (h *UserHTTP) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return h.respondWithUser(c, userID)
}

func (h *UserHTTP) respondWithUser(c echo.Context, id uuid.UUID) error {
	ctx := c.Request().Context()
	user, err := h.Svc.Get(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "User not found or is blocked")
		}
		logging.FromContext(ctx).Error("get user failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return h.applyUpdate(c, id)
}

// UpdateMe lets an account edit its own profile; role changes stay
// admin-only through the /users/:id route.
func (h *UserHTTP) UpdateMe(c echo.Context) error {
	userID, ok := middleware.UserIDFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	req.Role = nil
	return h.update(c, userID, req)
}

func (h *UserHTTP) applyUpdate(c echo.Context, id uuid.UUID) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	return h.update(c, id, req)
}

func (h *UserHTTP) update(c echo.Context, id uuid.UUID, req updateUserRequest) error {
	ctx := c.Request().Context()

	if req.Password != nil && len(*req.Password) < minPasswordLen {
		return echo.NewHTTPError(http.StatusBadRequest, "password is too short")
	}

	in := service.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.Svc.Update(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return echo.NewHTTPError(http.StatusBadRequest, "User not found or is blocked")
		case errors.Is(err, service.ErrEmailTaken):
			return echo.NewHTTPError(http.StatusBadRequest, "email already in use")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid user data")
		}
		logging.FromContext(ctx).Error("update user failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Svc.Block(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "User not found or is blocked")
		}
		logging.FromContext(ctx).Error("block user failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
