package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnedelko/user-service/internal/middleware"
)

type Deps struct {
	AuthHandler   *AuthHTTP
	UserHandler   *UserHTTP
	UploadHandler *UploadHTTP
	Guard         *middleware.TokenGuard
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	requireAccess := d.Guard.RequireAccess()
	requireRefresh := d.Guard.RequireRefresh()
	requireAdmin := d.Guard.RequireAdmin()

	auth := e.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/logout-access", d.AuthHandler.Logout, requireAccess)
	auth.POST("/logout-refresh", d.AuthHandler.Logout, requireRefresh)
	auth.POST("/token-refresh", d.AuthHandler.TokenRefresh)
	auth.POST("/change-password", d.AuthHandler.ChangePassword, requireAccess)
	auth.POST("/forgot-password", d.AuthHandler.ForgotPassword)
	auth.POST("/reset-password", d.AuthHandler.ResetPassword)

	v1 := e.Group("/api/v1", requireAccess)

	users := v1.Group("/users")
	users.GET("/me", d.UserHandler.Me)
	users.PUT("/me", d.UserHandler.UpdateMe)
	users.POST("", d.UserHandler.Create, requireAdmin)
	users.GET("", d.UserHandler.List, requireAdmin)
	users.GET("/search", d.UserHandler.Search, requireAdmin)
	users.GET("/:id", d.UserHandler.Get)
	users.PUT("/:id", d.UserHandler.Update, requireAdmin)
	users.DELETE("/:id", d.UserHandler.Delete, requireAdmin)

	uploads := v1.Group("/uploads")
	uploads.POST("", d.UploadHandler.Upload)
	uploads.POST("/presign", d.UploadHandler.PresignUpload)
	uploads.GET("/url/*", d.UploadHandler.DownloadURL)
	uploads.GET("/*", d.UploadHandler.Get)
	uploads.DELETE("/*", d.UploadHandler.Delete)
}
