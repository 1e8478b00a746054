package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnedelko/user-service/internal/logging"
	"github.com/pnedelko/user-service/internal/storage"
)

type UploadHTTP struct {
	Storage *storage.Storage
}

func (h *UploadHTTP) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Form data invalid")
	}
	if fileHeader.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no selected file")
	}
	if !storage.AllowedFile(fileHeader.Filename) {
		return echo.NewHTTPError(http.StatusBadRequest, "Extension is not allowed")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Form data invalid")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.RandomKey(fileHeader.Filename)
	if err := h.Storage.Upload(ctx, key, contentType, src); err != nil {
		logging.FromContext(ctx).Error("upload failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Can not upload to server")
	}
	return c.JSON(http.StatusOK, echo.Map{"filename": key})
}

func (h *UploadHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("*")

	body, contentType, err := h.Storage.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, "File not found")
		}
		logging.FromContext(ctx).Error("download failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	defer body.Close()

	return c.Stream(http.StatusOK, contentType, body)
}

func (h *UploadHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("*")

	exists, err := h.Storage.Exists(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Error("head failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "File not found")
	}

	if err := h.Storage.Delete(ctx, key); err != nil {
		logging.FromContext(ctx).Error("delete failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

// DownloadURL hands out a short-lived presigned GET link so clients
// fetch large files from the bucket directly.
func (h *UploadHTTP) DownloadURL(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("*")

	exists, err := h.Storage.Exists(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Error("head failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	if !exists {
		return echo.NewHTTPError(http.StatusBadRequest, "File not found")
	}

	url, err := h.Storage.PresignGet(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Error("presign get failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"url": url})
}

func (h *UploadHTTP) PresignUpload(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Filename    string `json:"filename"`
		ContentType string `json:"content_type"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Filename == "" || !storage.AllowedFile(req.Filename) {
		return echo.NewHTTPError(http.StatusBadRequest, "Extension is not allowed")
	}

	key := storage.RandomKey(req.Filename)
	url, err := h.Storage.PresignPut(ctx, key, req.ContentType)
	if err != nil {
		logging.FromContext(ctx).Error("presign put failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"filename": key, "url": url})
}
