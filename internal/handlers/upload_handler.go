package handlers

import (
	"net/http"
	"path/filepath"

	"yatube/internal/storage"

	"github.com/labstack/echo/v4"
)

// UploadHandler stores post images in object storage
type UploadHandler struct {
	uploader *storage.Uploader
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploader *storage.Uploader) *UploadHandler {
	return &UploadHandler{uploader: uploader}
}

// RegisterUploadRoutes registers upload-related routes
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/upload", h.UploadImage)
}

// UploadImage accepts a multipart "image" file and returns its public URL
func (h *UploadHandler) UploadImage(c echo.Context) error {
	if h.uploader == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Image storage is not configured")
	}
	if getUserIDFromContext(c) == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to get file")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to open file")
	}
	defer src.Close()

	url, err := h.uploader.Upload(
		c.Request().Context(),
		src,
		file.Size,
		file.Header.Get("Content-Type"),
		filepath.Ext(file.Filename),
	)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to upload: "+err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"url": url})
}
