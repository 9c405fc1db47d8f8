package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/topup-desk/support-service/internal/media"
)

type MediaHandler struct {
	storage media.Storage
}

func NewMediaHandler(storage media.Storage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// Upload принимает multipart-файл. Размер и тип проверяются до обращения
// к хранилищу: изображения до 5MB, PDF до 10MB.
func (h *MediaHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	kind, err := media.Validate(fh.Filename, fh.Size)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrPayloadTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file is too large"})
		case errors.Is(err, media.ErrUnsupportedType):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported file type"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file"})
		}
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer f.Close()

	url, err := h.storage.Save(c.Request.Context(), fh.Filename, kind, f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}
