package uploads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"checkcontrat-backend/internal/shared/server/middleware"
	"checkcontrat-backend/internal/shared/server/respond"
	"checkcontrat-backend/internal/shared/telemetry"
)

type Handler struct {
	Svc *Service
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	// Multipart overhead on top of the file body.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxBytes()+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	up, err := h.Svc.Save(c.Request.Context(), userID, MultipartSource{Header: fh})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyFilename):
			respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_file_type", "only PDF and DOCX files are accepted", nil)
		case errors.Is(err, ErrTooLarge):
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds upload limit", nil)
		default:
			telemetry.Error("uploads.save.failed", map[string]any{
				"err":        err.Error(),
				"user_id":    userID,
				"request_id": c.GetString("requestId"),
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store upload", nil)
		}
		return
	}

	telemetry.Info("uploads.saved", map[string]any{
		"user_id":    userID,
		"file_name":  up.FileName,
		"size_bytes": up.SizeBytes,
		"request_id": c.GetString("requestId"),
	})
	respond.JSON(c, http.StatusCreated, up)
}
