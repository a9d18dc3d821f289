package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"checkcontrat-backend/internal/shared/server/middleware"
	"checkcontrat-backend/internal/shared/server/respond"
	"checkcontrat-backend/internal/shared/storage/object"
	"checkcontrat-backend/internal/shared/telemetry"
)

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ReportOwner answers whether a generated report belongs to a user.
type ReportOwner interface {
	OwnsReport(ctx context.Context, userID, outputFile string) (bool, error)
}

// Handler serves uploaded inputs and generated reports to their owner.
type Handler struct {
	Input   object.ObjectStore
	Output  object.ObjectStore
	Reports ReportOwner
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files/:name", h.download)
}

func (h *Handler) download(c *gin.Context) {
	name := path.Base(strings.ReplaceAll(c.Param("name"), "\\", "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)

	store, err := h.locate(ctx, name)
	if err != nil {
		telemetry.Error("files.lookup.failed", map[string]any{
			"err":        err.Error(),
			"file_name":  name,
			"request_id": c.GetString("requestId"),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		return
	}
	if store == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
		return
	}

	allowed, err := h.allowed(ctx, userID, name)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		return
	}
	if !allowed {
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		return
	}

	rc, err := store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "file not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read file", nil)
		return
	}
	defer rc.Close()

	contentType, ok := contentTypes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `inline; filename="`+name+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("files.stream.failed", map[string]any{"err": err.Error(), "file_name": name})
	}
}

// locate returns the first area holding name, input before output.
func (h *Handler) locate(ctx context.Context, name string) (object.ObjectStore, error) {
	for _, store := range []object.ObjectStore{h.Input, h.Output} {
		if store == nil {
			continue
		}
		ok, err := store.Exists(ctx, name)
		if err != nil && !errors.Is(err, object.ErrInvalidKey) {
			return nil, err
		}
		if ok {
			return store, nil
		}
	}
	return nil, nil
}

func (h *Handler) allowed(ctx context.Context, userID, name string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	if strings.HasPrefix(name, userID+"_") {
		return true, nil
	}
	if h.Reports == nil {
		return false, nil
	}
	return h.Reports.OwnsReport(ctx, userID, name)
}
