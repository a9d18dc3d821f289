package checks

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"checkcontrat-backend/internal/extract"
	"checkcontrat-backend/internal/llm"
	"checkcontrat-backend/internal/report"
	"checkcontrat-backend/internal/shared/server/middleware"
	"checkcontrat-backend/internal/shared/server/respond"
)

const (
	defaultListLimit = 20
	maxListLimit     = 50
	xlsxContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler wires HTTP handlers to the checks service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches check routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/checks/contract", h.checkContract)
	rg.POST("/checks/payslip", h.checkPayslip)
	rg.GET("/checks", h.listChecks)
	rg.GET("/checks/summary", h.summary)
	rg.GET("/checks/export.xlsx", h.exportXLSX)
	rg.GET("/checks/:id", h.getCheck)
}

type contractRequest struct {
	File         string `json:"file"`
	ContractType string `json:"contractType"`
}

type payslipRequest struct {
	PayslipFile  string `json:"payslipFile"`
	ContractFile string `json:"contractFile"`
	Hours        *int   `json:"hours"`
}

type checkResponse struct {
	Check
	ReportURL string `json:"reportUrl"`
}

func newCheckResponse(c Check) checkResponse {
	return checkResponse{Check: c, ReportURL: "/api/v1/files/" + c.OutputFile}
}

func (h *Handler) checkContract(c *gin.Context) {
	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set("checkModule", ModuleContrat)

	check, err := h.Svc.CheckContract(c.Request.Context(), middleware.UserIDFromContext(c), req.File, req.ContractType)
	if err != nil {
		writeCheckError(c, err)
		return
	}
	c.Set("checkId", check.ID)
	respond.JSON(c, http.StatusCreated, newCheckResponse(check))
}

func (h *Handler) checkPayslip(c *gin.Context) {
	var req payslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set("checkModule", ModuleFiche)

	check, err := h.Svc.CheckPayslip(c.Request.Context(), middleware.UserIDFromContext(c), req.PayslipFile, req.ContractFile, req.Hours)
	if err != nil {
		writeCheckError(c, err)
		return
	}
	c.Set("checkId", check.ID)
	respond.JSON(c, http.StatusCreated, newCheckResponse(check))
}

func (h *Handler) getCheck(c *gin.Context) {
	checkID := c.Param("id")
	if checkID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "check id is required", nil)
		return
	}
	c.Set("checkId", checkID)

	check, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), checkID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "check not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch check", nil)
		}
		return
	}
	respond.OK(c, newCheckResponse(check))
}

func (h *Handler) listChecks(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	checks, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list checks", nil)
		return
	}

	items := make([]checkResponse, 0, len(checks))
	for _, check := range checks {
		items = append(items, newCheckResponse(check))
	}
	respond.OK(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) summary(c *gin.Context) {
	sum, err := h.Svc.Summary(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to summarize checks", nil)
		return
	}
	respond.OK(c, sum)
}

func (h *Handler) exportXLSX(c *gin.Context) {
	data, err := h.Svc.ExportXLSX(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to export checks", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="analyses.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func writeCheckError(c *gin.Context, err error) {
	var svcErr *llm.ServiceError
	var renderErr *report.RenderError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedFileType):
		respond.Error(c, http.StatusBadRequest, "unsupported_file_type", "only PDF and DOCX files are accepted", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "file does not belong to the current user", nil)
	case errors.Is(err, extract.ErrFileNotFound):
		respond.Error(c, http.StatusNotFound, "file_not_found", "uploaded file not found", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "analysis_timeout", "analysis took too long", nil)
	case errors.As(err, &svcErr):
		respond.Error(c, http.StatusBadGateway, "analysis_unavailable", "analysis service unavailable", nil)
	case errors.As(err, &renderErr):
		respond.Error(c, http.StatusBadGateway, "report_failed", "failed to render report", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run check", nil)
	}
}
