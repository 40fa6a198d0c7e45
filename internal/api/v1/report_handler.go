package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/gasbench-api/internal/report"
	"github.com/yourorg/gasbench-api/internal/store"
)

// ReportHandler serves the comparison report endpoints.
type ReportHandler struct {
	service *report.Service
	reports store.ReportRepository
}

// NewReportHandler creates the report handler.
func NewReportHandler(service *report.Service, reports store.ReportRepository) *ReportHandler {
	return &ReportHandler{service: service, reports: reports}
}

// Generate handles POST /api/reports.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	generated, err := h.service.Generate(c.Request.Context(), req.Title, req.Baseline, req.Since, req.Until)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, generated)
}

// List handles GET /api/reports.
func (h *ReportHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	reports, err := h.reports.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, ReportListResponse{Reports: reports, Count: len(reports)})
}

// Get handles GET /api/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	generated, err := h.reports.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, generated)
}

// Delete handles DELETE /api/reports/:id.
func (h *ReportHandler) Delete(c *gin.Context) {
	if err := h.reports.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
