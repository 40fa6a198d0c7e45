package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/gasbench-api/internal/ingest"
	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/store"
)

// RecordHandler serves the gas monitoring record endpoints.
type RecordHandler struct {
	records store.RecordRepository
}

// NewRecordHandler creates the record handler.
func NewRecordHandler(records store.RecordRepository) *RecordHandler {
	return &RecordHandler{records: records}
}

// List handles GET /api/gas-monitoring/records.
func (h *RecordHandler) List(c *gin.Context) {
	query, err := parseRecordQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	records, err := h.records.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, RecordListResponse{Records: records, Count: len(records)})
}

// Create handles POST /api/gas-monitoring/records.
func (h *RecordHandler) Create(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	record := req.ToDomain()
	if err := h.records.Create(c.Request.Context(), record); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get handles GET /api/gas-monitoring/records/:id.
func (h *RecordHandler) Get(c *gin.Context) {
	record, err := h.records.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// Delete handles DELETE /api/gas-monitoring/records/:id.
func (h *RecordHandler) Delete(c *gin.Context) {
	if err := h.records.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// Import handles POST /api/gas-monitoring/import, accepting a gas-reporter
// CSV as the request body.
func (h *RecordHandler) Import(c *gin.Context) {
	count, err := ingest.Import(c.Request.Context(), c.Request.Body, h.records)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, ImportResponse{Imported: count})
}

func parseRecordQuery(c *gin.Context) (*model.RecordQuery, error) {
	query := &model.RecordQuery{
		Network:  c.Query("network"),
		Contract: c.Query("contract"),
		Method:   c.Query("method"),
		SortBy:   c.Query("sort_by"),
	}

	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("since must be RFC3339")
		}
		query.Since = t
	}
	if v := c.Query("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, errors.New("until must be RFC3339")
		}
		query.Until = t
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("limit must be an integer")
		}
		query.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("offset must be an integer")
		}
		query.Offset = n
	}
	if v := c.Query("order"); v == "desc" {
		query.SortDesc = true
	}

	return query, nil
}
