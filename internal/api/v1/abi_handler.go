package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/gasbench-api/internal/abi"
)

// ABIHandler serves the embedded contract ABIs used by the benchmark suites.
type ABIHandler struct {
	registry *abi.Registry
}

// NewABIHandler creates the ABI handler.
func NewABIHandler(registry *abi.Registry) *ABIHandler {
	return &ABIHandler{registry: registry}
}

// List handles GET /api/abi.
func (h *ABIHandler) List(c *gin.Context) {
	names := h.registry.Names()

	resp := ABIListResponse{Contracts: make([]ABISummary, 0, len(names))}
	for _, name := range names {
		entry, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		resp.Contracts = append(resp.Contracts, ABISummary{
			Name:    entry.Name,
			Methods: entry.Methods,
			Events:  entry.Events,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/abi/:name, returning the raw ABI JSON.
func (h *ABIHandler) Get(c *gin.Context) {
	entry, ok := h.registry.Get(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown contract abi"})
		return
	}

	c.Data(http.StatusOK, "application/json", entry.Raw)
}
