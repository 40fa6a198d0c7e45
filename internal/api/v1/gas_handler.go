package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/gasbench-api/internal/circuitbreaker"
	"github.com/yourorg/gasbench-api/internal/oracle"
	"github.com/yourorg/gasbench-api/internal/security"
)

// GasHandler serves live multi-chain gas snapshots.
type GasHandler struct {
	service *oracle.MultiChainService
	breaker *circuitbreaker.CircuitBreaker
	signer  *security.SnapshotSigner
}

// NewGasHandler creates the gas snapshot handler. The signer may be nil when
// snapshot signing is disabled.
func NewGasHandler(service *oracle.MultiChainService, breaker *circuitbreaker.CircuitBreaker, signer *security.SnapshotSigner) *GasHandler {
	return &GasHandler{service: service, breaker: breaker, signer: signer}
}

// Snapshot handles GET /api/gas. The fresh snapshot is checked against the
// circuit breaker; when it fails the check the last good snapshot is served
// as stale data instead of an error, so the dashboard never goes blank.
func (h *GasHandler) Snapshot(c *gin.Context) {
	snapshot, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}

	resp := SnapshotResponse{Snapshot: snapshot}

	if checkErr := h.breaker.Check(snapshot); checkErr != nil {
		last := h.breaker.LastGoodSnapshot()
		if last == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: checkErr.Error()})
			return
		}
		logrus.Warnf("Serving stale snapshot: %v", checkErr)
		resp.Snapshot = *last
		resp.Stale = true
	}

	h.sign(&resp)
	c.JSON(http.StatusOK, resp)
}

// NetworkSnapshot handles GET /api/gas/:network.
func (h *GasHandler) NetworkSnapshot(c *gin.Context) {
	slug := c.Param("network")

	snap, err := h.service.NetworkSnapshot(c.Request.Context(), slug)
	if err != nil {
		status := http.StatusBadGateway
		if snap.Network == "" {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, snap)
}

// Circuit handles GET /circuit.
func (h *GasHandler) Circuit(c *gin.Context) {
	c.JSON(http.StatusOK, CircuitResponse{State: h.breaker.GetState().String()})
}

// ResetCircuit handles POST /circuit/reset.
func (h *GasHandler) ResetCircuit(c *gin.Context) {
	h.breaker.Reset()
	c.JSON(http.StatusOK, CircuitResponse{State: h.breaker.GetState().String()})
}

func (h *GasHandler) sign(resp *SnapshotResponse) {
	if h.signer == nil {
		return
	}
	sig, err := h.signer.Sign(resp.Snapshot)
	if err != nil {
		logrus.Warnf("Failed to sign snapshot: %v", err)
		return
	}
	resp.Signature = sig
}
