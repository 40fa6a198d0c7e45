package v1

import (
	"time"

	"github.com/yourorg/gasbench-api/internal/model"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SnapshotResponse wraps a multi-chain snapshot with response metadata.
type SnapshotResponse struct {
	Snapshot model.MultiChainSnapshot `json:"snapshot"`

	// Stale is set when the circuit breaker rejected the fresh snapshot
	// and the last good one is served instead
	Stale bool `json:"stale,omitempty"`

	// Signature is present when snapshot signing is enabled
	Signature string `json:"signature,omitempty"`
}

// CreateRecordRequest is the POST body for a manual monitoring record.
type CreateRecordRequest struct {
	Network  string `json:"network" binding:"required"`
	Contract string `json:"contract"`
	Method   string `json:"method"`

	BaseFeeGwei     float64 `json:"base_fee_gwei" binding:"gte=0"`
	PriorityFeeGwei float64 `json:"priority_fee_gwei" binding:"gte=0"`
	TotalGwei       float64 `json:"total_gwei" binding:"gte=0"`
	GasUsed         uint64  `json:"gas_used"`
	NativeUSD       float64 `json:"native_usd" binding:"gte=0"`
	CostUSD         float64 `json:"cost_usd" binding:"gte=0"`

	Source string `json:"source"`
}

// ToDomain converts the request into a domain record.
func (r CreateRecordRequest) ToDomain() *model.GasMonitoringRecord {
	source := r.Source
	if source == "" {
		source = "manual"
	}
	return &model.GasMonitoringRecord{
		Network:         r.Network,
		Contract:        r.Contract,
		Method:          r.Method,
		BaseFeeGwei:     r.BaseFeeGwei,
		PriorityFeeGwei: r.PriorityFeeGwei,
		TotalGwei:       r.TotalGwei,
		GasUsed:         r.GasUsed,
		NativeUSD:       r.NativeUSD,
		CostUSD:         r.CostUSD,
		Source:          source,
	}
}

// RecordListResponse is the paginated record listing.
type RecordListResponse struct {
	Records []*model.GasMonitoringRecord `json:"records"`
	Count   int                          `json:"count"`
}

// GenerateReportRequest is the POST body for report generation.
type GenerateReportRequest struct {
	Title    string    `json:"title"`
	Baseline string    `json:"baseline"`
	Since    time.Time `json:"since"`
	Until    time.Time `json:"until"`
}

// ReportListResponse is the paginated report listing.
type ReportListResponse struct {
	Reports []*model.ComparisonReport `json:"reports"`
	Count   int                       `json:"count"`
}

// ImportResponse reports the outcome of a CSV import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// ABIListResponse lists the registered contract ABIs.
type ABIListResponse struct {
	Contracts []ABISummary `json:"contracts"`
}

// ABISummary is the short form of one registered ABI.
type ABISummary struct {
	Name    string   `json:"name"`
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// StatusResponse is the service status payload.
type StatusResponse struct {
	Service      string   `json:"service"`
	Networks     []string `json:"networks"`
	CircuitState string   `json:"circuit_state"`
	SigningKey   string   `json:"signing_key,omitempty"`
}

// CircuitResponse reports the breaker state.
type CircuitResponse struct {
	State string `json:"state"`
}
