// Package model defines the core data structures for the gas benchmarking API.
package model

import (
	"time"
)

// GasEstimate is a single oracle's view of gas pricing on one network.
// This is the structure that flows from the oracle clients through
// validation and aggregation into snapshots and stored records.
type GasEstimate struct {
	// Network is the chain slug the estimate belongs to
	Network string `json:"network"`

	// Source identifies the oracle that produced the estimate
	Source string `json:"source"`

	// BaseFeeGwei is the expected base fee of the next block
	BaseFeeGwei float64 `json:"base_fee_gwei"`

	// PriorityFeeGwei is the suggested tip at the target confidence
	PriorityFeeGwei float64 `json:"priority_fee_gwei"`

	// TotalGwei is the full per-gas price (base + priority, or the
	// legacy gas price on pre-EIP-1559 networks)
	TotalGwei float64 `json:"total_gwei"`

	// Confidence is the inclusion probability for the suggested fee,
	// 0-100. Zero means the source does not report confidence.
	Confidence float64 `json:"confidence,omitempty"`

	// NativeUSD is the USD price of the network's gas token, 0 if the
	// source could not provide one
	NativeUSD float64 `json:"native_usd,omitempty"`

	// CollectedAt is the Unix timestamp when the estimate was taken
	CollectedAt int64 `json:"collected_at"`
}

// NewGasEstimate creates an estimate stamped with the current time.
func NewGasEstimate(network, source string, baseFee, priorityFee, total float64) GasEstimate {
	return GasEstimate{
		Network:         network,
		Source:          source,
		BaseFeeGwei:     baseFee,
		PriorityFeeGwei: priorityFee,
		TotalGwei:       total,
		CollectedAt:     time.Now().Unix(),
	}
}

// IsFresh reports whether the estimate was collected within maxAge.
func (e GasEstimate) IsFresh(maxAge time.Duration) bool {
	return time.Since(time.Unix(e.CollectedAt, 0)) <= maxAge
}

// TransferGas is the intrinsic gas of a plain value transfer, used as the
// reference transaction for cross-network cost comparison.
const TransferGas = 21000

// CostUSD converts the estimate into a USD cost for the given gas amount,
// applying the network's gas multiplier. Returns 0 when no USD rate is known.
func (e GasEstimate) CostUSD(gas uint64, gasMultiplier float64) float64 {
	if e.NativeUSD <= 0 {
		return 0
	}
	if gasMultiplier <= 0 {
		gasMultiplier = 1.0
	}
	// 1e9 gwei per native token
	native := e.TotalGwei * float64(gas) * gasMultiplier / 1e9
	return native * e.NativeUSD
}

// NetworkSnapshot is the normalized, aggregated view of one network inside a
// multi-chain snapshot.
type NetworkSnapshot struct {
	Network      string `json:"network"`
	Kind         string `json:"kind"`
	NativeSymbol string `json:"native_symbol"`

	Estimate GasEstimate `json:"estimate"`

	// Sources is the number of oracles that contributed to the estimate
	Sources int `json:"sources"`

	// TransferCostUSD is the normalized USD cost of a 21k-gas transfer
	TransferCostUSD float64 `json:"transfer_cost_usd"`

	// Error carries the per-network failure when the fetch did not succeed
	Error string `json:"error,omitempty"`
}

// Failed reports whether the network could not be sampled.
func (s NetworkSnapshot) Failed() bool {
	return s.Error != ""
}

// MultiChainSnapshot is one round of gas sampling across all enabled networks.
type MultiChainSnapshot struct {
	Networks    map[string]NetworkSnapshot `json:"networks"`
	CollectedAt int64                      `json:"collected_at"`
}

// Succeeded returns the snapshots that carry a usable estimate.
func (s MultiChainSnapshot) Succeeded() []NetworkSnapshot {
	out := make([]NetworkSnapshot, 0, len(s.Networks))
	for _, n := range s.Networks {
		if !n.Failed() {
			out = append(out, n)
		}
	}
	return out
}

// GasMonitoringRecord is a persisted gas observation: either a live oracle
// sample or a benchmark row imported from a gas-reporter CSV.
type GasMonitoringRecord struct {
	ID      string `json:"id"`
	Network string `json:"network"`

	// Contract and Method are set for benchmark rows; empty for live samples
	Contract string `json:"contract,omitempty"`
	Method   string `json:"method,omitempty"`

	BaseFeeGwei     float64 `json:"base_fee_gwei"`
	PriorityFeeGwei float64 `json:"priority_fee_gwei"`
	TotalGwei       float64 `json:"total_gwei"`

	// GasUsed is the measured gas for benchmark rows, 0 for live samples
	GasUsed uint64 `json:"gas_used,omitempty"`

	NativeUSD float64 `json:"native_usd,omitempty"`
	CostUSD   float64 `json:"cost_usd,omitempty"`

	Source string `json:"source"`

	// Snapshot optionally carries the raw snapshot JSON the record came from
	Snapshot string `json:"snapshot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// IsBenchmark reports whether the record came from a benchmark import rather
// than a live oracle sample.
func (r GasMonitoringRecord) IsBenchmark() bool {
	return r.Contract != "" && r.Method != ""
}

// RecordQuery narrows record listings.
type RecordQuery struct {
	Network  string
	Contract string
	Method   string
	Since    time.Time
	Until    time.Time
	SortBy   string `validate:"omitempty,oneof=created_at cost_usd total_gwei network"`
	SortDesc bool
	Limit    int `validate:"omitempty,gte=0,lte=1000"`
	Offset   int `validate:"omitempty,gte=0"`
}

// NetworkRanking is one row of the cost-efficiency ranking, cheapest first.
type NetworkRanking struct {
	Network     string  `json:"network"`
	MeanCostUSD float64 `json:"mean_cost_usd"`
	Samples     int     `json:"samples"`
}

// BaselineDiscount compares a contract's cost on one network against the
// baseline network.
type BaselineDiscount struct {
	Contract    string  `json:"contract"`
	Network     string  `json:"network"`
	CostUSD     float64 `json:"cost_usd"`
	BaselineUSD float64 `json:"baseline_usd"`
	DiscountUSD float64 `json:"discount_usd"`
	DiscountPct float64 `json:"discount_pct"`
}

// FunctionVariability captures how much a method's cost swings across
// networks.
type FunctionVariability struct {
	Contract  string  `json:"contract"`
	Method    string  `json:"method"`
	MeanUSD   float64 `json:"mean_usd"`
	StdDevUSD float64 `json:"std_dev_usd"`
	Networks  int     `json:"networks"`
}

// ReportResults is the computed payload of a comparison report.
type ReportResults struct {
	Ranking     []NetworkRanking      `json:"ranking"`
	Discounts   []BaselineDiscount    `json:"discounts"`
	Variability []FunctionVariability `json:"variability"`

	// Pivot maps method -> network -> mean USD cost (heatmap data)
	Pivot map[string]map[string]float64 `json:"pivot"`
}

// ComparisonReport is a persisted cross-network cost analysis computed from
// stored monitoring records.
type ComparisonReport struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Baseline    string        `json:"baseline"`
	WindowStart time.Time     `json:"window_start"`
	WindowEnd   time.Time     `json:"window_end"`
	Results     ReportResults `json:"results"`
	CreatedAt   time.Time     `json:"created_at"`
}
