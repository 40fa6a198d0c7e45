// Package aggregate combines gas estimates from several oracles into a single
// per-network estimate.
package aggregate

import (
	"math"
	"sort"

	"github.com/yourorg/gasbench-api/internal/model"
)

// AggregatedSource is the source label carried by combined estimates.
const AggregatedSource = "aggregated"

// WeightedByConfidence computes a confidence-weighted average of the fee
// components. Estimates without a confidence level weigh as much as a 50%
// one, so a lone RPC estimate still counts.
func WeightedByConfidence(estimates []model.GasEstimate) model.GasEstimate {
	if len(estimates) == 0 {
		return model.GasEstimate{Source: AggregatedSource}
	}

	var totalWeight, base, priority, total float64
	out := model.GasEstimate{Source: AggregatedSource}

	for _, e := range estimates {
		if e.TotalGwei < 0 {
			continue
		}
		w := e.Confidence
		if w <= 0 {
			w = 50
		}
		totalWeight += w
		base += e.BaseFeeGwei * w
		priority += e.PriorityFeeGwei * w
		total += e.TotalGwei * w

		if e.CollectedAt > out.CollectedAt {
			out.CollectedAt = e.CollectedAt
		}
		if e.Network != "" {
			out.Network = e.Network
		}
		if e.NativeUSD > 0 && out.NativeUSD == 0 {
			out.NativeUSD = e.NativeUSD
		}
		if e.Confidence > out.Confidence {
			out.Confidence = e.Confidence
		}
	}

	if totalWeight <= 0 || math.IsNaN(total) {
		return model.GasEstimate{Source: AggregatedSource, Network: out.Network}
	}

	out.BaseFeeGwei = base / totalWeight
	out.PriorityFeeGwei = priority / totalWeight
	out.TotalGwei = total / totalWeight
	return out
}

// Median computes the median of one estimate property.
func Median(estimates []model.GasEstimate, selector func(model.GasEstimate) float64) float64 {
	if len(estimates) == 0 {
		return 0
	}

	values := make([]float64, 0, len(estimates))
	for _, e := range estimates {
		if e.TotalGwei >= 0 {
			values = append(values, selector(e))
		}
	}

	if len(values) == 0 {
		return 0
	}

	sort.Float64s(values)
	n := len(values)

	if n%2 == 0 {
		return (values[n/2-1] + values[n/2]) / 2
	}
	return values[n/2]
}

// MedianEstimate takes per-field medians across the sources. Robust against
// a single oracle quoting nonsense, so it is preferred once three or more
// sources agree on a network.
func MedianEstimate(estimates []model.GasEstimate) model.GasEstimate {
	if len(estimates) == 0 {
		return model.GasEstimate{Source: AggregatedSource}
	}

	out := model.GasEstimate{
		Source:          AggregatedSource,
		BaseFeeGwei:     Median(estimates, func(e model.GasEstimate) float64 { return e.BaseFeeGwei }),
		PriorityFeeGwei: Median(estimates, func(e model.GasEstimate) float64 { return e.PriorityFeeGwei }),
		TotalGwei:       Median(estimates, func(e model.GasEstimate) float64 { return e.TotalGwei }),
	}

	for _, e := range estimates {
		if e.CollectedAt > out.CollectedAt {
			out.CollectedAt = e.CollectedAt
		}
		if e.Network != "" {
			out.Network = e.Network
		}
		if e.NativeUSD > 0 && out.NativeUSD == 0 {
			out.NativeUSD = e.NativeUSD
		}
		if e.Confidence > out.Confidence {
			out.Confidence = e.Confidence
		}
	}
	return out
}

// Combine merges the estimates for one network: median with three or more
// sources, confidence-weighted average below that.
func Combine(estimates []model.GasEstimate) model.GasEstimate {
	if len(estimates) >= 3 {
		return MedianEstimate(estimates)
	}
	return WeightedByConfidence(estimates)
}
