package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewGasEstimate(t *testing.T) {
	est := NewGasEstimate("ethereum", "test", 10, 2, 12)

	assert.Equal(t, "ethereum", est.Network)
	assert.Equal(t, "test", est.Source)
	assert.Equal(t, 12.0, est.TotalGwei)
	assert.True(t, est.IsFresh(time.Minute))
}

func TestIsFresh(t *testing.T) {
	est := NewGasEstimate("ethereum", "test", 0, 0, 10)
	est.CollectedAt = time.Now().Add(-5 * time.Minute).Unix()

	assert.True(t, est.IsFresh(10*time.Minute))
	assert.False(t, est.IsFresh(time.Minute))
}

func TestCostUSD(t *testing.T) {
	est := GasEstimate{TotalGwei: 20, NativeUSD: 3000}

	// 20 gwei * 21000 gas / 1e9 * $3000
	assert.InDelta(t, 1.26, est.CostUSD(TransferGas, 1.0), 1e-9)

	// Rollup data-availability multiplier scales the cost
	assert.InDelta(t, 1.3860, est.CostUSD(TransferGas, 1.1), 1e-9)

	// Zero multiplier falls back to 1.0
	assert.InDelta(t, 1.26, est.CostUSD(TransferGas, 0), 1e-9)

	// No USD rate means no cost
	assert.Zero(t, GasEstimate{TotalGwei: 20}.CostUSD(TransferGas, 1.0))
}

func TestSnapshotSucceeded(t *testing.T) {
	snap := MultiChainSnapshot{
		Networks: map[string]NetworkSnapshot{
			"ethereum": {Network: "ethereum"},
			"polygon":  {Network: "polygon", Error: "no valid estimates"},
		},
	}

	ok := snap.Succeeded()
	assert.Len(t, ok, 1)
	assert.Equal(t, "ethereum", ok[0].Network)
	assert.True(t, snap.Networks["polygon"].Failed())
}

func TestIsBenchmark(t *testing.T) {
	live := GasMonitoringRecord{Network: "ethereum", Source: "aggregated"}
	assert.False(t, live.IsBenchmark())

	bench := GasMonitoringRecord{Network: "ethereum", Contract: "Token", Method: "transfer"}
	assert.True(t, bench.IsBenchmark())

	partial := GasMonitoringRecord{Network: "ethereum", Contract: "Token"}
	assert.False(t, partial.IsBenchmark())
}
