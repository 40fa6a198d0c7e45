package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/model"
)

// fakeOracle is a controllable Oracle for service tests.
type fakeOracle struct {
	name  string
	gwei  float64
	usd   float64
	err   error
	only  map[string]bool
	calls atomic.Int64
}

func (f *fakeOracle) Name() string { return f.name }

func (f *fakeOracle) Supports(network chains.Network) bool {
	if f.only == nil {
		return true
	}
	return f.only[network.Slug]
}

func (f *fakeOracle) Estimate(ctx context.Context, network chains.Network) (model.GasEstimate, error) {
	f.calls.Add(1)
	if f.err != nil {
		return model.GasEstimate{}, f.err
	}
	est := model.NewGasEstimate(network.Slug, f.name, f.gwei*0.8, f.gwei*0.2, f.gwei)
	est.NativeUSD = f.usd
	return est, nil
}

func testServiceConfig() config.Config {
	return config.Config{
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		CacheTTL:      time.Minute,
	}
}

func testNetworks(t *testing.T, slugs ...string) []chains.Network {
	t.Helper()
	networks := make([]chains.Network, len(slugs))
	for i, slug := range slugs {
		n, err := chains.BySlug(slug)
		require.NoError(t, err)
		networks[i] = n
	}
	return networks
}

func TestSnapshotAllNetworks(t *testing.T) {
	networks := testNetworks(t, "ethereum", "polygon")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{
		&fakeOracle{name: "primary", gwei: 20, usd: 3000},
	})

	snapshot, err := service.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Networks, 2)

	eth := snapshot.Networks["ethereum"]
	assert.False(t, eth.Failed())
	assert.Equal(t, 20.0, eth.Estimate.TotalGwei)
	assert.Equal(t, 1, eth.Sources)
	assert.Greater(t, eth.TransferCostUSD, 0.0)
}

func TestSnapshotPartialFailure(t *testing.T) {
	networks := testNetworks(t, "ethereum", "polygon")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{
		&fakeOracle{name: "eth-only", gwei: 15, usd: 3000, only: map[string]bool{"ethereum": true}},
	})

	snapshot, err := service.Snapshot(context.Background())
	require.NoError(t, err)

	assert.False(t, snapshot.Networks["ethereum"].Failed())
	assert.True(t, snapshot.Networks["polygon"].Failed())
	assert.Len(t, snapshot.Succeeded(), 1)
}

func TestSnapshotAllNetworksFailed(t *testing.T) {
	networks := testNetworks(t, "ethereum", "polygon")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{
		&fakeOracle{name: "broken", err: errors.New("upstream down")},
	})

	_, err := service.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 networks failed")
}

func TestSnapshotUsesFallbackUSD(t *testing.T) {
	networks := testNetworks(t, "polygon")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{
		&fakeOracle{name: "no-usd", gwei: 50},
	})

	snapshot, err := service.Snapshot(context.Background())
	require.NoError(t, err)

	polygon := snapshot.Networks["polygon"]
	require.False(t, polygon.Failed())
	assert.Equal(t, 0.40, polygon.Estimate.NativeUSD)
	assert.Greater(t, polygon.TransferCostUSD, 0.0)
}

func TestNetworkSnapshotCaching(t *testing.T) {
	fake := &fakeOracle{name: "counted", gwei: 10, usd: 3000}
	networks := testNetworks(t, "ethereum")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{fake})

	_, err := service.NetworkSnapshot(context.Background(), "ethereum")
	require.NoError(t, err)
	_, err = service.NetworkSnapshot(context.Background(), "ethereum")
	require.NoError(t, err)

	assert.Equal(t, int64(1), fake.calls.Load(), "second call should be served from cache")

	service.InvalidateCache()
	_, err = service.NetworkSnapshot(context.Background(), "ethereum")
	require.NoError(t, err)
	assert.Equal(t, int64(2), fake.calls.Load())
}

func TestNetworkSnapshotUnknownNetwork(t *testing.T) {
	service := NewMultiChainService(testServiceConfig(), testNetworks(t, "ethereum"), nil)

	_, err := service.NetworkSnapshot(context.Background(), "dogechain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown network")
}

func TestSnapshotAggregatesMultipleOracles(t *testing.T) {
	networks := testNetworks(t, "ethereum")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{
		&fakeOracle{name: "a", gwei: 10, usd: 3000},
		&fakeOracle{name: "b", gwei: 20},
		&fakeOracle{name: "c", gwei: 30},
	})

	snapshot, err := service.Snapshot(context.Background())
	require.NoError(t, err)

	eth := snapshot.Networks["ethereum"]
	assert.Equal(t, 3, eth.Sources)
	// Three sources use the per-field median
	assert.Equal(t, 20.0, eth.Estimate.TotalGwei)
	assert.Equal(t, 3000.0, eth.Estimate.NativeUSD)
}

func TestSnapshotSurvivesOneBrokenOracle(t *testing.T) {
	networks := testNetworks(t, "ethereum")
	service := NewMultiChainService(testServiceConfig(), networks, []Oracle{
		&fakeOracle{name: "good", gwei: 12, usd: 3000},
		&fakeOracle{name: "bad", err: errors.New("timeout")},
	})

	snapshot, err := service.Snapshot(context.Background())
	require.NoError(t, err)

	eth := snapshot.Networks["ethereum"]
	assert.False(t, eth.Failed())
	assert.Equal(t, 1, eth.Sources)
}
