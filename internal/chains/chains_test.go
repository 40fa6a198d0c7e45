package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBySlug(t *testing.T) {
	n, err := BySlug("ethereum")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n.ChainID)
	assert.Equal(t, "ETH", n.NativeSymbol)

	n, err = BySlug("  Arbitrum  ")
	require.NoError(t, err)
	assert.Equal(t, uint64(42161), n.ChainID)

	_, err = BySlug("solana")
	assert.Error(t, err)
}

func TestByChainID(t *testing.T) {
	n, err := ByChainID(137)
	require.NoError(t, err)
	assert.Equal(t, "polygon", n.Slug)
	assert.Equal(t, KindSidechain, n.Kind)

	_, err = ByChainID(999999)
	assert.Error(t, err)
}

func TestEnabledExcludesTestnets(t *testing.T) {
	for _, n := range Enabled(false) {
		assert.False(t, n.Testnet, "testnet %s should not be enabled by default", n.Slug)
		assert.True(t, n.Enabled)
	}
}

func TestRegistryConsistency(t *testing.T) {
	seenSlugs := map[string]bool{}
	seenIDs := map[uint64]bool{}

	for _, n := range All() {
		assert.False(t, seenSlugs[n.Slug], "duplicate slug %s", n.Slug)
		assert.False(t, seenIDs[n.ChainID], "duplicate chain id %d", n.ChainID)
		seenSlugs[n.Slug] = true
		seenIDs[n.ChainID] = true

		assert.NotEmpty(t, n.Name)
		assert.NotEmpty(t, n.NativeSymbol)
		assert.NotEmpty(t, n.RPCEndpoint)
		assert.Greater(t, n.GasMultiplier, 0.0)
	}
}

func TestRollupsCarryGasMultiplier(t *testing.T) {
	n, err := BySlug("arbitrum")
	require.NoError(t, err)
	assert.Greater(t, n.GasMultiplier, 1.0)
}

func TestSlugs(t *testing.T) {
	networks := Enabled(false)
	slugs := Slugs(networks)
	require.Len(t, slugs, len(networks))
	assert.Contains(t, slugs, "ethereum")
}
