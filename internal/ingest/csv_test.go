package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/gasbench-api/internal/store"
)

const functionDialect = `Contract,Function,Network,gas avg,usd avg
Token,transfer,Mainnet,51234,2.15
Token,approve,Arbitrum One,46321,0.08
Vault,deposit,Polygon PoS,98000,0.01
`

const methodDialect = `Contract,Method,Network,Gas Avg,USD Avg
Token,transfer,optimism,51234,$0.12
Token,deployment,base,1150000,"1,234.56"
`

func TestParseFunctionDialect(t *testing.T) {
	rows, err := Parse(strings.NewReader(functionDialect))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Token", rows[0].Contract)
	assert.Equal(t, "transfer", rows[0].Method)
	assert.Equal(t, "ethereum", rows[0].Network)
	assert.Equal(t, uint64(51234), rows[0].GasAvg)
	assert.Equal(t, 2.15, rows[0].USDAvg)

	assert.Equal(t, "arbitrum", rows[1].Network)
	assert.Equal(t, "polygon", rows[2].Network)
}

func TestParseMethodDialect(t *testing.T) {
	rows, err := Parse(strings.NewReader(methodDialect))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "optimism", rows[0].Network)
	assert.Equal(t, 0.12, rows[0].USDAvg)

	assert.Equal(t, DeploymentMethod, rows[1].Method)
	assert.Equal(t, uint64(1150000), rows[1].GasAvg)
	assert.Equal(t, 1234.56, rows[1].USDAvg)
}

func TestParseSkipsIncompleteRows(t *testing.T) {
	csv := `Contract,Method,Network,USD Avg
Token,transfer,ethereum,1.5
,missing-contract,ethereum,1.0
Token,,ethereum,1.0
`
	rows, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParseSkipsTruncatedRows(t *testing.T) {
	csv := `Contract,Method,Network,Gas Avg,USD Avg
Token
Token,transfer
Token,transfer,ethereum,51234,2.15
`
	rows, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "transfer", rows[0].Method)
	assert.Equal(t, "ethereum", rows[0].Network)
}

func TestParseToleratesPlaceholders(t *testing.T) {
	csv := `Contract,Method,Network,Gas Avg,USD Avg
Token,view,ethereum,-,-
`
	rows, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].GasAvg)
	assert.Zero(t, rows[0].USDAvg)
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("foo,bar\n1,2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestNormalizeNetwork(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mainnet", "ethereum"},
		{"Arbitrum One", "arbitrum"},
		{"OP Mainnet", "optimism"},
		{"polygon", "polygon"},
		{"Avalanche C-Chain", "avalanche"},
		{"somechain", "somechain"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizeNetwork(tc.in), tc.in)
	}
}

func TestImportPersistsRecords(t *testing.T) {
	db, err := store.NewDBConnection(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer store.CloseDB(db)

	repo := store.NewRecordRepository(db)

	count, err := Import(context.Background(), strings.NewReader(functionDialect), repo)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	records, err := repo.Benchmarks(context.Background(), time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "benchmark-import", records[0].Source)
	assert.True(t, records[0].IsBenchmark())
}

func TestImportEmptyCSV(t *testing.T) {
	db, err := store.NewDBConnection(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer store.CloseDB(db)

	_, err = Import(context.Background(), strings.NewReader("Contract,Method,Network\n"), store.NewRecordRepository(db))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable rows")
}
