package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/gasbench-api/internal/abi"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/circuitbreaker"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/oracle"
	"github.com/yourorg/gasbench-api/internal/report"
	"github.com/yourorg/gasbench-api/internal/security"
	"github.com/yourorg/gasbench-api/internal/store"
)

type stubOracle struct {
	gwei float64
	usd  float64
}

func (s stubOracle) Name() string { return "stub" }

func (s stubOracle) Supports(network chains.Network) bool { return true }

func (s stubOracle) Estimate(ctx context.Context, network chains.Network) (model.GasEstimate, error) {
	est := model.NewGasEstimate(network.Slug, "stub", s.gwei*0.8, s.gwei*0.2, s.gwei)
	est.NativeUSD = s.usd
	return est, nil
}

func testRouter(t *testing.T, mutate func(*Deps)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		RetryAttempts:  1,
		RetryDelay:     time.Millisecond,
		CacheTTL:       time.Minute,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}

	db, err := store.NewDBConnection(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.CloseDB(db) })

	records := store.NewRecordRepository(db)
	reports := store.NewReportRepository(db)

	registry, err := abi.NewRegistry()
	require.NoError(t, err)

	networks := []chains.Network{}
	for _, slug := range []string{"ethereum", "polygon"} {
		n, err := chains.BySlug(slug)
		require.NoError(t, err)
		networks = append(networks, n)
	}

	deps := Deps{
		Config:  cfg,
		Gas:     oracle.NewMultiChainService(cfg, networks, []oracle.Oracle{stubOracle{gwei: 20, usd: 3000}}),
		Breaker: circuitbreaker.New(circuitbreaker.Thresholds{MaxGwei: 1000, MaxSwing: 5, MinNetworks: 1}),
		Records: records,
		Reports: reports,
		Report:  report.NewService(records, reports),
		ABIs:    registry,
	}
	if mutate != nil {
		mutate(&deps)
	}

	engine := gin.New()
	SetupRoutes(engine, deps)
	return engine
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestStatusEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "gasbench-api", status.Service)
	assert.Contains(t, status.Networks, "ethereum")
	assert.Equal(t, "closed", status.CircuitState)
}

func TestGasSnapshotEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/gas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Contains(t, resp.Snapshot.Networks, "ethereum")
	assert.Equal(t, 20.0, resp.Snapshot.Networks["ethereum"].Estimate.TotalGwei)
	assert.False(t, resp.Stale)
	assert.Empty(t, resp.Signature)
}

func TestGasSnapshotServesStaleFallback(t *testing.T) {
	breaker := circuitbreaker.New(circuitbreaker.Thresholds{MaxGwei: 15, MaxSwing: 100, MinNetworks: 1})

	good := model.MultiChainSnapshot{
		Networks: map[string]model.NetworkSnapshot{
			"ethereum": {Network: "ethereum", Estimate: model.GasEstimate{TotalGwei: 5}, Sources: 1},
		},
		CollectedAt: time.Now().Unix(),
	}
	require.NoError(t, breaker.Check(good))

	// the stub samples at 20 gwei, over the 15 gwei ceiling
	router := testRouter(t, func(d *Deps) { d.Breaker = breaker })

	w := doRequest(router, http.MethodGet, "/api/gas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Stale)
	require.Contains(t, resp.Snapshot.Networks, "ethereum")
	assert.Equal(t, 5.0, resp.Snapshot.Networks["ethereum"].Estimate.TotalGwei)
}

func TestGasSnapshotUnavailableWithoutLastGood(t *testing.T) {
	router := testRouter(t, func(d *Deps) {
		d.Breaker = circuitbreaker.New(circuitbreaker.Thresholds{MaxGwei: 15, MaxSwing: 100, MinNetworks: 1})
	})

	w := doRequest(router, http.MethodGet, "/api/gas", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGasSnapshotSigned(t *testing.T) {
	signer, err := security.NewSigner("")
	require.NoError(t, err)

	router := testRouter(t, func(d *Deps) { d.Signer = signer })

	w := doRequest(router, http.MethodGet, "/api/gas", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Signature)

	ok, err := signer.Verify(resp.Snapshot, resp.Signature)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNetworkSnapshotEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/gas/polygon", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap model.NetworkSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "polygon", snap.Network)

	w = doRequest(router, http.MethodGet, "/api/gas/dogechain", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordLifecycle(t *testing.T) {
	router := testRouter(t, nil)

	body, _ := json.Marshal(CreateRecordRequest{
		Network:   "ethereum",
		Contract:  "Token",
		Method:    "transfer",
		TotalGwei: 20,
		CostUSD:   1.25,
	})

	w := doRequest(router, http.MethodPost, "/api/gas-monitoring/records", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.GasMonitoringRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "manual", created.Source)

	w = doRequest(router, http.MethodGet, "/api/gas-monitoring/records?network=ethereum", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list RecordListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = doRequest(router, http.MethodGet, "/api/gas-monitoring/records/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/gas-monitoring/records/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodGet, "/api/gas-monitoring/records/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecordValidation(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodPost, "/api/gas-monitoring/records", []byte(`{"contract": "Token"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecordsRejectsBadQuery(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/gas-monitoring/records?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/gas-monitoring/records?sort_by=drop_table", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportEndpoint(t *testing.T) {
	router := testRouter(t, nil)

	csv := "Contract,Method,Network,Gas Avg,USD Avg\nToken,transfer,ethereum,51234,2.15\nToken,transfer,polygon,51234,0.01\n"
	req := httptest.NewRequest(http.MethodPost, "/api/gas-monitoring/import", strings.NewReader(csv))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Imported)
}

func TestReportLifecycle(t *testing.T) {
	router := testRouter(t, nil)

	csv := "Contract,Method,Network,USD Avg\nToken,transfer,ethereum,2.0\nToken,transfer,polygon,0.01\n"
	w := doRequest(router, http.MethodPost, "/api/gas-monitoring/import", []byte(csv))
	require.Equal(t, http.StatusCreated, w.Code)

	body, _ := json.Marshal(GenerateReportRequest{Title: "test report"})
	w = doRequest(router, http.MethodPost, "/api/reports", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var generated model.ComparisonReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &generated))
	require.NotEmpty(t, generated.ID)
	assert.Equal(t, "test report", generated.Title)
	assert.NotEmpty(t, generated.Results.Ranking)

	w = doRequest(router, http.MethodGet, "/api/reports", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list ReportListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Count)

	w = doRequest(router, http.MethodGet, "/api/reports/"+generated.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/reports/"+generated.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(router, http.MethodGet, "/api/reports/"+generated.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateReportWithoutData(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodPost, "/api/reports", []byte(`{}`))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestABIEndpoints(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/api/abi", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list ABIListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Contracts, 6)

	w = doRequest(router, http.MethodGet, "/api/abi/erc20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "transfer")

	w = doRequest(router, http.MethodGet, "/api/abi/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCircuitEndpoints(t *testing.T) {
	router := testRouter(t, nil)

	w := doRequest(router, http.MethodGet, "/circuit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "closed")

	w = doRequest(router, http.MethodPost, "/circuit/reset", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit(t *testing.T) {
	router := testRouter(t, func(d *Deps) {
		d.Config.RateLimitRPS = 1
		d.Config.RateLimitBurst = 2
	})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		w := doRequest(router, http.MethodGet, "/api/abi", nil)
		codes = append(codes, w.Code)
	}

	assert.Contains(t, codes, http.StatusTooManyRequests)
	assert.Equal(t, http.StatusOK, codes[0])
}
