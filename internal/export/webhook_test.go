package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/gasbench-api/internal/model"
)

func snapshot(gwei float64) model.MultiChainSnapshot {
	return model.MultiChainSnapshot{
		Networks: map[string]model.NetworkSnapshot{
			"ethereum": {Network: "ethereum", Estimate: model.GasEstimate{TotalGwei: gwei}},
		},
		CollectedAt: 1700000000,
	}
}

func TestFlushDeliversBatch(t *testing.T) {
	var gotKey string
	var payload webhookPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exporter := NewWebhookExporter(server.URL, "secret")
	exporter.Publish(context.Background(), snapshot(10))
	exporter.Publish(context.Background(), snapshot(20))

	require.NoError(t, exporter.Flush(context.Background()))

	assert.Equal(t, "secret", gotKey)
	require.Len(t, payload.Snapshots, 2)
	assert.NotZero(t, payload.SentAt)
	assert.Zero(t, exporter.Pending())
}

func TestPublishFlushesAtBatchSize(t *testing.T) {
	var deliveries atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveries.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exporter := NewWebhookExporter(server.URL, "").WithBatchSize(2)

	exporter.Publish(context.Background(), snapshot(10))
	assert.Equal(t, int64(0), deliveries.Load())

	exporter.Publish(context.Background(), snapshot(20))
	assert.Equal(t, int64(1), deliveries.Load())
	assert.Zero(t, exporter.Pending())
}

func TestFlushKeepsBufferOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	exporter := NewWebhookExporter(server.URL, "")
	exporter.Publish(context.Background(), snapshot(10))

	err := exporter.Flush(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, exporter.Pending())
}

func TestConcurrentFlushesDeliverEachSnapshotOnce(t *testing.T) {
	var delivered atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		time.Sleep(50 * time.Millisecond)
		delivered.Add(int64(len(payload.Snapshots)))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exporter := NewWebhookExporter(server.URL, "")
	exporter.Publish(context.Background(), snapshot(10))
	exporter.Publish(context.Background(), snapshot(20))

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, exporter.Flush(context.Background()))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2), delivered.Load())
	assert.Zero(t, exporter.Pending())
}

func TestFlushRequeuesBatchBeforeNewerSnapshots(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	exporter := NewWebhookExporter(server.URL, "")
	exporter.Publish(context.Background(), snapshot(10))

	require.Error(t, exporter.Flush(context.Background()))
	assert.Equal(t, 1, exporter.Pending())

	exporter.Publish(context.Background(), snapshot(20))
	fail.Store(false)

	require.NoError(t, exporter.Flush(context.Background()))
	assert.Zero(t, exporter.Pending())
}

func TestFlushEmptyBufferIsNoop(t *testing.T) {
	exporter := NewWebhookExporter("http://127.0.0.1:0", "")
	assert.NoError(t, exporter.Flush(context.Background()))
}
