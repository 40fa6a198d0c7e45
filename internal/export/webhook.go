// Package export pushes completed snapshots to an external webhook, letting
// dashboards and alerting pipelines consume gas data without polling the API.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/gasbench-api/internal/model"
)

const (
	defaultBatchSize     = 10
	defaultFlushInterval = 30 * time.Second
)

// WebhookExporter buffers snapshots and ships them in batches.
type WebhookExporter struct {
	url    string
	apiKey string
	client *http.Client

	batchSize     int
	flushInterval time.Duration

	mu     sync.Mutex
	buffer []model.MultiChainSnapshot
}

// NewWebhookExporter creates an exporter targeting the given webhook URL.
func NewWebhookExporter(url, apiKey string) *WebhookExporter {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = nil

	return &WebhookExporter{
		url:           url,
		apiKey:        apiKey,
		client:        retryClient.StandardClient(),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
	}
}

// WithBatchSize overrides the flush threshold.
func (e *WebhookExporter) WithBatchSize(n int) *WebhookExporter {
	if n > 0 {
		e.batchSize = n
	}
	return e
}

// WithFlushInterval overrides the periodic flush interval.
func (e *WebhookExporter) WithFlushInterval(d time.Duration) *WebhookExporter {
	if d > 0 {
		e.flushInterval = d
	}
	return e
}

// Publish queues a snapshot, flushing when the batch threshold is reached.
func (e *WebhookExporter) Publish(ctx context.Context, snapshot model.MultiChainSnapshot) {
	e.mu.Lock()
	e.buffer = append(e.buffer, snapshot)
	flush := len(e.buffer) >= e.batchSize
	e.mu.Unlock()

	if flush {
		if err := e.Flush(ctx); err != nil {
			logrus.Warnf("Webhook flush failed: %v", err)
		}
	}
}

// Run flushes the buffer on a fixed interval until the context ends. A final
// flush drains whatever is still buffered.
func (e *WebhookExporter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := e.Flush(flushCtx); err != nil {
				logrus.Warnf("Final webhook flush failed: %v", err)
			}
			cancel()
			return
		case <-ticker.C:
			if err := e.Flush(ctx); err != nil {
				logrus.Warnf("Webhook flush failed: %v", err)
			}
		}
	}
}

type webhookPayload struct {
	Snapshots []model.MultiChainSnapshot `json:"snapshots"`
	SentAt    int64                      `json:"sent_at"`
}

// Flush posts the buffered snapshots. The batch is taken off the buffer
// before posting, so concurrent flushes each deliver distinct snapshots;
// a failed delivery puts the batch back in front of anything queued since.
func (e *WebhookExporter) Flush(ctx context.Context) error {
	e.mu.Lock()
	batch := e.buffer
	e.buffer = nil
	e.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := e.deliver(ctx, batch); err != nil {
		e.mu.Lock()
		e.buffer = append(batch, e.buffer...)
		e.mu.Unlock()
		return err
	}

	logrus.Debugf("Delivered %d snapshots to webhook", len(batch))
	return nil
}

func (e *WebhookExporter) deliver(ctx context.Context, batch []model.MultiChainSnapshot) error {
	payload := webhookPayload{
		Snapshots: batch,
		SentAt:    time.Now().Unix(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("X-API-Key", e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Pending returns the number of buffered snapshots.
func (e *WebhookExporter) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.buffer)
}
