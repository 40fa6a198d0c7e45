// Package oracle provides clients for retrieving gas price estimates from
// block explorers, gas oracles and plain JSON-RPC nodes.
package oracle

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/model"
)

// Oracle is the interface every gas price source implements.
type Oracle interface {
	// Name identifies the source in estimates and logs
	Name() string

	// Supports reports whether the source can quote the given network
	Supports(network chains.Network) bool

	// Estimate retrieves the current gas price estimate for a network
	Estimate(ctx context.Context, network chains.Network) (model.GasEstimate, error)
}

// newRetryClient creates a new HTTP client with retry capabilities
func newRetryClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c
}

// StandardClient converts a retryablehttp.Client to a standard http.Client
func StandardClient(retryClient *retryablehttp.Client) *http.Client {
	return retryClient.StandardClient()
}

// getAPIKey retrieves an API key for a specific oracle from configuration
func getAPIKey(cfg config.Config, oracle string) string {
	if k, ok := cfg.APIKeys[oracle]; ok {
		return k
	}
	return ""
}
