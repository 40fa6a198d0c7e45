package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/model"
)

// DefaultConfidence is the inclusion probability requested when the caller
// does not ask for a specific level.
const DefaultConfidence = 95

// blocknativeChains lists the chain IDs the blockprices endpoint covers.
var blocknativeChains = map[uint64]bool{
	1:     true, // ethereum
	137:   true, // polygon
	42161: true, // arbitrum
	10:    true, // optimism
	8453:  true, // base
}

// BlocknativeClient implements a client for the Blocknative gas platform.
type BlocknativeClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	confidence float64
}

// NewBlocknativeClient creates a new Blocknative blockprices client.
func NewBlocknativeClient(cfg config.Config) *BlocknativeClient {
	return &BlocknativeClient{
		baseURL:    cfg.BlocknativeURL,
		httpClient: StandardClient(newRetryClient()),
		apiKey:     getAPIKey(cfg, "blocknative"),
		confidence: DefaultConfidence,
	}
}

// WithConfidence sets the target inclusion probability and returns the client.
func (c *BlocknativeClient) WithConfidence(confidence float64) *BlocknativeClient {
	c.confidence = confidence
	return c
}

// Name implements Oracle.
func (c *BlocknativeClient) Name() string { return "blocknative" }

// Supports implements Oracle.
func (c *BlocknativeClient) Supports(network chains.Network) bool {
	return blocknativeChains[network.ChainID]
}

// estimatedPrice is one confidence level inside a block price forecast.
type estimatedPrice struct {
	Confidence           float64 `json:"confidence"`
	Price                float64 `json:"price"`
	MaxPriorityFeePerGas float64 `json:"maxPriorityFeePerGas"`
	MaxFeePerGas         float64 `json:"maxFeePerGas"`
}

// blockPrice is the forecast for a single upcoming block.
type blockPrice struct {
	BlockNumber     uint64           `json:"blockNumber"`
	BaseFeePerGas   float64          `json:"baseFeePerGas"`
	EstimatedPrices []estimatedPrice `json:"estimatedPrices"`
}

// blockPricesResponse matches the Blocknative blockprices payload.
type blockPricesResponse struct {
	System      string       `json:"system"`
	Network     string       `json:"network"`
	Unit        string       `json:"unit"`
	BlockPrices []blockPrice `json:"blockPrices"`
}

// priceForConfidence picks the estimate at the requested confidence level.
// When the level is absent the nearest available level is returned; on a tie
// the higher confidence wins.
func priceForConfidence(prices []estimatedPrice, confidence float64) (estimatedPrice, bool) {
	if len(prices) == 0 {
		return estimatedPrice{}, false
	}

	best := prices[0]
	bestDist := math.Abs(best.Confidence - confidence)
	for _, p := range prices[1:] {
		dist := math.Abs(p.Confidence - confidence)
		if dist < bestDist || (dist == bestDist && p.Confidence > best.Confidence) {
			best = p
			bestDist = dist
		}
	}
	return best, true
}

// Estimate retrieves the gas price forecast for the next block and selects
// the price at the configured confidence level.
func (c *BlocknativeClient) Estimate(ctx context.Context, network chains.Network) (model.GasEstimate, error) {
	url := fmt.Sprintf("%s/gasprices/blockprices?chainid=%d", c.baseURL, network.ChainID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.GasEstimate{}, fmt.Errorf("error creating request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	logrus.Debugf("Fetching block prices from Blocknative for %s", network.Slug)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.GasEstimate{}, fmt.Errorf("error fetching data from Blocknative: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return model.GasEstimate{}, fmt.Errorf("Blocknative API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var response blockPricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return model.GasEstimate{}, fmt.Errorf("error decoding response: %w", err)
	}

	if len(response.BlockPrices) == 0 {
		return model.GasEstimate{}, fmt.Errorf("no block prices returned from Blocknative for %s", network.Slug)
	}

	next := response.BlockPrices[0]
	price, ok := priceForConfidence(next.EstimatedPrices, c.confidence)
	if !ok {
		return model.GasEstimate{}, fmt.Errorf("no estimated prices in Blocknative forecast for %s", network.Slug)
	}

	est := model.NewGasEstimate(network.Slug, c.Name(), next.BaseFeePerGas, price.MaxPriorityFeePerGas, price.MaxFeePerGas)
	est.Confidence = price.Confidence
	if est.TotalGwei == 0 {
		est.TotalGwei = price.Price
	}

	logrus.Debugf("Blocknative %s: %.2f gwei at %.0f%% confidence", network.Slug, est.TotalGwei, est.Confidence)
	return est, nil
}
