package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/model"
)

// Speed selects which of the explorer's three suggestions is used.
type Speed string

const (
	SpeedSafe    Speed = "safe"
	SpeedPropose Speed = "propose"
	SpeedFast    Speed = "fast"
)

// EtherscanClient implements a client for the Etherscan V2 multi-chain API.
// A single host serves every supported network, selected by the chainid
// query parameter.
type EtherscanClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	speed      Speed
}

// NewEtherscanClient creates a new Etherscan V2 gas oracle client.
func NewEtherscanClient(cfg config.Config) *EtherscanClient {
	return &EtherscanClient{
		baseURL:    cfg.EtherscanURL,
		httpClient: StandardClient(newRetryClient()),
		apiKey:     getAPIKey(cfg, "etherscan"),
		speed:      SpeedPropose,
	}
}

// WithSpeed sets which suggestion tier is used and returns the client.
func (c *EtherscanClient) WithSpeed(speed Speed) *EtherscanClient {
	c.speed = speed
	return c
}

// Name implements Oracle.
func (c *EtherscanClient) Name() string { return "etherscan" }

// Supports implements Oracle. The V2 API covers every registered mainnet.
func (c *EtherscanClient) Supports(network chains.Network) bool {
	return !network.Testnet
}

// envelope is the common Etherscan response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// gasOracleResult matches the gastracker gasoracle result payload. All
// numbers arrive as strings.
type gasOracleResult struct {
	LastBlock       string `json:"LastBlock"`
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
}

// ethPriceResult matches the stats ethprice result payload.
type ethPriceResult struct {
	EthUSD string `json:"ethusd"`
}

// Estimate retrieves the gas oracle suggestion for a network and attaches a
// USD rate for its gas token when one is available.
func (c *EtherscanClient) Estimate(ctx context.Context, network chains.Network) (model.GasEstimate, error) {
	var result gasOracleResult
	if err := c.call(ctx, network.ChainID, "gastracker", "gasoracle", &result); err != nil {
		return model.GasEstimate{}, err
	}

	baseFee := parseGwei(result.SuggestBaseFee)
	total := parseGwei(c.pick(result))
	priority := total - baseFee
	if priority < 0 {
		priority = 0
	}

	est := model.NewGasEstimate(network.Slug, c.Name(), baseFee, priority, total)

	usd, err := c.nativeUSD(ctx, network)
	if err != nil {
		logrus.Warnf("No USD rate for %s: %v", network.Slug, err)
	} else {
		est.NativeUSD = usd
	}

	logrus.Debugf("Etherscan %s: %.2f gwei (%s)", network.Slug, est.TotalGwei, c.speed)
	return est, nil
}

// nativeUSD resolves the USD price of the network's gas token. ETH-priced
// networks use the stats ethprice action; others fall back to the static
// rate from the registry.
func (c *EtherscanClient) nativeUSD(ctx context.Context, network chains.Network) (float64, error) {
	if network.NativeSymbol != "ETH" {
		if network.FallbackUSD > 0 {
			return network.FallbackUSD, nil
		}
		return 0, fmt.Errorf("no price feed for %s", network.NativeSymbol)
	}

	var result ethPriceResult
	if err := c.call(ctx, network.ChainID, "stats", "ethprice", &result); err != nil {
		return 0, err
	}

	usd, err := strconv.ParseFloat(result.EthUSD, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ethusd value %q: %w", result.EthUSD, err)
	}
	return usd, nil
}

// call performs one Etherscan V2 API request and decodes the result payload.
func (c *EtherscanClient) call(ctx context.Context, chainID uint64, module, action string, out interface{}) error {
	q := url.Values{}
	q.Set("chainid", strconv.FormatUint(chainID, 10))
	q.Set("module", module)
	q.Set("action", action)
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error fetching data from Etherscan: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Etherscan API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	if env.Status != "1" {
		return fmt.Errorf("Etherscan %s/%s failed: %s", module, action, env.Message)
	}

	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("error decoding %s/%s result: %w", module, action, err)
	}
	return nil
}

// pick returns the gwei string for the configured speed tier.
func (c *EtherscanClient) pick(r gasOracleResult) string {
	switch c.speed {
	case SpeedSafe:
		return r.SafeGasPrice
	case SpeedFast:
		return r.FastGasPrice
	default:
		return r.ProposeGasPrice
	}
}

// parseGwei parses an explorer gwei string, returning 0 for malformed input.
func parseGwei(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
