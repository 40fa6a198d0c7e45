package oracle

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/model"
)

// feeHistoryBlocks is how many recent blocks the EIP-1559 estimation samples.
const feeHistoryBlocks = 10

// priorityFeePercentile is the reward percentile requested from the node.
const priorityFeePercentile = 50.0

// baseFeeBuffer multiplies the next base fee to absorb increases between
// estimation and inclusion.
const baseFeeBuffer = 2

// RPCClient estimates gas prices straight from a JSON-RPC node. It is the
// fallback for networks no oracle covers and needs no API key.
type RPCClient struct {
	dial func(ctx context.Context, rawurl string) (*ethclient.Client, error)
}

// NewRPCClient creates a new JSON-RPC fallback client.
func NewRPCClient() *RPCClient {
	return &RPCClient{dial: ethclient.DialContext}
}

// Name implements Oracle.
func (c *RPCClient) Name() string { return "rpc" }

// Supports implements Oracle. Any network with an RPC endpoint qualifies.
func (c *RPCClient) Supports(network chains.Network) bool {
	return network.RPCEndpoint != ""
}

// Estimate queries eth_feeHistory for an EIP-1559 estimate, falling back to
// eth_gasPrice on chains that reject the call.
func (c *RPCClient) Estimate(ctx context.Context, network chains.Network) (model.GasEstimate, error) {
	client, err := c.dial(ctx, network.RPCEndpoint)
	if err != nil {
		return model.GasEstimate{}, fmt.Errorf("error dialing %s: %w", network.Slug, err)
	}
	defer client.Close()

	history, err := client.FeeHistory(ctx, feeHistoryBlocks, nil, []float64{priorityFeePercentile})
	if err == nil {
		if est, ok := estimateFromFeeHistory(network.Slug, history); ok {
			return est, nil
		}
		logrus.Debugf("Fee history for %s was empty, falling back to eth_gasPrice", network.Slug)
	} else {
		logrus.Debugf("eth_feeHistory unavailable on %s: %v", network.Slug, err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return model.GasEstimate{}, fmt.Errorf("error fetching gas price from %s: %w", network.Slug, err)
	}

	total := weiToGwei(gasPrice)
	return model.NewGasEstimate(network.Slug, "rpc", 0, 0, total), nil
}

// estimateFromFeeHistory derives base and priority fees from an
// eth_feeHistory response. The priority fee is the highest sampled
// percentile reward; the base fee is the next block's base fee with a
// buffer applied to the total bid.
func estimateFromFeeHistory(network string, history *ethereum.FeeHistory) (model.GasEstimate, bool) {
	if history == nil || len(history.BaseFee) == 0 {
		return model.GasEstimate{}, false
	}

	var tip *big.Int
	for _, blockRewards := range history.Reward {
		if len(blockRewards) == 0 || blockRewards[0].Sign() <= 0 {
			continue
		}
		if tip == nil || blockRewards[0].Cmp(tip) > 0 {
			tip = blockRewards[0]
		}
	}
	if tip == nil {
		// 1 gwei floor when the sampled blocks carried no tips
		tip = big.NewInt(params.GWei)
	}

	nextBaseFee := history.BaseFee[len(history.BaseFee)-1]
	buffered := new(big.Int).Mul(nextBaseFee, big.NewInt(baseFeeBuffer))
	maxFee := new(big.Int).Add(buffered, tip)

	est := model.NewGasEstimate(network, "rpc", weiToGwei(nextBaseFee), weiToGwei(tip), weiToGwei(maxFee))
	return est, true
}

// weiToGwei converts a wei amount to gwei as a float.
func weiToGwei(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f := new(big.Float).SetInt(wei)
	f.Quo(f, big.NewFloat(params.GWei))
	out, _ := f.Float64()
	return out
}
