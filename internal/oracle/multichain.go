package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yourorg/gasbench-api/internal/aggregate"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/metrics"
	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/netutil"
	"github.com/yourorg/gasbench-api/internal/otel"
	"github.com/yourorg/gasbench-api/internal/validation"
)

// MultiChainService samples gas prices across every enabled network,
// aggregating the available oracles per network and normalizing the result
// into comparable USD costs.
type MultiChainService struct {
	oracles  []Oracle
	networks []chains.Network

	retryAttempts int
	retryDelay    time.Duration

	// throttle paces explorer calls so the shared Etherscan host is not
	// hammered when many networks are sampled in one round
	throttle *netutil.Throttle

	mutex     sync.RWMutex
	cacheTTL  time.Duration
	cached    map[string]model.NetworkSnapshot
	cacheTime map[string]time.Time

	metrics *metrics.Metrics
}

// NewMultiChainService creates the sampling service for the given networks.
func NewMultiChainService(cfg config.Config, networks []chains.Network, oracles []Oracle) *MultiChainService {
	return &MultiChainService{
		oracles:       oracles,
		networks:      networks,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		throttle:      netutil.NewThrottle(cfg.ExplorerThrottle),
		cacheTTL:      cfg.CacheTTL,
		cached:        make(map[string]model.NetworkSnapshot),
		cacheTime:     make(map[string]time.Time),
	}
}

// WithMetrics attaches Prometheus collectors and returns the service.
func (s *MultiChainService) WithMetrics(m *metrics.Metrics) *MultiChainService {
	s.metrics = m
	return s
}

// Networks returns the networks the service samples.
func (s *MultiChainService) Networks() []chains.Network {
	out := make([]chains.Network, len(s.networks))
	copy(out, s.networks)
	return out
}

// Snapshot samples every network and returns the combined snapshot. Failed
// networks are reported inline; an error is returned only when every network
// failed.
func (s *MultiChainService) Snapshot(ctx context.Context) (model.MultiChainSnapshot, error) {
	ctx, span := otel.Tracer("oracle").Start(ctx, "multichain.snapshot")
	defer span.End()
	span.SetAttributes(attribute.Int("networks", len(s.networks)))

	var wg sync.WaitGroup

	resultCh := make(chan model.NetworkSnapshot, len(s.networks))

	for _, network := range s.networks {
		wg.Add(1)
		go func(network chains.Network) {
			defer wg.Done()
			resultCh <- s.sampleNetwork(ctx, network)
		}(network)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	snapshot := model.MultiChainSnapshot{
		Networks:    make(map[string]model.NetworkSnapshot, len(s.networks)),
		CollectedAt: time.Now().Unix(),
	}

	failures := 0
	for result := range resultCh {
		if result.Failed() {
			failures++
			logrus.Warnf("Error sampling network %s: %s", result.Network, result.Error)
		} else {
			s.metrics.ObserveNetwork(result.Network, result.Estimate.TotalGwei, result.TransferCostUSD)
		}
		snapshot.Networks[result.Network] = result
	}

	if failures == len(s.networks) {
		return snapshot, fmt.Errorf("all %d networks failed", len(s.networks))
	}

	logrus.Infof("Sampled %d/%d networks", len(s.networks)-failures, len(s.networks))
	return snapshot, nil
}

// NetworkSnapshot samples a single network, honoring the cache.
func (s *MultiChainService) NetworkSnapshot(ctx context.Context, slug string) (model.NetworkSnapshot, error) {
	for _, network := range s.networks {
		if network.Slug == slug {
			snap := s.sampleNetwork(ctx, network)
			if snap.Failed() {
				return snap, fmt.Errorf("sampling %s: %s", slug, snap.Error)
			}
			return snap, nil
		}
	}
	return model.NetworkSnapshot{}, fmt.Errorf("unknown network %q", slug)
}

// sampleNetwork fetches, validates and aggregates the estimates for one
// network, using the cached snapshot when it is still fresh.
func (s *MultiChainService) sampleNetwork(ctx context.Context, network chains.Network) model.NetworkSnapshot {
	s.mutex.RLock()
	if snap, ok := s.cached[network.Slug]; ok {
		if time.Since(s.cacheTime[network.Slug]) < s.cacheTTL {
			s.mutex.RUnlock()
			return snap
		}
	}
	s.mutex.RUnlock()

	estimates := s.collectEstimates(ctx, network)
	estimates = validation.FilterInvalid(estimates)

	snap := model.NetworkSnapshot{
		Network:      network.Slug,
		Kind:         string(network.Kind),
		NativeSymbol: network.NativeSymbol,
	}

	if len(estimates) == 0 {
		snap.Error = "no valid estimates from any oracle"
		return snap
	}

	est := aggregate.Combine(estimates)
	est.Network = network.Slug
	if est.NativeUSD == 0 && network.FallbackUSD > 0 {
		est.NativeUSD = network.FallbackUSD
	}

	snap.Estimate = est
	snap.Sources = len(estimates)
	snap.TransferCostUSD = est.CostUSD(model.TransferGas, network.GasMultiplier)

	s.mutex.Lock()
	s.cached[network.Slug] = snap
	s.cacheTime[network.Slug] = time.Now()
	s.mutex.Unlock()

	return snap
}

// collectEstimates queries every oracle that covers the network. Calls are
// throttled and retried with a fixed delay; a failing oracle only costs its
// own estimate.
func (s *MultiChainService) collectEstimates(ctx context.Context, network chains.Network) []model.GasEstimate {
	estimates := make([]model.GasEstimate, 0, len(s.oracles))

	for _, o := range s.oracles {
		if !o.Supports(network) {
			continue
		}

		if err := s.throttle.Wait(ctx); err != nil {
			logrus.Debugf("Throttle wait aborted for %s: %v", network.Slug, err)
			break
		}

		var est model.GasEstimate
		err := netutil.Retry(ctx, s.retryAttempts, s.retryDelay, func(ctx context.Context) error {
			var fetchErr error
			est, fetchErr = o.Estimate(ctx, network)
			return fetchErr
		})
		if err != nil {
			if s.metrics != nil {
				s.metrics.OracleErrors.WithLabelValues(o.Name(), network.Slug).Inc()
			}
			logrus.Warnf("Oracle %s failed for %s: %v", o.Name(), network.Slug, err)
			continue
		}

		estimates = append(estimates, est)
	}

	return estimates
}

// InvalidateCache drops all cached per-network snapshots.
func (s *MultiChainService) InvalidateCache() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.cached = make(map[string]model.NetworkSnapshot)
	s.cacheTime = make(map[string]time.Time)
}
