// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the service registers.
type Metrics struct {
	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	OracleErrors    *prometheus.CounterVec
	CircuitState    prometheus.Gauge
	NetworkGwei     *prometheus.GaugeVec
	NetworkCostUSD  *prometheus.GaugeVec
	SnapshotAge     prometheus.Gauge
}

// Register creates and registers all collectors on the default registry.
func Register() *Metrics {
	m := &Metrics{
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gasbench_requests_total",
				Help: "Total number of API requests processed",
			},
			[]string{"status", "route"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gasbench_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		OracleErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gasbench_oracle_errors_total",
				Help: "Total number of oracle fetch errors",
			},
			[]string{"oracle", "network"},
		),
		CircuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gasbench_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
		),
		NetworkGwei: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gasbench_network_gas_gwei",
				Help: "Latest aggregated total gas price per network in gwei",
			},
			[]string{"network"},
		),
		NetworkCostUSD: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gasbench_network_transfer_cost_usd",
				Help: "Normalized USD cost of a 21k-gas transfer per network",
			},
			[]string{"network"},
		),
		SnapshotAge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gasbench_snapshot_age_seconds",
				Help: "Age of the most recent multi-chain snapshot",
			},
		),
	}

	prometheus.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.OracleErrors,
		m.CircuitState,
		m.NetworkGwei,
		m.NetworkCostUSD,
		m.SnapshotAge,
	)

	return m
}

// ObserveNetwork updates the per-network gauges after a snapshot round.
func (m *Metrics) ObserveNetwork(slug string, gwei, costUSD float64) {
	if m == nil {
		return
	}
	m.NetworkGwei.WithLabelValues(slug).Set(gwei)
	m.NetworkCostUSD.WithLabelValues(slug).Set(costUSD)
}
