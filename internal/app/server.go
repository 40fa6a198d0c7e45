// Package app wires the service together and runs the HTTP server.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/gasbench-api/internal/abi"
	v1 "github.com/yourorg/gasbench-api/internal/api/v1"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/circuitbreaker"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/export"
	"github.com/yourorg/gasbench-api/internal/metrics"
	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/oracle"
	"github.com/yourorg/gasbench-api/internal/otel"
	"github.com/yourorg/gasbench-api/internal/report"
	"github.com/yourorg/gasbench-api/internal/security"
	"github.com/yourorg/gasbench-api/internal/store"
)

// BuildOracles creates the oracle clients enabled by the configuration.
func BuildOracles(cfg config.Config) []oracle.Oracle {
	oracles := []oracle.Oracle{
		oracle.NewBlocknativeClient(cfg),
		oracle.NewEtherscanClient(cfg),
		oracle.NewRPCClient(),
	}
	return oracles
}

// Run assembles every component and serves until the process is signalled.
func Run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := otel.InitTracer(ctx, cfg.OtelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logrus.Warnf("Tracer shutdown failed: %v", err)
		}
	}()

	db, err := store.NewDBConnection(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.CloseDB(db); err != nil {
			logrus.Warnf("Database close failed: %v", err)
		}
	}()

	records := store.NewRecordRepository(db)
	reports := store.NewReportRepository(db)
	reportService := report.NewService(records, reports)

	registry, err := abi.NewRegistry()
	if err != nil {
		return err
	}

	m := metrics.Register()

	networks := chains.Enabled(cfg.IncludeTestnets)
	service := oracle.NewMultiChainService(cfg, networks, BuildOracles(cfg)).WithMetrics(m)

	breaker := circuitbreaker.New(circuitbreaker.Thresholds{
		MaxGwei:     cfg.MaxGwei,
		MaxSwing:    cfg.MaxGweiSwing,
		MinNetworks: cfg.MinOracleCount,
	}).
		WithResetDelay(cfg.BreakerCooldown).
		WithTripCallback(func(reason string) {
			m.CircuitState.Set(1)
			logrus.Errorf("Oracle protection tripped: %s", reason)
		})

	var signer *security.SnapshotSigner
	if cfg.SignSnapshots {
		signer, err = security.NewSigner(config.GetEnvOrDefault("SIGNING_KEY", ""))
		if err != nil {
			return err
		}
	}

	var exporter *export.WebhookExporter
	if cfg.WebhookURL != "" {
		exporter = export.NewWebhookExporter(cfg.WebhookURL, cfg.WebhookAPIKey)
		go exporter.Run(ctx)
	}

	if cfg.PollInterval > 0 {
		go pollLoop(ctx, cfg, service, breaker, records, exporter, m)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	v1.SetupRoutes(engine, v1.Deps{
		Config:  cfg,
		Gas:     service,
		Breaker: breaker,
		Records: records,
		Reports: reports,
		Report:  reportService,
		ABIs:    registry,
		Signer:  signer,
		Metrics: m,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// pollLoop samples all networks on a fixed interval, persists the results as
// live monitoring records and hands snapshots to the webhook exporter.
func pollLoop(ctx context.Context, cfg config.Config, service *oracle.MultiChainService, breaker *circuitbreaker.CircuitBreaker, records store.RecordRepository, exporter *export.WebhookExporter, m *metrics.Metrics) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	logrus.Infof("Background sampling every %s", cfg.PollInterval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot, err := service.Snapshot(ctx)
			if err != nil {
				logrus.Warnf("Background sampling failed: %v", err)
				continue
			}

			m.SnapshotAge.Set(0)
			m.CircuitState.Set(float64(breaker.GetState()))

			if err := breaker.Check(snapshot); err != nil {
				logrus.Warnf("Snapshot rejected: %v", err)
				continue
			}

			if err := persistSnapshot(ctx, snapshot, records); err != nil {
				logrus.Warnf("Failed to persist snapshot: %v", err)
			}
			if exporter != nil {
				exporter.Publish(ctx, snapshot)
			}
		}
	}
}

// persistSnapshot stores each successful network sample as a live record.
func persistSnapshot(ctx context.Context, snapshot model.MultiChainSnapshot, records store.RecordRepository) error {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	batch := make([]*model.GasMonitoringRecord, 0, len(snapshot.Networks))
	for _, n := range snapshot.Succeeded() {
		batch = append(batch, &model.GasMonitoringRecord{
			Network:         n.Network,
			BaseFeeGwei:     n.Estimate.BaseFeeGwei,
			PriorityFeeGwei: n.Estimate.PriorityFeeGwei,
			TotalGwei:       n.Estimate.TotalGwei,
			NativeUSD:       n.Estimate.NativeUSD,
			CostUSD:         n.TransferCostUSD,
			Source:          n.Estimate.Source,
			Snapshot:        string(raw),
		})
	}
	if len(batch) == 0 {
		return nil
	}
	return records.CreateBatch(ctx, batch)
}
