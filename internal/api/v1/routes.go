// Package v1 exposes the REST API consumed by the benchmarking dashboard.
package v1

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourorg/gasbench-api/internal/abi"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/circuitbreaker"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/metrics"
	"github.com/yourorg/gasbench-api/internal/oracle"
	"github.com/yourorg/gasbench-api/internal/report"
	"github.com/yourorg/gasbench-api/internal/security"
	"github.com/yourorg/gasbench-api/internal/store"
)

// Deps bundles everything the route tree needs.
type Deps struct {
	Config  config.Config
	Gas     *oracle.MultiChainService
	Breaker *circuitbreaker.CircuitBreaker
	Records store.RecordRepository
	Reports store.ReportRepository
	Report  *report.Service
	ABIs    *abi.Registry
	Signer  *security.SnapshotSigner
	Metrics *metrics.Metrics
}

// SetupRoutes registers every endpoint on the engine.
func SetupRoutes(r *gin.Engine, deps Deps) {
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	}))
	r.Use(MetricsMiddleware(deps.Metrics))

	gasHandler := NewGasHandler(deps.Gas, deps.Breaker, deps.Signer)
	recordHandler := NewRecordHandler(deps.Records)
	reportHandler := NewReportHandler(deps.Report, deps.Reports)
	abiHandler := NewABIHandler(deps.ABIs)

	// Operational endpoints, outside the rate limit
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", func(c *gin.Context) {
		resp := StatusResponse{
			Service:      "gasbench-api",
			Networks:     chains.Slugs(deps.Gas.Networks()),
			CircuitState: deps.Breaker.GetState().String(),
		}
		if deps.Signer != nil {
			resp.SigningKey = deps.Signer.PublicKeyHex()
		}
		c.JSON(http.StatusOK, resp)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/circuit", gasHandler.Circuit)
	r.POST("/circuit/reset", gasHandler.ResetCircuit)

	api := r.Group("/api")
	api.Use(RateLimitMiddleware(deps.Config.RateLimitRPS, deps.Config.RateLimitBurst))
	{
		api.GET("/gas", gasHandler.Snapshot)
		api.GET("/gas/:network", gasHandler.NetworkSnapshot)

		monitoring := api.Group("/gas-monitoring")
		{
			monitoring.GET("/records", recordHandler.List)
			monitoring.POST("/records", recordHandler.Create)
			monitoring.GET("/records/:id", recordHandler.Get)
			monitoring.DELETE("/records/:id", recordHandler.Delete)
			monitoring.POST("/import", recordHandler.Import)
		}

		reports := api.Group("/reports")
		{
			reports.GET("", reportHandler.List)
			reports.POST("", reportHandler.Generate)
			reports.GET("/:id", reportHandler.Get)
			reports.DELETE("/:id", reportHandler.Delete)
		}

		api.GET("/abi", abiHandler.List)
		api.GET("/abi/:name", abiHandler.Get)
	}
}
