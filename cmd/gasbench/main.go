// gasbench is the operational CLI for the gas benchmarking service: it can
// run the server, take one-shot snapshots, import benchmark CSVs and generate
// comparison reports.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourorg/gasbench-api/internal/app"
	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/config"
	"github.com/yourorg/gasbench-api/internal/ingest"
	"github.com/yourorg/gasbench-api/internal/oracle"
	"github.com/yourorg/gasbench-api/internal/report"
	"github.com/yourorg/gasbench-api/internal/store"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:   "gasbench",
		Short: "Multi-chain gas cost benchmarking service",
	}

	root.AddCommand(serveCmd(), gasCmd(), ingestCmd(), reportCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(config.Load())
		},
	}
}

func gasCmd() *cobra.Command {
	var network string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "gas",
		Short: "Take a one-shot gas snapshot and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			service := oracle.NewMultiChainService(cfg, chains.Enabled(cfg.IncludeTestnets), app.BuildOracles(cfg))

			var payload any
			if network != "" {
				snap, err := service.NetworkSnapshot(ctx, network)
				if err != nil {
					return err
				}
				payload = snap
			} else {
				snapshot, err := service.Snapshot(ctx)
				if err != nil {
					return err
				}
				payload = snapshot
			}

			return printJSON(payload)
		},
	}

	cmd.Flags().StringVar(&network, "network", "", "sample a single network instead of all")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall snapshot timeout")
	return cmd
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.csv>",
		Short: "Import a hardhat gas-reporter CSV into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			db, err := store.NewDBConnection(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer store.CloseDB(db)

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			count, err := ingest.Import(cmd.Context(), f, store.NewRecordRepository(db))
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d benchmark records\n", count)
			return nil
		},
	}
	return cmd
}

func reportCmd() *cobra.Command {
	var title, baseline string
	var window time.Duration

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a comparison report from stored benchmark records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			db, err := store.NewDBConnection(cfg.DBDriver, cfg.DBDSN)
			if err != nil {
				return err
			}
			defer store.CloseDB(db)

			service := report.NewService(store.NewRecordRepository(db), store.NewReportRepository(db))

			until := time.Now().UTC()
			since := time.Time{}
			if window > 0 {
				since = until.Add(-window)
			}

			generated, err := service.Generate(cmd.Context(), title, baseline, since, until)
			if err != nil {
				return err
			}

			return printJSON(generated)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().StringVar(&baseline, "baseline", report.DefaultBaseline, "baseline network for discounts")
	cmd.Flags().DurationVar(&window, "window", 0, "only include records newer than this (0 = all)")
	return cmd
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
