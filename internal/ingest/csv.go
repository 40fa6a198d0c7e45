// Package ingest parses hardhat gas-reporter CSV exports into monitoring
// records.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/gasbench-api/internal/chains"
	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/store"
)

// DeploymentMethod is the method name gas-reporter uses for deployment rows.
const DeploymentMethod = "deployment"

// Row is one parsed benchmark measurement.
type Row struct {
	Contract string
	Method   string
	Network  string
	GasAvg   uint64
	USDAvg   float64
}

// columns maps the header dialects seen in gas-reporter exports onto field
// indices. Two dialects are accepted: "Function"/"usd avg" and
// "Method"/"USD Avg".
type columns struct {
	contract int
	method   int
	network  int
	gasAvg   int
	usdAvg   int
}

// resolveColumns matches a header row against the known column names,
// case-insensitively and ignoring surrounding whitespace.
func resolveColumns(header []string) (columns, error) {
	cols := columns{contract: -1, method: -1, network: -1, gasAvg: -1, usdAvg: -1}

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "contract":
			cols.contract = i
		case "method", "function":
			cols.method = i
		case "network":
			cols.network = i
		case "gas avg", "gasavg", "avg gas":
			cols.gasAvg = i
		case "usd avg", "usdavg", "avg usd":
			cols.usdAvg = i
		}
	}

	if cols.contract < 0 || cols.method < 0 || cols.network < 0 {
		return cols, fmt.Errorf("csv header missing required columns (need Contract, Method/Function, Network): %v", header)
	}
	return cols, nil
}

// Parse reads a gas-reporter CSV stream. Malformed rows are skipped with a
// warning rather than failing the whole import, matching how the exports are
// consumed in practice.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			logrus.Warnf("Skipping malformed csv line %d: %v", line, err)
			continue
		}

		if cols.contract >= len(record) || cols.method >= len(record) || cols.network >= len(record) {
			logrus.Warnf("Skipping csv line %d: %d cells, fewer than the header", line, len(record))
			continue
		}

		row := Row{
			Contract: strings.TrimSpace(record[cols.contract]),
			Method:   strings.TrimSpace(record[cols.method]),
			Network:  normalizeNetwork(record[cols.network]),
		}
		if row.Contract == "" || row.Method == "" || row.Network == "" {
			logrus.Warnf("Skipping csv line %d: empty contract, method or network", line)
			continue
		}

		if cols.gasAvg >= 0 && cols.gasAvg < len(record) {
			row.GasAvg = parseUint(record[cols.gasAvg])
		}
		if cols.usdAvg >= 0 && cols.usdAvg < len(record) {
			row.USDAvg = parseUSD(record[cols.usdAvg])
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// Import parses a CSV stream and stores the rows as benchmark monitoring
// records. It returns the number of stored rows.
func Import(ctx context.Context, r io.Reader, repo store.RecordRepository) (int, error) {
	rows, err := Parse(r)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("csv contained no usable rows")
	}

	records := make([]*model.GasMonitoringRecord, len(rows))
	for i, row := range rows {
		records[i] = &model.GasMonitoringRecord{
			Network:  row.Network,
			Contract: row.Contract,
			Method:   row.Method,
			GasUsed:  row.GasAvg,
			CostUSD:  row.USDAvg,
			Source:   "benchmark-import",
		}
	}

	if err := repo.CreateBatch(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// normalizeNetwork maps the display names used in reporter exports onto
// registry slugs, passing unknown names through lowercased.
func normalizeNetwork(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return ""
	}

	aliases := map[string]string{
		"mainnet":           "ethereum",
		"eth":               "ethereum",
		"arbitrum one":      "arbitrum",
		"op mainnet":        "optimism",
		"polygon pos":       "polygon",
		"matic":             "polygon",
		"bnb smart chain":   "bsc",
		"binance":           "bsc",
		"avalanche c-chain": "avalanche",
	}
	if slug, ok := aliases[s]; ok {
		return slug
	}

	if n, err := chains.BySlug(s); err == nil {
		return n.Slug
	}
	return s
}

// parseUSD parses a USD cell, tolerating "$" prefixes and "-" placeholders.
func parseUSD(s string) float64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseUint parses a gas cell, tolerating "-" placeholders and thousands
// separators.
func parseUint(s string) uint64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
