// Package report computes cross-network cost comparisons from stored
// benchmark records.
package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourorg/gasbench-api/internal/model"
	"github.com/yourorg/gasbench-api/internal/store"
)

// DefaultBaseline is the network other networks are discounted against.
const DefaultBaseline = "ethereum"

// Service turns stored benchmark records into comparison reports.
type Service struct {
	records store.RecordRepository
	reports store.ReportRepository
}

// NewService creates a report service on top of the two repositories.
func NewService(records store.RecordRepository, reports store.ReportRepository) *Service {
	return &Service{records: records, reports: reports}
}

// Generate computes a comparison report over the benchmark records inside the
// window and persists it. An empty baseline falls back to DefaultBaseline.
func (s *Service) Generate(ctx context.Context, title, baseline string, since, until time.Time) (*model.ComparisonReport, error) {
	if baseline == "" {
		baseline = DefaultBaseline
	}

	records, err := s.records.Benchmarks(ctx, since, until)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no benchmark records in the requested window")
	}

	results := Compute(records, baseline)

	report := &model.ComparisonReport{
		Title:       title,
		Baseline:    baseline,
		WindowStart: since,
		WindowEnd:   until,
		Results:     results,
	}
	if report.Title == "" {
		report.Title = fmt.Sprintf("Gas comparison vs %s", baseline)
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}

	logrus.Infof("Generated comparison report %s from %d benchmark records", report.ID, len(records))
	return report, nil
}

// Compute derives the ranking, baseline discounts, variability and pivot
// tables from a set of benchmark records.
func Compute(records []*model.GasMonitoringRecord, baseline string) model.ReportResults {
	// method key -> network -> accumulated costs
	costs := make(map[string]map[string][]float64)
	// network -> all costs
	byNetwork := make(map[string][]float64)
	// contract -> network -> accumulated costs
	byContract := make(map[string]map[string][]float64)

	for _, r := range records {
		if !r.IsBenchmark() || r.CostUSD <= 0 {
			continue
		}

		key := methodKey(r.Contract, r.Method)
		if costs[key] == nil {
			costs[key] = make(map[string][]float64)
		}
		costs[key][r.Network] = append(costs[key][r.Network], r.CostUSD)

		byNetwork[r.Network] = append(byNetwork[r.Network], r.CostUSD)

		if byContract[r.Contract] == nil {
			byContract[r.Contract] = make(map[string][]float64)
		}
		byContract[r.Contract][r.Network] = append(byContract[r.Contract][r.Network], r.CostUSD)
	}

	return model.ReportResults{
		Ranking:     rankNetworks(byNetwork),
		Discounts:   baselineDiscounts(byContract, baseline),
		Variability: methodVariability(costs),
		Pivot:       pivotTable(costs),
	}
}

func methodKey(contract, method string) string {
	return contract + "." + method
}

// rankNetworks orders networks by mean benchmark cost, cheapest first.
func rankNetworks(byNetwork map[string][]float64) []model.NetworkRanking {
	ranking := make([]model.NetworkRanking, 0, len(byNetwork))
	for network, values := range byNetwork {
		ranking = append(ranking, model.NetworkRanking{
			Network:     network,
			MeanCostUSD: mean(values),
			Samples:     len(values),
		})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].MeanCostUSD != ranking[j].MeanCostUSD {
			return ranking[i].MeanCostUSD < ranking[j].MeanCostUSD
		}
		return ranking[i].Network < ranking[j].Network
	})
	return ranking
}

// baselineDiscounts compares each contract's mean cost per network against
// the same contract on the baseline network. Contracts with no baseline
// samples are skipped.
func baselineDiscounts(byContract map[string]map[string][]float64, baseline string) []model.BaselineDiscount {
	var discounts []model.BaselineDiscount

	for contract, networks := range byContract {
		baseValues, ok := networks[baseline]
		if !ok || len(baseValues) == 0 {
			continue
		}
		baseMean := mean(baseValues)
		if baseMean <= 0 {
			continue
		}

		for network, values := range networks {
			if network == baseline {
				continue
			}
			cost := mean(values)
			discounts = append(discounts, model.BaselineDiscount{
				Contract:    contract,
				Network:     network,
				CostUSD:     cost,
				BaselineUSD: baseMean,
				DiscountUSD: baseMean - cost,
				DiscountPct: (baseMean - cost) / baseMean * 100,
			})
		}
	}

	sort.Slice(discounts, func(i, j int) bool {
		if discounts[i].Contract != discounts[j].Contract {
			return discounts[i].Contract < discounts[j].Contract
		}
		return discounts[i].DiscountPct > discounts[j].DiscountPct
	})
	return discounts
}

// methodVariability computes, per contract method, how much its mean cost
// swings across networks. Methods seen on a single network carry no signal
// and are skipped.
func methodVariability(costs map[string]map[string][]float64) []model.FunctionVariability {
	var variability []model.FunctionVariability

	for key, networks := range costs {
		if len(networks) < 2 {
			continue
		}

		means := make([]float64, 0, len(networks))
		for _, values := range networks {
			means = append(means, mean(values))
		}

		contract, method := splitMethodKey(key)
		variability = append(variability, model.FunctionVariability{
			Contract:  contract,
			Method:    method,
			MeanUSD:   mean(means),
			StdDevUSD: stdDev(means),
			Networks:  len(networks),
		})
	}

	sort.Slice(variability, func(i, j int) bool {
		return variability[i].StdDevUSD > variability[j].StdDevUSD
	})
	return variability
}

// pivotTable builds the method x network mean-cost matrix used by the
// dashboard heatmap.
func pivotTable(costs map[string]map[string][]float64) map[string]map[string]float64 {
	pivot := make(map[string]map[string]float64, len(costs))
	for key, networks := range costs {
		row := make(map[string]float64, len(networks))
		for network, values := range networks {
			row[network] = mean(values)
		}
		pivot[key] = row
	}
	return pivot
}

func splitMethodKey(key string) (contract, method string) {
	if i := strings.Index(key, "."); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
