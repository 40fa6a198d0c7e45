// Package validation provides filtering and validation mechanisms for gas
// estimates before they are aggregated or stored.
package validation

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/gasbench-api/internal/model"
)

// ValidationOptions holds configuration for the validation process
type ValidationOptions struct {
	// MaxAge defines how recent estimates must be to be considered valid
	MaxAge time.Duration

	// MaxGwei defines the maximum plausible total gas price
	MaxGwei float64

	// EnableOutlierDetection enables statistical outlier detection
	EnableOutlierDetection bool

	// OutlierIQRMultiplier defines sensitivity for outlier detection (1.5 is standard)
	OutlierIQRMultiplier float64
}

// DefaultValidationOptions returns sensible defaults for validation
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		MaxAge:                 10 * time.Minute,
		MaxGwei:                10000,
		EnableOutlierDetection: true,
		OutlierIQRMultiplier:   1.5,
	}
}

// FilterInvalid removes estimates that fail basic validation criteria.
// This is the main entrypoint for the validation package.
func FilterInvalid(estimates []model.GasEstimate) []model.GasEstimate {
	return FilterInvalidWithOptions(estimates, DefaultValidationOptions())
}

// FilterInvalidWithOptions removes estimates with custom validation options.
func FilterInvalidWithOptions(estimates []model.GasEstimate, opts ValidationOptions) []model.GasEstimate {
	valid := make([]model.GasEstimate, 0, len(estimates))
	for _, e := range estimates {
		if isValidEstimate(e, opts) {
			valid = append(valid, e)
		} else {
			logrus.WithFields(logrus.Fields{
				"source":  e.Source,
				"network": e.Network,
				"gwei":    e.TotalGwei,
			}).Debug("Filtered invalid estimate")
		}
	}

	if opts.EnableOutlierDetection && len(valid) > 3 {
		return filterOutliers(valid, opts.OutlierIQRMultiplier)
	}
	return valid
}

// isValidEstimate checks if a single estimate meets all validation criteria
func isValidEstimate(e model.GasEstimate, opts ValidationOptions) bool {
	if e.TotalGwei <= 0 {
		return false
	}

	if e.TotalGwei > opts.MaxGwei {
		return false
	}

	if e.BaseFeeGwei < 0 || e.PriorityFeeGwei < 0 {
		return false
	}

	if !e.IsFresh(opts.MaxAge) {
		return false
	}

	if e.Source == "" {
		return false
	}

	return true
}

// filterOutliers removes statistical outliers using the IQR method on the
// total gas price.
func filterOutliers(estimates []model.GasEstimate, iqrMultiplier float64) []model.GasEstimate {
	if len(estimates) <= 3 {
		return estimates // Need at least 4 points for meaningful outlier detection
	}

	prices := make([]float64, len(estimates))
	for i, e := range estimates {
		prices[i] = e.TotalGwei
	}

	sort.Float64s(prices)
	q1 := prices[len(prices)/4]
	q3 := prices[len(prices)*3/4]
	iqr := q3 - q1

	lowerBound := q1 - iqrMultiplier*iqr
	upperBound := q3 + iqrMultiplier*iqr

	// Avoid over-filtering when the sources agree tightly
	if upperBound-lowerBound < 0.005 {
		mean := calculateMean(prices)
		lowerBound = mean * 0.5
		upperBound = mean * 2.0
	}

	valid := make([]model.GasEstimate, 0, len(estimates))
	for _, e := range estimates {
		if e.TotalGwei >= lowerBound && e.TotalGwei <= upperBound {
			valid = append(valid, e)
		} else {
			logrus.WithFields(logrus.Fields{
				"source": e.Source,
				"gwei":   e.TotalGwei,
				"bounds": []float64{lowerBound, upperBound},
			}).Info("Filtered outlier estimate")
		}
	}

	logrus.WithFields(logrus.Fields{
		"total":    len(estimates),
		"filtered": len(estimates) - len(valid),
	}).Debug("Outlier filtering complete")

	return valid
}

// calculateMean computes the arithmetic mean of a slice of float64
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// ScoreAgreement assigns a confidence score (0-1) to each estimate based on
// its agreement with the other sources for the same network.
func ScoreAgreement(estimates []model.GasEstimate) []float64 {
	scores := make([]float64, len(estimates))
	if len(estimates) <= 1 {
		for i := range scores {
			scores[i] = 1
		}
		return scores
	}

	var sum float64
	for _, e := range estimates {
		sum += e.TotalGwei
	}
	ref := sum / float64(len(estimates))

	for i, e := range estimates {
		relativeDist := math.Abs(e.TotalGwei-ref) / ref
		if ref == 0 {
			relativeDist = math.Abs(e.TotalGwei)
		}
		scores[i] = 1.0 / (1.0 + relativeDist*5)
	}
	return scores
}
