// Package circuitbreaker protects the snapshot pipeline against broken
// oracle data: absurd gas prices, missing coverage, or violent swings
// between consecutive samples.
package circuitbreaker

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourorg/gasbench-api/internal/model"
)

// State represents the current state of the circuit breaker
type State int

// Circuit breaker states
const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Tripped, snapshots rejected
	StateHalfOpen              // Testing if the oracles have recovered
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// Thresholds defines the limits that will trigger the circuit breaker
type Thresholds struct {
	// Maximum plausible total gas price in gwei
	MaxGwei float64 `json:"max_gwei"`

	// Maximum allowed ratio between a network's price and its previous
	// sample (e.g. 5.0 for a 5x jump)
	MaxSwing float64 `json:"max_swing"`

	// Minimum number of networks that must have succeeded
	MinNetworks int `json:"min_networks"`
}

// CircuitBreaker implements the circuit breaker pattern over multi-chain
// snapshots, holding the last good snapshot for fallback.
type CircuitBreaker struct {
	thresholds Thresholds

	state    State
	lastTrip time.Time

	// Duration before auto-reset attempt
	resetDelay time.Duration

	mu sync.RWMutex

	// Last snapshot that passed all checks
	lastGood *model.MultiChainSnapshot

	// Count of consecutive successful checks in HalfOpen state
	successCount int

	// Number of successful checks required to close the circuit
	successThreshold int

	onTripCallback func(reason string)
}

// New creates a new CircuitBreaker with the provided thresholds
func New(t Thresholds) *CircuitBreaker {
	return &CircuitBreaker{
		thresholds:       t,
		state:            StateClosed,
		resetDelay:       5 * time.Minute,
		successThreshold: 3,
	}
}

// WithResetDelay sets a custom reset delay and returns the circuit breaker
func (cb *CircuitBreaker) WithResetDelay(delay time.Duration) *CircuitBreaker {
	cb.resetDelay = delay
	return cb
}

// WithSuccessThreshold sets the number of successful checks needed to close the circuit
func (cb *CircuitBreaker) WithSuccessThreshold(threshold int) *CircuitBreaker {
	cb.successThreshold = threshold
	return cb
}

// WithTripCallback sets a callback function that is called when the circuit trips
func (cb *CircuitBreaker) WithTripCallback(callback func(reason string)) *CircuitBreaker {
	cb.onTripCallback = callback
	return cb
}

// Check evaluates a snapshot against the thresholds. If the circuit is open
// it rejects the snapshot outright; if the snapshot violates a threshold it
// trips the circuit and returns an error.
func (cb *CircuitBreaker) Check(snapshot model.MultiChainSnapshot) error {
	cb.mu.RLock()
	state := cb.state
	lastTripTime := cb.lastTrip
	cb.mu.RUnlock()

	if state == StateOpen {
		if time.Since(lastTripTime) > cb.resetDelay {
			cb.transitionToHalfOpen()
		} else {
			return errors.New("circuit breaker open: oracle protection engaged")
		}
	}

	cb.mu.Lock()
	defer cb.mu.Unlock()

	succeeded := snapshot.Succeeded()
	if len(succeeded) == 0 {
		return errors.New("no networks in snapshot")
	}

	if len(succeeded) < cb.thresholds.MinNetworks {
		reason := fmt.Sprintf("insufficient network coverage: got %d, need %d",
			len(succeeded), cb.thresholds.MinNetworks)
		cb.trip(reason)
		return errors.New(reason)
	}

	for _, n := range succeeded {
		if n.Estimate.TotalGwei > cb.thresholds.MaxGwei {
			reason := fmt.Sprintf("gas price on %s exceeds maximum threshold: %f > %f",
				n.Network, n.Estimate.TotalGwei, cb.thresholds.MaxGwei)
			cb.trip(reason)
			return errors.New(reason)
		}
	}

	// Compare against the previous good snapshot for violent swings
	if cb.lastGood != nil && cb.thresholds.MaxSwing > 0 {
		for _, n := range succeeded {
			prev, ok := cb.lastGood.Networks[n.Network]
			if !ok || prev.Failed() || prev.Estimate.TotalGwei <= 0 {
				continue
			}
			ratio := n.Estimate.TotalGwei / prev.Estimate.TotalGwei
			if ratio < 1 && ratio > 0 {
				ratio = 1 / ratio
			}
			if math.IsInf(ratio, 0) || ratio > cb.thresholds.MaxSwing {
				reason := fmt.Sprintf("gas price swing on %s too drastic: %.1fx (threshold: %.1fx)",
					n.Network, ratio, cb.thresholds.MaxSwing)
				cb.trip(reason)
				return errors.New(reason)
			}
		}
	}

	logrus.Debug("Circuit breaker checks passed")

	snapCopy := snapshot
	cb.lastGood = &snapCopy

	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.successCount = 0
			logrus.Info("Circuit breaker closed: oracles have recovered")
		}
	}

	return nil
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// Reset forcibly resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.successCount = 0
	logrus.Info("Circuit breaker manually reset to closed state")
}

// LastGoodSnapshot returns the most recent snapshot that passed all checks,
// or nil when none has yet.
func (cb *CircuitBreaker) LastGoodSnapshot() *model.MultiChainSnapshot {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if cb.lastGood == nil {
		return nil
	}
	snapCopy := *cb.lastGood
	return &snapCopy
}

// transitionToHalfOpen changes the circuit state to half-open for testing recovery
func (cb *CircuitBreaker) transitionToHalfOpen() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == StateOpen {
		cb.state = StateHalfOpen
		cb.successCount = 0
		logrus.Info("Circuit breaker half-open: testing oracle recovery")
	}
}

// trip sets the circuit breaker to open state with the current time
func (cb *CircuitBreaker) trip(reason string) {
	cb.state = StateOpen
	cb.lastTrip = time.Now()
	logrus.Warnf("Circuit breaker tripped: %s", reason)

	if cb.onTripCallback != nil {
		go cb.onTripCallback(reason)
	}
}
