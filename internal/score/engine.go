// Package score derives the heuristic stress score from biometric readings
// and enforces the one-score-per-day persistence contract.
package score

import (
	"math"

	"github.com/mobigaurav/pulsemind/internal/core"
)

// EngineConfig configures the scoring heuristic
type EngineConfig struct {
	// Channel weights; sleep only contributes when a sleep value exists
	WeightHRV       float64
	WeightHeartRate float64
	WeightSleep     float64

	// OxygenPenaltyCap bounds the low-SpO2 penalty, in score points
	OxygenPenaltyCap float64
}

// DefaultEngineConfig returns the standard weighting. Ranges are based on
// general population norms; individualization is a later concern.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		WeightHRV:        0.4,
		WeightHeartRate:  0.4,
		WeightSleep:      0.2,
		OxygenPenaltyCap: 7.5,
	}
}

// Engine maps a reading snapshot to a stress score in [0,100], or
// core.ScoreInsufficient when the mandatory inputs are missing. It is a
// pure function of its inputs: no state, no I/O, deterministic.
type Engine struct {
	config EngineConfig
}

// NewEngine creates a scoring engine
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{config: cfg}
}

// Compute derives the stress score from a snapshot.
//
// HRV and heart rate are mandatory; everything else is an optional
// modifier. The sleep term only enters the weighted sum when a sleep
// value is present, and the weight sum tracks the weights actually used
// so a missing sleep value does not dilute the score. Respiration adds
// up to 10 bonus points, low blood oxygen a capped penalty. The result
// is rounded half away from zero and clamped to [0,100] only at the
// very end.
func (e *Engine) Compute(snap core.Snapshot) int {
	if snap.HRV == nil || snap.HeartRate == nil {
		return core.ScoreInsufficient
	}

	// Normalize each metric to the 0-1 range
	normHRV := 1.0 - clamp(*snap.HRV/100.0, 0, 1)            // higher HRV = less stress
	normHR := clamp((*snap.HeartRate-50.0)/70.0, 0, 1)       // higher resting HR = more stress

	weighted := e.config.WeightHRV*normHRV + e.config.WeightHeartRate*normHR
	weightSum := e.config.WeightHRV + e.config.WeightHeartRate

	if snap.SleepHours != nil {
		normSleep := 1.0 - clamp(*snap.SleepHours/8.0, 0, 1) // more sleep = less stress
		weighted += e.config.WeightSleep * normSleep
		weightSum += e.config.WeightSleep
	}

	score := (weighted / weightSum) * 100

	if snap.RespiratoryRate != nil {
		// 12-20 breaths/minute is the normal range
		rrFactor := clamp((*snap.RespiratoryRate-12.0)/8.0, 0, 1)
		score += rrFactor * 10
	}

	if snap.BloodOxygen != nil && *snap.BloodOxygen < 95 {
		penalty := (95 - *snap.BloodOxygen) * 1.5
		if penalty > e.config.OxygenPenaltyCap {
			penalty = e.config.OxygenPenaltyCap
		}
		score += penalty
	}

	return int(clamp(math.Round(score), 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
