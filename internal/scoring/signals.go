package scoring

import "cadence/internal/evals"

// Signals is the local human-review routing decision for one evaluation.
// Both inputs are always computed so each can be logged on its own.
type Signals struct {
	// LowConfidence is true when the platform's confidence sits below the
	// configured floor, independent of violations.
	LowConfidence bool
	// CriticalViolation is true when any violation carries critical severity,
	// independent of confidence.
	CriticalViolation bool
	// RequiresReview is true when either condition holds.
	RequiresReview bool
}

// ReviewSignals derives review routing from confidence and violations.
func ReviewSignals(confidence float64, violations []evals.PolicyViolation, thresholds Thresholds) Signals {
	signals := Signals{
		LowConfidence: confidence < thresholds.ConfidenceFloor,
	}
	for _, violation := range violations {
		if violation.Severity == evals.SeverityCritical {
			signals.CriticalViolation = true
			break
		}
	}
	signals.RequiresReview = signals.LowConfidence || signals.CriticalViolation
	return signals
}
