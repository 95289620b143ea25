package scoring

import (
	"math"

	"cadence/internal/evals"
)

// Thresholds carries the injected scoring knobs. Zero values are valid:
// a zero passing score passes everything the required stages allow, and a
// zero tolerance demands weights sum to exactly 100.
type Thresholds struct {
	// PassingScore is the minimum rounded overall score, 0-100.
	PassingScore int
	// ConfidenceFloor routes evaluations below it to human review, 0.0-1.0.
	ConfidenceFloor float64
	// WeightTolerance is the allowed drift of the weight sum from 100 before
	// the outcome is flagged as normalized.
	WeightTolerance float64
}

// Outcome is the aggregate of one evaluation's stage scores.
type Outcome struct {
	// Overall is the weighted mean rounded half-up, 0-100.
	Overall int
	// Exact is the unrounded weighted mean.
	Exact float64
	// Computable is false when the total weight is zero. A non-computable
	// outcome is distinct from a real overall of 0.
	Computable bool
	// WeightSum is the total of the positive stage weights.
	WeightSum float64
	// Normalized flags weight sums that drifted from 100 beyond tolerance.
	// The overall is still exact; the flag exists for observability.
	Normalized bool
	// Passed requires every required stage to pass and the rounded overall
	// to meet the passing score.
	Passed bool
}

// Aggregate computes the weighted overall score for the given stages.
// Stages with non-positive weight contribute nothing to the mean; required
// stages gate the pass verdict regardless of weight. Weight sums that do not
// equal 100 are normalized by construction, since the mean divides by the
// actual sum.
func Aggregate(stages []evals.StageScore, thresholds Thresholds) Outcome {
	var weightedSum, weightSum float64
	for _, stage := range stages {
		if stage.Weight <= 0 {
			continue
		}
		weightedSum += float64(stage.Score) * stage.Weight
		weightSum += stage.Weight
	}

	outcome := Outcome{WeightSum: weightSum}
	if weightSum <= 0 {
		return outcome
	}

	outcome.Computable = true
	outcome.Exact = weightedSum / weightSum
	outcome.Overall = roundHalfUp(outcome.Exact)

	tolerance := thresholds.WeightTolerance
	if tolerance < 0 {
		tolerance = 0
	}
	outcome.Normalized = math.Abs(weightSum-100) > tolerance

	outcome.Passed = outcome.Overall >= thresholds.PassingScore && requiredStagesPassed(stages)
	return outcome
}

func requiredStagesPassed(stages []evals.StageScore) bool {
	for _, stage := range stages {
		if stage.Required && !stage.Passed {
			return false
		}
	}
	return true
}

func roundHalfUp(value float64) int {
	return int(math.Floor(value + 0.5))
}
