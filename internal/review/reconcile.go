package review

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"cadence/internal/evals"
	"cadence/internal/scoring"
)

// notableDelta is the absolute stage-score difference beyond which a
// reviewer/AI disagreement is worth surfacing to model-quality analytics.
const notableDelta = 10

// Disagreement is the per-stage difference between reviewer and AI scores.
// Purely informative; it never blocks submission.
type Disagreement struct {
	StageID    string
	Name       string
	AIScore    int
	HumanScore int
	// Delta is human minus AI.
	Delta   int
	Notable bool
}

// Reconcile merges reviewer overrides into the evaluation's stage scores and
// produces the submission-ready human review. An override score of zero (or a
// missing override) accepts the AI score for that stage. The overall score is
// recomputed from the merged stages with the same weighted rule the AI
// overall uses. Overrides naming stages absent from the evaluation are
// ignored.
func Reconcile(evaluation evals.Evaluation, overrides []evals.StageOverride, notes string, now time.Time) (evals.HumanReview, []Disagreement) {
	overrideByStage := make(map[string]int, len(overrides))
	for _, override := range overrides {
		if override.Score > 0 {
			overrideByStage[override.StageID] = override.Score
		}
	}

	merged := make([]evals.StageScore, 0, len(evaluation.StageScores))
	disagreements := make([]Disagreement, 0, len(evaluation.StageScores))
	for _, stage := range evaluation.StageScores {
		humanScore := stage.Score
		if score, ok := overrideByStage[stage.ID]; ok {
			humanScore = score
		}

		mergedStage := stage
		mergedStage.Score = humanScore
		merged = append(merged, mergedStage)

		delta := humanScore - stage.Score
		disagreements = append(disagreements, Disagreement{
			StageID:    stage.ID,
			Name:       stage.Name,
			AIScore:    stage.Score,
			HumanScore: humanScore,
			Delta:      delta,
			Notable:    delta > notableDelta || delta < -notableDelta,
		})
	}

	outcome := scoring.Aggregate(merged, scoring.Thresholds{})

	return evals.HumanReview{
		ID:           uuid.NewString(),
		EvaluationID: evaluation.ID,
		OverallScore: outcome.Overall,
		StageScores:  merged,
		Notes:        strings.TrimSpace(notes),
		SubmittedAt:  now.UTC(),
	}, disagreements
}

// CountNotable reports how many disagreements crossed the notable threshold.
func CountNotable(disagreements []Disagreement) int {
	count := 0
	for _, disagreement := range disagreements {
		if disagreement.Notable {
			count++
		}
	}
	return count
}
