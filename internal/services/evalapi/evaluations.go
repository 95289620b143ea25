package evalapi

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"cadence/internal/evals"
	"cadence/internal/services"
)

// EvaluationOptions controls optional evaluation payload content.
type EvaluationOptions struct {
	// IncludeExplanation requests the additive per-stage contribution and
	// confidence-signal breakdown.
	IncludeExplanation bool
}

type evaluationPayload struct {
	ID                  string                  `json:"id"`
	RecordingID         string                  `json:"recording_id"`
	OverallScore        int                     `json:"overall_score"`
	Passed              bool                    `json:"passed"`
	Confidence          float64                 `json:"confidence"`
	RequiresHumanReview bool                    `json:"requires_human_review"`
	StageScores         []stagePayload          `json:"stage_scores"`
	CategoryScores      map[string]stagePayload `json:"category_scores"`
	Violations          []violationPayload      `json:"violations"`
	Explanation         *explanationPayload     `json:"explanation"`
	CreatedAt           time.Time               `json:"created_at"`
}

type stagePayload struct {
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name,omitempty"`
	Score     int               `json:"score"`
	Weight    float64           `json:"weight"`
	Passed    bool              `json:"passed"`
	Required  bool              `json:"required,omitempty"`
	Feedback  string            `json:"feedback,omitempty"`
	Order     int               `json:"order,omitempty"`
	Behaviors []behaviorPayload `json:"behaviors,omitempty"`
}

type behaviorPayload struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Passed bool   `json:"passed"`
}

type violationPayload struct {
	Type          string   `json:"type"`
	Severity      string   `json:"severity"`
	Description   string   `json:"description"`
	OffsetSeconds *float64 `json:"offset_seconds"`
	RuleID        string   `json:"rule_id"`
}

type explanationPayload struct {
	StageContributions []struct {
		StageID string  `json:"stage_id"`
		Name    string  `json:"name"`
		Points  float64 `json:"points"`
	} `json:"stage_contributions"`
	ConfidenceSignals []struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	} `json:"confidence_signals"`
}

// Evaluation fetches the scoring result for one completed recording. The wire
// format has two generations: newer payloads carry an ordered stage_scores
// array, older ones a category_scores map keyed by stage id. Both decode into
// one ordered stage list here so nothing downstream ever branches on shape.
func (c *Client) Evaluation(ctx context.Context, recordingID string, opts EvaluationOptions) (evals.Evaluation, error) {
	var empty evals.Evaluation
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return empty, services.Wrap(services.ErrValidation, componentName, "evaluation", "recording id required", nil)
	}

	var query url.Values
	if opts.IncludeExplanation {
		query = url.Values{"include_explanation": []string{"true"}}
	}

	var payload evaluationPayload
	if err := c.getJSON(ctx, "evaluation", query, &payload, "recordings", recordingID, "evaluation"); err != nil {
		return empty, err
	}

	evaluation := evals.Evaluation{
		ID:                  strings.TrimSpace(payload.ID),
		RecordingID:         recordingID,
		OverallScore:        payload.OverallScore,
		Passed:              payload.Passed,
		Confidence:          payload.Confidence,
		RequiresHumanReview: payload.RequiresHumanReview,
		StageScores:         normalizeStages(payload.StageScores, payload.CategoryScores),
		Violations:          decodeViolations(payload.Violations),
		Explanation:         decodeExplanation(payload.Explanation),
		CreatedAt:           payload.CreatedAt,
	}
	if payload.RecordingID != "" {
		evaluation.RecordingID = payload.RecordingID
	}
	return evaluation, nil
}

// normalizeStages resolves the two wire shapes into one ordered stage list.
// Array payloads keep their wire order. Map payloads sort by the explicit
// order key, then name, so repeated fetches are deterministic.
func normalizeStages(array []stagePayload, byKey map[string]stagePayload) []evals.StageScore {
	if len(array) > 0 {
		out := make([]evals.StageScore, 0, len(array))
		for _, stage := range array {
			out = append(out, decodeStage(stage.ID, stage))
		}
		return out
	}
	if len(byKey) == 0 {
		return nil
	}

	type keyed struct {
		key   string
		stage stagePayload
	}
	entries := make([]keyed, 0, len(byKey))
	for key, stage := range byKey {
		entries = append(entries, keyed{key: key, stage: stage})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.stage.Order != b.stage.Order {
			return a.stage.Order < b.stage.Order
		}
		aName := stageName(a.key, a.stage)
		bName := stageName(b.key, b.stage)
		if aName != bName {
			return aName < bName
		}
		return a.key < b.key
	})

	out := make([]evals.StageScore, 0, len(entries))
	for _, entry := range entries {
		out = append(out, decodeStage(entry.key, entry.stage))
	}
	return out
}

func decodeStage(fallbackID string, payload stagePayload) evals.StageScore {
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		id = strings.TrimSpace(fallbackID)
	}
	stage := evals.StageScore{
		ID:       id,
		Name:     stageName(id, payload),
		Score:    payload.Score,
		Weight:   payload.Weight,
		Passed:   payload.Passed,
		Required: payload.Required,
		Feedback: strings.TrimSpace(payload.Feedback),
	}
	for _, behavior := range payload.Behaviors {
		stage.Behaviors = append(stage.Behaviors, evals.BehaviorScore{
			ID:     strings.TrimSpace(behavior.ID),
			Name:   strings.TrimSpace(behavior.Name),
			Score:  behavior.Score,
			Passed: behavior.Passed,
		})
	}
	return stage
}

func stageName(key string, payload stagePayload) string {
	if name := strings.TrimSpace(payload.Name); name != "" {
		return name
	}
	return evals.DisplayName(key)
}

// decodeViolations keeps unknown severities verbatim (lowercased) rather than
// rewriting them; critical handling matches on the exact severity anyway.
func decodeViolations(payloads []violationPayload) []evals.PolicyViolation {
	if len(payloads) == 0 {
		return nil
	}
	out := make([]evals.PolicyViolation, 0, len(payloads))
	for _, v := range payloads {
		severity, ok := evals.ParseSeverity(v.Severity)
		if !ok {
			severity = evals.Severity(strings.ToLower(strings.TrimSpace(v.Severity)))
		}
		out = append(out, evals.PolicyViolation{
			Type:          strings.TrimSpace(v.Type),
			Severity:      severity,
			Description:   strings.TrimSpace(v.Description),
			OffsetSeconds: v.OffsetSeconds,
			RuleID:        strings.TrimSpace(v.RuleID),
		})
	}
	return out
}

func decodeExplanation(payload *explanationPayload) *evals.Explanation {
	if payload == nil {
		return nil
	}
	explanation := &evals.Explanation{}
	for _, c := range payload.StageContributions {
		explanation.StageContributions = append(explanation.StageContributions, evals.StageContribution{
			StageID: strings.TrimSpace(c.StageID),
			Name:    strings.TrimSpace(c.Name),
			Points:  c.Points,
		})
	}
	for _, s := range payload.ConfidenceSignals {
		explanation.ConfidenceSignals = append(explanation.ConfidenceSignals, evals.ConfidenceSignal{
			Name:  strings.TrimSpace(s.Name),
			Value: s.Value,
		})
	}
	return explanation
}
