package evals

import (
	"strings"
	"time"
)

// Severity ranks a policy violation. Critical violations force human review
// regardless of confidence.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// ParseSeverity converts a string into a known Severity.
func ParseSeverity(value string) (Severity, bool) {
	normalized := Severity(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case SeverityCritical, SeverityMajor, SeverityMinor:
		return normalized, true
	default:
		return "", false
	}
}

// PolicyViolation is one detected rule breach within a recording's content.
type PolicyViolation struct {
	Type        string
	Severity    Severity
	Description string
	// OffsetSeconds locates the breach within the recording when the platform
	// could pin it down; nil otherwise.
	OffsetSeconds *float64
	// RuleID names the policy rule that fired, when known.
	RuleID string
}

// BehaviorScore is a nested behavior-level sub-score under one stage.
type BehaviorScore struct {
	ID     string
	Name   string
	Score  int
	Passed bool
}

// StageScore is one weighted component of an evaluation. Weights are
// percentages; all weights for one evaluation are expected to sum to 100,
// though the aggregator tolerates drift (see internal/scoring).
type StageScore struct {
	ID       string
	Name     string
	Score    int
	Weight   float64
	Passed   bool
	Required bool
	Feedback string
	// Behaviors holds optional behavior-level sub-scores. They are additive
	// detail and never feed the weighted aggregation.
	Behaviors []BehaviorScore
}

// StageContribution is the explanation-payload breakdown of how many points
// one stage contributed to the overall score.
type StageContribution struct {
	StageID string
	Name    string
	Points  float64
}

// ConfidenceSignal is one component of the platform's confidence estimate.
type ConfidenceSignal struct {
	Name  string
	Value float64
}

// Explanation is the optional additive payload returned when an evaluation is
// fetched with explanations enabled. Absence never affects scoring.
type Explanation struct {
	StageContributions []StageContribution
	ConfidenceSignals  []ConfidenceSignal
}

// Evaluation is the scoring result for exactly one completed recording.
// Created once by the platform; immutable afterwards except for human-review
// amendments tracked separately.
type Evaluation struct {
	ID          string
	RecordingID string
	// OverallScore is the platform-computed weighted aggregate, 0-100.
	OverallScore int
	Passed       bool
	// Confidence is the platform's confidence in its own scoring, 0.0-1.0.
	Confidence float64
	// RequiresHumanReview is the platform's routing flag. Cadence derives its
	// own routing decision locally (internal/scoring) and logs disagreements.
	RequiresHumanReview bool
	StageScores         []StageScore
	Violations          []PolicyViolation
	Explanation         *Explanation
	CreatedAt           time.Time
}

// Stage returns the stage score with the given identifier.
func (e Evaluation) Stage(id string) (StageScore, bool) {
	for _, stage := range e.StageScores {
		if stage.ID == id {
			return stage, true
		}
	}
	return StageScore{}, false
}

// CriticalViolations returns the subset of violations with critical severity.
func (e Evaluation) CriticalViolations() []PolicyViolation {
	var out []PolicyViolation
	for _, v := range e.Violations {
		if v.Severity == SeverityCritical {
			out = append(out, v)
		}
	}
	return out
}
