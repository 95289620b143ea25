package api

import (
	"time"

	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/review"
	"cadence/internal/tracking"
	"cadence/internal/watch"
)

// FromTrackedRecording converts a tracking row to its API representation.
func FromTrackedRecording(record *tracking.TrackedRecording) TrackedRecording {
	if record == nil {
		return TrackedRecording{}
	}

	dto := TrackedRecording{
		ID:             record.ID,
		RecordingID:    record.RecordingID,
		Title:          record.Title,
		State:          string(record.State),
		Attempt:        record.Attempt,
		LastStatus:     string(record.LastStatus),
		FailureKind:    string(record.FailureKind),
		ErrorMessage:   record.ErrorMessage,
		EvaluationID:   record.EvaluationID,
		RequiresReview: record.RequiresReview,
	}
	if record.ReviewSubmittedAt != nil {
		dto.ReviewSubmittedAt = FormatTime(*record.ReviewSubmittedAt)
	}
	if !record.CreatedAt.IsZero() {
		dto.CreatedAt = record.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !record.UpdatedAt.IsZero() {
		dto.UpdatedAt = record.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	if eval, err := record.Evaluation(); err == nil && eval != nil {
		dto.Evaluation = FromEvaluation(eval)
	}
	return dto
}

// FromTrackedRecordings converts a slice of tracking rows into API DTOs.
func FromTrackedRecordings(records []*tracking.TrackedRecording) []TrackedRecording {
	if len(records) == 0 {
		return nil
	}
	out := make([]TrackedRecording, 0, len(records))
	for _, record := range records {
		out = append(out, FromTrackedRecording(record))
	}
	return out
}

// FromEvaluation converts an evaluation snapshot to its API representation.
func FromEvaluation(eval *evals.Evaluation) *Evaluation {
	if eval == nil {
		return nil
	}

	dto := &Evaluation{
		ID:                  eval.ID,
		RecordingID:         eval.RecordingID,
		OverallScore:        eval.OverallScore,
		Passed:              eval.Passed,
		Confidence:          eval.Confidence,
		RequiresHumanReview: eval.RequiresHumanReview,
		StageScores:         fromStageScores(eval.StageScores),
		Violations:          fromViolations(eval.Violations),
		Explanation:         fromExplanation(eval.Explanation),
	}
	if !eval.CreatedAt.IsZero() {
		dto.CreatedAt = eval.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

func fromStageScores(stages []evals.StageScore) []StageScore {
	if len(stages) == 0 {
		return nil
	}
	out := make([]StageScore, 0, len(stages))
	for _, stage := range stages {
		dto := StageScore{
			ID:       stage.ID,
			Name:     stage.Name,
			Score:    stage.Score,
			Weight:   stage.Weight,
			Passed:   stage.Passed,
			Required: stage.Required,
			Feedback: stage.Feedback,
		}
		for _, behavior := range stage.Behaviors {
			dto.Behaviors = append(dto.Behaviors, BehaviorScore{
				ID:     behavior.ID,
				Name:   behavior.Name,
				Score:  behavior.Score,
				Passed: behavior.Passed,
			})
		}
		out = append(out, dto)
	}
	return out
}

func fromViolations(violations []evals.PolicyViolation) []Violation {
	if len(violations) == 0 {
		return nil
	}
	out := make([]Violation, 0, len(violations))
	for _, violation := range violations {
		dto := Violation{
			Type:        violation.Type,
			Severity:    string(violation.Severity),
			Description: violation.Description,
			RuleID:      violation.RuleID,
		}
		if violation.OffsetSeconds != nil {
			offset := *violation.OffsetSeconds
			dto.OffsetSeconds = &offset
		}
		out = append(out, dto)
	}
	return out
}

func fromExplanation(explanation *evals.Explanation) *Explanation {
	if explanation == nil {
		return nil
	}
	dto := &Explanation{}
	for _, contribution := range explanation.StageContributions {
		dto.StageContributions = append(dto.StageContributions, StageContribution{
			StageID: contribution.StageID,
			Name:    contribution.Name,
			Points:  contribution.Points,
		})
	}
	for _, signal := range explanation.ConfidenceSignals {
		dto.ConfidenceSignals = append(dto.ConfidenceSignals, ConfidenceSignal{
			Name:  signal.Name,
			Value: signal.Value,
		})
	}
	return dto
}

// FromStatusSummary converts a watch manager status summary to its API payload.
func FromStatusSummary(summary watch.StatusSummary) WatchStatus {
	status := WatchStatus{
		Running:       summary.Running,
		ActiveWatches: summary.ActiveWatches,
		TrackingStats: MergeTrackingStats(summary.TrackingStats),
	}
	if summary.LastError != "" {
		status.LastError = summary.LastError
	}
	return status
}

// MergeTrackingStats produces a string-keyed representation of tracking stats.
func MergeTrackingStats(stats map[tracking.WatchState]int) map[string]int {
	out := make(map[string]int, len(stats))
	for state, count := range stats {
		out[string(state)] = count
	}
	return out
}

// FromPendingReviews converts the platform worklist into API DTOs.
func FromPendingReviews(reviews []evals.PendingReview) []PendingReview {
	if len(reviews) == 0 {
		return nil
	}
	out := make([]PendingReview, 0, len(reviews))
	for _, entry := range reviews {
		out = append(out, PendingReview{
			EvaluationID:  entry.EvaluationID,
			RecordingID:   entry.RecordingID,
			RecordingName: entry.RecordingName,
			OverallScore:  entry.OverallScore,
			Confidence:    entry.Confidence,
			Reason:        entry.Reason,
			QueuedAt:      FormatTime(entry.QueuedAt),
		})
	}
	return out
}

// FromDisagreements converts reconciliation differences into API DTOs.
func FromDisagreements(disagreements []review.Disagreement) []Disagreement {
	if len(disagreements) == 0 {
		return nil
	}
	out := make([]Disagreement, 0, len(disagreements))
	for _, disagreement := range disagreements {
		out = append(out, Disagreement{
			StageID:    disagreement.StageID,
			Name:       disagreement.Name,
			AIScore:    disagreement.AIScore,
			HumanScore: disagreement.HumanScore,
			Delta:      disagreement.Delta,
			Notable:    disagreement.Notable,
		})
	}
	return out
}

// FromReviewLogEntries converts recorded review submissions into API DTOs.
func FromReviewLogEntries(entries []*tracking.ReviewLogEntry) []ReviewLogEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]ReviewLogEntry, 0, len(entries))
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		out = append(out, ReviewLogEntry{
			ID:           entry.ID,
			EvaluationID: entry.EvaluationID,
			OverallScore: entry.OverallScore,
			Notes:        entry.Notes,
			NotableCount: entry.NotableCount,
			SubmittedAt:  FormatTime(entry.SubmittedAt),
		})
	}
	return out
}

// FromLogEvents converts captured log events into their transport form.
func FromLogEvents(events []logging.LogEvent) []LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]LogEvent, 0, len(events))
	for _, event := range events {
		converted := LogEvent{
			Sequence:      event.Sequence,
			Timestamp:     event.Timestamp,
			Level:         event.Level,
			Message:       event.Message,
			Component:     event.Component,
			RecordingID:   event.RecordingID,
			State:         event.State,
			CorrelationID: event.CorrelationID,
		}
		if len(event.Fields) > 0 {
			converted.Fields = make(map[string]string, len(event.Fields))
			for key, value := range event.Fields {
				converted.Fields[key] = value
			}
		}
		for _, detail := range event.Details {
			converted.Details = append(converted.Details, DetailField{
				Label: detail.Label,
				Value: detail.Value,
			})
		}
		out = append(out, converted)
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
