package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cadence/internal/api"
)

func buildTrackingStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{formatStatusLabel(key), fmt.Sprintf("%d", stats[key])})
	}
	return rows
}

func buildRecordingRows(recordings []api.TrackedRecording) [][]string {
	if len(recordings) == 0 {
		return nil
	}
	sorted := make([]api.TrackedRecording, len(recordings))
	copy(sorted, recordings)

	sort.Slice(sorted, func(i, j int) bool {
		ti := parseDisplayTime(sorted[i].UpdatedAt)
		tj := parseDisplayTime(sorted[j].UpdatedAt)
		if ti.Equal(tj) {
			return sorted[i].ID > sorted[j].ID
		}
		return ti.After(tj)
	})

	rows := make([][]string, 0, len(sorted))
	for _, rec := range sorted {
		title := strings.TrimSpace(rec.Title)
		if title == "" {
			title = "-"
		}
		score := "-"
		if rec.Evaluation != nil {
			score = fmt.Sprintf("%d", rec.Evaluation.OverallScore)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", rec.ID),
			rec.RecordingID,
			title,
			formatStatusLabel(rec.State),
			fmt.Sprintf("%d", rec.Attempt),
			score,
			formatDisplayTime(rec.UpdatedAt),
		})
	}
	return rows
}

func formatStatusLabel(status string) string {
	status = strings.TrimSpace(status)
	if status == "" {
		return ""
	}
	parts := strings.Split(status, "_")
	for i, part := range parts {
		lower := strings.ToLower(part)
		if lower == "" {
			continue
		}
		parts[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(parts, " ")
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Format("2006-01-02 15:04")
	}
	return value
}

func parseDisplayTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

func renderRecordingDetail(out io.Writer, rec api.TrackedRecording, explain bool) {
	fmt.Fprintf(out, "Recording: %s\n", rec.RecordingID)
	if title := strings.TrimSpace(rec.Title); title != "" {
		fmt.Fprintf(out, "Title: %s\n", title)
	}
	fmt.Fprintf(out, "State: %s\n", formatStatusLabel(rec.State))
	fmt.Fprintf(out, "Attempt: %d\n", rec.Attempt)
	if rec.LastStatus != "" {
		fmt.Fprintf(out, "Platform status: %s\n", formatStatusLabel(rec.LastStatus))
	}
	if rec.FailureKind != "" {
		fmt.Fprintf(out, "Failure kind: %s\n", formatStatusLabel(rec.FailureKind))
	}
	if rec.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", rec.ErrorMessage)
	}
	fmt.Fprintf(out, "Requires review: %s\n", yesNo(rec.RequiresReview))
	if rec.ReviewSubmittedAt != "" {
		fmt.Fprintf(out, "Review submitted: %s\n", formatDisplayTime(rec.ReviewSubmittedAt))
	}
	if rec.CreatedAt != "" {
		fmt.Fprintf(out, "Tracked: %s\n", formatDisplayTime(rec.CreatedAt))
	}
	if rec.UpdatedAt != "" {
		fmt.Fprintf(out, "Updated: %s\n", formatDisplayTime(rec.UpdatedAt))
	}

	if rec.Evaluation == nil {
		return
	}
	renderEvaluationDetail(out, rec.Evaluation, explain)
}

func renderEvaluationDetail(out io.Writer, eval *api.Evaluation, explain bool) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Evaluation: %s\n", eval.ID)
	verdict := "failed"
	if eval.Passed {
		verdict = "passed"
	}
	fmt.Fprintf(out, "Overall score: %d (%s)\n", eval.OverallScore, verdict)
	fmt.Fprintf(out, "Confidence: %.2f\n", eval.Confidence)
	if eval.RequiresHumanReview {
		fmt.Fprintln(out, "Flagged for human review")
	}

	if len(eval.StageScores) > 0 {
		table := renderTable(
			[]string{"Stage", "Score", "Weight", "Required", "Passed"},
			buildStageScoreRows(eval.StageScores),
			[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
		)
		fmt.Fprintln(out, table)
	}

	if len(eval.Violations) > 0 {
		fmt.Fprintln(out, "Violations:")
		for _, violation := range eval.Violations {
			line := fmt.Sprintf("  - [%s] %s", strings.ToUpper(violation.Severity), violation.Description)
			if violation.OffsetSeconds != nil {
				line += fmt.Sprintf(" (at %.0fs)", *violation.OffsetSeconds)
			}
			fmt.Fprintln(out, line)
		}
	}

	if !explain || eval.Explanation == nil {
		return
	}
	if len(eval.Explanation.StageContributions) > 0 {
		fmt.Fprintln(out, "Score contributions:")
		for _, contribution := range eval.Explanation.StageContributions {
			fmt.Fprintf(out, "  - %s: %.1f points\n", contribution.Name, contribution.Points)
		}
	}
	if len(eval.Explanation.ConfidenceSignals) > 0 {
		fmt.Fprintln(out, "Confidence signals:")
		for _, signal := range eval.Explanation.ConfidenceSignals {
			fmt.Fprintf(out, "  - %s: %.2f\n", signal.Name, signal.Value)
		}
	}
}

func buildStageScoreRows(scores []api.StageScore) [][]string {
	rows := make([][]string, 0, len(scores))
	for _, score := range scores {
		name := strings.TrimSpace(score.Name)
		if name == "" {
			name = score.ID
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", score.Score),
			fmt.Sprintf("%.0f%%", score.Weight),
			yesNo(score.Required),
			yesNo(score.Passed),
		})
	}
	return rows
}
