package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/api"
	"cadence/internal/evals"
	"cadence/internal/ipc"
	"cadence/internal/services/evalapi"
	"cadence/internal/tracking"
)

func newReviewsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "List evaluations awaiting human review",
		RunE: func(cmd *cobra.Command, args []string) error {
			reviews, err := fetchPendingReviews(cmd.Context(), ctx, limit)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				if reviews == nil {
					reviews = []api.PendingReview{}
				}
				return writeJSON(cmd, reviews)
			}
			if len(reviews) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No evaluations awaiting review")
				return nil
			}
			table := renderTable(
				[]string{"Evaluation", "Recording", "Name", "Score", "Confidence", "Reason", "Queued"},
				buildPendingReviewRows(reviews),
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			)
			fmt.Fprint(cmd.OutOrStdout(), table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of worklist entries to fetch")
	return cmd
}

// fetchPendingReviews asks the daemon for the worklist and falls back to a
// direct platform call when no daemon is reachable.
func fetchPendingReviews(cmdCtx context.Context, ctx *commandContext, limit int) ([]api.PendingReview, error) {
	client, err := ipc.Dial(ctx.socketPath())
	if err == nil {
		defer client.Close()
		resp, err := client.PendingReviews(limit)
		if err != nil {
			return nil, err
		}
		if resp == nil {
			return nil, errors.New("missing pending reviews response")
		}
		return resp.Reviews, nil
	}

	cfg, cfgErr := ctx.ensureConfig()
	if cfgErr != nil {
		return nil, cfgErr
	}
	pending, err := evalapi.NewFromConfig(cfg).PendingHumanReviews(cmdCtx, limit)
	if err != nil {
		return nil, err
	}
	return api.FromPendingReviews(pending), nil
}

func buildPendingReviewRows(reviews []api.PendingReview) [][]string {
	rows := make([][]string, 0, len(reviews))
	for _, review := range reviews {
		name := strings.TrimSpace(review.RecordingName)
		if name == "" {
			name = "-"
		}
		reason := strings.TrimSpace(review.Reason)
		if reason == "" {
			reason = "-"
		}
		rows = append(rows, []string{
			review.EvaluationID,
			review.RecordingID,
			name,
			fmt.Sprintf("%d", review.OverallScore),
			fmt.Sprintf("%.2f", review.Confidence),
			reason,
			formatDisplayTime(review.QueuedAt),
		})
	}
	return rows
}

func newReviewCommand(ctx *commandContext) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Submit human reviews for evaluations",
	}

	reviewCmd.AddCommand(newReviewSubmitCommand(ctx))

	return reviewCmd
}

func newReviewSubmitCommand(ctx *commandContext) *cobra.Command {
	var recordingID string
	var stageFlags []string
	var notes string

	cmd := &cobra.Command{
		Use:   "submit <evaluation-id>",
		Short: "Submit reviewer stage scores for an evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			evaluationID := strings.TrimSpace(args[0])
			if evaluationID == "" {
				return errors.New("evaluation id is required")
			}
			overrides, err := parseStageOverrides(stageFlags)
			if err != nil {
				return err
			}

			result, err := submitReview(cmd.Context(), ctx, evaluationID, strings.TrimSpace(recordingID), overrides, notes)
			if err != nil {
				return err
			}
			if ctx.jsonMode() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Review submitted for %s (%s)\n", result.EvaluationID, result.RecordingTitle)
			fmt.Fprintf(out, "Final score: %d\n", result.OverallScore)
			if len(result.Disagreements) > 0 {
				table := renderTable(
					[]string{"Stage", "AI", "Reviewer", "Delta", "Notable"},
					buildDisagreementRows(result.Disagreements),
					[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(out, table)
			}
			if result.NotableCount > 0 {
				fmt.Fprintf(out, "%d notable disagreements recorded\n", result.NotableCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&recordingID, "recording", "", "Recording id hint for evaluations not tracked locally")
	cmd.Flags().StringArrayVar(&stageFlags, "stage", nil, "Reviewer stage score as id=score (repeatable)")
	cmd.Flags().StringVar(&notes, "notes", "", "Reviewer notes to attach to the submission")
	return cmd
}

func parseStageOverrides(values []string) ([]evals.StageOverride, error) {
	overrides := make([]evals.StageOverride, 0, len(values))
	for _, value := range values {
		parts := strings.SplitN(value, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid stage override %q (want id=score)", value)
		}
		score, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid stage score in %q", value)
		}
		overrides = append(overrides, evals.StageOverride{
			StageID: strings.TrimSpace(parts[0]),
			Score:   score,
		})
	}
	return overrides, nil
}

// submitReview routes the submission through the daemon when one is running
// so its notifier and review log observe it; otherwise it runs the same
// workflow directly against the store and platform.
func submitReview(cmdCtx context.Context, ctx *commandContext, evaluationID, recordingID string, overrides []evals.StageOverride, notes string) (api.SubmitReviewResult, error) {
	client, err := ipc.Dial(ctx.socketPath())
	if err == nil {
		defer client.Close()
		ipcOverrides := make([]ipc.StageOverride, 0, len(overrides))
		for _, override := range overrides {
			ipcOverrides = append(ipcOverrides, ipc.StageOverride{StageID: override.StageID, Score: override.Score})
		}
		resp, err := client.SubmitReview(ipc.SubmitReviewRequest{
			EvaluationID: evaluationID,
			RecordingID:  recordingID,
			Overrides:    ipcOverrides,
			Notes:        notes,
		})
		if err != nil {
			return api.SubmitReviewResult{}, err
		}
		if resp == nil {
			return api.SubmitReviewResult{}, errors.New("missing review response")
		}
		return resp.Result, nil
	}

	cfg, cfgErr := ctx.ensureConfig()
	if cfgErr != nil {
		return api.SubmitReviewResult{}, cfgErr
	}
	store, storeErr := tracking.Open(cfg)
	if storeErr != nil {
		return api.SubmitReviewResult{}, storeErr
	}
	defer store.Close()

	return api.SubmitReview(cmdCtx, api.SubmitReviewRequest{
		Store:        store,
		Platform:     evalapi.NewFromConfig(cfg),
		EvaluationID: evaluationID,
		RecordingID:  recordingID,
		Overrides:    overrides,
		Notes:        notes,
	})
}

func buildDisagreementRows(disagreements []api.Disagreement) [][]string {
	rows := make([][]string, 0, len(disagreements))
	for _, disagreement := range disagreements {
		name := strings.TrimSpace(disagreement.Name)
		if name == "" {
			name = disagreement.StageID
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", disagreement.AIScore),
			fmt.Sprintf("%d", disagreement.HumanScore),
			fmt.Sprintf("%+d", disagreement.Delta),
			yesNo(disagreement.Notable),
		})
	}
	return rows
}
