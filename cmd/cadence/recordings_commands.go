package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/api"
	"cadence/internal/ipc"
	"cadence/internal/trackaccess"
	"cadence/internal/tracking"
)

func newRecordingsCommand(ctx *commandContext) *cobra.Command {
	recordingsCmd := &cobra.Command{
		Use:   "recordings",
		Short: "Inspect and manage tracked recordings",
	}

	recordingsCmd.AddCommand(newRecordingsListCommand(ctx))
	recordingsCmd.AddCommand(newRecordingsShowCommand(ctx))
	recordingsCmd.AddCommand(newRecordingsRemoveCommand(ctx))
	recordingsCmd.AddCommand(newRecordingsClearCommand(ctx))
	recordingsCmd.AddCommand(newRecordingsClearTerminalCommand(ctx))
	recordingsCmd.AddCommand(newRecordingsHealthCommand(ctx))

	return recordingsCmd
}

func newRecordingsListCommand(ctx *commandContext) *cobra.Command {
	var listStates []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracking(func(access trackaccess.Access) error {
				recordings, err := access.List(cmd.Context(), listStates)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					if recordings == nil {
						recordings = []api.TrackedRecording{}
					}
					return writeJSON(cmd, recordings)
				}
				if len(recordings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No recordings tracked")
					return nil
				}
				table := renderTable(
					[]string{"ID", "Recording", "Title", "State", "Attempt", "Score", "Updated"},
					buildRecordingRows(recordings),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&listStates, "state", "s", nil, "Filter by watch state (repeatable)")
	return cmd
}

func newRecordingsShowCommand(ctx *commandContext) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "show <recording-id>",
		Short: "Show one tracked recording with its evaluation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordingID := strings.TrimSpace(args[0])
			if recordingID == "" {
				return errors.New("recording id is required")
			}
			return ctx.withTracking(func(access trackaccess.Access) error {
				rec, err := access.Describe(cmd.Context(), recordingID)
				if err != nil {
					return err
				}
				if rec == nil {
					if ctx.jsonMode() {
						return writeJSON(cmd, map[string]any{"error": "not_found"})
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Recording %s is not tracked\n", recordingID)
					return nil
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, rec)
				}
				renderRecordingDetail(cmd.OutOrStdout(), *rec, explain)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "Include score contributions and confidence signals")
	return cmd
}

func newRecordingsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <recording-id...>",
		Short: "Remove recordings from tracking",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]string, 0, len(args))
			for _, arg := range args {
				id := strings.TrimSpace(arg)
				if id == "" {
					return errors.New("recording id must not be empty")
				}
				ids = append(ids, id)
			}

			return ctx.withTracking(func(access trackaccess.Access) error {
				type removeOutcome struct {
					RecordingID string `json:"recordingId"`
					Outcome     string `json:"outcome"`
				}
				outcomes := make([]removeOutcome, 0, len(ids))
				for _, id := range ids {
					removed, err := access.Remove(cmd.Context(), []string{id})
					if err != nil {
						return err
					}
					if removed > 0 {
						outcomes = append(outcomes, removeOutcome{RecordingID: id, Outcome: "removed"})
					} else {
						outcomes = append(outcomes, removeOutcome{RecordingID: id, Outcome: "not_found"})
					}
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]any{"items": outcomes})
				}
				out := cmd.OutOrStdout()
				for _, outcome := range outcomes {
					switch outcome.Outcome {
					case "removed":
						fmt.Fprintf(out, "Recording %s removed\n", outcome.RecordingID)
					case "not_found":
						fmt.Fprintf(out, "Recording %s not found\n", outcome.RecordingID)
					}
				}
				return nil
			})
		},
	}
}

func newRecordingsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all tracked recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracking(func(access trackaccess.Access) error {
				removed, err := access.ClearAll(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d tracked recordings\n", removed)
				return nil
			})
		},
	}
}

func newRecordingsClearTerminalCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-terminal",
		Short: "Remove recordings whose watches already finished",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withTracking(func(access trackaccess.Access) error {
				removed, err := access.ClearTerminal(cmd.Context())
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]any{"removed": removed})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d finished recordings\n", removed)
				return nil
			})
		},
	}
}

func newRecordingsHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show tracking health summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *tracking.Store) error {
				var health ipc.TrackingHealthResponse
				if client != nil {
					resp, err := client.TrackingHealth()
					if err != nil {
						return err
					}
					if resp == nil {
						return errors.New("missing tracking health response")
					}
					health = *resp
				} else {
					summary, err := store.Health(cmd.Context())
					if err != nil {
						return err
					}
					health = ipc.TrackingHealthResponse{
						Total:          summary.Total,
						Active:         summary.Active,
						Completed:      summary.Completed,
						Failed:         summary.Failed,
						TimedOut:       summary.TimedOut,
						Cancelled:      summary.Cancelled,
						AwaitingReview: summary.AwaitingReview,
					}
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, health)
				}
				printTrackingHealth(cmd.OutOrStdout(), health)
				return nil
			})
		},
	}
}

func printTrackingHealth(out io.Writer, health ipc.TrackingHealthResponse) {
	fmt.Fprintf(out, "Total: %d\nActive: %d\nCompleted: %d\nFailed: %d\nTimed out: %d\nCancelled: %d\nAwaiting review: %d\n",
		health.Total,
		health.Active,
		health.Completed,
		health.Failed,
		health.TimedOut,
		health.Cancelled,
		health.AwaitingReview,
	)
}
