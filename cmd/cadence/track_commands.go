package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cadence/internal/trackaccess"
	"cadence/internal/tracking"
)

func newTrackCommand(ctx *commandContext) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "track <recording-id>",
		Short: "Watch a platform recording until its evaluation completes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordingID := strings.TrimSpace(args[0])
			if recordingID == "" {
				return errors.New("recording id is required")
			}
			return ctx.withTracking(func(access trackaccess.Access) error {
				rec, err := access.Track(cmd.Context(), recordingID, strings.TrimSpace(title))
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, rec)
				}
				out := cmd.OutOrStdout()
				if strings.TrimSpace(rec.Title) != "" {
					fmt.Fprintf(out, "Tracking recording %s (%s)\n", rec.RecordingID, rec.Title)
				} else {
					fmt.Fprintf(out, "Tracking recording %s\n", rec.RecordingID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Human-friendly title for the recording")
	return cmd
}

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <recording-id>",
		Short: "Cancel the watch for a recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recordingID := strings.TrimSpace(args[0])
			if recordingID == "" {
				return errors.New("recording id is required")
			}
			return ctx.withTracking(func(access trackaccess.Access) error {
				rec, err := access.Cancel(cmd.Context(), recordingID)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if rec == nil {
					if ctx.jsonMode() {
						return writeJSON(cmd, map[string]any{"error": "not_found"})
					}
					fmt.Fprintf(out, "Recording %s is not tracked\n", recordingID)
					return nil
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, rec)
				}
				if rec.State == string(tracking.StateCancelled) {
					fmt.Fprintf(out, "Cancelled watch for %s\n", rec.RecordingID)
				} else {
					fmt.Fprintf(out, "Recording %s already finished (%s)\n", rec.RecordingID, formatStatusLabel(rec.State))
				}
				return nil
			})
		},
	}
}

func newRecheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recheck [recording-id...]",
		Short: "Queue finished recordings for another evaluation pass",
		Args:  cobra.ArbitraryArgs,
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
				updated, err := access.Recheck(cmd.Context(), ids)
				if err != nil {
					return err
				}
				if ctx.jsonMode() {
					return writeJSON(cmd, map[string]any{"updated": updated})
				}
				out := cmd.OutOrStdout()
				if len(ids) == 0 {
					fmt.Fprintf(out, "Queued %d timed-out recordings for recheck\n", updated)
				} else {
					fmt.Fprintf(out, "Queued %d recordings for recheck\n", updated)
				}
				return nil
			})
		},
	}
}
