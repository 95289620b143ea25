package results

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"cadence/internal/evals"
	"cadence/internal/logging"
	"cadence/internal/services/evalapi"
)

// Client is the platform surface the fetcher consumes.
type Client interface {
	Evaluation(ctx context.Context, recordingID string, opts evalapi.EvaluationOptions) (evals.Evaluation, error)
	Transcript(ctx context.Context, recordingID string) (evals.Transcript, error)
	MediaAccessURL(ctx context.Context, recordingID string) (evals.MediaAccess, error)
}

// Options controls which optional pieces ride along with the evaluation.
type Options struct {
	IncludeExplanation bool
	FetchTranscript    bool
	FetchMedia         bool
}

// Bundle is everything fetched for one completed recording. Transcript and
// Media are nil when not requested or when their fetch failed; the matching
// error field records why.
type Bundle struct {
	Evaluation    evals.Evaluation
	Transcript    *evals.Transcript
	Media         *evals.MediaAccess
	TranscriptErr error
	MediaErr      error
}

// Fetcher fans out the post-completion platform fetches.
type Fetcher struct {
	client Client
	logger *slog.Logger
}

// NewFetcher constructs a result fetcher.
func NewFetcher(client Client, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{client: client, logger: logger}
}

// Fetch retrieves the evaluation plus the requested side payloads. The
// evaluation fetch is fatal on error and cancels the side fetches; transcript
// and media failures are absorbed onto the bundle.
func (f *Fetcher) Fetch(ctx context.Context, recordingID string, opts Options) (Bundle, error) {
	var bundle Bundle
	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		evaluation, err := f.client.Evaluation(gctx, recordingID, evalapi.EvaluationOptions{
			IncludeExplanation: opts.IncludeExplanation,
		})
		if err != nil {
			return err
		}
		bundle.Evaluation = evaluation
		return nil
	})

	if opts.FetchTranscript {
		group.Go(func() error {
			transcript, err := f.client.Transcript(gctx, recordingID)
			if err != nil {
				if gctx.Err() == nil {
					bundle.TranscriptErr = err
					f.logger.Warn("transcript fetch failed",
						logging.String(logging.FieldRecordingID, recordingID),
						logging.Error(err))
				}
				return nil
			}
			bundle.Transcript = &transcript
			return nil
		})
	}

	if opts.FetchMedia {
		group.Go(func() error {
			media, err := f.client.MediaAccessURL(gctx, recordingID)
			if err != nil {
				if gctx.Err() == nil {
					bundle.MediaErr = err
					f.logger.Warn("media access fetch failed",
						logging.String(logging.FieldRecordingID, recordingID),
						logging.Error(err))
				}
				return nil
			}
			bundle.Media = &media
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return Bundle{}, err
	}
	return bundle, nil
}
