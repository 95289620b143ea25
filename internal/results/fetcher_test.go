package results_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"cadence/internal/evals"
	"cadence/internal/results"
	"cadence/internal/services/evalapi"
)

type fakeClient struct {
	evaluation    evals.Evaluation
	evaluationErr error
	transcript    evals.Transcript
	transcriptErr error
	media         evals.MediaAccess
	mediaErr      error

	evaluationCalls int32
	transcriptCalls int32
	mediaCalls      int32
	lastOptions     evalapi.EvaluationOptions
}

func (f *fakeClient) Evaluation(ctx context.Context, recordingID string, opts evalapi.EvaluationOptions) (evals.Evaluation, error) {
	atomic.AddInt32(&f.evaluationCalls, 1)
	f.lastOptions = opts
	return f.evaluation, f.evaluationErr
}

func (f *fakeClient) Transcript(ctx context.Context, recordingID string) (evals.Transcript, error) {
	atomic.AddInt32(&f.transcriptCalls, 1)
	return f.transcript, f.transcriptErr
}

func (f *fakeClient) MediaAccessURL(ctx context.Context, recordingID string) (evals.MediaAccess, error) {
	atomic.AddInt32(&f.mediaCalls, 1)
	return f.media, f.mediaErr
}

func allOptions() results.Options {
	return results.Options{FetchTranscript: true, FetchMedia: true}
}

func TestFetchAssemblesFullBundle(t *testing.T) {
	client := &fakeClient{
		evaluation: evals.Evaluation{ID: "eval_1", RecordingID: "rec_0001", OverallScore: 84},
		transcript: evals.Transcript{RecordingID: "rec_0001", Language: "en"},
		media:      evals.MediaAccess{URL: "https://media.example.test/rec_0001"},
	}

	fetcher := results.NewFetcher(client, nil)
	bundle, err := fetcher.Fetch(context.Background(), "rec_0001", allOptions())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if bundle.Evaluation.ID != "eval_1" {
		t.Errorf("evaluation id = %q, want eval_1", bundle.Evaluation.ID)
	}
	if bundle.Transcript == nil || bundle.Transcript.Language != "en" {
		t.Errorf("transcript = %+v, want language en", bundle.Transcript)
	}
	if bundle.Media == nil || bundle.Media.URL == "" {
		t.Errorf("media = %+v, want populated access", bundle.Media)
	}
	if bundle.TranscriptErr != nil || bundle.MediaErr != nil {
		t.Errorf("unexpected absorbed errors: %v / %v", bundle.TranscriptErr, bundle.MediaErr)
	}
}

func TestFetchAbsorbsTranscriptFailure(t *testing.T) {
	transcriptErr := errors.New("transcript store unavailable")
	client := &fakeClient{
		evaluation:    evals.Evaluation{ID: "eval_1"},
		transcriptErr: transcriptErr,
		media:         evals.MediaAccess{URL: "https://media.example.test/rec_0001"},
	}

	fetcher := results.NewFetcher(client, nil)
	bundle, err := fetcher.Fetch(context.Background(), "rec_0001", allOptions())
	if err != nil {
		t.Fatalf("transcript failure must not fail the fetch: %v", err)
	}

	if bundle.Transcript != nil {
		t.Error("expected nil transcript after failed fetch")
	}
	if !errors.Is(bundle.TranscriptErr, transcriptErr) {
		t.Errorf("TranscriptErr = %v, want recorded cause", bundle.TranscriptErr)
	}
	if bundle.Media == nil {
		t.Error("media fetch must still land")
	}
	if bundle.Evaluation.ID != "eval_1" {
		t.Error("evaluation must still land")
	}
}

func TestFetchAbsorbsMediaFailure(t *testing.T) {
	mediaErr := errors.New("signing service down")
	client := &fakeClient{
		evaluation: evals.Evaluation{ID: "eval_1"},
		transcript: evals.Transcript{RecordingID: "rec_0001"},
		mediaErr:   mediaErr,
	}

	fetcher := results.NewFetcher(client, nil)
	bundle, err := fetcher.Fetch(context.Background(), "rec_0001", allOptions())
	if err != nil {
		t.Fatalf("media failure must not fail the fetch: %v", err)
	}
	if !errors.Is(bundle.MediaErr, mediaErr) {
		t.Errorf("MediaErr = %v, want recorded cause", bundle.MediaErr)
	}
	if bundle.Media != nil {
		t.Error("expected nil media after failed fetch")
	}
}

func TestFetchEvaluationFailureIsFatal(t *testing.T) {
	evalErr := errors.New("evaluation missing")
	client := &fakeClient{
		evaluationErr: evalErr,
		transcript:    evals.Transcript{},
		media:         evals.MediaAccess{URL: "x"},
	}

	fetcher := results.NewFetcher(client, nil)
	bundle, err := fetcher.Fetch(context.Background(), "rec_0001", allOptions())
	if !errors.Is(err, evalErr) {
		t.Fatalf("Fetch error = %v, want evaluation failure", err)
	}
	if bundle.Evaluation.ID != "" || bundle.Transcript != nil {
		t.Errorf("expected zero bundle on fatal error, got %+v", bundle)
	}
}

func TestFetchSkipsUnrequestedPayloads(t *testing.T) {
	client := &fakeClient{evaluation: evals.Evaluation{ID: "eval_1"}}

	fetcher := results.NewFetcher(client, nil)
	bundle, err := fetcher.Fetch(context.Background(), "rec_0001", results.Options{})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if atomic.LoadInt32(&client.transcriptCalls) != 0 {
		t.Error("transcript fetched despite FetchTranscript=false")
	}
	if atomic.LoadInt32(&client.mediaCalls) != 0 {
		t.Error("media fetched despite FetchMedia=false")
	}
	if bundle.Transcript != nil || bundle.Media != nil {
		t.Error("expected empty side payloads")
	}
}

func TestFetchForwardsExplanationOption(t *testing.T) {
	client := &fakeClient{evaluation: evals.Evaluation{ID: "eval_1"}}

	fetcher := results.NewFetcher(client, nil)
	if _, err := fetcher.Fetch(context.Background(), "rec_0001", results.Options{IncludeExplanation: true}); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if !client.lastOptions.IncludeExplanation {
		t.Error("IncludeExplanation not forwarded to the platform client")
	}
}
