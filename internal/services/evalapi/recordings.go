package evalapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cadence/internal/evals"
	"cadence/internal/services"
)

// StatusSnapshot is one observation of a recording's processing status.
type StatusSnapshot struct {
	RecordingID  string
	Status       evals.RecordingStatus
	ErrorMessage string
	ObservedAt   time.Time
}

type statusPayload struct {
	RecordingID  string `json:"recording_id"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

// RecordingStatus fetches the current processing status for one recording.
// Unknown status strings are reported as transient so a mid-rollout platform
// does not permanently kill an otherwise healthy watch.
func (c *Client) RecordingStatus(ctx context.Context, recordingID string) (StatusSnapshot, error) {
	var empty StatusSnapshot
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return empty, services.Wrap(services.ErrValidation, componentName, "status", "recording id required", nil)
	}

	var payload statusPayload
	if err := c.getJSON(ctx, "status", nil, &payload, "recordings", recordingID, "status"); err != nil {
		return empty, err
	}

	status, ok := evals.ParseRecordingStatus(payload.Status)
	if !ok {
		return empty, services.Wrap(services.ErrTransient, componentName, "status",
			fmt.Sprintf("unrecognized status %q for recording %s", payload.Status, recordingID), nil)
	}

	snapshot := StatusSnapshot{
		RecordingID:  recordingID,
		Status:       status,
		ErrorMessage: strings.TrimSpace(payload.ErrorMessage),
		ObservedAt:   time.Now().UTC(),
	}
	if payload.RecordingID != "" {
		snapshot.RecordingID = payload.RecordingID
	}
	return snapshot, nil
}

type transcriptPayload struct {
	RecordingID string           `json:"recording_id"`
	Language    string           `json:"language"`
	Segments    []segmentPayload `json:"segments"`
}

type segmentPayload struct {
	Speaker      string  `json:"speaker"`
	Text         string  `json:"text"`
	StartSeconds float64 `json:"start_seconds"`
	EndSeconds   float64 `json:"end_seconds"`
	Confidence   float64 `json:"confidence"`
}

// Transcript fetches the diarized transcription for one processed recording.
func (c *Client) Transcript(ctx context.Context, recordingID string) (evals.Transcript, error) {
	var empty evals.Transcript
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return empty, services.Wrap(services.ErrValidation, componentName, "transcript", "recording id required", nil)
	}

	var payload transcriptPayload
	if err := c.getJSON(ctx, "transcript", nil, &payload, "recordings", recordingID, "transcript"); err != nil {
		return empty, err
	}

	transcript := evals.Transcript{
		RecordingID: recordingID,
		Language:    strings.TrimSpace(payload.Language),
		Segments:    make([]evals.TranscriptSegment, 0, len(payload.Segments)),
	}
	if payload.RecordingID != "" {
		transcript.RecordingID = payload.RecordingID
	}
	for _, seg := range payload.Segments {
		transcript.Segments = append(transcript.Segments, evals.TranscriptSegment{
			Speaker:      strings.TrimSpace(seg.Speaker),
			Text:         seg.Text,
			StartSeconds: seg.StartSeconds,
			EndSeconds:   seg.EndSeconds,
			Confidence:   seg.Confidence,
		})
	}
	return transcript, nil
}

type mediaAccessPayload struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MediaAccessURL fetches a time-limited playback reference for one recording.
func (c *Client) MediaAccessURL(ctx context.Context, recordingID string) (evals.MediaAccess, error) {
	var empty evals.MediaAccess
	recordingID = strings.TrimSpace(recordingID)
	if recordingID == "" {
		return empty, services.Wrap(services.ErrValidation, componentName, "media url", "recording id required", nil)
	}

	var payload mediaAccessPayload
	if err := c.getJSON(ctx, "media url", nil, &payload, "recordings", recordingID, "media-url"); err != nil {
		return empty, err
	}
	if strings.TrimSpace(payload.URL) == "" {
		return empty, services.Wrap(services.ErrExternalService, componentName, "media url", "platform returned empty url", nil)
	}
	return evals.MediaAccess{
		URL:       strings.TrimSpace(payload.URL),
		ExpiresAt: payload.ExpiresAt,
	}, nil
}

// Healthy probes the API base and reports reachability. Any HTTP answer
// counts: even a 404 proves the platform is up and routable.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, componentName, "health", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(ctx, "health", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
