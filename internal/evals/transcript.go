package evals

import (
	"strings"
	"time"
)

// TranscriptSegment is one diarized span of speech.
type TranscriptSegment struct {
	Speaker      string
	Text         string
	StartSeconds float64
	EndSeconds   float64
	Confidence   float64
}

// Transcript is the diarized transcription of one recording.
type Transcript struct {
	RecordingID string
	Language    string
	Segments    []TranscriptSegment
}

// Text joins all segment texts into one plain string, in order.
func (t Transcript) Text() string {
	if len(t.Segments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		trimmed := strings.TrimSpace(seg.Text)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	return strings.Join(parts, " ")
}

// MediaAccess is a time-limited reference for listening to the recording.
type MediaAccess struct {
	URL       string
	ExpiresAt time.Time
}

// Expired reports whether the access reference is already unusable.
func (m MediaAccess) Expired(now time.Time) bool {
	if m.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(m.ExpiresAt)
}
