package evals

import "strings"

// FailureKind partitions terminal job failures for presentation. A privacy
// block means the platform's redaction/PII policy refused to process the
// recording and no content left the workspace; the caller wording differs
// from a generic processing failure.
type FailureKind string

const (
	FailureGeneric      FailureKind = "generic"
	FailurePrivacyBlock FailureKind = "privacy_block"
)

var privacyMarkers = []string{
	"privacy",
	"redaction",
	"redacted",
	"pii",
	"personally identifiable",
	"sensitive data",
}

// ClassifyFailure inspects a platform failure message and decides whether it
// describes a privacy block. Matching is case-insensitive substring search
// over known policy wording; anything unrecognized stays generic and is
// surfaced verbatim.
func ClassifyFailure(message string) FailureKind {
	lowered := strings.ToLower(message)
	for _, marker := range privacyMarkers {
		if strings.Contains(lowered, marker) {
			return FailurePrivacyBlock
		}
	}
	return FailureGeneric
}

// ParseFailureKind converts a stored string into a known FailureKind.
func ParseFailureKind(value string) (FailureKind, bool) {
	switch FailureKind(strings.ToLower(strings.TrimSpace(value))) {
	case FailureGeneric:
		return FailureGeneric, true
	case FailurePrivacyBlock:
		return FailurePrivacyBlock, true
	default:
		return "", false
	}
}
