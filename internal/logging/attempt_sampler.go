package logging

import "strings"

// AttemptSampler suppresses repetitive poll-progress logs. A watch fetches
// status on a fixed interval, so most attempts observe the same answer; the
// sampler emits only when the platform status changes or the consumed share
// of the attempt budget crosses a bucket boundary.
type AttemptSampler struct {
	bucketPercent int
	lastStatus    string
	lastBucket    int
}

// NewAttemptSampler constructs a sampler with the given bucket width in
// percent of the attempt budget. Non-positive widths fall back to 25, which
// yields at most four progress lines per uneventful watch.
func NewAttemptSampler(bucketPercent int) *AttemptSampler {
	if bucketPercent <= 0 {
		bucketPercent = 25
	}
	return &AttemptSampler{bucketPercent: bucketPercent, lastBucket: -1}
}

// ShouldLog reports whether this attempt deserves a log line. The first
// observation of any status always logs; later attempts log when the status
// string differs from the previous one or attempt/budget enters a new bucket.
func (s *AttemptSampler) ShouldLog(attempt, budget int, status string) bool {
	if s == nil {
		return true
	}
	emit := false
	status = strings.TrimSpace(status)
	if status != s.lastStatus {
		s.lastStatus = status
		s.lastBucket = -1
		emit = true
	}
	if budget > 0 && attempt > 0 {
		percent := attempt * 100 / budget
		if percent > 100 {
			percent = 100
		}
		if bucket := percent / s.bucketPercent; bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler for a fresh watch of the same recording.
func (s *AttemptSampler) Reset() {
	if s == nil {
		return
	}
	s.lastStatus = ""
	s.lastBucket = -1
}
