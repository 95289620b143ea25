package logging

import "testing"

func TestAttemptSamplerFirstObservationLogs(t *testing.T) {
	s := NewAttemptSampler(25)
	if !s.ShouldLog(1, 60, "queued") {
		t.Error("first observation should log")
	}
	if s.ShouldLog(2, 60, "queued") {
		t.Error("repeat observation in same bucket should not log")
	}
}

func TestAttemptSamplerStatusChange(t *testing.T) {
	s := NewAttemptSampler(25)
	s.ShouldLog(1, 60, "queued")
	if !s.ShouldLog(2, 60, "processing") {
		t.Error("status change should log")
	}
	if s.ShouldLog(3, 60, "processing") {
		t.Error("unchanged status right after a change should not log")
	}
}

func TestAttemptSamplerBudgetBuckets(t *testing.T) {
	s := NewAttemptSampler(25)
	s.ShouldLog(1, 4, "processing")
	// attempt 2/4 = 50%, crosses the 25% bucket boundary
	if !s.ShouldLog(2, 4, "processing") {
		t.Error("crossing a budget bucket should log")
	}
	if !s.ShouldLog(3, 4, "processing") {
		t.Error("75% bucket should log")
	}
}

func TestAttemptSamplerStatusChangeResetsBuckets(t *testing.T) {
	s := NewAttemptSampler(50)
	s.ShouldLog(1, 10, "queued")
	s.ShouldLog(6, 10, "queued") // 60%, bucket 1
	if !s.ShouldLog(7, 10, "processing") {
		t.Error("status change should log even with bucket already consumed")
	}
}

func TestAttemptSamplerAttemptOverBudget(t *testing.T) {
	s := NewAttemptSampler(25)
	s.ShouldLog(1, 2, "processing")
	s.ShouldLog(2, 2, "processing")
	// Attempts past the budget clamp at 100% and stay silent.
	if s.ShouldLog(5, 2, "processing") {
		t.Error("over-budget attempts should not keep logging")
	}
}

func TestAttemptSamplerZeroBudget(t *testing.T) {
	s := NewAttemptSampler(25)
	if !s.ShouldLog(1, 0, "queued") {
		t.Error("first status should log even without a budget")
	}
	if s.ShouldLog(2, 0, "queued") {
		t.Error("without a budget only status changes should log")
	}
}

func TestAttemptSamplerDefaultBucket(t *testing.T) {
	s := NewAttemptSampler(0)
	if s.bucketPercent != 25 {
		t.Errorf("expected default bucket of 25, got %d", s.bucketPercent)
	}
}

func TestAttemptSamplerNil(t *testing.T) {
	var s *AttemptSampler
	if !s.ShouldLog(1, 60, "processing") {
		t.Error("nil sampler should always log")
	}
	s.Reset()
}

func TestAttemptSamplerReset(t *testing.T) {
	s := NewAttemptSampler(25)
	s.ShouldLog(1, 60, "processing")
	s.Reset()
	if !s.ShouldLog(1, 60, "processing") {
		t.Error("reset sampler should log the next observation")
	}
}
