package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorderStatuses(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("challenge.set_progress", "conflict", time.Millisecond)
	h.ObserveOperation("challenge.set_progress", "success", time.Millisecond)
	h.ObserveOperation("rewards.add_points", "success", time.Millisecond)
	h.IncConflict("challenge.set_progress")

	st := h.Statuses()
	if st["challenge.set_progress"] != "success" || st["rewards.add_points"] != "success" {
		t.Fatalf("statuses: %v", st)
	}
	if len(h.Conflicts) != 1 {
		t.Fatalf("conflicts: %v", h.Conflicts)
	}
}
