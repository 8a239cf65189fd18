package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/services"
)

type sweeperSpy struct {
	calls atomic.Int32
	res   services.GoalResetResult
	err   error
}

func (s *sweeperSpy) ResetStaleGoalsForAllUsers(ctx context.Context) (services.GoalResetResult, error) {
	s.calls.Add(1)
	return s.res, s.err
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestGoalResetJobPropagatesErrors(t *testing.T) {
	log := testLogger(t)
	spy := &sweeperSpy{res: services.GoalResetResult{Daily: 2, Weekly: 1}}
	job := NewGoalResetJob(log, spy)
	if job.Name() != "goal_reset" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	spy.err = errors.New("user 3 failed")
	if err := job.Run(context.Background()); !errors.Is(err, spy.err) {
		t.Fatalf("want sweep error, got %v", err)
	}
	if spy.calls.Load() != 2 {
		t.Fatalf("want 2 sweeps, got %d", spy.calls.Load())
	}
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(testLogger(t), time.UTC, time.Second)
	job := NewGoalResetJob(testLogger(t), &sweeperSpy{})
	if err := s.Register("", job); err == nil {
		t.Fatalf("empty spec should fail")
	}
	if err := s.Register("not a cron spec", job); err == nil {
		t.Fatalf("malformed spec should fail")
	}
	if err := s.Register("5 0 * * *", job); err != nil {
		t.Fatalf("valid spec: %v", err)
	}
}

type panicJob struct{ ran atomic.Bool }

func (p *panicJob) Name() string { return "panic" }
func (p *panicJob) Run(ctx context.Context) error {
	p.ran.Store(true)
	panic("boom")
}

func TestSchedulerRecoversPanics(t *testing.T) {
	s := NewScheduler(testLogger(t), time.UTC, time.Second)
	job := &panicJob{}
	if err := s.Register("@every 10ms", job); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.Start()
	deadline := time.Now().Add(2 * time.Second)
	for !job.ran.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
	if !job.ran.Load() {
		t.Fatalf("job never ran")
	}
}
