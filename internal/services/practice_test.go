package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func TestPracticeTrackerRoundsDurationAndCountsInteractions(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "player@example.com")
	ctx := as(u)
	tr := e.tracker(nil)

	if _, err := tr.Start(ctx, "  Metronome "); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for i := 0; i < 3; i++ {
		if ok, err := tr.RecordInteraction(ctx); err != nil || !ok {
			t.Fatalf("RecordInteraction: ok=%v err=%v", ok, err)
		}
	}
	e.clock.Add(7*time.Minute + 29*time.Second)

	res, ok, err := tr.End(ctx, EndSessionInput{Notes: "steady"})
	if err != nil || !ok {
		t.Fatalf("End: ok=%v err=%v", ok, err)
	}
	if res.Session.ToolName != "Metronome" || res.Session.Duration != 7 || res.Session.Interactions != 3 {
		t.Fatalf("unexpected session: %+v", res.Session)
	}
	if st, _ := tr.Active(ctx); st != nil {
		t.Fatalf("expected no active session, got %+v", st)
	}
	if _, ok, err := tr.End(ctx, EndSessionInput{}); err != nil || ok {
		t.Fatalf("second End: ok=%v err=%v", ok, err)
	}
	if ok, _ := tr.RecordInteraction(ctx); ok {
		t.Fatalf("interaction without an active session should be ignored")
	}

	hist, err := tr.History(ctx, 0)
	if err != nil || len(hist) != 1 {
		t.Fatalf("History: len=%d err=%v", len(hist), err)
	}
}

func TestPracticeTrackerRoundsHalfMinuteUp(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "half@example.com")
	tr := e.tracker(NewMemoryTrackerStore())
	if _, err := tr.Start(as(u), "Tuner"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.clock.Add(90 * time.Second)
	res, ok, err := tr.End(as(u), EndSessionInput{})
	if err != nil || !ok {
		t.Fatalf("End: ok=%v err=%v", ok, err)
	}
	if res.Session.Duration != 2 {
		t.Fatalf("want 2 minutes, got %d", res.Session.Duration)
	}
}

func TestPracticeTrackerEndUpdatesGoalsAndChallenge(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "goals@example.com")
	ctx := as(u)
	bg := context.Background()
	metGoal := testutil.SeedGoal(t, bg, e.db, u.ID, "Metronome", 30, types.FrequencyDaily, testStart)
	otherGoal := testutil.SeedGoal(t, bg, e.db, u.ID, "Tuner", 10, types.FrequencyDaily, testStart)
	e.seedChallenge(t, u.ID, "rhythmMaster")

	tr := e.tracker(nil)
	if _, err := tr.Start(ctx, "Metronome"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.clock.Add(20 * time.Minute)
	res, ok, err := tr.End(ctx, EndSessionInput{})
	if err != nil || !ok {
		t.Fatalf("End: ok=%v err=%v", ok, err)
	}
	if res.Challenge == nil || !res.Challenge.JustCompleted {
		t.Fatalf("expected challenge completion, got %+v", res.Challenge)
	}
	if len(e.notify.completed) != 1 || e.notify.completed[0] != "rhythmMaster" {
		t.Fatalf("completion notices: %v", e.notify.completed)
	}

	dbc := dbctx.Context{Ctx: bg}
	got, err := e.goals.GetByID(dbc, u.ID, metGoal.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Progress != 20 || got.Completed {
		t.Fatalf("metronome goal: progress=%d completed=%v", got.Progress, got.Completed)
	}
	other, _ := e.goals.GetByID(dbc, u.ID, otherGoal.ID)
	if other.Progress != 0 {
		t.Fatalf("tuner goal should be untouched, got %d", other.Progress)
	}
}

func TestPracticeTrackerConcurrentEndRecordsOnce(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "double@example.com")
	ctx := as(u)
	tr := e.tracker(nil)
	if _, err := tr.Start(ctx, "Metronome"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	e.clock.Add(5 * time.Minute)

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := tr.End(ctx, EndSessionInput{}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("End: %v", err)
	}
	hist, err := tr.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("want exactly one recorded session, got %d", len(hist))
	}
}

func TestPracticeTrackerValidation(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "val@example.com")
	tr := e.tracker(nil)

	if _, err := tr.Start(context.Background(), "Metronome"); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("want unauthenticated, got %v", err)
	}
	if _, err := tr.Start(as(u), "  "); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation for blank tool, got %v", err)
	}
	bad := 6
	if _, _, err := tr.End(as(u), EndSessionInput{Rating: &bad}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("want validation for rating, got %v", err)
	}
}

func TestMemoryTrackerStoreTakeIsSingleUse(t *testing.T) {
	s := NewMemoryTrackerStore()
	ctx := context.Background()
	u := uuid.New()
	if err := s.Put(ctx, u, TrackerState{ToolName: "Tuner", StartedAt: testStart}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	first, err := s.Take(ctx, u)
	if err != nil || first == nil || first.ToolName != "Tuner" {
		t.Fatalf("Take: %+v err=%v", first, err)
	}
	second, err := s.Take(ctx, u)
	if err != nil || second != nil {
		t.Fatalf("second Take should be empty: %+v err=%v", second, err)
	}
}
