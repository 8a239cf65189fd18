package practice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func TestGoalRepoProgressAndReset(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewGoalRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "goals-"+uuid.NewString()+"@example.com")
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	daily := testutil.SeedGoal(t, ctx, tx, user.ID, "Metronome", 30, types.FrequencyDaily, start)
	weekly := testutil.SeedGoal(t, ctx, tx, user.ID, "Metronome", 100, types.FrequencyWeekly, start)
	other := testutil.SeedGoal(t, ctx, tx, user.ID, "Piano Notes", 10, types.FrequencyDaily, start)

	for _, minutes := range []int{10, 15, 8} {
		if _, err := repo.AddProgressForTool(dbc, user.ID, "Metronome", minutes); err != nil {
			t.Fatalf("AddProgressForTool: %v", err)
		}
	}

	got, err := repo.GetByID(dbc, user.ID, daily.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Progress != 33 || !got.Completed {
		t.Fatalf("daily goal: progress=%d completed=%v", got.Progress, got.Completed)
	}
	gotWeekly, _ := repo.GetByID(dbc, user.ID, weekly.ID)
	if gotWeekly.Progress != 33 || gotWeekly.Completed {
		t.Fatalf("weekly goal: progress=%d completed=%v", gotWeekly.Progress, gotWeekly.Completed)
	}
	gotOther, _ := repo.GetByID(dbc, user.ID, other.ID)
	if gotOther.Progress != 0 {
		t.Fatalf("other-tool goal should be untouched, got %d", gotOther.Progress)
	}

	if err := repo.SetProgress(dbc, user.ID, weekly.ID, 100); err != nil {
		t.Fatalf("SetProgress: %v", err)
	}
	gotWeekly, _ = repo.GetByID(dbc, user.ID, weekly.ID)
	if !gotWeekly.Completed {
		t.Fatalf("weekly goal should complete at target")
	}
	if err := repo.SetProgress(dbc, uuid.New(), weekly.ID, 1); err == nil {
		t.Fatalf("SetProgress must enforce ownership")
	}

	today := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	n, err := repo.ResetByFrequency(dbc, user.ID, types.FrequencyDaily, today)
	if err != nil || n != 2 {
		t.Fatalf("ResetByFrequency: n=%d err=%v", n, err)
	}
	got, _ = repo.GetByID(dbc, user.ID, daily.ID)
	if got.Progress != 0 || got.Completed || !got.StartDate.Equal(today) {
		t.Fatalf("daily goal after reset: %+v", got)
	}
	gotWeekly, _ = repo.GetByID(dbc, user.ID, weekly.ID)
	if gotWeekly.Progress != 100 || !gotWeekly.Completed {
		t.Fatalf("weekly goal must be untouched by daily reset: %+v", gotWeekly)
	}

	if err := repo.Delete(dbc, user.ID, other.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(dbc, user.ID, other.ID); err == nil {
		t.Fatalf("second delete should report not found")
	}
	left, err := repo.ListByUser(dbc, user.ID)
	if err != nil || len(left) != 2 {
		t.Fatalf("ListByUser: %d err=%v", len(left), err)
	}
}

func TestPracticeSessionTotals(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewPracticeSessionRepo(db, testutil.Logger(t))
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	u1 := testutil.SeedUser(t, ctx, tx, "u1-"+uuid.NewString()+"@example.com")
	u2 := testutil.SeedUser(t, ctx, tx, "u2-"+uuid.NewString()+"@example.com")

	testutil.SeedSession(t, ctx, tx, u1.ID, "Metronome", 20, now.Add(-time.Hour))
	testutil.SeedSession(t, ctx, tx, u1.ID, "Ear Training", 10, now.Add(-2*time.Hour))
	testutil.SeedSession(t, ctx, tx, u2.ID, "Metronome", 50, now.Add(-24*time.Hour))
	testutil.SeedSession(t, ctx, tx, u2.ID, "Metronome", 500, now.Add(-30*24*time.Hour))

	totals, err := repo.TotalsSince(dbc, now.AddDate(0, 0, -7), nil)
	if err != nil {
		t.Fatalf("TotalsSince: %v", err)
	}
	byUser := map[uuid.UUID]UserTotals{}
	for _, row := range totals {
		byUser[row.UserID] = row
	}
	if byUser[u1.ID].TotalTime != 30 || byUser[u1.ID].Sessions != 2 {
		t.Fatalf("u1 totals: %+v", byUser[u1.ID])
	}
	if byUser[u2.ID].TotalTime != 50 || byUser[u2.ID].Sessions != 1 {
		t.Fatalf("u2 totals: %+v", byUser[u2.ID])
	}

	scoped, err := repo.TotalsSince(dbc, time.Unix(0, 0).UTC(), []uuid.UUID{u2.ID})
	if err != nil || len(scoped) != 1 || scoped[0].TotalTime != 550 {
		t.Fatalf("scoped totals: %+v err=%v", scoped, err)
	}
	none, err := repo.TotalsSince(dbc, time.Unix(0, 0).UTC(), []uuid.UUID{})
	if err != nil || len(none) != 0 {
		t.Fatalf("empty candidate set should yield nothing: %+v err=%v", none, err)
	}

	tools, err := repo.DistinctTools(dbc, u1.ID)
	if err != nil || len(tools) != 2 || tools[0] != "Ear Training" || tools[1] != "Metronome" {
		t.Fatalf("DistinctTools: %v err=%v", tools, err)
	}

	history, err := repo.ListByUser(dbc, u1.ID, 0)
	if err != nil || len(history) != 2 || history[0].ToolName != "Metronome" {
		t.Fatalf("ListByUser should be newest first: %+v err=%v", history, err)
	}
	feed, err := repo.ListRecentByUsers(dbc, []uuid.UUID{u1.ID, u2.ID}, 3)
	if err != nil || len(feed) != 3 {
		t.Fatalf("ListRecentByUsers: %d err=%v", len(feed), err)
	}
}

func TestRoutineRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewRoutineRepo(db, testutil.Logger(t))
	userID := uuid.New()
	rt := &types.Routine{UserID: userID, Name: "Warmup", TotalDuration: 15}
	if _, err := repo.Create(dbc, []*types.Routine{rt}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		if err := repo.IncrementCompleted(dbc, userID, rt.ID, at); err != nil {
			t.Fatalf("IncrementCompleted: %v", err)
		}
	}
	got, err := repo.GetByID(dbc, userID, rt.ID)
	if err != nil || got.TimesCompleted != 2 || got.LastCompleted == nil {
		t.Fatalf("routine after completes: %+v err=%v", got, err)
	}
	if err := repo.IncrementCompleted(dbc, uuid.New(), rt.ID, at); err == nil {
		t.Fatalf("IncrementCompleted must enforce ownership")
	}
	if err := repo.Delete(dbc, userID, rt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
