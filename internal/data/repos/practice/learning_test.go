package practice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func TestPathProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewPathProgressRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "paths-"+uuid.NewString()+"@example.com")
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	p, err := repo.GetOrCreate(dbc, user.ID, at)
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if p.CurrentPath != nil || p.CurrentStage != nil || len(p.CompletedStages) != 0 {
		t.Fatalf("fresh progress should be empty: %+v", p)
	}

	path, stage := "beginner", "basics"
	if err := repo.SetCurrent(dbc, user.ID, &path, &stage, at); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	if err := repo.SetCurrent(dbc, uuid.New(), &path, &stage, at); err == nil {
		t.Fatalf("SetCurrent on a missing row should fail")
	}

	added, err := repo.AddCompletedStage(dbc, user.ID, "beginner", "basics", at)
	if err != nil || !added {
		t.Fatalf("AddCompletedStage: added=%v err=%v", added, err)
	}
	added, err = repo.AddCompletedStage(dbc, user.ID, "beginner", "basics", at.Add(time.Hour))
	if err != nil || added {
		t.Fatalf("second AddCompletedStage should be a no-op: added=%v err=%v", added, err)
	}
	if _, err := repo.AddCompletedStage(dbc, user.ID, "beginner", "rhythm", at.Add(time.Minute)); err != nil {
		t.Fatalf("AddCompletedStage rhythm: %v", err)
	}

	again, err := repo.GetOrCreate(dbc, user.ID, at.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if again.CurrentPath == nil || *again.CurrentPath != "beginner" || again.CurrentStage == nil || *again.CurrentStage != "basics" {
		t.Fatalf("current path/stage: %+v", again)
	}
	if len(again.CompletedStages) != 2 || again.CompletedStages[0] != "basics" || again.CompletedStages[1] != "rhythm" {
		t.Fatalf("completed stages: %v", again.CompletedStages)
	}
}

func TestAssessmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewAssessmentRepo(db, testutil.Logger(t))
	user := testutil.SeedUser(t, ctx, tx, "assess-"+uuid.NewString()+"@example.com")
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	first := &types.Assessment{UserID: user.ID, Type: "noteReading", StartedAt: start, MaxScore: 15, Answers: datatypes.JSON(`[]`)}
	second := &types.Assessment{UserID: user.ID, Type: "noteReading", StartedAt: start.Add(time.Hour), MaxScore: 15, Answers: datatypes.JSON(`[]`)}
	for _, a := range []*types.Assessment{first, second} {
		if err := repo.Create(dbc, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	ok, err := repo.AppendAnswers(dbc, user.ID, first.ID, 0, datatypes.JSON(`[{"note":"C"}]`), 1)
	if err != nil || !ok {
		t.Fatalf("AppendAnswers: ok=%v err=%v", ok, err)
	}
	ok, err = repo.AppendAnswers(dbc, user.ID, first.ID, 0, datatypes.JSON(`[{"note":"D"}]`), 1)
	if err != nil || ok {
		t.Fatalf("stale answer count must not write: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Complete(dbc, user.ID, first.ID, 12, start.Add(10*time.Minute))
	if err != nil || !ok {
		t.Fatalf("Complete: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Complete(dbc, user.ID, first.ID, 3, start.Add(20*time.Minute))
	if err != nil || ok {
		t.Fatalf("second Complete must not write: ok=%v err=%v", ok, err)
	}
	ok, err = repo.AppendAnswers(dbc, user.ID, first.ID, 1, datatypes.JSON(`[{"note":"C"},{"note":"E"}]`), 2)
	if err != nil || ok {
		t.Fatalf("answers after completion must not write: ok=%v err=%v", ok, err)
	}

	got, err := repo.GetByID(dbc, user.ID, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.Completed || got.Score != 12 || got.EndedAt == nil || got.AnswerCount != 1 {
		t.Fatalf("stored assessment: %+v", got)
	}
	if _, err := repo.GetByID(dbc, uuid.New(), first.ID); err == nil {
		t.Fatalf("GetByID must enforce ownership")
	}

	list, err := repo.ListByUser(dbc, user.ID, 0)
	if err != nil || len(list) != 2 || list[0].ID != second.ID {
		t.Fatalf("ListByUser newest first: %+v err=%v", list, err)
	}
}
