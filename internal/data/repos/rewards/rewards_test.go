package rewards

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func TestDailyChallengeUpsertKeepsOneRowPerUser(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewDailyChallengeRepo(db, testutil.Logger(t))
	userID := uuid.New()

	none, err := repo.GetByUser(dbc, userID)
	if err != nil || none != nil {
		t.Fatalf("expected no challenge, got %+v err=%v", none, err)
	}

	day1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	first := &types.DailyChallenge{UserID: userID, CatalogID: "rhythmMaster", Type: types.ChallengeDuration, Title: "Rhythm Master", Tool: "Metronome", Requirement: 15, Points: 75, Date: day1}
	if err := repo.Upsert(dbc, first); err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	ok, err := repo.AddProgress(dbc, userID, "rhythmMaster", 10)
	if err != nil || !ok {
		t.Fatalf("AddProgress: ok=%v err=%v", ok, err)
	}
	ok, err = repo.AddProgress(dbc, userID, "noteReading", 10)
	if err != nil || ok {
		t.Fatalf("AddProgress must match catalog id: ok=%v err=%v", ok, err)
	}

	day2 := day1.AddDate(0, 0, 1)
	second := &types.DailyChallenge{UserID: userID, CatalogID: "earTraining", Type: types.ChallengeCompletion, Title: "Perfect Pitch", Tool: "Ear Training", Requirement: 10, Points: 150, Date: day2}
	if err := repo.Upsert(dbc, second); err != nil {
		t.Fatalf("Upsert second: %v", err)
	}

	var count int64
	if err := tx.Model(&types.DailyChallenge{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one challenge row, got %d", count)
	}
	got, err := repo.GetByUser(dbc, userID)
	if err != nil || got.CatalogID != "earTraining" || got.Progress != 0 || !got.Date.Equal(day2) {
		t.Fatalf("replaced challenge: %+v err=%v", got, err)
	}

	done := day2.Add(time.Hour)
	if err := repo.UpdateProgress(dbc, userID, 10, true, &done); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if err := repo.UpdateProgress(dbc, uuid.New(), 1, false, nil); err == nil {
		t.Fatalf("UpdateProgress on missing row should fail")
	}
}

func TestLedgerAndAchievements(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	ledgers := NewRewardLedgerRepo(db, log)
	achievements := NewUserAchievementRepo(db, log)
	userID := uuid.New()

	l, err := ledgers.GetOrCreate(dbc, userID)
	if err != nil || l.Points != 0 || l.ChallengeStreak != 0 {
		t.Fatalf("GetOrCreate: %+v err=%v", l, err)
	}
	if err := ledgers.AddPoints(dbc, userID, 75); err != nil {
		t.Fatalf("AddPoints: %v", err)
	}
	again, err := ledgers.GetOrCreate(dbc, userID)
	if err != nil || again.Points != 75 {
		t.Fatalf("GetOrCreate must not reset points: %+v err=%v", again, err)
	}
	at := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	if err := ledgers.SetStreak(dbc, userID, 3, at); err != nil {
		t.Fatalf("SetStreak: %v", err)
	}

	row := &types.UserAchievement{UserID: userID, AchievementID: "threeInARow", Points: 300, AwardedAt: at}
	inserted, err := achievements.Insert(dbc, row)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}
	dup := &types.UserAchievement{UserID: userID, AchievementID: "threeInARow", Points: 300, AwardedAt: at}
	inserted, err = achievements.Insert(dbc, dup)
	if err != nil || inserted {
		t.Fatalf("duplicate insert must be a no-op: inserted=%v err=%v", inserted, err)
	}
	has, err := achievements.Has(dbc, userID, "threeInARow")
	if err != nil || !has {
		t.Fatalf("Has: %v err=%v", has, err)
	}
	list, err := achievements.ListByUser(dbc, userID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: %d err=%v", len(list), err)
	}
}

func TestChallengeHistoryStats(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewChallengeHistoryRepo(db, testutil.Logger(t))
	userID := uuid.New()
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	rows := []*types.ChallengeHistory{
		{UserID: userID, ChallengeID: "rhythmMaster", Title: "Rhythm Master", Tool: "Metronome", Points: 75, Requirement: 15, CompletedAt: base},
		{UserID: userID, ChallengeID: "rhythmMaster", Title: "Rhythm Master", Tool: "Metronome", Points: 75, Requirement: 15, CompletedAt: base.AddDate(0, 0, 1)},
		{UserID: userID, ChallengeID: "earTraining", Title: "Perfect Pitch", Tool: "Ear Training", Points: 150, Requirement: 10, CompletedAt: base.AddDate(0, 0, 2)},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}
	stats, err := repo.Stats(dbc, userID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalCompleted != 3 || stats.TotalPoints != 300 || stats.ChallengesByTool["Metronome"] != 2 || stats.ChallengesByTool["Ear Training"] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	list, err := repo.ListByUser(dbc, userID, 2)
	if err != nil || len(list) != 2 || list[0].ChallengeID != "earTraining" {
		t.Fatalf("ListByUser newest first: %+v err=%v", list, err)
	}
	if n, err := repo.CountByUser(dbc, userID); err != nil || n != 3 {
		t.Fatalf("CountByUser: %d err=%v", n, err)
	}
}
