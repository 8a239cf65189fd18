package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/practice-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/practice-backend/internal/data/repos"
	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

type fixture struct {
	db       *gorm.DB
	base     aggregates.BaseDeps
	hooks    *aggtest.HooksRecorder
	ledgers  repos.RewardLedgerRepo
	achieved repos.UserAchievementRepo
	chs      repos.DailyChallengeRepo
	history  repos.ChallengeHistoryRepo
	sessions repos.PracticeSessionRepo
	goals    repos.GoalRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	hooks := &aggtest.HooksRecorder{}
	return &fixture{
		db:       db,
		hooks:    hooks,
		base:     aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks, Catalog: catalog.Default(), Calendar: calendar.New(time.UTC)},
		ledgers:  repos.NewRewardLedgerRepo(db, log),
		achieved: repos.NewUserAchievementRepo(db, log),
		chs:      repos.NewDailyChallengeRepo(db, log),
		history:  repos.NewChallengeHistoryRepo(db, log),
		sessions: repos.NewPracticeSessionRepo(db, log),
		goals:    repos.NewGoalRepo(db, log),
	}
}

func (f *fixture) rewards() domainagg.RewardAggregate {
	return aggregates.NewRewardAggregate(aggregates.RewardAggregateDeps{Base: f.base, Ledgers: f.ledgers, Achievements: f.achieved})
}

func (f *fixture) challenges() domainagg.ChallengeAggregate {
	return aggregates.NewChallengeAggregate(aggregates.ChallengeAggregateDeps{
		Base: f.base, Challenges: f.chs, History: f.history, Ledgers: f.ledgers, Achievements: f.achieved,
	})
}

func (f *fixture) completion(base aggregates.BaseDeps) domainagg.SessionCompletionAggregate {
	return aggregates.NewSessionCompletionAggregate(aggregates.SessionCompletionAggregateDeps{
		Base: base, Sessions: f.sessions, Goals: f.goals, Challenges: f.chs, History: f.history,
		Ledgers: f.ledgers, Achievements: f.achieved,
	})
}

func (f *fixture) seedChallenge(t *testing.T, userID uuid.UUID, id string, date time.Time) {
	t.Helper()
	entry, ok := catalog.Default().Challenge(id)
	if !ok {
		t.Fatalf("catalog has no %s", id)
	}
	ch := entry.NewDailyChallenge(types.DailyChallenge{UserID: userID, Date: date, UpdatedAt: date})
	if err := f.chs.Upsert(dbctx.Context{Ctx: context.Background()}, ch); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
}

func (f *fixture) ledger(t *testing.T, userID uuid.UUID) *types.RewardLedger {
	t.Helper()
	l, err := f.ledgers.GetOrCreate(dbctx.Context{Ctx: context.Background()}, userID)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	return l
}

func day(n int) time.Time {
	return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestAggregateContractsOwnTheirTransactions(t *testing.T) {
	f := newFixture(t)
	aggs := []domainagg.Aggregate{f.rewards(), f.challenges(), f.completion(f.base)}
	for _, a := range aggs {
		c := a.Contract()
		if !c.RequiresAggregateOwnedTx() || c.ReadPolicy != domainagg.ReadPolicyInvariantScoped {
			t.Fatalf("contract %s: %+v", c.Name, c)
		}
	}
	if err := domainagg.CheckContracts(aggs...); err != nil {
		t.Fatalf("CheckContracts: %v", err)
	}
	if err := domainagg.CheckContracts(f.rewards(), f.rewards()); err == nil {
		t.Fatalf("duplicate contract names should be rejected")
	}
}

func TestAwardAchievementIsIdempotent(t *testing.T) {
	f := newFixture(t)
	agg := f.rewards()
	ctx := context.Background()
	userID := uuid.New()

	first, err := agg.AwardAchievement(ctx, domainagg.AwardAchievementInput{UserID: userID, AchievementID: "firstChallenge", At: day(0)})
	if err != nil || !first.Awarded || first.Ledger.Points != 100 {
		t.Fatalf("first award: %+v err=%v", first, err)
	}
	second, err := agg.AwardAchievement(ctx, domainagg.AwardAchievementInput{UserID: userID, AchievementID: "firstChallenge", At: day(1)})
	if err != nil || second.Awarded || second.Ledger.Points != 100 || len(second.Achievements) != 0 {
		t.Fatalf("second award must be a no-op: %+v err=%v", second, err)
	}
	held, err := f.achieved.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil || len(held) != 1 {
		t.Fatalf("held achievements: %d err=%v", len(held), err)
	}

	_, err = agg.AwardAchievement(ctx, domainagg.AwardAchievementInput{UserID: userID, AchievementID: "nope"})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("unknown achievement should be a validation error, got %v", err)
	}
}

func TestStreakConsecutiveDaysUnlocksThreeInARowOnce(t *testing.T) {
	f := newFixture(t)
	agg := f.rewards()
	ctx := context.Background()
	userID := uuid.New()

	var last domainagg.RewardResult
	unlocked := 0
	for d := 0; d < 4; d++ {
		res, err := agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: true, At: day(d)})
		if err != nil {
			t.Fatalf("day %d: %v", d, err)
		}
		for _, a := range res.Achievements {
			if a.AchievementID == "threeInARow" {
				unlocked++
			}
		}
		if d == 2 && res.Ledger.ChallengeStreak != 3 {
			t.Fatalf("streak after three days: %d", res.Ledger.ChallengeStreak)
		}
		last = res
	}
	if unlocked != 1 {
		t.Fatalf("threeInARow unlocked %d times", unlocked)
	}
	if last.Ledger.ChallengeStreak != 4 || last.Ledger.Points != 300 {
		t.Fatalf("ledger after four days: %+v", last.Ledger)
	}

	repeat, err := agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: true, At: day(3).Add(2 * time.Hour)})
	if err != nil || repeat.Ledger.ChallengeStreak != 1 {
		t.Fatalf("same-day repeat restarts at 1: %+v err=%v", repeat.Ledger, err)
	}
}

func TestStreakSameDayRepeatAfterExtensionRestarts(t *testing.T) {
	f := newFixture(t)
	agg := f.rewards()
	ctx := context.Background()
	userID := uuid.New()

	want := []int{1, 2, 1}
	for i, at := range []time.Time{day(0), day(1), day(1).Add(3 * time.Hour)} {
		res, err := agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: true, At: at})
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if res.Ledger.ChallengeStreak != want[i] {
			t.Fatalf("update %d: streak=%d want %d", i, res.Ledger.ChallengeStreak, want[i])
		}
	}
}

func TestStreakGapRestartsAtOne(t *testing.T) {
	f := newFixture(t)
	agg := f.rewards()
	ctx := context.Background()
	userID := uuid.New()

	if _, err := agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: true, At: day(0)}); err != nil {
		t.Fatalf("day 0: %v", err)
	}
	res, err := agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: true, At: day(2)})
	if err != nil || res.Ledger.ChallengeStreak != 1 {
		t.Fatalf("gap should restart at 1: %+v err=%v", res.Ledger, err)
	}
	res, err = agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: false, At: day(3)})
	if err != nil || res.Ledger.ChallengeStreak != 0 {
		t.Fatalf("failure resets to 0: %+v err=%v", res.Ledger, err)
	}
}

func TestAddPointsCrossesMilestoneOnce(t *testing.T) {
	f := newFixture(t)
	agg := f.rewards()
	ctx := context.Background()
	userID := uuid.New()

	res, err := agg.AddPoints(ctx, domainagg.AddPointsInput{UserID: userID, Points: 4999, At: day(0)})
	if err != nil || len(res.Achievements) != 0 || res.Ledger.Points != 4999 {
		t.Fatalf("below threshold: %+v err=%v", res, err)
	}
	res, err = agg.AddPoints(ctx, domainagg.AddPointsInput{UserID: userID, Points: 1, At: day(0)})
	if err != nil || len(res.Achievements) != 1 || res.Achievements[0].AchievementID != "pointMilestone" {
		t.Fatalf("milestone: %+v err=%v", res, err)
	}
	if res.Ledger.Points != 5500 {
		t.Fatalf("milestone points credited once: %d", res.Ledger.Points)
	}
	res, err = agg.AddPoints(ctx, domainagg.AddPointsInput{UserID: userID, Points: 10, At: day(1)})
	if err != nil || len(res.Achievements) != 0 || res.Ledger.Points != 5510 {
		t.Fatalf("milestone must not repeat: %+v err=%v", res, err)
	}
	if _, err := agg.AddPoints(ctx, domainagg.AddPointsInput{UserID: userID, Points: -1}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("negative points should be rejected, got %v", err)
	}
}

func TestChallengeCompletionCreditsRewardsOnce(t *testing.T) {
	f := newFixture(t)
	agg := f.challenges()
	ctx := context.Background()
	userID := uuid.New()
	f.seedChallenge(t, userID, "earTraining", day(0))

	res, err := agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: userID, Progress: 5, At: day(0)})
	if err != nil || res.JustCompleted || res.Challenge.Completed || res.Challenge.Progress != 5 {
		t.Fatalf("partial progress: %+v err=%v", res, err)
	}
	res, err = agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: userID, Progress: 10, At: day(0)})
	if err != nil || !res.JustCompleted || !res.Challenge.Completed || res.Reward == nil {
		t.Fatalf("completion: %+v err=%v", res, err)
	}
	// 150 challenge points plus 100 for firstChallenge.
	if res.Reward.Ledger.Points != 250 || res.Reward.Ledger.ChallengeStreak != 1 {
		t.Fatalf("reward ledger: %+v", res.Reward.Ledger)
	}

	again, err := agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: userID, Progress: 12, At: day(0)})
	if err != nil || again.JustCompleted || again.Reward != nil {
		t.Fatalf("re-completion must not pay again: %+v err=%v", again, err)
	}
	lower, err := agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: userID, Progress: 3, At: day(0)})
	if err != nil || lower.Challenge.Completed || lower.Challenge.Progress != 3 || lower.Reward != nil {
		t.Fatalf("lower progress must clear completion: %+v err=%v", lower, err)
	}
	back, err := agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: userID, Progress: 10, At: day(0)})
	if err != nil || !back.Challenge.Completed || back.JustCompleted || back.Reward != nil {
		t.Fatalf("completing again must not pay again: %+v err=%v", back, err)
	}

	if got := f.ledger(t, userID).Points; got != 250 {
		t.Fatalf("points after repeats: %d", got)
	}
	n, err := f.history.CountByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil || n != 1 {
		t.Fatalf("history rows: %d err=%v", n, err)
	}
	if f.hooks.Statuses()["Rewards.Challenge.SetProgress"] != "success" {
		t.Fatalf("hooks: %+v", f.hooks.Operations)
	}

	_, err = agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: uuid.New(), Progress: 1})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("missing challenge should be not_found, got %v", err)
	}
}

func TestSkipRecordsFailureAndReplaces(t *testing.T) {
	f := newFixture(t)
	rewards := f.rewards()
	agg := f.challenges()
	ctx := context.Background()
	userID := uuid.New()
	f.seedChallenge(t, userID, "earTraining", day(1))

	for d := 0; d < 2; d++ {
		if _, err := rewards.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: true, At: day(d)}); err != nil {
			t.Fatalf("streak: %v", err)
		}
	}
	next, _ := catalog.Default().Challenge("rhythmMaster")
	replacement := next.NewDailyChallenge(types.DailyChallenge{Date: day(2)})
	res, err := agg.Skip(ctx, domainagg.SkipChallengeInput{UserID: userID, Replacement: replacement, At: day(2)})
	if err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if res.Reward.Ledger.ChallengeStreak != 0 {
		t.Fatalf("skip must reset the streak: %+v", res.Reward.Ledger)
	}
	stored, err := f.chs.GetByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil || stored.CatalogID != "rhythmMaster" || stored.Progress != 0 {
		t.Fatalf("replacement: %+v err=%v", stored, err)
	}
}

func TestSessionCompletionAppliesGoalsAndDurationChallenge(t *testing.T) {
	f := newFixture(t)
	agg := f.completion(f.base)
	ctx := context.Background()
	userID := uuid.New()
	f.seedChallenge(t, userID, "rhythmMaster", day(0))
	testutil.SeedGoal(t, ctx, f.db, userID, "Metronome", 30, types.FrequencyDaily, day(0))
	other := testutil.SeedGoal(t, ctx, f.db, userID, "Piano Notes", 20, types.FrequencyDaily, day(0))

	res, err := agg.Complete(ctx, domainagg.CompleteSessionInput{UserID: userID, ToolName: "Metronome", Duration: 10, EndedAt: day(0)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.ChallengeAdvanced() || res.Challenge.JustCompleted || res.Challenge.Challenge.Progress != 10 {
		t.Fatalf("challenge advance: %+v", res.Challenge)
	}
	res, err = agg.Complete(ctx, domainagg.CompleteSessionInput{UserID: userID, ToolName: "Metronome", Duration: 8, EndedAt: day(0).Add(time.Hour)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !res.Challenge.JustCompleted || res.Challenge.Reward.Ledger.Points != 175 {
		t.Fatalf("duration challenge should complete with 75+100 points: %+v", res.Challenge)
	}
	for _, g := range res.Goals {
		switch g.ID {
		case other.ID:
			if g.Progress != 0 {
				t.Fatalf("other tool goal touched: %+v", g)
			}
		default:
			if g.Progress != 18 || g.Completed {
				t.Fatalf("metronome goal: %+v", g)
			}
		}
	}

	res, err = agg.Complete(ctx, domainagg.CompleteSessionInput{UserID: userID, ToolName: "Metronome", Duration: 5, EndedAt: day(0).Add(2 * time.Hour)})
	if err != nil || res.ChallengeAdvanced() {
		t.Fatalf("completed challenge must not advance again: %+v err=%v", res.Challenge, err)
	}
}

func TestSessionCompletionRollsBackOnCommitFailure(t *testing.T) {
	f := newFixture(t)
	base := f.base
	base.Runner = &aggtest.InjectedTxRunner{DB: f.db, FailCommit: errors.New("commit failed")}
	agg := f.completion(base)
	ctx := context.Background()
	userID := uuid.New()
	goal := testutil.SeedGoal(t, ctx, f.db, userID, "Metronome", 30, types.FrequencyDaily, day(0))

	_, err := agg.Complete(ctx, domainagg.CompleteSessionInput{UserID: userID, ToolName: "Metronome", Duration: 12, EndedAt: day(0)})
	if err == nil {
		t.Fatalf("expected commit failure")
	}
	dbc := dbctx.Context{Ctx: ctx}
	sessions, err := f.sessions.ListByUser(dbc, userID, 0)
	if err != nil || len(sessions) != 0 {
		t.Fatalf("session must be rolled back: %d err=%v", len(sessions), err)
	}
	g, err := f.goals.GetByID(dbc, userID, goal.ID)
	if err != nil || g.Progress != 0 {
		t.Fatalf("goal progress must be rolled back: %+v err=%v", g, err)
	}
}

func TestSessionCompletionValidatesInput(t *testing.T) {
	f := newFixture(t)
	agg := f.completion(f.base)
	bad := 9
	for name, in := range map[string]domainagg.CompleteSessionInput{
		"no user":    {ToolName: "Metronome", Duration: 1},
		"no tool":    {UserID: uuid.New(), Duration: 1},
		"negative":   {UserID: uuid.New(), ToolName: "Metronome", Duration: -1},
		"bad rating": {UserID: uuid.New(), ToolName: "Metronome", Duration: 1, Rating: &bad},
	} {
		if _, err := agg.Complete(context.Background(), in); !domainagg.IsCode(err, domainagg.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}
