package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

type RewardAggregateDeps struct {
	Base BaseDeps

	Ledgers      repos.RewardLedgerRepo
	Achievements repos.UserAchievementRepo
}

type rewardAggregate struct {
	deps   RewardAggregateDeps
	writer rewardWriter
}

func NewRewardAggregate(deps RewardAggregateDeps) domainagg.RewardAggregate {
	deps.Base = deps.Base.withDefaults()
	return &rewardAggregate{
		deps:   deps,
		writer: newRewardWriter(deps.Base, deps.Ledgers, deps.Achievements),
	}
}

func (a *rewardAggregate) Contract() domainagg.Contract {
	return domainagg.RewardAggregateContract
}

func (a *rewardAggregate) AddPoints(ctx context.Context, in domainagg.AddPointsInput) (domainagg.RewardResult, error) {
	const op = "Rewards.AddPoints"
	var out domainagg.RewardResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.Points < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "points must be >= 0", nil)
	}
	if err := a.writer.ready(op); err != nil {
		return out, err
	}
	at := writeTime(in.At)
	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.RewardResult{}
		return a.writer.addPoints(dbc, in.UserID, in.Points, at, &out)
	})
	return out, err
}

func (a *rewardAggregate) AwardAchievement(ctx context.Context, in domainagg.AwardAchievementInput) (domainagg.RewardResult, error) {
	const op = "Rewards.AwardAchievement"
	var out domainagg.RewardResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	id := strings.TrimSpace(in.AchievementID)
	if _, ok := a.deps.Base.Catalog.Achievement(id); !ok {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "unknown achievement "+id, nil)
	}
	if err := a.writer.ready(op); err != nil {
		return out, err
	}
	at := writeTime(in.At)
	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.RewardResult{}
		return a.writer.award(dbc, in.UserID, id, at, &out)
	})
	return out, err
}

func (a *rewardAggregate) UpdateStreak(ctx context.Context, in domainagg.UpdateStreakInput) (domainagg.RewardResult, error) {
	const op = "Rewards.UpdateStreak"
	var out domainagg.RewardResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if err := a.writer.ready(op); err != nil {
		return out, err
	}
	at := writeTime(in.At)
	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.RewardResult{}
		return a.writer.updateStreak(dbc, in.UserID, in.Completed, at, &out)
	})
	return out, err
}

// rewardWriter applies ledger changes inside a caller-owned transaction.
type rewardWriter struct {
	ledgers      repos.RewardLedgerRepo
	achievements repos.UserAchievementRepo
	catalog      *catalog.Catalog
	cal          calendar.Calendar
}

func newRewardWriter(base BaseDeps, ledgers repos.RewardLedgerRepo, achievements repos.UserAchievementRepo) rewardWriter {
	return rewardWriter{
		ledgers:      ledgers,
		achievements: achievements,
		catalog:      base.Catalog,
		cal:          base.Calendar,
	}
}

func (w rewardWriter) ready(op string) error {
	if w.ledgers == nil || w.achievements == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "reward repos not configured", nil)
	}
	return nil
}

func (w rewardWriter) addPoints(dbc dbctx.Context, userID uuid.UUID, points int, at time.Time, res *domainagg.RewardResult) error {
	if _, err := w.ledgers.GetOrCreate(dbc, userID); err != nil {
		return err
	}
	if points > 0 {
		if err := w.ledgers.AddPoints(dbc, userID, points); err != nil {
			return err
		}
	}
	return w.settlePointMilestones(dbc, userID, at, res)
}

func (w rewardWriter) award(dbc dbctx.Context, userID uuid.UUID, achievementID string, at time.Time, res *domainagg.RewardResult) error {
	a, ok := w.catalog.Achievement(achievementID)
	if !ok {
		return ValidationError("unknown achievement " + achievementID)
	}
	if _, err := w.ledgers.GetOrCreate(dbc, userID); err != nil {
		return err
	}
	granted, err := w.grant(dbc, userID, a, at, res)
	if err != nil {
		return err
	}
	res.Awarded = granted
	return w.settlePointMilestones(dbc, userID, at, res)
}

// nextStreak: a completion on the day after the last one extends the streak, any other
// completion restarts at 1. A failure resets to 0.
func (w rewardWriter) nextStreak(ledger *types.RewardLedger, completed bool, at time.Time) int {
	if !completed {
		return 0
	}
	if ledger.LastChallengeDate != nil && w.cal.DaysBetween(*ledger.LastChallengeDate, at) == 1 {
		return ledger.ChallengeStreak + 1
	}
	return 1
}

func (w rewardWriter) updateStreak(dbc dbctx.Context, userID uuid.UUID, completed bool, at time.Time, res *domainagg.RewardResult) error {
	ledger, err := w.ledgers.GetOrCreate(dbc, userID)
	if err != nil {
		return err
	}
	streak := w.nextStreak(ledger, completed, at)
	if err := w.ledgers.SetStreak(dbc, userID, streak, w.cal.StartOfDay(at).UTC()); err != nil {
		return err
	}
	for _, a := range w.catalog.AchievementsOfKind(catalog.KindStreak) {
		if streak < a.Threshold {
			break
		}
		if _, err := w.grant(dbc, userID, a, at, res); err != nil {
			return err
		}
	}
	return w.settlePointMilestones(dbc, userID, at, res)
}

func (w rewardWriter) grantKind(dbc dbctx.Context, userID uuid.UUID, kind catalog.AchievementKind, at time.Time, res *domainagg.RewardResult) error {
	for _, a := range w.catalog.AchievementsOfKind(kind) {
		if _, err := w.grant(dbc, userID, a, at, res); err != nil {
			return err
		}
	}
	return nil
}

// grant inserts the membership row and credits its points only when the row is new.
func (w rewardWriter) grant(dbc dbctx.Context, userID uuid.UUID, a catalog.Achievement, at time.Time, res *domainagg.RewardResult) (bool, error) {
	row := &types.UserAchievement{
		UserID:        userID,
		AchievementID: a.ID,
		Points:        a.Points,
		AwardedAt:     at,
	}
	inserted, err := w.achievements.Insert(dbc, row)
	if err != nil || !inserted {
		return false, err
	}
	if a.Points > 0 {
		if err := w.ledgers.AddPoints(dbc, userID, a.Points); err != nil {
			return false, err
		}
	}
	res.Achievements = append(res.Achievements, row)
	return true, nil
}

// settlePointMilestones awards every points milestone the balance has reached.
// Each award credits points, so the balance is re-read until nothing new unlocks.
func (w rewardWriter) settlePointMilestones(dbc dbctx.Context, userID uuid.UUID, at time.Time, res *domainagg.RewardResult) error {
	milestones := w.catalog.AchievementsOfKind(catalog.KindPoints)
	for {
		ledger, err := w.ledgers.GetOrCreate(dbc, userID)
		if err != nil {
			return err
		}
		res.Ledger = ledger
		granted := false
		for _, a := range milestones {
			if ledger.Points < a.Threshold {
				break
			}
			ok, err := w.grant(dbc, userID, a, at, res)
			if err != nil {
				return err
			}
			if ok {
				granted = true
				break
			}
		}
		if !granted {
			return nil
		}
	}
}

func writeTime(at time.Time) time.Time {
	if at.IsZero() {
		at = time.Now()
	}
	return at.UTC()
}
