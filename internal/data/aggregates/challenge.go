package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

type ChallengeAggregateDeps struct {
	Base BaseDeps

	Challenges   repos.DailyChallengeRepo
	History      repos.ChallengeHistoryRepo
	Ledgers      repos.RewardLedgerRepo
	Achievements repos.UserAchievementRepo
}

type challengeAggregate struct {
	deps   ChallengeAggregateDeps
	writer challengeWriter
}

func NewChallengeAggregate(deps ChallengeAggregateDeps) domainagg.ChallengeAggregate {
	deps.Base = deps.Base.withDefaults()
	return &challengeAggregate{
		deps: deps,
		writer: challengeWriter{
			challenges: deps.Challenges,
			history:    deps.History,
			guard:      deps.Base.CASGuard,
			rewards:    newRewardWriter(deps.Base, deps.Ledgers, deps.Achievements),
		},
	}
}

func (a *challengeAggregate) Contract() domainagg.Contract {
	return domainagg.ChallengeAggregateContract
}

func (a *challengeAggregate) SetProgress(ctx context.Context, in domainagg.SetChallengeProgressInput) (domainagg.ChallengeProgressResult, error) {
	const op = "Rewards.Challenge.SetProgress"
	var out domainagg.ChallengeProgressResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.Progress < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "progress must be >= 0", nil)
	}
	if err := a.writer.ready(op); err != nil {
		return out, err
	}
	at := writeTime(in.At)
	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		ch, err := a.deps.Challenges.GetByUser(dbc, in.UserID)
		if err != nil {
			return err
		}
		if ch == nil {
			return NotFoundError("no active challenge")
		}
		out, err = a.writer.apply(dbc, ch, in.Progress, at)
		return err
	})
	return out, err
}

func (a *challengeAggregate) Skip(ctx context.Context, in domainagg.SkipChallengeInput) (domainagg.SkipChallengeResult, error) {
	const op = "Rewards.Challenge.Skip"
	var out domainagg.SkipChallengeResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.Replacement == nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing replacement challenge", nil)
	}
	if err := a.writer.ready(op); err != nil {
		return out, err
	}
	at := writeTime(in.At)
	replacement := *in.Replacement
	replacement.UserID = in.UserID
	replacement.UpdatedAt = at

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.SkipChallengeResult{}
		if err := a.writer.rewards.updateStreak(dbc, in.UserID, false, at, &out.Reward); err != nil {
			return err
		}
		row := replacement
		if err := a.deps.Challenges.Upsert(dbc, &row); err != nil {
			return err
		}
		out.Challenge = &row
		return nil
	})
	return out, err
}

// challengeWriter owns the completion transition and is shared with session completion.
type challengeWriter struct {
	challenges repos.DailyChallengeRepo
	history    repos.ChallengeHistoryRepo
	guard      CASGuard
	rewards    rewardWriter
}

func (w challengeWriter) ready(op string) error {
	if w.challenges == nil || w.history == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "challenge repos not configured", nil)
	}
	return w.rewards.ready(op)
}

// apply stores progress and recomputes completion. CompletedAt marks the first completion
// of this challenge row; rewards are paid only when it is unset.
func (w challengeWriter) apply(dbc dbctx.Context, ch *types.DailyChallenge, progress int, at time.Time) (domainagg.ChallengeProgressResult, error) {
	var out domainagg.ChallengeProgressResult
	reached := progress >= ch.Requirement

	if reached && !ch.Completed {
		completedAt := at
		if ch.CompletedAt != nil {
			completedAt = *ch.CompletedAt
		}
		claimed, err := w.guard.UpdateWhen(dbc, &types.DailyChallenge{},
			map[string]any{"user_id": ch.UserID},
			"completed = ?", []any{false},
			map[string]any{"progress": progress, "completed": true, "completed_at": completedAt, "updated_at": at},
		)
		if err != nil {
			return out, err
		}
		if claimed && ch.CompletedAt == nil {
			reward := domainagg.RewardResult{}
			if err := w.complete(dbc, ch, at, &reward); err != nil {
				return out, err
			}
			out.JustCompleted = true
			out.Reward = &reward
		}
	} else {
		if err := w.challenges.UpdateProgress(dbc, ch.UserID, progress, reached, ch.CompletedAt); err != nil {
			return out, err
		}
	}

	fresh, err := w.challenges.GetByUser(dbc, ch.UserID)
	if err != nil {
		return out, err
	}
	out.Challenge = fresh
	return out, nil
}

func (w challengeWriter) complete(dbc dbctx.Context, ch *types.DailyChallenge, at time.Time, res *domainagg.RewardResult) error {
	if err := w.rewards.addPoints(dbc, ch.UserID, ch.Points, at, res); err != nil {
		return err
	}
	if err := w.rewards.updateStreak(dbc, ch.UserID, true, at, res); err != nil {
		return err
	}
	if err := w.rewards.grantKind(dbc, ch.UserID, catalog.KindFirstChallenge, at, res); err != nil {
		return err
	}
	if err := w.rewards.settlePointMilestones(dbc, ch.UserID, at, res); err != nil {
		return err
	}
	_, err := w.history.Create(dbc, []*types.ChallengeHistory{{
		UserID:      ch.UserID,
		ChallengeID: ch.CatalogID,
		Title:       ch.Title,
		Tool:        ch.Tool,
		Points:      ch.Points,
		Requirement: ch.Requirement,
		CompletedAt: at,
	}})
	return err
}
