package services

import (
	"context"
	"errors"
	"strings"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type AddGoalInput struct {
	ToolName      string              `json:"tool_name"`
	TargetMinutes int                 `json:"target_minutes"`
	Frequency     types.GoalFrequency `json:"frequency"`
	IsChallenge   bool                `json:"is_challenge"`
	ChallengeID   string              `json:"challenge_id"`
}

// GoalResetResult counts goals reset per frequency.
type GoalResetResult struct {
	Daily  int64 `json:"daily"`
	Weekly int64 `json:"weekly"`
}

func (r GoalResetResult) Total() int64 { return r.Daily + r.Weekly }

type GoalService interface {
	AddGoal(ctx context.Context, in AddGoalInput) (*types.Goal, error)
	UpdateProgress(ctx context.Context, goalID uuid.UUID, minutes int) (*types.Goal, error)
	FetchGoals(ctx context.Context) ([]*types.Goal, error)
	DeleteGoal(ctx context.Context, goalID uuid.UUID) error
	ResetGoals(ctx context.Context, freq types.GoalFrequency) (int64, error)
	CheckAndResetGoals(ctx context.Context) (GoalResetResult, error)
	ResetStaleGoalsForAllUsers(ctx context.Context) (GoalResetResult, error)
}

// dailyChallengeEnsurer is the slice of ChallengeService the goal reset needs.
type dailyChallengeEnsurer interface {
	EnsureDailyChallenge(ctx context.Context, userID uuid.UUID) (*types.DailyChallenge, error)
}

type goalService struct {
	log        *logger.Logger
	clock      clock.Clock
	cal        calendar.Calendar
	goals      repos.GoalRepo
	challenges dailyChallengeEnsurer
	notify     Notifier
	metrics    *observability.Metrics
}

func NewGoalService(
	log *logger.Logger,
	clk clock.Clock,
	cal calendar.Calendar,
	goals repos.GoalRepo,
	challenges dailyChallengeEnsurer,
	notify Notifier,
	metrics *observability.Metrics,
) GoalService {
	return &goalService{
		log:        log.With("service", "GoalService"),
		clock:      clk,
		cal:        cal,
		goals:      goals,
		challenges: challenges,
		notify:     notify,
		metrics:    metrics,
	}
}

func (gs *goalService) AddGoal(ctx context.Context, in AddGoalInput) (*types.Goal, error) {
	const op = "GoalService.AddGoal"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	tool := strings.TrimSpace(in.ToolName)
	if tool == "" {
		return nil, validation(op, "tool_name is required")
	}
	if in.TargetMinutes <= 0 {
		return nil, validation(op, "target_minutes must be > 0")
	}
	freq := types.GoalFrequency(strings.ToLower(strings.TrimSpace(string(in.Frequency))))
	if !freq.Valid() {
		return nil, validation(op, "frequency must be daily or weekly")
	}
	now := gs.clock.Now().UTC()
	goal := &types.Goal{
		UserID:        userID,
		ToolName:      tool,
		TargetMinutes: in.TargetMinutes,
		Frequency:     freq,
		StartDate:     now,
		IsChallenge:   in.IsChallenge,
		ChallengeID:   strings.TrimSpace(in.ChallengeID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := gs.goals.Create(dbctx.Context{Ctx: ctx}, []*types.Goal{goal}); err != nil {
		gs.log.Warn("create goal failed", "user_id", userID, "error", err)
		return nil, storeErr(op, err)
	}
	return goal, nil
}

func (gs *goalService) UpdateProgress(ctx context.Context, goalID uuid.UUID, minutes int) (*types.Goal, error) {
	const op = "GoalService.UpdateProgress"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if minutes < 0 {
		return nil, validation(op, "progress must be >= 0")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := gs.goals.SetProgress(dbc, userID, goalID, minutes); err != nil {
		return nil, storeErr(op, err)
	}
	goal, err := gs.goals.GetByID(dbc, userID, goalID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return goal, nil
}

func (gs *goalService) FetchGoals(ctx context.Context) ([]*types.Goal, error) {
	const op = "GoalService.FetchGoals"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	goals, err := gs.goals.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return goals, nil
}

func (gs *goalService) DeleteGoal(ctx context.Context, goalID uuid.UUID) error {
	const op = "GoalService.DeleteGoal"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	if err := gs.goals.Delete(dbctx.Context{Ctx: ctx}, userID, goalID); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (gs *goalService) ResetGoals(ctx context.Context, freq types.GoalFrequency) (int64, error) {
	const op = "GoalService.ResetGoals"
	userID, err := callerID(ctx, op)
	if err != nil {
		return 0, err
	}
	if !freq.Valid() {
		return 0, validation(op, "frequency must be daily or weekly")
	}
	n, err := gs.goals.ResetByFrequency(dbctx.Context{Ctx: ctx}, userID, freq, gs.clock.Now().UTC())
	if err != nil {
		return 0, storeErr(op, err)
	}
	gs.metrics.AddGoalResets(string(freq), "manual", n)
	if gs.notify != nil {
		gs.notify.GoalsReset(ctx, userID, freq, n)
	}
	return n, nil
}

func (gs *goalService) CheckAndResetGoals(ctx context.Context) (GoalResetResult, error) {
	userID, err := callerID(ctx, "GoalService.CheckAndResetGoals")
	if err != nil {
		return GoalResetResult{}, err
	}
	return gs.resetStale(ctx, userID, "check")
}

func (gs *goalService) ResetStaleGoalsForAllUsers(ctx context.Context) (GoalResetResult, error) {
	const op = "GoalService.ResetStaleGoalsForAllUsers"
	userIDs, err := gs.goals.ListUserIDs(dbctx.Context{Ctx: ctx})
	if err != nil {
		return GoalResetResult{}, storeErr(op, err)
	}
	var total GoalResetResult
	var errs []error
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := gs.resetStale(ctx, userID, "sweep")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		total.Daily += res.Daily
		total.Weekly += res.Weekly
	}
	gs.log.Info("goal reset sweep finished", "users", len(userIDs), "daily", total.Daily, "weekly", total.Weekly, "failures", len(errs))
	return total, errors.Join(errs...)
}

// resetStale resets every stale goal of userID in one write: daily goals started
// on an earlier calendar day and weekly goals started seven or more days ago.
func (gs *goalService) resetStale(ctx context.Context, userID uuid.UUID, trigger string) (GoalResetResult, error) {
	const op = "GoalService.resetStale"
	var out GoalResetResult
	dbc := dbctx.Context{Ctx: ctx}
	goals, err := gs.goals.ListByUser(dbc, userID)
	if err != nil {
		return out, storeErr(op, err)
	}
	now := gs.clock.Now()
	var stale []uuid.UUID
	for _, g := range goals {
		switch g.Frequency {
		case types.FrequencyDaily:
			if !gs.cal.SameDay(g.StartDate, now) {
				stale = append(stale, g.ID)
				out.Daily++
			}
		case types.FrequencyWeekly:
			if gs.cal.DaysBetween(g.StartDate, now) >= 7 {
				stale = append(stale, g.ID)
				out.Weekly++
			}
		}
	}
	if len(stale) == 0 {
		return out, nil
	}
	if _, err := gs.goals.ResetByIDs(dbc, userID, stale, now.UTC()); err != nil {
		gs.log.Warn("reset stale goals failed", "user_id", userID, "error", err)
		return GoalResetResult{}, storeErr(op, err)
	}
	gs.metrics.AddGoalResets(string(types.FrequencyDaily), trigger, out.Daily)
	gs.metrics.AddGoalResets(string(types.FrequencyWeekly), trigger, out.Weekly)
	if gs.notify != nil {
		gs.notify.GoalsReset(ctx, userID, types.FrequencyDaily, out.Daily)
		gs.notify.GoalsReset(ctx, userID, types.FrequencyWeekly, out.Weekly)
	}
	if out.Daily > 0 && gs.challenges != nil {
		if _, err := gs.challenges.EnsureDailyChallenge(ctx, userID); err != nil {
			gs.log.Warn("ensure challenge after reset failed", "user_id", userID, "error", err)
		}
	}
	return out, nil
}
