package jobs

import (
	"context"

	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/services"
)

type goalSweeper interface {
	ResetStaleGoalsForAllUsers(ctx context.Context) (services.GoalResetResult, error)
}

// GoalResetJob resets daily and weekly goals whose period has rolled over for every user.
type GoalResetJob struct {
	log   *logger.Logger
	goals goalSweeper
}

func NewGoalResetJob(baseLog *logger.Logger, goals goalSweeper) *GoalResetJob {
	return &GoalResetJob{
		log:   baseLog.With("job", "goal_reset"),
		goals: goals,
	}
}

func (j *GoalResetJob) Name() string { return "goal_reset" }

// Run returns the joined per-user failures; users that succeeded stay reset.
func (j *GoalResetJob) Run(ctx context.Context) error {
	res, err := j.goals.ResetStaleGoalsForAllUsers(ctx)
	if res.Total() > 0 {
		j.log.Info("stale goals reset", "daily", res.Daily, "weekly", res.Weekly)
	}
	return err
}
