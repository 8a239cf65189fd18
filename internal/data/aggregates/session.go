package aggregates

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

type SessionCompletionAggregateDeps struct {
	Base BaseDeps

	Sessions     repos.PracticeSessionRepo
	Goals        repos.GoalRepo
	Challenges   repos.DailyChallengeRepo
	History      repos.ChallengeHistoryRepo
	Ledgers      repos.RewardLedgerRepo
	Achievements repos.UserAchievementRepo
}

type sessionCompletionAggregate struct {
	deps       SessionCompletionAggregateDeps
	challenges challengeWriter
}

func NewSessionCompletionAggregate(deps SessionCompletionAggregateDeps) domainagg.SessionCompletionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &sessionCompletionAggregate{
		deps: deps,
		challenges: challengeWriter{
			challenges: deps.Challenges,
			history:    deps.History,
			guard:      deps.Base.CASGuard,
			rewards:    newRewardWriter(deps.Base, deps.Ledgers, deps.Achievements),
		},
	}
}

func (a *sessionCompletionAggregate) Contract() domainagg.Contract {
	return domainagg.SessionCompletionAggregateContract
}

func (a *sessionCompletionAggregate) Complete(ctx context.Context, in domainagg.CompleteSessionInput) (domainagg.CompleteSessionResult, error) {
	const op = "Practice.Session.Complete"
	var out domainagg.CompleteSessionResult
	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	tool := strings.TrimSpace(in.ToolName)
	if tool == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing tool name", nil)
	}
	if in.Duration < 0 || in.Interactions < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "duration and interactions must be >= 0", nil)
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "rating must be between 1 and 5", nil)
	}
	if a.deps.Sessions == nil || a.deps.Goals == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "practice repos not configured", nil)
	}
	if err := a.challenges.ready(op); err != nil {
		return out, err
	}
	at := writeTime(in.EndedAt)
	cal := a.deps.Base.Calendar

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		out = domainagg.CompleteSessionResult{}
		session := &types.PracticeSession{
			UserID:       in.UserID,
			ToolName:     tool,
			Duration:     in.Duration,
			Interactions: in.Interactions,
			Rating:       in.Rating,
			Notes:        strings.TrimSpace(in.Notes),
			Date:         at,
			Completed:    true,
			CreatedAt:    at,
		}
		if _, err := a.deps.Sessions.Create(dbc, []*types.PracticeSession{session}); err != nil {
			return err
		}
		out.Session = session

		if in.Duration > 0 {
			if _, err := a.deps.Goals.AddProgressForTool(dbc, in.UserID, tool, in.Duration); err != nil {
				return err
			}

			ch, err := a.deps.Challenges.GetByUser(dbc, in.UserID)
			if err != nil {
				return err
			}
			if ch != nil && !ch.Completed && ch.Type == types.ChallengeDuration &&
				strings.EqualFold(ch.Tool, tool) && cal.SameDay(ch.Date, at) {
				res, err := a.challenges.apply(dbc, ch, ch.Progress+in.Duration, at)
				if err != nil {
					return err
				}
				out.Challenge = &res
			}
		}

		goals, err := a.deps.Goals.ListByUser(dbc, in.UserID)
		if err != nil {
			return err
		}
		out.Goals = goals
		return nil
	})
	return out, err
}
