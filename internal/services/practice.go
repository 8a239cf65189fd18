package services

import (
	"context"
	"math"
	"strings"

	"github.com/facebookgo/clock"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type EndSessionInput struct {
	Rating *int   `json:"rating"`
	Notes  string `json:"notes"`
}

type EndSessionResult struct {
	Session   *types.PracticeSession            `json:"session"`
	Goals     []*types.Goal                     `json:"goals"`
	Challenge *domainagg.ChallengeProgressResult `json:"challenge,omitempty"`
}

type PracticeTracker interface {
	// Start begins tracking tool for the caller, replacing any active session.
	Start(ctx context.Context, tool string) (TrackerState, error)
	RecordInteraction(ctx context.Context) (bool, error)
	Active(ctx context.Context) (*TrackerState, error)
	// End records the active session. ok is false when nothing was started.
	End(ctx context.Context, in EndSessionInput) (res *EndSessionResult, ok bool, err error)
	History(ctx context.Context, limit int) ([]*types.PracticeSession, error)
}

type practiceTracker struct {
	log      *logger.Logger
	clock    clock.Clock
	store    TrackerStore
	sessions repos.PracticeSessionRepo
	agg      domainagg.SessionCompletionAggregate
	notify   Notifier
	metrics  *observability.Metrics
	ends     singleflight.Group
}

func NewPracticeTracker(
	log *logger.Logger,
	clk clock.Clock,
	store TrackerStore,
	sessions repos.PracticeSessionRepo,
	agg domainagg.SessionCompletionAggregate,
	notify Notifier,
	metrics *observability.Metrics,
) PracticeTracker {
	if store == nil {
		store = NewMemoryTrackerStore()
	}
	return &practiceTracker{
		log:      log.With("service", "PracticeTracker"),
		clock:    clk,
		store:    store,
		sessions: sessions,
		agg:      agg,
		notify:   notify,
		metrics:  metrics,
	}
}

func (pt *practiceTracker) Start(ctx context.Context, tool string) (TrackerState, error) {
	const op = "PracticeTracker.Start"
	userID, err := callerID(ctx, op)
	if err != nil {
		return TrackerState{}, err
	}
	tool = strings.TrimSpace(tool)
	if tool == "" {
		return TrackerState{}, validation(op, "tool_name is required")
	}
	st := TrackerState{ToolName: tool, StartedAt: pt.clock.Now().UTC()}
	if err := pt.store.Put(ctx, userID, st); err != nil {
		pt.log.Warn("tracker start failed", "user_id", userID, "error", err)
		return TrackerState{}, domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}
	return st, nil
}

func (pt *practiceTracker) RecordInteraction(ctx context.Context) (bool, error) {
	const op = "PracticeTracker.RecordInteraction"
	userID, err := callerID(ctx, op)
	if err != nil {
		return false, err
	}
	ok, err := pt.store.Incr(ctx, userID)
	if err != nil {
		return false, domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}
	return ok, nil
}

func (pt *practiceTracker) Active(ctx context.Context) (*TrackerState, error) {
	const op = "PracticeTracker.Active"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	st, err := pt.store.Get(ctx, userID)
	if err != nil {
		return nil, domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}
	return st, nil
}

func (pt *practiceTracker) End(ctx context.Context, in EndSessionInput) (*EndSessionResult, bool, error) {
	const op = "PracticeTracker.End"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, false, err
	}
	if in.Rating != nil && (*in.Rating < 1 || *in.Rating > 5) {
		return nil, false, validation(op, "rating must be between 1 and 5")
	}

	v, err, _ := pt.ends.Do(userID.String(), func() (any, error) {
		st, err := pt.store.Take(ctx, userID)
		if err != nil {
			return nil, domainagg.Wrap(domainagg.CodeRetryable, op, err)
		}
		if st == nil {
			return (*EndSessionResult)(nil), nil
		}
		now := pt.clock.Now()
		minutes := int(math.Round(now.Sub(st.StartedAt).Minutes()))
		if minutes < 0 {
			minutes = 0
		}
		res, err := pt.agg.Complete(ctx, domainagg.CompleteSessionInput{
			UserID:       userID,
			ToolName:     st.ToolName,
			Duration:     minutes,
			Interactions: st.Interactions,
			Rating:       in.Rating,
			Notes:        in.Notes,
			EndedAt:      now,
		})
		if err != nil {
			// Restore the state so the end can be retried.
			if perr := pt.store.Put(context.WithoutCancel(ctx), userID, *st); perr != nil {
				pt.log.Warn("tracker state restore failed", "user_id", userID, "error", perr)
			}
			return nil, err
		}
		pt.metrics.ObservePracticeSession(res.Session.ToolName, res.Session.Duration)
		announceChallenge(ctx, pt.notify, pt.metrics, userID, res.Challenge)
		return &EndSessionResult{Session: res.Session, Goals: res.Goals, Challenge: res.Challenge}, nil
	})
	if err != nil {
		pt.log.Warn("end practice session failed", "user_id", userID, "error", err)
		return nil, false, err
	}
	out := v.(*EndSessionResult)
	if out == nil {
		return nil, false, nil
	}
	return out, true, nil
}

func (pt *practiceTracker) History(ctx context.Context, limit int) ([]*types.PracticeSession, error) {
	const op = "PracticeTracker.History"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	rows, err := pt.sessions.ListByUser(dbctx.Context{Ctx: ctx}, userID, clampLimit(limit, 100, 1000))
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}
