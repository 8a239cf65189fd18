package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type ChallengeService interface {
	// FetchDailyChallenge returns the caller's challenge for today, generating one when
	// none exists or the stored one belongs to an earlier day.
	FetchDailyChallenge(ctx context.Context) (*types.DailyChallenge, error)
	EnsureDailyChallenge(ctx context.Context, userID uuid.UUID) (*types.DailyChallenge, error)
	UpdateProgress(ctx context.Context, progress int) (domainagg.ChallengeProgressResult, error)
	SkipChallenge(ctx context.Context) (*types.DailyChallenge, error)
	History(ctx context.Context, limit int) ([]*types.ChallengeHistory, error)
	Stats(ctx context.Context) (repos.ChallengeStats, error)
}

type challengeService struct {
	log        *logger.Logger
	clock      clock.Clock
	cal        calendar.Calendar
	catalog    *catalog.Catalog
	challenges repos.DailyChallengeRepo
	history    repos.ChallengeHistoryRepo
	agg        domainagg.ChallengeAggregate
	notify     Notifier
	metrics    *observability.Metrics

	rngMu sync.Mutex
	rng   *rand.Rand
	group singleflight.Group
}

func NewChallengeService(
	log *logger.Logger,
	clk clock.Clock,
	cal calendar.Calendar,
	cat *catalog.Catalog,
	rng *rand.Rand,
	challenges repos.DailyChallengeRepo,
	history repos.ChallengeHistoryRepo,
	agg domainagg.ChallengeAggregate,
	notify Notifier,
	metrics *observability.Metrics,
) ChallengeService {
	if cat == nil {
		cat = catalog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(clk.Now().UnixNano()))
	}
	return &challengeService{
		log:        log.With("service", "ChallengeService"),
		clock:      clk,
		cal:        cal,
		catalog:    cat,
		rng:        rng,
		challenges: challenges,
		history:    history,
		agg:        agg,
		notify:     notify,
		metrics:    metrics,
	}
}

func (cs *challengeService) FetchDailyChallenge(ctx context.Context) (*types.DailyChallenge, error) {
	userID, err := callerID(ctx, "ChallengeService.FetchDailyChallenge")
	if err != nil {
		return nil, err
	}
	return cs.EnsureDailyChallenge(ctx, userID)
}

func (cs *challengeService) EnsureDailyChallenge(ctx context.Context, userID uuid.UUID) (*types.DailyChallenge, error) {
	const op = "ChallengeService.EnsureDailyChallenge"
	v, err, _ := cs.group.Do(userID.String(), func() (any, error) {
		dbc := dbctx.Context{Ctx: ctx}
		now := cs.clock.Now()
		current, err := cs.challenges.GetByUser(dbc, userID)
		if err != nil {
			return nil, storeErr(op, err)
		}
		if current != nil && !cs.cal.Before(current.Date, now) {
			return current, nil
		}
		next, err := cs.generate(userID, "", now)
		if err != nil {
			return nil, err
		}
		if err := cs.challenges.Upsert(dbc, next); err != nil {
			return nil, storeErr(op, err)
		}
		cs.log.Debug("daily challenge generated", "user_id", userID, "challenge_id", next.CatalogID)
		if cs.notify != nil {
			cs.notify.ChallengeGenerated(ctx, userID, next)
		}
		return next, nil
	})
	if err != nil {
		cs.log.Warn("ensure daily challenge failed", "user_id", userID, "error", err)
		return nil, err
	}
	return v.(*types.DailyChallenge), nil
}

func (cs *challengeService) UpdateProgress(ctx context.Context, progress int) (domainagg.ChallengeProgressResult, error) {
	const op = "ChallengeService.UpdateProgress"
	var out domainagg.ChallengeProgressResult
	userID, err := callerID(ctx, op)
	if err != nil {
		return out, err
	}
	if progress < 0 {
		return out, validation(op, "progress must be >= 0")
	}
	if _, err := cs.EnsureDailyChallenge(ctx, userID); err != nil {
		return out, err
	}
	out, err = cs.agg.SetProgress(ctx, domainagg.SetChallengeProgressInput{UserID: userID, Progress: progress, At: cs.clock.Now()})
	if err != nil {
		cs.log.Warn("challenge progress failed", "user_id", userID, "error", err)
		return out, err
	}
	announceChallenge(ctx, cs.notify, cs.metrics, userID, &out)
	return out, nil
}

func (cs *challengeService) SkipChallenge(ctx context.Context) (*types.DailyChallenge, error) {
	const op = "ChallengeService.SkipChallenge"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	current, err := cs.EnsureDailyChallenge(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := cs.clock.Now()
	next, err := cs.generate(userID, current.CatalogID, now)
	if err != nil {
		return nil, err
	}
	res, err := cs.agg.Skip(ctx, domainagg.SkipChallengeInput{UserID: userID, Replacement: next, At: now})
	if err != nil {
		cs.log.Warn("skip challenge failed", "user_id", userID, "error", err)
		return nil, err
	}
	if cs.notify != nil {
		cs.notify.ChallengeGenerated(ctx, userID, res.Challenge)
	}
	announceAchievements(ctx, cs.notify, cs.metrics, userID, res.Reward.Achievements)
	return res.Challenge, nil
}

func (cs *challengeService) History(ctx context.Context, limit int) ([]*types.ChallengeHistory, error) {
	const op = "ChallengeService.History"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	rows, err := cs.history.ListByUser(dbctx.Context{Ctx: ctx}, userID, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func (cs *challengeService) Stats(ctx context.Context) (repos.ChallengeStats, error) {
	const op = "ChallengeService.Stats"
	userID, err := callerID(ctx, op)
	if err != nil {
		return repos.ChallengeStats{}, err
	}
	stats, err := cs.history.Stats(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return repos.ChallengeStats{}, storeErr(op, err)
	}
	return stats, nil
}

// generate picks a catalog entry uniformly at random, avoiding exclude when
// another entry exists.
func (cs *challengeService) generate(userID uuid.UUID, exclude string, now time.Time) (*types.DailyChallenge, error) {
	entries := cs.catalog.Challenges()
	if exclude != "" && len(entries) > 1 {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID != exclude {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if len(entries) == 0 {
		return nil, domainagg.NewError(domainagg.CodeInternal, "ChallengeService.generate", "challenge catalog is empty", nil)
	}
	cs.rngMu.Lock()
	pick := entries[cs.rng.Intn(len(entries))]
	cs.rngMu.Unlock()
	return pick.NewDailyChallenge(types.DailyChallenge{
		UserID:    userID,
		Date:      now.UTC(),
		UpdatedAt: now.UTC(),
	}), nil
}

func announceChallenge(ctx context.Context, notify Notifier, metrics *observability.Metrics, userID uuid.UUID, res *domainagg.ChallengeProgressResult) {
	if res == nil || !res.JustCompleted || res.Challenge == nil {
		return
	}
	metrics.IncChallengeCompleted(res.Challenge.CatalogID)
	var ledger *types.RewardLedger
	if res.Reward != nil {
		ledger = res.Reward.Ledger
	}
	if notify != nil {
		notify.ChallengeCompleted(ctx, userID, res.Challenge, ledger)
	}
	if res.Reward != nil {
		announceAchievements(ctx, notify, metrics, userID, res.Reward.Achievements)
	}
}
