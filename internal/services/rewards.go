package services

import (
	"context"
	"strings"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type AchievementView struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Points      int       `json:"points"`
	AwardedAt   time.Time `json:"awarded_at"`
}

type RewardSummary struct {
	Points            int               `json:"points"`
	ChallengeStreak   int               `json:"challenge_streak"`
	LastChallengeDate *time.Time        `json:"last_challenge_date,omitempty"`
	Achievements      []AchievementView `json:"achievements"`
}

type RewardService interface {
	Initialize(ctx context.Context) (*types.RewardLedger, error)
	AddPoints(ctx context.Context, points int) (domainagg.RewardResult, error)
	AwardAchievement(ctx context.Context, achievementID string) (domainagg.RewardResult, error)
	UpdateStreak(ctx context.Context, completed bool) (domainagg.RewardResult, error)
	Summary(ctx context.Context) (*RewardSummary, error)
}

type rewardService struct {
	log          *logger.Logger
	clock        clock.Clock
	catalog      *catalog.Catalog
	ledgers      repos.RewardLedgerRepo
	achievements repos.UserAchievementRepo
	agg          domainagg.RewardAggregate
	notify       Notifier
	metrics      *observability.Metrics
}

func NewRewardService(
	log *logger.Logger,
	clk clock.Clock,
	cat *catalog.Catalog,
	ledgers repos.RewardLedgerRepo,
	achievements repos.UserAchievementRepo,
	agg domainagg.RewardAggregate,
	notify Notifier,
	metrics *observability.Metrics,
) RewardService {
	if cat == nil {
		cat = catalog.Default()
	}
	return &rewardService{
		log:          log.With("service", "RewardService"),
		clock:        clk,
		catalog:      cat,
		ledgers:      ledgers,
		achievements: achievements,
		agg:          agg,
		notify:       notify,
		metrics:      metrics,
	}
}

func (rs *rewardService) Initialize(ctx context.Context) (*types.RewardLedger, error) {
	const op = "RewardService.Initialize"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	ledger, err := rs.ledgers.GetOrCreate(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		rs.log.Warn("initialize rewards failed", "user_id", userID, "error", err)
		return nil, storeErr(op, err)
	}
	return ledger, nil
}

func (rs *rewardService) AddPoints(ctx context.Context, points int) (domainagg.RewardResult, error) {
	userID, err := callerID(ctx, "RewardService.AddPoints")
	if err != nil {
		return domainagg.RewardResult{}, err
	}
	res, err := rs.agg.AddPoints(ctx, domainagg.AddPointsInput{UserID: userID, Points: points, At: rs.clock.Now()})
	if err != nil {
		rs.log.Warn("add points failed", "user_id", userID, "points", points, "error", err)
		return res, err
	}
	rs.announce(ctx, userID, res.Achievements)
	return res, nil
}

func (rs *rewardService) AwardAchievement(ctx context.Context, achievementID string) (domainagg.RewardResult, error) {
	userID, err := callerID(ctx, "RewardService.AwardAchievement")
	if err != nil {
		return domainagg.RewardResult{}, err
	}
	res, err := rs.agg.AwardAchievement(ctx, domainagg.AwardAchievementInput{
		UserID:        userID,
		AchievementID: strings.TrimSpace(achievementID),
		At:            rs.clock.Now(),
	})
	if err != nil {
		rs.log.Warn("award achievement failed", "user_id", userID, "achievement_id", achievementID, "error", err)
		return res, err
	}
	rs.announce(ctx, userID, res.Achievements)
	return res, nil
}

func (rs *rewardService) UpdateStreak(ctx context.Context, completed bool) (domainagg.RewardResult, error) {
	userID, err := callerID(ctx, "RewardService.UpdateStreak")
	if err != nil {
		return domainagg.RewardResult{}, err
	}
	res, err := rs.agg.UpdateStreak(ctx, domainagg.UpdateStreakInput{UserID: userID, Completed: completed, At: rs.clock.Now()})
	if err != nil {
		rs.log.Warn("update streak failed", "user_id", userID, "error", err)
		return res, err
	}
	rs.announce(ctx, userID, res.Achievements)
	return res, nil
}

func (rs *rewardService) Summary(ctx context.Context) (*RewardSummary, error) {
	const op = "RewardService.Summary"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ledger, err := rs.ledgers.GetOrCreate(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	held, err := rs.achievements.ListByUser(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	out := &RewardSummary{
		Points:            ledger.Points,
		ChallengeStreak:   ledger.ChallengeStreak,
		LastChallengeDate: ledger.LastChallengeDate,
		Achievements:      make([]AchievementView, 0, len(held)),
	}
	for _, row := range held {
		view := AchievementView{ID: row.AchievementID, Title: row.AchievementID, Points: row.Points, AwardedAt: row.AwardedAt}
		if a, ok := rs.catalog.Achievement(row.AchievementID); ok {
			view.Title = a.Title
			view.Description = a.Description
			view.Icon = a.Icon
		}
		out.Achievements = append(out.Achievements, view)
	}
	return out, nil
}

func (rs *rewardService) announce(ctx context.Context, userID uuid.UUID, rows []*types.UserAchievement) {
	announceAchievements(ctx, rs.notify, rs.metrics, userID, rows)
}

func announceAchievements(ctx context.Context, notify Notifier, metrics *observability.Metrics, userID uuid.UUID, rows []*types.UserAchievement) {
	for _, row := range rows {
		metrics.IncAchievementAwarded(row.AchievementID)
	}
	if notify != nil && len(rows) > 0 {
		notify.AchievementsUnlocked(ctx, userID, rows)
	}
}
