package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/domain/rewards"
)

var RewardAggregateContract = Contract{
	Name:             "Rewards.RewardAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns points, streak and achievement membership so an achievement is credited " +
		"at most once per user.",
}

// RewardAggregate owns reward-ledger invariants.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeConflict, CodeRetryable, CodeInternal.
type RewardAggregate interface {
	Aggregate

	AddPoints(ctx context.Context, in AddPointsInput) (RewardResult, error)
	AwardAchievement(ctx context.Context, in AwardAchievementInput) (RewardResult, error)
	UpdateStreak(ctx context.Context, in UpdateStreakInput) (RewardResult, error)
}

type AddPointsInput struct {
	UserID uuid.UUID
	Points int
	At     time.Time
}

type AwardAchievementInput struct {
	UserID        uuid.UUID
	AchievementID string
	At            time.Time
}

type UpdateStreakInput struct {
	UserID    uuid.UUID
	Completed bool
	At        time.Time
}

// RewardResult is the ledger after a write plus any achievements it newly unlocked.
type RewardResult struct {
	Ledger       *rewards.RewardLedger
	Awarded      bool
	Achievements []*rewards.UserAchievement
}

var ChallengeAggregateContract = Contract{
	Name:             "Rewards.ChallengeAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns the daily challenge completion transition together with its points, streak, " +
		"achievements and history append.",
}

// ChallengeAggregate owns daily challenge transitions.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeRetryable, CodeInternal.
type ChallengeAggregate interface {
	Aggregate

	// SetProgress stores an absolute progress value and, on the first transition
	// to completed, credits the challenge rewards and appends history.
	SetProgress(ctx context.Context, in SetChallengeProgressInput) (ChallengeProgressResult, error)

	// Skip records a streak failure and replaces the active challenge.
	Skip(ctx context.Context, in SkipChallengeInput) (SkipChallengeResult, error)
}

type SetChallengeProgressInput struct {
	UserID   uuid.UUID
	Progress int
	At       time.Time
}

type SkipChallengeInput struct {
	UserID      uuid.UUID
	Replacement *rewards.DailyChallenge
	At          time.Time
}

type SkipChallengeResult struct {
	Challenge *rewards.DailyChallenge
	Reward    RewardResult
}
