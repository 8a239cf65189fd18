package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/domain/practice"
	"github.com/yungbote/practice-backend/internal/domain/rewards"
)

var SessionCompletionAggregateContract = Contract{
	Name:             "Practice.SessionCompletionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes: "Owns the session insert, goal progress accumulation and duration-challenge advance " +
		"for one ended practice session.",
}

// SessionCompletionAggregate records an ended practice session.
//
// Write method failures should return *aggregates.Error with codes:
// CodeValidation, CodeRetryable, CodeInternal.
type SessionCompletionAggregate interface {
	Aggregate

	Complete(ctx context.Context, in CompleteSessionInput) (CompleteSessionResult, error)
}

type CompleteSessionInput struct {
	UserID       uuid.UUID
	ToolName     string
	Duration     int
	Interactions int
	Rating       *int
	Notes        string
	EndedAt      time.Time
}

type CompleteSessionResult struct {
	Session   *practice.PracticeSession
	Goals     []*practice.Goal
	Challenge *ChallengeProgressResult
}

// ChallengeAdvanced reports whether the session moved the active challenge forward.
func (r CompleteSessionResult) ChallengeAdvanced() bool {
	return r.Challenge != nil && r.Challenge.Challenge != nil
}

// ChallengeProgressResult is shared by explicit progress updates and session-driven advances.
type ChallengeProgressResult struct {
	Challenge     *rewards.DailyChallenge
	JustCompleted bool
	Reward        *RewardResult
}
