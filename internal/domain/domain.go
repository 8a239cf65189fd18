package domain

import (
	"github.com/yungbote/practice-backend/internal/domain/practice"
	"github.com/yungbote/practice-backend/internal/domain/rewards"
	"github.com/yungbote/practice-backend/internal/domain/social"
	"github.com/yungbote/practice-backend/internal/domain/user"
)

type User = user.User

type PracticeSession = practice.PracticeSession
type Goal = practice.Goal
type GoalFrequency = practice.GoalFrequency
type Routine = practice.Routine
type RoutineStep = practice.RoutineStep
type PathProgress = practice.PathProgress
type CompletedStage = practice.CompletedStage
type Assessment = practice.Assessment

var IsGoalComplete = practice.IsComplete

const (
	FrequencyDaily  = practice.FrequencyDaily
	FrequencyWeekly = practice.FrequencyWeekly
)

type DailyChallenge = rewards.DailyChallenge
type ChallengeHistory = rewards.ChallengeHistory
type ChallengeType = rewards.ChallengeType
type RewardLedger = rewards.RewardLedger
type UserAchievement = rewards.UserAchievement

const (
	ChallengeAccuracy   = rewards.ChallengeAccuracy
	ChallengeDuration   = rewards.ChallengeDuration
	ChallengeCompletion = rewards.ChallengeCompletion
)

type Follow = social.Follow
type Block = social.Block
type ActivityLike = social.ActivityLike
type ActivityComment = social.ActivityComment
type ForumPost = social.ForumPost
type ForumComment = social.ForumComment
type PostLike = social.PostLike
type Group = social.Group
type GroupMember = social.GroupMember
type GroupInvite = social.GroupInvite
type InviteStatus = social.InviteStatus
type GroupSession = social.GroupSession
type GroupSessionMessage = social.GroupSessionMessage
type MemberTool = social.MemberTool

const (
	InvitePending  = social.InvitePending
	InviteAccepted = social.InviteAccepted
	InviteDeclined = social.InviteDeclined

	GroupSessionActive    = social.GroupSessionActive
	GroupSessionCompleted = social.GroupSessionCompleted
)

// AllModels lists every persisted entity in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&PracticeSession{},
		&Goal{},
		&Routine{},
		&PathProgress{},
		&CompletedStage{},
		&Assessment{},
		&DailyChallenge{},
		&ChallengeHistory{},
		&RewardLedger{},
		&UserAchievement{},
		&Follow{},
		&Block{},
		&ActivityLike{},
		&ActivityComment{},
		&ForumPost{},
		&ForumComment{},
		&PostLike{},
		&Group{},
		&GroupMember{},
		&GroupInvite{},
		&GroupSession{},
		&GroupSessionMessage{},
	}
}
