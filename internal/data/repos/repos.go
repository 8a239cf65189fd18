package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/repos/practice"
	"github.com/yungbote/practice-backend/internal/data/repos/rewards"
	"github.com/yungbote/practice-backend/internal/data/repos/social"
	"github.com/yungbote/practice-backend/internal/data/repos/user"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ProfileUpdate = user.ProfileUpdate

type PracticeSessionRepo = practice.PracticeSessionRepo
type UserTotals = practice.UserTotals
type GoalRepo = practice.GoalRepo
type RoutineRepo = practice.RoutineRepo
type PathProgressRepo = practice.PathProgressRepo
type AssessmentRepo = practice.AssessmentRepo

type DailyChallengeRepo = rewards.DailyChallengeRepo
type ChallengeHistoryRepo = rewards.ChallengeHistoryRepo
type ChallengeStats = rewards.ChallengeStats
type RewardLedgerRepo = rewards.RewardLedgerRepo
type UserAchievementRepo = rewards.UserAchievementRepo

type FollowRepo = social.FollowRepo
type BlockRepo = social.BlockRepo
type ActivityLikeRepo = social.ActivityLikeRepo
type ActivityCommentRepo = social.ActivityCommentRepo
type ForumPostRepo = social.ForumPostRepo
type ForumCommentRepo = social.ForumCommentRepo
type PostLikeRepo = social.PostLikeRepo
type GroupRepo = social.GroupRepo
type GroupMemberRepo = social.GroupMemberRepo
type GroupInviteRepo = social.GroupInviteRepo
type GroupSessionRepo = social.GroupSessionRepo
type GroupSessionMessageRepo = social.GroupSessionMessageRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewPracticeSessionRepo(db *gorm.DB, baseLog *logger.Logger) PracticeSessionRepo {
	return practice.NewPracticeSessionRepo(db, baseLog)
}
func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return practice.NewGoalRepo(db, baseLog)
}
func NewRoutineRepo(db *gorm.DB, baseLog *logger.Logger) RoutineRepo {
	return practice.NewRoutineRepo(db, baseLog)
}
func NewPathProgressRepo(db *gorm.DB, baseLog *logger.Logger) PathProgressRepo {
	return practice.NewPathProgressRepo(db, baseLog)
}
func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return practice.NewAssessmentRepo(db, baseLog)
}

func NewDailyChallengeRepo(db *gorm.DB, baseLog *logger.Logger) DailyChallengeRepo {
	return rewards.NewDailyChallengeRepo(db, baseLog)
}
func NewChallengeHistoryRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeHistoryRepo {
	return rewards.NewChallengeHistoryRepo(db, baseLog)
}
func NewRewardLedgerRepo(db *gorm.DB, baseLog *logger.Logger) RewardLedgerRepo {
	return rewards.NewRewardLedgerRepo(db, baseLog)
}
func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return rewards.NewUserAchievementRepo(db, baseLog)
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return social.NewFollowRepo(db, baseLog)
}
func NewBlockRepo(db *gorm.DB, baseLog *logger.Logger) BlockRepo {
	return social.NewBlockRepo(db, baseLog)
}
func NewActivityLikeRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLikeRepo {
	return social.NewActivityLikeRepo(db, baseLog)
}
func NewActivityCommentRepo(db *gorm.DB, baseLog *logger.Logger) ActivityCommentRepo {
	return social.NewActivityCommentRepo(db, baseLog)
}
func NewForumPostRepo(db *gorm.DB, baseLog *logger.Logger) ForumPostRepo {
	return social.NewForumPostRepo(db, baseLog)
}
func NewForumCommentRepo(db *gorm.DB, baseLog *logger.Logger) ForumCommentRepo {
	return social.NewForumCommentRepo(db, baseLog)
}
func NewPostLikeRepo(db *gorm.DB, baseLog *logger.Logger) PostLikeRepo {
	return social.NewPostLikeRepo(db, baseLog)
}
func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return social.NewGroupRepo(db, baseLog)
}
func NewGroupMemberRepo(db *gorm.DB, baseLog *logger.Logger) GroupMemberRepo {
	return social.NewGroupMemberRepo(db, baseLog)
}
func NewGroupInviteRepo(db *gorm.DB, baseLog *logger.Logger) GroupInviteRepo {
	return social.NewGroupInviteRepo(db, baseLog)
}
func NewGroupSessionRepo(db *gorm.DB, baseLog *logger.Logger) GroupSessionRepo {
	return social.NewGroupSessionRepo(db, baseLog)
}
func NewGroupSessionMessageRepo(db *gorm.DB, baseLog *logger.Logger) GroupSessionMessageRepo {
	return social.NewGroupSessionMessageRepo(db, baseLog)
}
