package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/repos"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type Repos struct {
	User repos.UserRepo

	PracticeSession repos.PracticeSessionRepo
	Goal            repos.GoalRepo
	Routine         repos.RoutineRepo
	PathProgress    repos.PathProgressRepo
	Assessment      repos.AssessmentRepo

	DailyChallenge   repos.DailyChallengeRepo
	ChallengeHistory repos.ChallengeHistoryRepo
	RewardLedger     repos.RewardLedgerRepo
	UserAchievement  repos.UserAchievementRepo

	Follow              repos.FollowRepo
	Block               repos.BlockRepo
	ActivityLike        repos.ActivityLikeRepo
	ActivityComment     repos.ActivityCommentRepo
	ForumPost           repos.ForumPostRepo
	ForumComment        repos.ForumCommentRepo
	PostLike            repos.PostLikeRepo
	Group               repos.GroupRepo
	GroupMember         repos.GroupMemberRepo
	GroupInvite         repos.GroupInviteRepo
	GroupSession        repos.GroupSessionRepo
	GroupSessionMessage repos.GroupSessionMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: repos.NewUserRepo(db, log),

		PracticeSession: repos.NewPracticeSessionRepo(db, log),
		Goal:            repos.NewGoalRepo(db, log),
		Routine:         repos.NewRoutineRepo(db, log),
		PathProgress:    repos.NewPathProgressRepo(db, log),
		Assessment:      repos.NewAssessmentRepo(db, log),

		DailyChallenge:   repos.NewDailyChallengeRepo(db, log),
		ChallengeHistory: repos.NewChallengeHistoryRepo(db, log),
		RewardLedger:     repos.NewRewardLedgerRepo(db, log),
		UserAchievement:  repos.NewUserAchievementRepo(db, log),

		Follow:              repos.NewFollowRepo(db, log),
		Block:               repos.NewBlockRepo(db, log),
		ActivityLike:        repos.NewActivityLikeRepo(db, log),
		ActivityComment:     repos.NewActivityCommentRepo(db, log),
		ForumPost:           repos.NewForumPostRepo(db, log),
		ForumComment:        repos.NewForumCommentRepo(db, log),
		PostLike:            repos.NewPostLikeRepo(db, log),
		Group:               repos.NewGroupRepo(db, log),
		GroupMember:         repos.NewGroupMemberRepo(db, log),
		GroupInvite:         repos.NewGroupInviteRepo(db, log),
		GroupSession:        repos.NewGroupSessionRepo(db, log),
		GroupSessionMessage: repos.NewGroupSessionMessageRepo(db, log),
	}
}
