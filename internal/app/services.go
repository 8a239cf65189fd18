package app

import (
	"fmt"

	"github.com/facebookgo/clock"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/practice-backend/internal/domain/aggregates"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
	"github.com/yungbote/practice-backend/internal/services"
)

type Services struct {
	// Accounts
	Auth services.AuthService
	User services.UserService

	// Practice + rewards
	Tracker     services.PracticeTracker
	Goals       services.GoalService
	Challenges  services.ChallengeService
	Rewards     services.RewardService
	Leaderboard services.LeaderboardService
	Routines    services.RoutineService
	Paths       services.LearningPathService
	Assessments services.AssessmentService

	// Social
	Follows services.FollowService
	Forum   services.ForumService
	Groups  services.GroupService

	Notifier services.Notifier
}

type serviceDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Clock    clock.Clock
	Calendar calendar.Calendar
	Catalog  *catalog.Catalog
	Cfg      Config
	Repos    Repos
	Hub      *realtime.SSEHub
	Clients  Clients
	Metrics  *observability.Metrics
}

func wireServices(d serviceDeps) (Services, error) {
	log := d.Log
	log.Info("Wiring services...")
	r := d.Repos

	// With redis every replica receives notices through the bus forwarder.
	var emitter services.SSEEmitter = &services.HubEmitter{Hub: d.Hub}
	if d.Clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: d.Clients.SSEBus}
	}
	notifier := services.NewNotifier(log, emitter, d.Catalog, d.Metrics)

	var store services.TrackerStore
	switch d.Cfg.TrackerBackend {
	case TrackerRedis:
		if d.Clients.Redis == nil {
			return Services{}, fmt.Errorf("TRACKER_BACKEND=redis requires REDIS_ADDR")
		}
		store = services.NewRedisTrackerStore(d.Clients.Redis, d.Cfg.TrackerTTL)
	default:
		store = services.NewMemoryTrackerStore()
	}

	cache := services.NewNoopLeaderboardCache()
	if d.Clients.Redis != nil && d.Cfg.LeaderboardCacheTTL > 0 {
		cache = services.NewRedisLeaderboardCache(d.Clients.Redis, d.Cfg.LeaderboardCacheTTL)
	}

	base := aggregates.BaseDeps{
		DB:       d.DB,
		Log:      log,
		Hooks:    aggregates.NewMetricsHooks(d.Metrics),
		Catalog:  d.Catalog,
		Calendar: d.Calendar,
	}
	rewardAgg := aggregates.NewRewardAggregate(aggregates.RewardAggregateDeps{
		Base: base, Ledgers: r.RewardLedger, Achievements: r.UserAchievement,
	})
	challengeAgg := aggregates.NewChallengeAggregate(aggregates.ChallengeAggregateDeps{
		Base: base, Challenges: r.DailyChallenge, History: r.ChallengeHistory,
		Ledgers: r.RewardLedger, Achievements: r.UserAchievement,
	})
	sessionAgg := aggregates.NewSessionCompletionAggregate(aggregates.SessionCompletionAggregateDeps{
		Base: base, Sessions: r.PracticeSession, Goals: r.Goal, Challenges: r.DailyChallenge,
		History: r.ChallengeHistory, Ledgers: r.RewardLedger, Achievements: r.UserAchievement,
	})

	if err := domainagg.CheckContracts(rewardAgg, challengeAgg, sessionAgg); err != nil {
		return Services{}, err
	}

	authService := services.NewAuthService(d.DB, log, d.Clock, r.User, r.RewardLedger, d.Cfg.JWTSecretKey, d.Cfg.AccessTokenTTL)
	userService := services.NewUserService(log, r.User)

	challengeService := services.NewChallengeService(log, d.Clock, d.Calendar, d.Catalog, nil,
		r.DailyChallenge, r.ChallengeHistory, challengeAgg, notifier, d.Metrics)
	goalService := services.NewGoalService(log, d.Clock, d.Calendar, r.Goal, challengeService, notifier, d.Metrics)
	rewardService := services.NewRewardService(log, d.Clock, d.Catalog, r.RewardLedger, r.UserAchievement, rewardAgg, notifier, d.Metrics)
	tracker := services.NewPracticeTracker(log, d.Clock, store, r.PracticeSession, sessionAgg, notifier, d.Metrics)
	leaderboard := services.NewLeaderboardService(log, d.Clock, r.User, r.PracticeSession, cache, d.Metrics)
	routines := services.NewRoutineService(log, d.Clock, d.Catalog, r.Routine)
	paths := services.NewLearningPathService(d.DB, log, d.Clock, d.Catalog, r.PathProgress)
	assessments := services.NewAssessmentService(log, d.Clock, d.Catalog, r.Assessment)

	follows := services.NewFollowService(d.DB, log, d.Clock, r.User, r.Follow, r.Block, r.PracticeSession, r.ActivityLike, r.ActivityComment)
	forum := services.NewForumService(d.DB, log, d.Clock, r.User, r.ForumPost, r.ForumComment, r.PostLike)
	groups := services.NewGroupService(d.DB, log, d.Clock, d.Hub, r.User, r.Group, r.GroupMember, r.GroupInvite,
		r.GroupSession, r.GroupSessionMessage, notifier)

	return Services{
		Auth:        authService,
		User:        userService,
		Tracker:     tracker,
		Goals:       goalService,
		Challenges:  challengeService,
		Rewards:     rewardService,
		Leaderboard: leaderboard,
		Routines:    routines,
		Paths:       paths,
		Assessments: assessments,
		Follows:     follows,
		Forum:       forum,
		Groups:      groups,
		Notifier:    notifier,
	}, nil
}
