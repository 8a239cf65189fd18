package app

import (
	"context"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	apphttp "github.com/yungbote/practice-backend/internal/http"
	httpH "github.com/yungbote/practice-backend/internal/http/handlers"
	httpMW "github.com/yungbote/practice-backend/internal/http/middleware"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Realtime    *httpH.RealtimeHandler
	Practice    *httpH.PracticeHandler
	Goal        *httpH.GoalHandler
	Challenge   *httpH.ChallengeHandler
	Reward      *httpH.RewardHandler
	Leaderboard *httpH.LeaderboardHandler
	Social      *httpH.SocialHandler
	Forum       *httpH.ForumHandler
	Group       *httpH.GroupHandler
	Routine     *httpH.RoutineHandler
	Path        *httpH.LearningPathHandler
	Assessment  *httpH.AssessmentHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:      httpMW.NewAuthMiddleware(log, services.Auth),
		RateLimit: httpMW.NewRateLimiter(log, metrics, cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, db *gorm.DB, rdb *goredis.Client) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(readinessChecks(db, rdb)),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User, services.Leaderboard),
		Realtime:    httpH.NewRealtimeHandler(log, sseHub),
		Practice:    httpH.NewPracticeHandler(services.Tracker),
		Goal:        httpH.NewGoalHandler(services.Goals),
		Challenge:   httpH.NewChallengeHandler(services.Challenges),
		Reward:      httpH.NewRewardHandler(services.Rewards),
		Leaderboard: httpH.NewLeaderboardHandler(services.Leaderboard),
		Social:      httpH.NewSocialHandler(services.Follows),
		Forum:       httpH.NewForumHandler(services.Forum),
		Group:       httpH.NewGroupHandler(log, services.Groups, sseHub),
		Routine:     httpH.NewRoutineHandler(services.Routines),
		Path:        httpH.NewLearningPathHandler(services.Paths),
		Assessment:  httpH.NewAssessmentHandler(services.Assessments),
	}
}

func readinessChecks(db *gorm.DB, rdb *goredis.Client) map[string]httpH.Pinger {
	checks := map[string]httpH.Pinger{}
	if db != nil {
		checks["database"] = httpH.PingFunc(func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if rdb != nil {
		checks["redis"] = httpH.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	return checks
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.CORSOrigins,
		Metrics:        metrics,
		RateLimiter:    middleware.RateLimit,
		AuthMiddleware: middleware.Auth,

		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		RealtimeHandler:    handlers.Realtime,
		PracticeHandler:    handlers.Practice,
		GoalHandler:        handlers.Goal,
		ChallengeHandler:   handlers.Challenge,
		RewardHandler:      handlers.Reward,
		LeaderboardHandler: handlers.Leaderboard,
		SocialHandler:      handlers.Social,
		ForumHandler:       handlers.Forum,
		GroupHandler:       handlers.Group,
		RoutineHandler:     handlers.Routine,
		PathHandler:        handlers.Path,
		AssessmentHandler:  handlers.Assessment,
	})
}
