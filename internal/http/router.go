package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/practice-backend/internal/http/handlers"
	httpMW "github.com/yungbote/practice-backend/internal/http/middleware"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics
	RateLimiter    *httpMW.RateLimiter

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	RealtimeHandler    *httpH.RealtimeHandler
	PracticeHandler    *httpH.PracticeHandler
	GoalHandler        *httpH.GoalHandler
	ChallengeHandler   *httpH.ChallengeHandler
	RewardHandler      *httpH.RewardHandler
	LeaderboardHandler *httpH.LeaderboardHandler
	SocialHandler      *httpH.SocialHandler
	ForumHandler       *httpH.ForumHandler
	GroupHandler       *httpH.GroupHandler
	RoutineHandler     *httpH.RoutineHandler
	PathHandler        *httpH.LearningPathHandler
	AssessmentHandler  *httpH.AssessmentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(httpMW.Recovery(cfg.Log))
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	limit := func(c *gin.Context) { c.Next() }
	if cfg.RateLimiter != nil {
		limit = cfg.RateLimiter.Handler()
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", limit, cfg.AuthHandler.Register)
			api.POST("/login", limit, cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
			protected.GET("/me/region", cfg.UserHandler.GetRegion)
			protected.PUT("/me/region", cfg.UserHandler.SetRegion)
			protected.GET("/users/:id", cfg.UserHandler.GetUser)
		}

		// Practice tracker
		if cfg.PracticeHandler != nil {
			protected.POST("/practice/start", cfg.PracticeHandler.Start)
			protected.POST("/practice/interaction", cfg.PracticeHandler.Interaction)
			protected.GET("/practice/active", cfg.PracticeHandler.Active)
			protected.POST("/practice/end", cfg.PracticeHandler.End)
			protected.GET("/practice/history", cfg.PracticeHandler.History)
		}

		// Goals
		if cfg.GoalHandler != nil {
			protected.GET("/goals", cfg.GoalHandler.List)
			protected.POST("/goals", cfg.GoalHandler.Create)
			protected.PATCH("/goals/:id", cfg.GoalHandler.UpdateProgress)
			protected.DELETE("/goals/:id", cfg.GoalHandler.Delete)
			protected.POST("/goals/reset/:frequency", cfg.GoalHandler.Reset)
			protected.POST("/goals/check-reset", cfg.GoalHandler.CheckReset)
		}

		// Daily challenge
		if cfg.ChallengeHandler != nil {
			protected.GET("/challenge", cfg.ChallengeHandler.Today)
			protected.PATCH("/challenge", cfg.ChallengeHandler.UpdateProgress)
			protected.POST("/challenge/skip", cfg.ChallengeHandler.Skip)
			protected.GET("/challenge/history", cfg.ChallengeHandler.History)
			protected.GET("/challenge/stats", cfg.ChallengeHandler.Stats)
		}

		// Rewards
		if cfg.RewardHandler != nil {
			protected.GET("/rewards", cfg.RewardHandler.Summary)
			protected.POST("/rewards/init", cfg.RewardHandler.Initialize)
			protected.POST("/rewards/achievements/:id", cfg.RewardHandler.AwardAchievement)
			protected.POST("/rewards/streak", cfg.RewardHandler.UpdateStreak)
		}

		// Leaderboards
		if cfg.LeaderboardHandler != nil {
			protected.GET("/leaderboards", cfg.LeaderboardHandler.All)
			protected.GET("/leaderboards/stats/me", cfg.LeaderboardHandler.MyStats)
			protected.GET("/leaderboards/:period", cfg.LeaderboardHandler.Get)
			protected.GET("/leaderboards/:period/position", cfg.LeaderboardHandler.Position)
			protected.GET("/leaderboards/:period/top", cfg.LeaderboardHandler.Top)
		}

		// Follows, blocks, feed
		if cfg.SocialHandler != nil {
			protected.GET("/me/following", cfg.SocialHandler.Following)
			protected.GET("/me/followers", cfg.SocialHandler.Followers)
			protected.POST("/me/stats/recalculate", cfg.SocialHandler.RecalculateStats)
			protected.GET("/users/suggested", cfg.SocialHandler.Suggested)
			protected.GET("/users/discover", cfg.SocialHandler.Discover)
			protected.GET("/users/:id/follow", cfg.SocialHandler.IsFollowing)
			protected.POST("/users/:id/follow", limit, cfg.SocialHandler.Follow)
			protected.DELETE("/users/:id/follow", cfg.SocialHandler.Unfollow)
			protected.POST("/users/:id/block", cfg.SocialHandler.Block)
			protected.DELETE("/users/:id/block", cfg.SocialHandler.Unblock)
			protected.GET("/feed", cfg.SocialHandler.Feed)
			protected.POST("/feed/:activityId/like", limit, cfg.SocialHandler.ToggleLike)
			protected.GET("/feed/:activityId/likes", cfg.SocialHandler.Likes)
			protected.GET("/feed/:activityId/comments", cfg.SocialHandler.Comments)
			protected.POST("/feed/:activityId/comments", limit, cfg.SocialHandler.AddComment)
		}

		// Forum
		if cfg.ForumHandler != nil {
			protected.GET("/forum/posts", cfg.ForumHandler.ListPosts)
			protected.POST("/forum/posts", limit, cfg.ForumHandler.CreatePost)
			protected.GET("/forum/posts/:id", cfg.ForumHandler.GetPost)
			protected.DELETE("/forum/posts/:id", cfg.ForumHandler.DeletePost)
			protected.GET("/forum/posts/:id/comments", cfg.ForumHandler.ListComments)
			protected.POST("/forum/posts/:id/comments", limit, cfg.ForumHandler.AddComment)
			protected.POST("/forum/posts/:id/like", limit, cfg.ForumHandler.LikePost)
			protected.DELETE("/forum/comments/:id", cfg.ForumHandler.DeleteComment)
			protected.GET("/forum/likes", cfg.ForumHandler.LikedPosts)
		}

		// Groups
		if cfg.GroupHandler != nil {
			protected.GET("/groups", cfg.GroupHandler.List)
			protected.POST("/groups", limit, cfg.GroupHandler.Create)
			protected.GET("/groups/public", cfg.GroupHandler.Public)
			protected.GET("/groups/:id", cfg.GroupHandler.Get)
			protected.DELETE("/groups/:id", cfg.GroupHandler.Delete)
			protected.POST("/groups/:id/join", cfg.GroupHandler.Join)
			protected.POST("/groups/:id/leave", cfg.GroupHandler.Leave)
			protected.POST("/groups/:id/invites", limit, cfg.GroupHandler.Invite)
			protected.POST("/groups/:id/practice-time", cfg.GroupHandler.AddPracticeTime)
			protected.POST("/groups/:id/sessions", cfg.GroupHandler.StartSession)

			protected.GET("/invites", cfg.GroupHandler.PendingInvites)
			protected.POST("/invites/:id/accept", cfg.GroupHandler.AcceptInvite)
			protected.POST("/invites/:id/decline", cfg.GroupHandler.DeclineInvite)
			protected.DELETE("/invites/:id", cfg.GroupHandler.CancelInvite)

			protected.PATCH("/group-sessions/:id/tool", cfg.GroupHandler.UpdateTool)
			protected.POST("/group-sessions/:id/end", cfg.GroupHandler.EndSession)
			protected.GET("/group-sessions/:id/messages", cfg.GroupHandler.Messages)
			protected.POST("/group-sessions/:id/messages", limit, cfg.GroupHandler.PostMessage)
			protected.GET("/group-sessions/:id/members", cfg.GroupHandler.Members)
			protected.GET("/group-sessions/:id/stream", cfg.GroupHandler.Stream)
		}

		// Routines
		if cfg.RoutineHandler != nil {
			protected.GET("/routines", cfg.RoutineHandler.List)
			protected.POST("/routines", cfg.RoutineHandler.Create)
			protected.DELETE("/routines/:id", cfg.RoutineHandler.Delete)
			protected.POST("/routines/:id/complete", cfg.RoutineHandler.Complete)
		}

		// Learning paths
		if cfg.PathHandler != nil {
			protected.GET("/paths", cfg.PathHandler.List)
			protected.GET("/paths/progress", cfg.PathHandler.Progress)
			protected.PUT("/paths/current", cfg.PathHandler.Select)
			protected.POST("/paths/stages/:stageId/complete", cfg.PathHandler.CompleteStage)
		}

		// Assessments
		if cfg.AssessmentHandler != nil {
			protected.GET("/assessments/types", cfg.AssessmentHandler.Types)
			protected.GET("/assessments", cfg.AssessmentHandler.History)
			protected.POST("/assessments", limit, cfg.AssessmentHandler.Start)
			protected.POST("/assessments/:id/answers", limit, cfg.AssessmentHandler.SubmitAnswer)
			protected.POST("/assessments/:id/complete", cfg.AssessmentHandler.Complete)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "route not found", "code": "not_found"}})
	})

	return r
}
