package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/practice-backend/internal/http/handlers"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fullConfig registers every route group; gin panics on conflicting wildcards.
func fullConfig(t *testing.T) RouterConfig {
	return RouterConfig{
		Log:                testLogger(t),
		HealthHandler:      httpH.NewHealthHandler(nil),
		AuthHandler:        &httpH.AuthHandler{},
		UserHandler:        &httpH.UserHandler{},
		RealtimeHandler:    &httpH.RealtimeHandler{},
		PracticeHandler:    &httpH.PracticeHandler{},
		GoalHandler:        &httpH.GoalHandler{},
		ChallengeHandler:   &httpH.ChallengeHandler{},
		RewardHandler:      &httpH.RewardHandler{},
		LeaderboardHandler: &httpH.LeaderboardHandler{},
		SocialHandler:      &httpH.SocialHandler{},
		ForumHandler:       &httpH.ForumHandler{},
		GroupHandler:       &httpH.GroupHandler{},
		RoutineHandler:     &httpH.RoutineHandler{},
		PathHandler:        &httpH.LearningPathHandler{},
		AssessmentHandler:  &httpH.AssessmentHandler{},
	}
}

func TestRouterRegistersAllRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(fullConfig(t))

	want := map[string]bool{
		"GET /healthcheck":                    false,
		"POST /api/register":                  false,
		"GET /api/leaderboards/stats/me":      false,
		"GET /api/leaderboards/:period":       false,
		"GET /api/users/suggested":            false,
		"GET /api/users/:id":                  false,
		"GET /api/groups/public":              false,
		"GET /api/group-sessions/:id/stream":  false,
		"POST /api/feed/:activityId/comments": false,
		"POST /api/routines/:id/complete":     false,
		"POST /api/goals/reset/:frequency":    false,
		"DELETE /api/forum/comments/:id":      false,
		"PUT /api/paths/current":              false,
		"GET /api/paths/progress":             false,
		"GET /api/assessments/types":          false,
		"POST /api/assessments/:id/answers":   false,
	}
	for _, ri := range r.Routes() {
		key := ri.Method + " " + ri.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("route %s not registered", k)
		}
	}
}

func TestRouterHealthAndNoRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(fullConfig(t))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("no route = %d", rec.Code)
	}
}

func TestRouterSkipsMetricsWhenDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(fullConfig(t))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("metrics without registry = %d", rec.Code)
	}
}
