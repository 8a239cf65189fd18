package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsHandlerExposesDomainCounters(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/goals", "200", 20*time.Millisecond)
	m.ObservePracticeSession("Metronome", 15)
	m.IncChallengeCompleted("rhythmMaster")
	m.IncAchievementAwarded("firstChallenge")
	m.ObserveAggregateOperation("challenge.set_progress", "success", time.Millisecond)
	m.IncLeaderboardCache(true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`practice_api_requests_total{method="GET",route="/api/goals",status="200"} 1`,
		`practice_practice_sessions_completed_total{tool="Metronome"} 1`,
		`practice_practice_minutes_total 15`,
		`practice_challenge_completed_total{challenge="rhythmMaster"} 1`,
		`practice_rewards_achievements_awarded_total{achievement="firstChallenge"} 1`,
		`practice_leaderboard_cache_total{result="true"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.IncNotification("goals_reset", "delivered")
	m.SetSSEClients(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics handler status: %d", rec.Code)
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" x-api-key = abc ,bad, =v,k= ,auth=Bearer t")
	if len(got) != 2 || got["x-api-key"] != "abc" || got["auth"] != "Bearer t" {
		t.Fatalf("parseHeaders: %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty headers should be nil")
	}
}
