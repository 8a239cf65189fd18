package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/realtime"
)

type testServer struct {
	router *gin.Engine
	clock  *clock.Mock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clk := clock.NewMock()
	clk.Add(time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC).Sub(clk.Now()))

	cfg := Config{
		JWTSecretKey:   "test-secret",
		AccessTokenTTL: time.Hour,
		TrackerBackend: TrackerMemory,
	}
	hub := realtime.NewSSEHub(log)
	r := wireRepos(db, log)
	svcs, err := wireServices(serviceDeps{
		DB: db, Log: log, Clock: clk, Calendar: calendar.New(time.UTC), Catalog: catalog.Default(),
		Cfg: cfg, Repos: r, Hub: hub,
	})
	if err != nil {
		t.Fatalf("wire services: %v", err)
	}
	h := wireHandlers(log, svcs, hub, db, nil)
	mw := wireMiddleware(log, cfg, svcs, nil)
	return &testServer{router: wireRouter(log, cfg, h, mw, nil), clock: clk}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": email, "password": "correct-horse", "display_name": "Player",
	})
	if code != http.StatusCreated {
		t.Fatalf("register status = %d body=%v", code, body)
	}
	tok, _ := body["access_token"].(string)
	if tok == "" {
		t.Fatalf("register returned no token: %v", body)
	}
	return tok
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestPracticeFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tok := s.register(t, "player@example.com")

	code, body := s.do(t, http.MethodPost, "/api/goals", tok, map[string]any{
		"tool_name": "Metronome", "target_minutes": 20, "frequency": "daily",
	})
	if code != http.StatusCreated {
		t.Fatalf("create goal = %d %v", code, body)
	}

	if code, body = s.do(t, http.MethodPost, "/api/practice/start", tok, map[string]string{"tool_name": "Metronome"}); code != http.StatusOK {
		t.Fatalf("start = %d %v", code, body)
	}
	if code, _ = s.do(t, http.MethodPost, "/api/practice/interaction", tok, nil); code != http.StatusOK {
		t.Fatalf("interaction = %d", code)
	}
	s.clock.Add(30 * time.Minute)

	code, body = s.do(t, http.MethodPost, "/api/practice/end", tok, map[string]any{"rating": 4})
	if code != http.StatusOK || body["recorded"] != true {
		t.Fatalf("end = %d %v", code, body)
	}
	session := body["session"].(map[string]any)
	if session["duration"].(float64) != 30 || session["interactions"].(float64) != 1 {
		t.Fatalf("session = %v", session)
	}

	code, body = s.do(t, http.MethodPost, "/api/practice/end", tok, nil)
	if code != http.StatusOK || body["recorded"] != false {
		t.Fatalf("second end = %d %v", code, body)
	}

	_, body = s.do(t, http.MethodGet, "/api/goals", tok, nil)
	goals := body["goals"].([]any)
	if len(goals) != 1 {
		t.Fatalf("goals = %v", goals)
	}
	g := goals[0].(map[string]any)
	if g["progress"].(float64) != 30 || g["completed"] != true {
		t.Fatalf("goal = %v", g)
	}

	_, body = s.do(t, http.MethodGet, "/api/practice/history", tok, nil)
	if n := len(body["sessions"].([]any)); n != 1 {
		t.Fatalf("history len = %d", n)
	}
}

func TestHTTPErrorEnvelopes(t *testing.T) {
	s := newTestServer(t)

	code, body := s.do(t, http.MethodGet, "/api/goals", "", nil)
	if code != http.StatusUnauthorized || errorCode(body) != "unauthenticated" {
		t.Fatalf("no token = %d %v", code, body)
	}

	tok := s.register(t, "dupe@example.com")
	code, body = s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": "DUPE@example.com", "password": "correct-horse",
	})
	if code != http.StatusConflict || errorCode(body) != "already_exists" {
		t.Fatalf("duplicate register = %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/goals", tok, map[string]any{
		"tool_name": "Metronome", "target_minutes": 0, "frequency": "daily",
	})
	if code != http.StatusBadRequest || errorCode(body) != "validation" {
		t.Fatalf("bad goal = %d %v", code, body)
	}

	code, body = s.do(t, http.MethodDelete, "/api/routines/not-a-uuid", tok, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("bad id = %d %v", code, body)
	}

	code, body = s.do(t, http.MethodGet, "/api/nope", tok, nil)
	if code != http.StatusNotFound || errorCode(body) != "not_found" {
		t.Fatalf("no route = %d %v", code, body)
	}
}

func TestLoginAndProfileOverHTTP(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "me@example.com")

	code, body := s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "me@example.com", "password": "wrong-password",
	})
	if code != http.StatusUnauthorized {
		t.Fatalf("bad login = %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/login", "", map[string]string{
		"email": "Me@Example.com", "password": "correct-horse",
	})
	if code != http.StatusOK {
		t.Fatalf("login = %d %v", code, body)
	}
	tok := body["access_token"].(string)

	code, body = s.do(t, http.MethodPut, "/api/me/region", tok, map[string]string{"region": "EU"})
	if code != http.StatusOK {
		t.Fatalf("set region = %d %v", code, body)
	}
	_, body = s.do(t, http.MethodGet, "/api/me/region", tok, nil)
	if body["region"] != "EU" {
		t.Fatalf("region = %v", body)
	}

	code, body = s.do(t, http.MethodGet, "/api/leaderboards/weekly", tok, nil)
	if code != http.StatusOK {
		t.Fatalf("leaderboard = %d %v", code, body)
	}
	code, _ = s.do(t, http.MethodGet, "/api/leaderboards/yearly", tok, nil)
	if code != http.StatusBadRequest {
		t.Fatalf("bad period = %d", code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	if code, _ := s.do(t, http.MethodGet, "/healthcheck", "", nil); code != http.StatusOK {
		t.Fatalf("healthcheck = %d", code)
	}
	code, body := s.do(t, http.MethodGet, "/readyz", "", nil)
	if code != http.StatusOK {
		t.Fatalf("readyz = %d %v", code, body)
	}
}

func TestLearningPathsAndAssessmentsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tok := s.register(t, "learner@example.com")

	code, body := s.do(t, http.MethodPut, "/api/paths/current", tok, map[string]string{"path_id": "beginner"})
	if code != http.StatusOK {
		t.Fatalf("select path = %d %v", code, body)
	}
	progress := body["progress"].(map[string]any)
	if progress["current_stage"] != "basics" {
		t.Fatalf("progress = %v", progress)
	}
	code, body = s.do(t, http.MethodPost, "/api/paths/stages/basics/complete", tok, nil)
	if code != http.StatusOK || body["progress"].(map[string]any)["current_stage"] != "rhythm" {
		t.Fatalf("complete stage = %d %v", code, body)
	}
	if code, body = s.do(t, http.MethodPut, "/api/paths/current", tok, map[string]string{"path_id": "expert"}); code != http.StatusBadRequest {
		t.Fatalf("unknown path = %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/assessments", tok, map[string]string{"type": "noteReading"})
	if code != http.StatusCreated {
		t.Fatalf("start assessment = %d %v", code, body)
	}
	id := body["assessment"].(map[string]any)["id"].(string)
	code, body = s.do(t, http.MethodPost, "/api/assessments/"+id+"/answers", tok, map[string]any{"answer": map[string]string{"note": "C"}})
	if code != http.StatusOK || body["assessment"].(map[string]any)["answer_count"].(float64) != 1 {
		t.Fatalf("answer = %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/assessments/"+id+"/complete", tok, map[string]int{"score": 15})
	if code != http.StatusOK || body["assessment"].(map[string]any)["completed"] != true {
		t.Fatalf("complete = %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/assessments/"+id+"/complete", tok, map[string]int{"score": 1})
	if code != http.StatusConflict || errorCode(body) != "conflict" {
		t.Fatalf("second complete = %d %v", code, body)
	}
	_, body = s.do(t, http.MethodGet, "/api/assessments", tok, nil)
	if hist := body["assessments"].([]any); len(hist) != 1 {
		t.Fatalf("history = %v", hist)
	}
}
