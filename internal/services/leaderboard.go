package services

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/practice-backend/internal/data/repos"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "allTime"
)

var Periods = []Period{PeriodWeekly, PeriodMonthly, PeriodAllTime}

func ParsePeriod(s string) (Period, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "weekly":
		return PeriodWeekly, true
	case "monthly":
		return PeriodMonthly, true
	case "alltime", "all-time", "all_time":
		return PeriodAllTime, true
	}
	return "", false
}

// Since returns the inclusive start of the period window ending at now.
func (p Period) Since(now time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		return now.Add(-7 * 24 * time.Hour)
	case PeriodMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return time.Unix(0, 0).UTC()
	}
}

type LeaderboardEntry struct {
	Rank        int       `json:"rank"`
	UserID      uuid.UUID `json:"user_id"`
	UserName    string    `json:"user_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	Region      string    `json:"region,omitempty"`
	TotalTime   int       `json:"total_time"`
	AverageTime int       `json:"average_time"`
	Sessions    int       `json:"sessions"`
}

type PracticeStats struct {
	TotalTime      int `json:"total_time"`
	AverageSession int `json:"average_session"`
	TotalSessions  int `json:"total_sessions"`
}

type LeaderboardService interface {
	Leaderboard(ctx context.Context, period Period) ([]LeaderboardEntry, error)
	RegionalLeaderboard(ctx context.Context, period Period) ([]LeaderboardEntry, error)
	AllLeaderboards(ctx context.Context) (map[Period][]LeaderboardEntry, error)
	UserPosition(ctx context.Context, period Period, regional bool) (*int, error)
	RelativeRank(ctx context.Context, period Period, regional bool) (*string, error)
	TopPerformers(ctx context.Context, period Period, limit int) ([]LeaderboardEntry, error)
	UserStats(ctx context.Context) (PracticeStats, error)
	UserRegion(ctx context.Context) (string, error)
	SetUserRegion(ctx context.Context, region string) error
}

type leaderboardService struct {
	log      *logger.Logger
	clock    clock.Clock
	users    repos.UserRepo
	sessions repos.PracticeSessionRepo
	cache    LeaderboardCache
	metrics  *observability.Metrics
}

func NewLeaderboardService(
	log *logger.Logger,
	clk clock.Clock,
	users repos.UserRepo,
	sessions repos.PracticeSessionRepo,
	cache LeaderboardCache,
	metrics *observability.Metrics,
) LeaderboardService {
	if cache == nil {
		cache = NewNoopLeaderboardCache()
	}
	return &leaderboardService{
		log:      log.With("service", "LeaderboardService"),
		clock:    clk,
		users:    users,
		sessions: sessions,
		cache:    cache,
		metrics:  metrics,
	}
}

func globalKey(p Period) string { return "leaderboard:global:" + string(p) }

func regionalKey(region string, p Period) string {
	return "leaderboard:region:" + strings.ToLower(strings.TrimSpace(region)) + ":" + string(p)
}

func (ls *leaderboardService) Leaderboard(ctx context.Context, period Period) ([]LeaderboardEntry, error) {
	const op = "LeaderboardService.Leaderboard"
	if _, ok := ParsePeriod(string(period)); !ok {
		return nil, validation(op, "unknown period")
	}
	return ls.cached(ctx, globalKey(period), func() ([]LeaderboardEntry, error) {
		return ls.build(ctx, period, nil)
	})
}

func (ls *leaderboardService) RegionalLeaderboard(ctx context.Context, period Period) ([]LeaderboardEntry, error) {
	const op = "LeaderboardService.RegionalLeaderboard"
	if _, ok := ParsePeriod(string(period)); !ok {
		return nil, validation(op, "unknown period")
	}
	region, err := ls.UserRegion(ctx)
	if err != nil {
		return nil, err
	}
	if region == "" {
		return []LeaderboardEntry{}, nil
	}
	return ls.cached(ctx, regionalKey(region, period), func() ([]LeaderboardEntry, error) {
		ids, err := ls.users.ListIDsByRegion(dbctx.Context{Ctx: ctx}, region)
		if err != nil {
			return nil, storeErr(op, err)
		}
		if len(ids) == 0 {
			return []LeaderboardEntry{}, nil
		}
		return ls.build(ctx, period, ids)
	})
}

func (ls *leaderboardService) AllLeaderboards(ctx context.Context) (map[Period][]LeaderboardEntry, error) {
	var mu sync.Mutex
	out := make(map[Period][]LeaderboardEntry, len(Periods))
	g, gctx := errgroup.WithContext(ctx)
	for _, p := range Periods {
		g.Go(func() error {
			entries, err := ls.Leaderboard(gctx, p)
			if err != nil {
				return err
			}
			mu.Lock()
			out[p] = entries
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (ls *leaderboardService) UserPosition(ctx context.Context, period Period, regional bool) (*int, error) {
	pos, _, err := ls.position(ctx, period, regional)
	return pos, err
}

func (ls *leaderboardService) RelativeRank(ctx context.Context, period Period, regional bool) (*string, error) {
	pos, total, err := ls.position(ctx, period, regional)
	if err != nil || pos == nil || total == 0 {
		return nil, err
	}
	label := relativeRankLabel(*pos, total)
	return &label, nil
}

func relativeRankLabel(rank, total int) string {
	pct := float64(rank) / float64(total) * 100
	switch {
	case pct <= 10:
		return "Top 10%"
	case pct <= 25:
		return "Top 25%"
	case pct <= 50:
		return "Top 50%"
	default:
		return "Bottom 50%"
	}
}

func (ls *leaderboardService) position(ctx context.Context, period Period, regional bool) (*int, int, error) {
	userID, err := callerID(ctx, "LeaderboardService.UserPosition")
	if err != nil {
		return nil, 0, err
	}
	var entries []LeaderboardEntry
	if regional {
		entries, err = ls.RegionalLeaderboard(ctx, period)
	} else {
		entries, err = ls.Leaderboard(ctx, period)
	}
	if err != nil {
		return nil, 0, err
	}
	for i, e := range entries {
		if e.UserID == userID {
			rank := i + 1
			return &rank, len(entries), nil
		}
	}
	return nil, len(entries), nil
}

func (ls *leaderboardService) TopPerformers(ctx context.Context, period Period, limit int) ([]LeaderboardEntry, error) {
	entries, err := ls.Leaderboard(ctx, period)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit, 3, 100)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (ls *leaderboardService) UserStats(ctx context.Context) (PracticeStats, error) {
	const op = "LeaderboardService.UserStats"
	userID, err := callerID(ctx, op)
	if err != nil {
		return PracticeStats{}, err
	}
	totals, err := ls.sessions.TotalsSince(dbctx.Context{Ctx: ctx}, PeriodAllTime.Since(ls.clock.Now()), []uuid.UUID{userID})
	if err != nil {
		return PracticeStats{}, storeErr(op, err)
	}
	var out PracticeStats
	for _, t := range totals {
		out.TotalTime += t.TotalTime
		out.TotalSessions += t.Sessions
	}
	out.AverageSession = roundedAverage(out.TotalTime, out.TotalSessions)
	return out, nil
}

func (ls *leaderboardService) UserRegion(ctx context.Context) (string, error) {
	const op = "LeaderboardService.UserRegion"
	userID, err := callerID(ctx, op)
	if err != nil {
		return "", err
	}
	users, err := ls.users.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return "", storeErr(op, err)
	}
	if len(users) == 0 {
		return "", notFound(op, "user not found")
	}
	return strings.TrimSpace(users[0].Region), nil
}

func (ls *leaderboardService) SetUserRegion(ctx context.Context, region string) error {
	const op = "LeaderboardService.SetUserRegion"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	region = strings.TrimSpace(region)
	previous, err := ls.UserRegion(ctx)
	if err != nil {
		return err
	}
	if err := ls.users.UpdateProfile(dbctx.Context{Ctx: ctx}, userID, repos.ProfileUpdate{Region: &region}); err != nil {
		return storeErr(op, err)
	}
	var keys []string
	for _, r := range []string{previous, region} {
		if r == "" {
			continue
		}
		for _, p := range Periods {
			keys = append(keys, regionalKey(r, p))
		}
	}
	if err := ls.cache.Delete(ctx, keys...); err != nil {
		ls.log.Warn("leaderboard cache invalidation failed", "user_id", userID, "error", err)
	}
	return nil
}

func (ls *leaderboardService) cached(ctx context.Context, key string, load func() ([]LeaderboardEntry, error)) ([]LeaderboardEntry, error) {
	entries, hit, err := ls.cache.Get(ctx, key)
	if err != nil {
		ls.log.Warn("leaderboard cache read failed", "key", key, "error", err)
	}
	if hit {
		ls.metrics.IncLeaderboardCache(true)
		return entries, nil
	}
	ls.metrics.IncLeaderboardCache(false)
	entries, err = load()
	if err != nil {
		return nil, err
	}
	if err := ls.cache.Set(ctx, key, entries); err != nil {
		ls.log.Warn("leaderboard cache write failed", "key", key, "error", err)
	}
	return entries, nil
}

// build aggregates completed sessions in the period window. A nil candidates
// slice ranks every user.
func (ls *leaderboardService) build(ctx context.Context, period Period, candidates []uuid.UUID) ([]LeaderboardEntry, error) {
	const op = "LeaderboardService.build"
	dbc := dbctx.Context{Ctx: ctx}
	totals, err := ls.sessions.TotalsSince(dbc, period.Since(ls.clock.Now()), candidates)
	if err != nil {
		return nil, storeErr(op, err)
	}
	ids := make([]uuid.UUID, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.UserID)
	}
	profiles := map[uuid.UUID]struct{ name, photo, region string }{}
	if len(ids) > 0 {
		users, err := ls.users.GetByIDs(dbc, ids)
		if err != nil {
			return nil, storeErr(op, err)
		}
		for _, u := range users {
			profiles[u.ID] = struct{ name, photo, region string }{u.DisplayName, u.PhotoURL, u.Region}
		}
	}

	entries := make([]LeaderboardEntry, 0, len(totals))
	for _, t := range totals {
		if t.Sessions == 0 {
			continue
		}
		p := profiles[t.UserID]
		name := strings.TrimSpace(p.name)
		if name == "" {
			name = "Anonymous"
		}
		entries = append(entries, LeaderboardEntry{
			UserID:      t.UserID,
			UserName:    name,
			PhotoURL:    p.photo,
			Region:      p.region,
			TotalTime:   t.TotalTime,
			Sessions:    t.Sessions,
			AverageTime: roundedAverage(t.TotalTime, t.Sessions),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalTime != entries[j].TotalTime {
			return entries[i].TotalTime > entries[j].TotalTime
		}
		return entries[i].UserID.String() < entries[j].UserID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func roundedAverage(total, n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(n)))
}
