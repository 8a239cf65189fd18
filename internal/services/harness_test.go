package services

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/catalog"
	"github.com/yungbote/practice-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/practice-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/practice-backend/internal/data/repos"
	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/calendar"
	"github.com/yungbote/practice-backend/internal/platform/ctxutil"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
)

// testStart is a Monday morning in UTC.
var testStart = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu            sync.Mutex
	generated     []string
	completed     []string
	achievements  []string
	resets        map[types.GoalFrequency]int64
	groupUpdates  int
	groupMessages int
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{resets: map[types.GoalFrequency]int64{}}
}

func (n *recordingNotifier) ChallengeGenerated(_ context.Context, _ uuid.UUID, ch *types.DailyChallenge) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generated = append(n.generated, ch.CatalogID)
}

func (n *recordingNotifier) ChallengeCompleted(_ context.Context, _ uuid.UUID, ch *types.DailyChallenge, _ *types.RewardLedger) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, ch.CatalogID)
}

func (n *recordingNotifier) AchievementsUnlocked(_ context.Context, _ uuid.UUID, rows []*types.UserAchievement) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, r := range rows {
		n.achievements = append(n.achievements, r.AchievementID)
	}
}

func (n *recordingNotifier) GoalsReset(_ context.Context, _ uuid.UUID, freq types.GoalFrequency, count int64) {
	if count <= 0 {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets[freq] += count
}

func (n *recordingNotifier) GroupSessionUpdated(context.Context, *types.GroupSession) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.groupUpdates++
}

func (n *recordingNotifier) GroupSessionMessage(context.Context, *types.GroupSessionMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.groupMessages++
}

type env struct {
	db     *gorm.DB
	log    *logger.Logger
	clock  *clock.Mock
	cal    calendar.Calendar
	cat    *catalog.Catalog
	notify *recordingNotifier

	users        repos.UserRepo
	sessions     repos.PracticeSessionRepo
	goals        repos.GoalRepo
	routines     repos.RoutineRepo
	challengeRep repos.DailyChallengeRepo
	history      repos.ChallengeHistoryRepo
	ledgers      repos.RewardLedgerRepo
	achieved     repos.UserAchievementRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	clk := clock.NewMock()
	clk.Add(testStart.Sub(clk.Now()))
	return &env{
		db:           db,
		log:          log,
		clock:        clk,
		cal:          calendar.New(time.UTC),
		cat:          catalog.Default(),
		notify:       newRecordingNotifier(),
		users:        repos.NewUserRepo(db, log),
		sessions:     repos.NewPracticeSessionRepo(db, log),
		goals:        repos.NewGoalRepo(db, log),
		routines:     repos.NewRoutineRepo(db, log),
		challengeRep: repos.NewDailyChallengeRepo(db, log),
		history:      repos.NewChallengeHistoryRepo(db, log),
		ledgers:      repos.NewRewardLedgerRepo(db, log),
		achieved:     repos.NewUserAchievementRepo(db, log),
	}
}

func (e *env) base() aggregates.BaseDeps {
	return aggregates.BaseDeps{DB: e.db, Log: e.log, Hooks: &aggtest.HooksRecorder{}, Catalog: e.cat, Calendar: e.cal}
}

func (e *env) rewardService() RewardService {
	agg := aggregates.NewRewardAggregate(aggregates.RewardAggregateDeps{Base: e.base(), Ledgers: e.ledgers, Achievements: e.achieved})
	return NewRewardService(e.log, e.clock, e.cat, e.ledgers, e.achieved, agg, e.notify, nil)
}

func (e *env) challengeService(seed int64) ChallengeService {
	agg := aggregates.NewChallengeAggregate(aggregates.ChallengeAggregateDeps{
		Base: e.base(), Challenges: e.challengeRep, History: e.history, Ledgers: e.ledgers, Achievements: e.achieved,
	})
	return NewChallengeService(e.log, e.clock, e.cal, e.cat, rand.New(rand.NewSource(seed)), e.challengeRep, e.history, agg, e.notify, nil)
}

func (e *env) tracker(store TrackerStore) PracticeTracker {
	agg := aggregates.NewSessionCompletionAggregate(aggregates.SessionCompletionAggregateDeps{
		Base: e.base(), Sessions: e.sessions, Goals: e.goals, Challenges: e.challengeRep, History: e.history,
		Ledgers: e.ledgers, Achievements: e.achieved,
	})
	return NewPracticeTracker(e.log, e.clock, store, e.sessions, agg, e.notify, nil)
}

func (e *env) goalService(challenges dailyChallengeEnsurer) GoalService {
	return NewGoalService(e.log, e.clock, e.cal, e.goals, challenges, e.notify, nil)
}

func (e *env) user(t *testing.T, email string) *types.User {
	t.Helper()
	return testutil.SeedUser(t, context.Background(), e.db, email)
}

// as returns a context authenticated as u.
func as(u *types.User) context.Context {
	return ctxutil.WithUserID(context.Background(), u.ID)
}

// seedChallenge stores today's challenge for userID from a catalog entry.
func (e *env) seedChallenge(t *testing.T, userID uuid.UUID, id string) {
	t.Helper()
	entry, ok := e.cat.Challenge(id)
	if !ok {
		t.Fatalf("catalog has no %s", id)
	}
	now := e.clock.Now().UTC()
	ch := entry.NewDailyChallenge(types.DailyChallenge{UserID: userID, Date: now, UpdatedAt: now})
	if err := e.challengeRep.Upsert(dbctx.Context{Ctx: context.Background()}, ch); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}
}

func (e *env) followService() FollowService {
	return NewFollowService(e.db, e.log, e.clock, e.users,
		repos.NewFollowRepo(e.db, e.log), repos.NewBlockRepo(e.db, e.log), e.sessions,
		repos.NewActivityLikeRepo(e.db, e.log), repos.NewActivityCommentRepo(e.db, e.log))
}

func (e *env) forumService() ForumService {
	return NewForumService(e.db, e.log, e.clock, e.users,
		repos.NewForumPostRepo(e.db, e.log), repos.NewForumCommentRepo(e.db, e.log), repos.NewPostLikeRepo(e.db, e.log))
}

func (e *env) groupService(hub *realtime.SSEHub) GroupService {
	return NewGroupService(e.db, e.log, e.clock, hub, e.users,
		repos.NewGroupRepo(e.db, e.log), repos.NewGroupMemberRepo(e.db, e.log), repos.NewGroupInviteRepo(e.db, e.log),
		repos.NewGroupSessionRepo(e.db, e.log), repos.NewGroupSessionMessageRepo(e.db, e.log), e.notify)
}
