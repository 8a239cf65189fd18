package services

import (
	"context"
	"strings"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/aggregates"
	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/domain/user"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

const (
	suggestedUsersLimit = 10
	activityFeedLimit   = 50
	discoverLimit       = 20
)

type ActivityItem struct {
	Session  *types.PracticeSession `json:"session"`
	UserName string                 `json:"user_name"`
	PhotoURL string                 `json:"photo_url,omitempty"`
}

type FollowService interface {
	Follow(ctx context.Context, targetID uuid.UUID) error
	Unfollow(ctx context.Context, targetID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, targetID uuid.UUID) (bool, error)
	Following(ctx context.Context) ([]*types.User, error)
	Followers(ctx context.Context) ([]*types.User, error)
	Block(ctx context.Context, targetID uuid.UUID) error
	Unblock(ctx context.Context, targetID uuid.UUID) (bool, error)
	SuggestedUsers(ctx context.Context) ([]*types.User, error)
	FollowingActivity(ctx context.Context) ([]ActivityItem, error)
	ToggleActivityLike(ctx context.Context, activityID uuid.UUID) (bool, error)
	ActivityLikes(ctx context.Context, activityID uuid.UUID) ([]uuid.UUID, error)
	AddActivityComment(ctx context.Context, activityID uuid.UUID, content string) (*types.ActivityComment, error)
	ActivityComments(ctx context.Context, activityID uuid.UUID) ([]*types.ActivityComment, error)
	RecalculateUserStats(ctx context.Context) (*types.User, error)
	DiscoverUsers(ctx context.Context, prefix string) ([]*types.User, error)
}

type followService struct {
	db       *gorm.DB
	log      *logger.Logger
	clock    clock.Clock
	users    repos.UserRepo
	follows  repos.FollowRepo
	blocks   repos.BlockRepo
	sessions repos.PracticeSessionRepo
	likes    repos.ActivityLikeRepo
	comments repos.ActivityCommentRepo
}

func NewFollowService(
	db *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	users repos.UserRepo,
	follows repos.FollowRepo,
	blocks repos.BlockRepo,
	sessions repos.PracticeSessionRepo,
	likes repos.ActivityLikeRepo,
	comments repos.ActivityCommentRepo,
) FollowService {
	return &followService{
		db:       db,
		log:      log.With("service", "FollowService"),
		clock:    clk,
		users:    users,
		follows:  follows,
		blocks:   blocks,
		sessions: sessions,
		likes:    likes,
		comments: comments,
	}
}

func (fs *followService) Follow(ctx context.Context, targetID uuid.UUID) error {
	const op = "FollowService.Follow"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	if targetID == userID {
		return validation(op, "cannot follow yourself")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := fs.requireUser(dbc, op, targetID); err != nil {
		return err
	}
	blocked, err := fs.blocks.Exists(dbc, targetID, userID)
	if err != nil {
		return storeErr(op, err)
	}
	if blocked {
		return unauthorized(op, "cannot follow this user")
	}
	err = fs.follows.Create(dbc, &types.Follow{FollowerID: userID, FollowingID: targetID, CreatedAt: fs.clock.Now().UTC()})
	if aggregates.IsUniqueViolation(err) {
		return alreadyExists(op, "already following this user")
	}
	if err != nil {
		fs.log.Warn("follow failed", "user_id", userID, "target_id", targetID, "error", err)
		return storeErr(op, err)
	}
	return nil
}

func (fs *followService) Unfollow(ctx context.Context, targetID uuid.UUID) (bool, error) {
	const op = "FollowService.Unfollow"
	userID, err := callerID(ctx, op)
	if err != nil {
		return false, err
	}
	removed, err := fs.follows.Delete(dbctx.Context{Ctx: ctx}, userID, targetID)
	if err != nil {
		return false, storeErr(op, err)
	}
	return removed, nil
}

func (fs *followService) IsFollowing(ctx context.Context, targetID uuid.UUID) (bool, error) {
	const op = "FollowService.IsFollowing"
	userID, err := callerID(ctx, op)
	if err != nil {
		return false, err
	}
	ok, err := fs.follows.Exists(dbctx.Context{Ctx: ctx}, userID, targetID)
	if err != nil {
		return false, storeErr(op, err)
	}
	return ok, nil
}

func (fs *followService) Following(ctx context.Context) ([]*types.User, error) {
	const op = "FollowService.Following"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := fs.follows.ListFollowingIDs(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return fs.profiles(dbc, op, ids)
}

func (fs *followService) Followers(ctx context.Context) ([]*types.User, error) {
	const op = "FollowService.Followers"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := fs.follows.ListFollowerIDs(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return fs.profiles(dbc, op, ids)
}

func (fs *followService) Block(ctx context.Context, targetID uuid.UUID) error {
	const op = "FollowService.Block"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	if targetID == userID {
		return validation(op, "cannot block yourself")
	}
	if err := fs.requireUser(dbctx.Context{Ctx: ctx}, op, targetID); err != nil {
		return err
	}
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := fs.follows.Delete(inner, userID, targetID); err != nil {
			return err
		}
		_, err := fs.blocks.Create(inner, &types.Block{UserID: userID, BlockedUserID: targetID, CreatedAt: fs.clock.Now().UTC()})
		return err
	})
	if err != nil {
		fs.log.Warn("block failed", "user_id", userID, "target_id", targetID, "error", err)
		return storeErr(op, err)
	}
	return nil
}

func (fs *followService) Unblock(ctx context.Context, targetID uuid.UUID) (bool, error) {
	const op = "FollowService.Unblock"
	userID, err := callerID(ctx, op)
	if err != nil {
		return false, err
	}
	removed, err := fs.blocks.Delete(dbctx.Context{Ctx: ctx}, userID, targetID)
	if err != nil {
		return false, storeErr(op, err)
	}
	return removed, nil
}

func (fs *followService) SuggestedUsers(ctx context.Context) ([]*types.User, error) {
	const op = "FollowService.SuggestedUsers"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	me, err := fs.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(me) == 0 {
		return nil, notFound(op, "user not found")
	}
	mine := map[string]bool{}
	for _, inst := range user.DecodeInstruments(me[0].Instruments) {
		mine[strings.ToLower(inst)] = true
	}
	if len(mine) == 0 {
		return []*types.User{}, nil
	}
	following, err := fs.follows.ListFollowingIDs(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	skip := map[uuid.UUID]bool{userID: true}
	for _, id := range following {
		skip[id] = true
	}
	candidates, err := fs.users.ListAll(dbc, userID, 500)
	if err != nil {
		return nil, storeErr(op, err)
	}
	out := make([]*types.User, 0, suggestedUsersLimit)
	for _, u := range candidates {
		if skip[u.ID] {
			continue
		}
		for _, inst := range user.DecodeInstruments(u.Instruments) {
			if mine[strings.ToLower(inst)] {
				out = append(out, u)
				break
			}
		}
		if len(out) == suggestedUsersLimit {
			break
		}
	}
	return out, nil
}

func (fs *followService) FollowingActivity(ctx context.Context) ([]ActivityItem, error) {
	const op = "FollowService.FollowingActivity"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := fs.follows.ListFollowingIDs(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(ids) == 0 {
		return []ActivityItem{}, nil
	}
	sessions, err := fs.sessions.ListRecentByUsers(dbc, ids, activityFeedLimit)
	if err != nil {
		return nil, storeErr(op, err)
	}
	users, err := fs.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	byID := make(map[uuid.UUID]*types.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	seen := map[uuid.UUID]bool{}
	out := make([]ActivityItem, 0, len(sessions))
	for _, s := range sessions {
		if seen[s.ID] {
			continue
		}
		seen[s.ID] = true
		item := ActivityItem{Session: s, UserName: "Anonymous"}
		if u := byID[s.UserID]; u != nil {
			if name := strings.TrimSpace(u.DisplayName); name != "" {
				item.UserName = name
			}
			item.PhotoURL = u.PhotoURL
		}
		out = append(out, item)
	}
	return out, nil
}

func (fs *followService) ToggleActivityLike(ctx context.Context, activityID uuid.UUID) (bool, error) {
	const op = "FollowService.ToggleActivityLike"
	userID, err := callerID(ctx, op)
	if err != nil {
		return false, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	removed, err := fs.likes.Delete(dbc, userID, activityID)
	if err != nil {
		return false, storeErr(op, err)
	}
	if removed {
		return false, nil
	}
	if _, err := fs.likes.Insert(dbc, &types.ActivityLike{UserID: userID, ActivityID: activityID, CreatedAt: fs.clock.Now().UTC()}); err != nil {
		return false, storeErr(op, err)
	}
	return true, nil
}

func (fs *followService) ActivityLikes(ctx context.Context, activityID uuid.UUID) ([]uuid.UUID, error) {
	const op = "FollowService.ActivityLikes"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	ids, err := fs.likes.ListUserIDs(dbctx.Context{Ctx: ctx}, activityID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return ids, nil
}

func (fs *followService) AddActivityComment(ctx context.Context, activityID uuid.UUID, content string) (*types.ActivityComment, error) {
	const op = "FollowService.AddActivityComment"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validation(op, "content is required")
	}
	c := &types.ActivityComment{ActivityID: activityID, UserID: userID, Content: content, CreatedAt: fs.clock.Now().UTC()}
	if err := fs.comments.Create(dbctx.Context{Ctx: ctx}, c); err != nil {
		return nil, storeErr(op, err)
	}
	return c, nil
}

func (fs *followService) ActivityComments(ctx context.Context, activityID uuid.UUID) ([]*types.ActivityComment, error) {
	const op = "FollowService.ActivityComments"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	rows, err := fs.comments.ListByActivity(dbctx.Context{Ctx: ctx}, activityID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

// RecalculateUserStats refreshes the caller's denormalized practice total and
// derives instruments from the distinct tools they practiced.
func (fs *followService) RecalculateUserStats(ctx context.Context) (*types.User, error) {
	const op = "FollowService.RecalculateUserStats"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	var out *types.User
	err = fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		totals, err := fs.sessions.TotalsSince(inner, PeriodAllTime.Since(fs.clock.Now()), []uuid.UUID{userID})
		if err != nil {
			return err
		}
		total := 0
		for _, t := range totals {
			total += t.TotalTime
		}
		tools, err := fs.sessions.DistinctTools(inner, userID)
		if err != nil {
			return err
		}
		if err := fs.users.UpdateStats(inner, userID, total, user.EncodeInstruments(tools), fs.clock.Now().UTC()); err != nil {
			return err
		}
		users, err := fs.users.GetByIDs(inner, []uuid.UUID{userID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return gorm.ErrRecordNotFound
		}
		out = users[0]
		return nil
	})
	if err != nil {
		fs.log.Warn("recalculate user stats failed", "user_id", userID, "error", err)
		return nil, storeErr(op, err)
	}
	return out, nil
}

func (fs *followService) DiscoverUsers(ctx context.Context, prefix string) ([]*types.User, error) {
	const op = "FollowService.DiscoverUsers"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	prefix = strings.TrimSpace(prefix)
	var users []*types.User
	if prefix == "" {
		users, err = fs.users.ListAll(dbc, userID, discoverLimit)
	} else {
		users, err = fs.users.SearchByDisplayName(dbc, prefix, userID, discoverLimit)
	}
	if err != nil {
		return nil, storeErr(op, err)
	}
	return users, nil
}

func (fs *followService) requireUser(dbc dbctx.Context, op string, id uuid.UUID) error {
	users, err := fs.users.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return storeErr(op, err)
	}
	if len(users) == 0 {
		return notFound(op, "user not found")
	}
	return nil
}

func (fs *followService) profiles(dbc dbctx.Context, op string, ids []uuid.UUID) ([]*types.User, error) {
	if len(ids) == 0 {
		return []*types.User{}, nil
	}
	users, err := fs.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return users, nil
}
