package social

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/repos/testutil"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
)

func TestFollowAndBlockEdges(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	follows := NewFollowRepo(db, log)
	blocks := NewBlockRepo(db, log)
	a, b := uuid.New(), uuid.New()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := follows.Create(dbc, &types.Follow{FollowerID: a, FollowingID: b, CreatedAt: now}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	ok, err := follows.Exists(dbc, a, b)
	if err != nil || !ok {
		t.Fatalf("Exists: %v err=%v", ok, err)
	}
	if ok, _ := follows.Exists(dbc, b, a); ok {
		t.Fatalf("edges are directed")
	}
	following, err := follows.ListFollowingIDs(dbc, a)
	if err != nil || len(following) != 1 || following[0] != b {
		t.Fatalf("ListFollowingIDs: %v err=%v", following, err)
	}
	followers, err := follows.ListFollowerIDs(dbc, b)
	if err != nil || len(followers) != 1 || followers[0] != a {
		t.Fatalf("ListFollowerIDs: %v err=%v", followers, err)
	}
	deleted, err := follows.Delete(dbc, a, b)
	if err != nil || !deleted {
		t.Fatalf("Delete: %v err=%v", deleted, err)
	}
	deleted, err = follows.Delete(dbc, a, b)
	if err != nil || deleted {
		t.Fatalf("second Delete should be a no-op: %v err=%v", deleted, err)
	}

	created, err := blocks.Create(dbc, &types.Block{UserID: a, BlockedUserID: b, CreatedAt: now})
	if err != nil || !created {
		t.Fatalf("Block: %v err=%v", created, err)
	}
	created, err = blocks.Create(dbc, &types.Block{UserID: a, BlockedUserID: b, CreatedAt: now})
	if err != nil || created {
		t.Fatalf("Block twice should be idempotent: %v err=%v", created, err)
	}
	if ok, err := blocks.Exists(dbc, a, b); err != nil || !ok {
		t.Fatalf("block Exists: %v err=%v", ok, err)
	}
	if ids, err := blocks.ListBlockedIDs(dbc, a); err != nil || len(ids) != 1 {
		t.Fatalf("ListBlockedIDs: %v err=%v", ids, err)
	}
	if removed, err := blocks.Delete(dbc, a, b); err != nil || !removed {
		t.Fatalf("Unblock: %v err=%v", removed, err)
	}
}

func TestForumCountersAndLikes(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	posts := NewForumPostRepo(db, log)
	comments := NewForumCommentRepo(db, log)
	likes := NewPostLikeRepo(db, log)
	author, reader := uuid.New(), uuid.New()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &types.ForumPost{UserID: author, Title: "scales", Content: "c", Tags: datatypes.JSON([]byte(`["scales"]`)), CreatedAt: base, UpdatedAt: base}
	newer := &types.ForumPost{UserID: reader, Title: "rhythm", Content: "c", Tags: datatypes.JSON([]byte(`[]`)), CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)}
	for _, p := range []*types.ForumPost{older, newer} {
		if err := posts.Create(dbc, p); err != nil {
			t.Fatalf("Create post: %v", err)
		}
	}
	all, err := posts.List(dbc, nil, 0)
	if err != nil || len(all) != 2 || all[0].ID != newer.ID {
		t.Fatalf("List newest first: %+v err=%v", all, err)
	}
	mine, err := posts.List(dbc, &author, 0)
	if err != nil || len(mine) != 1 || mine[0].ID != older.ID {
		t.Fatalf("List by author: %+v err=%v", mine, err)
	}

	c := &types.ForumComment{PostID: older.ID, UserID: reader, Content: "nice", CreatedAt: base}
	if err := comments.Create(dbc, c); err != nil {
		t.Fatalf("Create comment: %v", err)
	}
	if err := posts.IncrementComments(dbc, older.ID, 1); err != nil {
		t.Fatalf("IncrementComments: %v", err)
	}
	if err := posts.IncrementComments(dbc, older.ID, -1); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if err := posts.IncrementComments(dbc, older.ID, -1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("counter must not go negative, got %v", err)
	}

	inserted, err := likes.Insert(dbc, &types.PostLike{PostID: older.ID, UserID: reader, CreatedAt: base})
	if err != nil || !inserted {
		t.Fatalf("like: %v err=%v", inserted, err)
	}
	inserted, err = likes.Insert(dbc, &types.PostLike{PostID: older.ID, UserID: reader, CreatedAt: base})
	if err != nil || inserted {
		t.Fatalf("duplicate like: %v err=%v", inserted, err)
	}
	liked, err := likes.ListPostIDsByUser(dbc, reader)
	if err != nil || len(liked) != 1 || liked[0] != older.ID {
		t.Fatalf("ListPostIDsByUser: %v err=%v", liked, err)
	}

	if err := posts.Delete(dbc, older.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := posts.GetByID(dbc, older.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestGroupMembershipAndInvites(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	groups := NewGroupRepo(db, log)
	members := NewGroupMemberRepo(db, log)
	invites := NewGroupInviteRepo(db, log)
	owner, guest := uuid.New(), uuid.New()
	now := time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)

	g := &types.Group{Name: "Strings", CreatedBy: owner, IsPublic: true, LastActive: now, CreatedAt: now, UpdatedAt: now}
	if err := groups.Create(dbc, g); err != nil {
		t.Fatalf("Create group: %v", err)
	}
	added, err := members.Add(dbc, &types.GroupMember{GroupID: g.ID, UserID: owner, JoinedAt: now})
	if err != nil || !added {
		t.Fatalf("Add owner: %v err=%v", added, err)
	}
	added, err = members.Add(dbc, &types.GroupMember{GroupID: g.ID, UserID: owner, JoinedAt: now})
	if err != nil || added {
		t.Fatalf("membership is a set: %v err=%v", added, err)
	}

	inv := &types.GroupInvite{GroupID: g.ID, Email: " Guest@Example.com ", CreatedBy: owner, CreatedAt: now, UpdatedAt: now}
	if err := invites.Create(dbc, inv); err != nil {
		t.Fatalf("Create invite: %v", err)
	}
	pending, err := invites.PendingExists(dbc, g.ID, "guest@example.com")
	if err != nil || !pending {
		t.Fatalf("PendingExists: %v err=%v", pending, err)
	}
	list, err := invites.ListPendingByEmail(dbc, "GUEST@example.com")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListPendingByEmail: %v err=%v", list, err)
	}
	if err := invites.SetStatus(dbc, inv.ID, types.InviteAccepted, now); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := invites.SetStatus(dbc, inv.ID, types.InviteDeclined, now); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("non-pending invite must not transition, got %v", err)
	}
	if _, err := members.Add(dbc, &types.GroupMember{GroupID: g.ID, UserID: guest, JoinedAt: now}); err != nil {
		t.Fatalf("Add guest: %v", err)
	}
	ids, err := members.ListUserIDs(dbc, g.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("ListUserIDs: %v err=%v", ids, err)
	}

	if err := groups.AddPracticeTime(dbc, g.ID, 25, now.Add(time.Hour)); err != nil {
		t.Fatalf("AddPracticeTime: %v", err)
	}
	if err := groups.AddPracticeTime(dbc, g.ID, 5, now.Add(2*time.Hour)); err != nil {
		t.Fatalf("AddPracticeTime: %v", err)
	}
	got, err := groups.GetByID(dbc, g.ID)
	if err != nil || got.TotalPracticeTime != 30 {
		t.Fatalf("GetByID: %+v err=%v", got, err)
	}
	public, err := groups.ListPublic(dbc, 10)
	if err != nil || len(public) != 1 {
		t.Fatalf("ListPublic: %v err=%v", public, err)
	}

	removed, err := members.Remove(dbc, g.ID, guest)
	if err != nil || !removed {
		t.Fatalf("Remove: %v err=%v", removed, err)
	}
	if ok, _ := members.IsMember(dbc, g.ID, guest); ok {
		t.Fatalf("guest should have left")
	}
}

func TestGroupSessionLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	log := testutil.Logger(t)

	sessions := NewGroupSessionRepo(db, log)
	messages := NewGroupSessionMessageRepo(db, log)
	start := time.Date(2024, 3, 3, 18, 0, 0, 0, time.UTC)

	s := &types.GroupSession{GroupID: uuid.New(), CreatedBy: uuid.New(), Status: types.GroupSessionActive, StartTime: start, UpdatedAt: start}
	if err := sessions.Create(dbc, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	tools := datatypes.JSON([]byte(`{"u1":{"tool_name":"Metronome"}}`))
	if err := sessions.UpdateMemberTools(dbc, s.ID, tools, start.Add(time.Minute)); err != nil {
		t.Fatalf("UpdateMemberTools: %v", err)
	}
	for i := 0; i < 3; i++ {
		m := &types.GroupSessionMessage{SessionID: s.ID, UserID: uuid.New(), Content: "hi", CreatedAt: start.Add(time.Duration(i) * time.Minute)}
		if err := messages.Create(dbc, m); err != nil {
			t.Fatalf("Create message: %v", err)
		}
	}
	msgs, err := messages.ListBySession(dbc, s.ID, 2)
	if err != nil || len(msgs) != 2 || !msgs[0].CreatedAt.After(msgs[1].CreatedAt) {
		t.Fatalf("ListBySession newest first: %+v err=%v", msgs, err)
	}

	end := start.Add(40 * time.Minute)
	if err := sessions.End(dbc, s.ID, end, 40, datatypes.JSON([]byte(`["Metronome"]`))); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := sessions.End(dbc, s.ID, end, 40, nil); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("ending twice should fail, got %v", err)
	}
	if err := sessions.UpdateMemberTools(dbc, s.ID, tools, end); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("completed session must reject tool updates, got %v", err)
	}
	got, err := sessions.GetByID(dbc, s.ID)
	if err != nil || got.Status != types.GroupSessionCompleted || got.Duration != 40 || got.EndTime == nil {
		t.Fatalf("GetByID: %+v err=%v", got, err)
	}
}
