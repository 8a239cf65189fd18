package services

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/facebookgo/clock"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/practice-backend/internal/data/repos"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/platform/dbctx"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
)

const sessionMessagesLimit = 50

type CreateGroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type GroupDetail struct {
	Group   *types.Group  `json:"group"`
	Members []*types.User `json:"members"`
}

type EndGroupSessionInput struct {
	Duration int      `json:"duration"`
	Tools    []string `json:"tools"`
}

type SessionMember struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CurrentTool string    `json:"current_tool"`
}

type GroupService interface {
	ListGroups(ctx context.Context) ([]*types.Group, error)
	CreateGroup(ctx context.Context, in CreateGroupInput) (*types.Group, error)
	GetGroup(ctx context.Context, groupID uuid.UUID) (*GroupDetail, error)
	InviteMember(ctx context.Context, groupID uuid.UUID, email string) (*types.GroupInvite, error)
	CancelInvite(ctx context.Context, inviteID uuid.UUID) error
	PendingInvites(ctx context.Context) ([]*types.GroupInvite, error)
	AcceptInvite(ctx context.Context, inviteID uuid.UUID) error
	DeclineInvite(ctx context.Context, inviteID uuid.UUID) error
	JoinGroup(ctx context.Context, groupID uuid.UUID) error
	LeaveGroup(ctx context.Context, groupID uuid.UUID) error
	DeleteGroup(ctx context.Context, groupID uuid.UUID) error
	PublicGroups(ctx context.Context) ([]*types.Group, error)
	AddPracticeTime(ctx context.Context, groupID uuid.UUID, minutes int) error

	StartSession(ctx context.Context, groupID uuid.UUID) (*types.GroupSession, error)
	UpdateMemberTool(ctx context.Context, sessionID uuid.UUID, tool string) (*types.GroupSession, error)
	EndSession(ctx context.Context, sessionID uuid.UUID, in EndGroupSessionInput) (*types.GroupSession, error)
	AddSessionMessage(ctx context.Context, sessionID uuid.UUID, content string) (*types.GroupSessionMessage, error)
	SessionMessages(ctx context.Context, sessionID uuid.UUID) ([]*types.GroupSessionMessage, error)
	SessionMembers(ctx context.Context, sessionID uuid.UUID) ([]SessionMember, error)
	// SubscribeSessionMembers registers a listener for member tool and chat updates.
	// The caller must Cancel the returned subscription.
	SubscribeSessionMembers(ctx context.Context, sessionID uuid.UUID) (*realtime.Subscription, error)
}

type groupService struct {
	db       *gorm.DB
	log      *logger.Logger
	clock    clock.Clock
	hub      *realtime.SSEHub
	users    repos.UserRepo
	groups   repos.GroupRepo
	members  repos.GroupMemberRepo
	invites  repos.GroupInviteRepo
	sessions repos.GroupSessionRepo
	messages repos.GroupSessionMessageRepo
	notify   Notifier
}

func NewGroupService(
	db *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	hub *realtime.SSEHub,
	users repos.UserRepo,
	groups repos.GroupRepo,
	members repos.GroupMemberRepo,
	invites repos.GroupInviteRepo,
	sessions repos.GroupSessionRepo,
	messages repos.GroupSessionMessageRepo,
	notify Notifier,
) GroupService {
	return &groupService{
		db:       db,
		log:      log.With("service", "GroupService"),
		clock:    clk,
		hub:      hub,
		users:    users,
		groups:   groups,
		members:  members,
		invites:  invites,
		sessions: sessions,
		messages: messages,
		notify:   notify,
	}
}

func (gs *groupService) ListGroups(ctx context.Context) ([]*types.Group, error) {
	const op = "GroupService.ListGroups"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	ids, err := gs.members.ListGroupIDsByUser(dbc, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(ids) == 0 {
		return []*types.Group{}, nil
	}
	groups, err := gs.groups.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return groups, nil
}

func (gs *groupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*types.Group, error) {
	const op = "GroupService.CreateGroup"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validation(op, "name is required")
	}
	now := gs.clock.Now().UTC()
	group := &types.Group{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   userID,
		IsPublic:    in.IsPublic,
		LastActive:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := gs.groups.Create(inner, group); err != nil {
			return err
		}
		_, err := gs.members.Add(inner, &types.GroupMember{GroupID: group.ID, UserID: userID, JoinedAt: now})
		return err
	})
	if err != nil {
		gs.log.Warn("create group failed", "user_id", userID, "error", err)
		return nil, storeErr(op, err)
	}
	return group, nil
}

func (gs *groupService) GetGroup(ctx context.Context, groupID uuid.UUID) (*GroupDetail, error) {
	const op = "GroupService.GetGroup"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	group, err := gs.groups.GetByID(dbc, groupID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	memberIDs, err := gs.members.ListUserIDs(dbc, groupID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if !group.IsPublic && !containsID(memberIDs, userID) {
		return nil, unauthorized(op, "not a member of this group")
	}
	users := []*types.User{}
	if len(memberIDs) > 0 {
		if users, err = gs.users.GetByIDs(dbc, memberIDs); err != nil {
			return nil, storeErr(op, err)
		}
	}
	return &GroupDetail{Group: group, Members: users}, nil
}

func (gs *groupService) InviteMember(ctx context.Context, groupID uuid.UUID, email string) (*types.GroupInvite, error) {
	const op = "GroupService.InviteMember"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, validation(op, "email is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := gs.requireMember(dbc, op, groupID, userID); err != nil {
		return nil, err
	}
	invitees, err := gs.users.GetByEmails(dbc, []string{email})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(invitees) == 0 {
		return nil, notFound(op, "no user found with this email address")
	}
	isMember, err := gs.members.IsMember(dbc, groupID, invitees[0].ID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if isMember {
		return nil, alreadyExists(op, "user is already a member of this group")
	}
	pending, err := gs.invites.PendingExists(dbc, groupID, email)
	if err != nil {
		return nil, storeErr(op, err)
	}
	if pending {
		return nil, alreadyExists(op, "an invitation is already pending for this email")
	}
	now := gs.clock.Now().UTC()
	inv := &types.GroupInvite{
		GroupID:   groupID,
		Email:     email,
		CreatedBy: userID,
		Status:    types.InvitePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gs.invites.Create(dbc, inv); err != nil {
		return nil, storeErr(op, err)
	}
	return inv, nil
}

func (gs *groupService) CancelInvite(ctx context.Context, inviteID uuid.UUID) error {
	const op = "GroupService.CancelInvite"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	inv, err := gs.invites.GetByID(dbc, inviteID)
	if err != nil {
		return storeErr(op, err)
	}
	if inv.CreatedBy != userID {
		group, err := gs.groups.GetByID(dbc, inv.GroupID)
		if err != nil {
			return storeErr(op, err)
		}
		if group.CreatedBy != userID {
			return unauthorized(op, "only the inviter or group creator can cancel this invite")
		}
	}
	if err := gs.invites.Delete(dbc, inviteID); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (gs *groupService) PendingInvites(ctx context.Context) ([]*types.GroupInvite, error) {
	const op = "GroupService.PendingInvites"
	me, err := gs.caller(ctx, op)
	if err != nil {
		return nil, err
	}
	rows, err := gs.invites.ListPendingByEmail(dbctx.Context{Ctx: ctx}, me.Email)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func (gs *groupService) AcceptInvite(ctx context.Context, inviteID uuid.UUID) error {
	return gs.answerInvite(ctx, "GroupService.AcceptInvite", inviteID, types.InviteAccepted)
}

func (gs *groupService) DeclineInvite(ctx context.Context, inviteID uuid.UUID) error {
	return gs.answerInvite(ctx, "GroupService.DeclineInvite", inviteID, types.InviteDeclined)
}

func (gs *groupService) answerInvite(ctx context.Context, op string, inviteID uuid.UUID, status types.InviteStatus) error {
	me, err := gs.caller(ctx, op)
	if err != nil {
		return err
	}
	now := gs.clock.Now().UTC()
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		inv, err := gs.invites.GetByID(inner, inviteID)
		if err != nil {
			return err
		}
		if !strings.EqualFold(inv.Email, me.Email) {
			return unauthorized(op, "this invitation belongs to another user")
		}
		if err := gs.invites.SetStatus(inner, inviteID, status, now); err != nil {
			return err
		}
		if status != types.InviteAccepted {
			return nil
		}
		if _, err := gs.groups.GetByID(inner, inv.GroupID); err != nil {
			return err
		}
		_, err = gs.members.Add(inner, &types.GroupMember{GroupID: inv.GroupID, UserID: me.ID, JoinedAt: now})
		return err
	})
	if err != nil {
		gs.log.Warn("answer invite failed", "invite_id", inviteID, "status", status, "error", err)
		return storeErr(op, err)
	}
	return nil
}

func (gs *groupService) JoinGroup(ctx context.Context, groupID uuid.UUID) error {
	const op = "GroupService.JoinGroup"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	group, err := gs.groups.GetByID(dbc, groupID)
	if err != nil {
		return storeErr(op, err)
	}
	if !group.IsPublic {
		return unauthorized(op, "private groups require an invitation")
	}
	if _, err := gs.members.Add(dbc, &types.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: gs.clock.Now().UTC()}); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (gs *groupService) LeaveGroup(ctx context.Context, groupID uuid.UUID) error {
	const op = "GroupService.LeaveGroup"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	group, err := gs.groups.GetByID(dbc, groupID)
	if err != nil {
		return storeErr(op, err)
	}
	if group.CreatedBy == userID {
		return unauthorized(op, "group creator cannot leave the group")
	}
	if _, err := gs.members.Remove(dbc, groupID, userID); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (gs *groupService) DeleteGroup(ctx context.Context, groupID uuid.UUID) error {
	const op = "GroupService.DeleteGroup"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	group, err := gs.groups.GetByID(dbctx.Context{Ctx: ctx}, groupID)
	if err != nil {
		return storeErr(op, err)
	}
	if group.CreatedBy != userID {
		return unauthorized(op, "only the group creator can delete the group")
	}
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := gs.invites.DeleteByGroup(inner, groupID); err != nil {
			return err
		}
		if err := gs.sessions.DeleteByGroup(inner, groupID); err != nil {
			return err
		}
		if err := gs.members.DeleteByGroup(inner, groupID); err != nil {
			return err
		}
		return gs.groups.Delete(inner, groupID)
	})
	if err != nil {
		gs.log.Warn("delete group failed", "group_id", groupID, "error", err)
		return storeErr(op, err)
	}
	return nil
}

func (gs *groupService) PublicGroups(ctx context.Context) ([]*types.Group, error) {
	const op = "GroupService.PublicGroups"
	if _, err := callerID(ctx, op); err != nil {
		return nil, err
	}
	groups, err := gs.groups.ListPublic(dbctx.Context{Ctx: ctx}, 100)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return groups, nil
}

func (gs *groupService) AddPracticeTime(ctx context.Context, groupID uuid.UUID, minutes int) error {
	const op = "GroupService.AddPracticeTime"
	userID, err := callerID(ctx, op)
	if err != nil {
		return err
	}
	if minutes < 0 {
		return validation(op, "minutes must be >= 0")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := gs.requireMember(dbc, op, groupID, userID); err != nil {
		return err
	}
	if err := gs.groups.AddPracticeTime(dbc, groupID, minutes, gs.clock.Now().UTC()); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func (gs *groupService) StartSession(ctx context.Context, groupID uuid.UUID) (*types.GroupSession, error) {
	const op = "GroupService.StartSession"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := gs.requireMember(dbc, op, groupID, userID); err != nil {
		return nil, err
	}
	now := gs.clock.Now().UTC()
	tools, err := json.Marshal(map[string]types.MemberTool{userID.String(): {UpdatedAt: now}})
	if err != nil {
		return nil, storeErr(op, err)
	}
	session := &types.GroupSession{
		GroupID:     groupID,
		CreatedBy:   userID,
		Status:      types.GroupSessionActive,
		StartTime:   now,
		MemberTools: datatypes.JSON(tools),
		UpdatedAt:   now,
	}
	if err := gs.sessions.Create(dbc, session); err != nil {
		return nil, storeErr(op, err)
	}
	return session, nil
}

func (gs *groupService) UpdateMemberTool(ctx context.Context, sessionID uuid.UUID, tool string) (*types.GroupSession, error) {
	const op = "GroupService.UpdateMemberTool"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	tool = strings.TrimSpace(tool)
	if tool == "" {
		return nil, validation(op, "tool_name is required")
	}
	var out *types.GroupSession
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		session, err := gs.sessionForMember(inner, op, sessionID, userID)
		if err != nil {
			return err
		}
		if session.Status != types.GroupSessionActive {
			return conflict(op, "group session has ended")
		}
		tools := decodeMemberTools(session.MemberTools)
		now := gs.clock.Now().UTC()
		tools[userID.String()] = types.MemberTool{ToolName: tool, UpdatedAt: now}
		raw, err := json.Marshal(tools)
		if err != nil {
			return err
		}
		if err := gs.sessions.UpdateMemberTools(inner, sessionID, datatypes.JSON(raw), now); err != nil {
			return err
		}
		out, err = gs.sessions.GetByID(inner, sessionID)
		return err
	})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if gs.notify != nil {
		gs.notify.GroupSessionUpdated(ctx, out)
	}
	return out, nil
}

func (gs *groupService) EndSession(ctx context.Context, sessionID uuid.UUID, in EndGroupSessionInput) (*types.GroupSession, error) {
	const op = "GroupService.EndSession"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if in.Duration < 0 {
		return nil, validation(op, "duration must be >= 0")
	}
	toolsUsed, _ := json.Marshal(cleanToolNames(in.Tools))
	var out *types.GroupSession
	err = gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		session, err := gs.sessionForMember(inner, op, sessionID, userID)
		if err != nil {
			return err
		}
		if session.Status != types.GroupSessionActive {
			return conflict(op, "group session has ended")
		}
		now := gs.clock.Now().UTC()
		if err := gs.sessions.End(inner, sessionID, now, in.Duration, datatypes.JSON(toolsUsed)); err != nil {
			return err
		}
		if err := gs.groups.AddPracticeTime(inner, session.GroupID, in.Duration, now); err != nil {
			return err
		}
		out, err = gs.sessions.GetByID(inner, sessionID)
		return err
	})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if gs.notify != nil {
		gs.notify.GroupSessionUpdated(ctx, out)
	}
	return out, nil
}

func (gs *groupService) AddSessionMessage(ctx context.Context, sessionID uuid.UUID, content string) (*types.GroupSessionMessage, error) {
	const op = "GroupService.AddSessionMessage"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validation(op, "content is required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := gs.sessionForMember(dbc, op, sessionID, userID); err != nil {
		return nil, storeErr(op, err)
	}
	msg := &types.GroupSessionMessage{SessionID: sessionID, UserID: userID, Content: content, CreatedAt: gs.clock.Now().UTC()}
	if err := gs.messages.Create(dbc, msg); err != nil {
		return nil, storeErr(op, err)
	}
	if gs.notify != nil {
		gs.notify.GroupSessionMessage(ctx, msg)
	}
	return msg, nil
}

func (gs *groupService) SessionMessages(ctx context.Context, sessionID uuid.UUID) ([]*types.GroupSessionMessage, error) {
	const op = "GroupService.SessionMessages"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := gs.sessionForMember(dbc, op, sessionID, userID); err != nil {
		return nil, storeErr(op, err)
	}
	rows, err := gs.messages.ListBySession(dbc, sessionID, sessionMessagesLimit)
	if err != nil {
		return nil, storeErr(op, err)
	}
	return rows, nil
}

func (gs *groupService) SessionMembers(ctx context.Context, sessionID uuid.UUID) ([]SessionMember, error) {
	const op = "GroupService.SessionMembers"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	session, err := gs.sessionForMember(dbc, op, sessionID, userID)
	if err != nil {
		return nil, storeErr(op, err)
	}
	tools := decodeMemberTools(session.MemberTools)
	ids := make([]uuid.UUID, 0, len(tools))
	for k := range tools {
		if id, err := uuid.Parse(k); err == nil {
			ids = append(ids, id)
		}
	}
	out := make([]SessionMember, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	users, err := gs.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, storeErr(op, err)
	}
	for _, u := range users {
		out = append(out, SessionMember{
			UserID:      u.ID,
			DisplayName: u.DisplayName,
			PhotoURL:    u.PhotoURL,
			CurrentTool: tools[u.ID.String()].ToolName,
		})
	}
	return out, nil
}

func (gs *groupService) SubscribeSessionMembers(ctx context.Context, sessionID uuid.UUID) (*realtime.Subscription, error) {
	const op = "GroupService.SubscribeSessionMembers"
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	if gs.hub == nil {
		return nil, domainInternal(op, "realtime hub not configured")
	}
	if _, err := gs.sessionForMember(dbctx.Context{Ctx: ctx}, op, sessionID, userID); err != nil {
		return nil, storeErr(op, err)
	}
	return gs.hub.Subscribe(userID, realtime.GroupSessionChannel(sessionID)), nil
}

func (gs *groupService) caller(ctx context.Context, op string) (*types.User, error) {
	userID, err := callerID(ctx, op)
	if err != nil {
		return nil, err
	}
	users, err := gs.users.GetByIDs(dbctx.Context{Ctx: ctx}, []uuid.UUID{userID})
	if err != nil {
		return nil, storeErr(op, err)
	}
	if len(users) == 0 {
		return nil, notFound(op, "user not found")
	}
	return users[0], nil
}

func (gs *groupService) requireMember(dbc dbctx.Context, op string, groupID, userID uuid.UUID) error {
	ok, err := gs.members.IsMember(dbc, groupID, userID)
	if err != nil {
		return storeErr(op, err)
	}
	if !ok {
		if _, err := gs.groups.GetByID(dbc, groupID); err != nil {
			return storeErr(op, err)
		}
		return unauthorized(op, "not a member of this group")
	}
	return nil
}

func (gs *groupService) sessionForMember(dbc dbctx.Context, op string, sessionID, userID uuid.UUID) (*types.GroupSession, error) {
	session, err := gs.sessions.GetByID(dbc, sessionID)
	if err != nil {
		return nil, err
	}
	if err := gs.requireMember(dbc, op, session.GroupID, userID); err != nil {
		return nil, err
	}
	return session, nil
}

func decodeMemberTools(raw datatypes.JSON) map[string]types.MemberTool {
	out := map[string]types.MemberTool{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	if out == nil {
		out = map[string]types.MemberTool{}
	}
	return out
}

func cleanToolNames(in []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
