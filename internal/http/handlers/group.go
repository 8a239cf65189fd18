package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
	"github.com/yungbote/practice-backend/internal/services"
)

type GroupHandler struct {
	log    *logger.Logger
	groups services.GroupService
	hub    *realtime.SSEHub
}

func NewGroupHandler(log *logger.Logger, groups services.GroupService, hub *realtime.SSEHub) *GroupHandler {
	return &GroupHandler{log: log.With("handler", "GroupHandler"), groups: groups, hub: hub}
}

// GET /groups
func (h *GroupHandler) List(c *gin.Context) {
	groups, err := h.groups.ListGroups(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"groups": groups})
}

// GET /groups/public
func (h *GroupHandler) Public(c *gin.Context) {
	groups, err := h.groups.PublicGroups(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"groups": groups})
}

// POST /groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req services.CreateGroupInput
	if !bindJSON(c, &req) {
		return
	}
	g, err := h.groups.CreateGroup(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"group": g})
}

// GET /groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.groups.GetGroup(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"group": detail.Group, "members": publicUsers(detail.Members)})
}

// DELETE /groups/:id
func (h *GroupHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.DeleteGroup(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /groups/:id/join
func (h *GroupHandler) Join(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.JoinGroup(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"joined": true})
}

// POST /groups/:id/leave
func (h *GroupHandler) Leave(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.LeaveGroup(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"left": true})
}

// POST /groups/:id/invites
func (h *GroupHandler) Invite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if !bindJSON(c, &req) {
		return
	}
	inv, err := h.groups.InviteMember(c.Request.Context(), id, req.Email)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"invite": inv})
}

// POST /groups/:id/practice-time
func (h *GroupHandler) AddPracticeTime(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Minutes int `json:"minutes"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.groups.AddPracticeTime(c.Request.Context(), id, req.Minutes); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /invites
func (h *GroupHandler) PendingInvites(c *gin.Context) {
	invites, err := h.groups.PendingInvites(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"invites": invites})
}

// POST /invites/:id/accept
func (h *GroupHandler) AcceptInvite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.AcceptInvite(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "accepted"})
}

// POST /invites/:id/decline
func (h *GroupHandler) DeclineInvite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.DeclineInvite(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"status": "declined"})
}

// DELETE /invites/:id
func (h *GroupHandler) CancelInvite(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.groups.CancelInvite(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /groups/:id/sessions
func (h *GroupHandler) StartSession(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sess, err := h.groups.StartSession(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": sess})
}

// PATCH /group-sessions/:id/tool
func (h *GroupHandler) UpdateTool(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		ToolName string `json:"tool_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.groups.UpdateMemberTool(c.Request.Context(), id, req.ToolName)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// POST /group-sessions/:id/end
func (h *GroupHandler) EndSession(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req services.EndGroupSessionInput
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.groups.EndSession(c.Request.Context(), id, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"session": sess})
}

// GET /group-sessions/:id/messages
func (h *GroupHandler) Messages(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	msgs, err := h.groups.SessionMessages(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"messages": msgs})
}

// POST /group-sessions/:id/messages
func (h *GroupHandler) PostMessage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}
	msg, err := h.groups.AddSessionMessage(c.Request.Context(), id, req.Content)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"message": msg})
}

// GET /group-sessions/:id/members
func (h *GroupHandler) Members(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	members, err := h.groups.SessionMembers(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"members": members})
}

// GET /group-sessions/:id/stream
func (h *GroupHandler) Stream(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	sub, err := h.groups.SubscribeSessionMembers(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	defer sub.Cancel()
	h.log.Debug("group session stream open", "session_id", id, "client_id", sub.Client().ID)
	h.hub.ServeHTTP(c.Writer, c.Request, sub.Client())
}
