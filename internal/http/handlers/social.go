package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type SocialHandler struct {
	follows services.FollowService
}

func NewSocialHandler(follows services.FollowService) *SocialHandler {
	return &SocialHandler{follows: follows}
}

// POST /users/:id/follow
func (h *SocialHandler) Follow(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.follows.Follow(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"following": true})
}

// DELETE /users/:id/follow
func (h *SocialHandler) Unfollow(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.follows.Unfollow(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"following": false, "removed": removed})
}

// GET /users/:id/follow
func (h *SocialHandler) IsFollowing(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	following, err := h.follows.IsFollowing(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"following": following})
}

// POST /users/:id/block
func (h *SocialHandler) Block(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.follows.Block(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocked": true})
}

// DELETE /users/:id/block
func (h *SocialHandler) Unblock(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	removed, err := h.follows.Unblock(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocked": false, "removed": removed})
}

// GET /me/following
func (h *SocialHandler) Following(c *gin.Context) {
	users, err := h.follows.Following(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": publicUsers(users)})
}

// GET /me/followers
func (h *SocialHandler) Followers(c *gin.Context) {
	users, err := h.follows.Followers(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": publicUsers(users)})
}

// GET /users/suggested
func (h *SocialHandler) Suggested(c *gin.Context) {
	users, err := h.follows.SuggestedUsers(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": publicUsers(users)})
}

// GET /users/discover?q=
func (h *SocialHandler) Discover(c *gin.Context) {
	users, err := h.follows.DiscoverUsers(c.Request.Context(), strings.TrimSpace(c.Query("q")))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": publicUsers(users)})
}

// POST /me/stats/recalculate
func (h *SocialHandler) RecalculateStats(c *gin.Context) {
	me, err := h.follows.RecalculateUserStats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /feed
func (h *SocialHandler) Feed(c *gin.Context) {
	items, err := h.follows.FollowingActivity(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"activities": items})
}

// POST /feed/:activityId/like
func (h *SocialHandler) ToggleLike(c *gin.Context) {
	id, ok := uuidParam(c, "activityId")
	if !ok {
		return
	}
	liked, err := h.follows.ToggleActivityLike(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"liked": liked})
}

// GET /feed/:activityId/likes
func (h *SocialHandler) Likes(c *gin.Context) {
	id, ok := uuidParam(c, "activityId")
	if !ok {
		return
	}
	userIDs, err := h.follows.ActivityLikes(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user_ids": userIDs})
}

// POST /feed/:activityId/comments
func (h *SocialHandler) AddComment(c *gin.Context) {
	id, ok := uuidParam(c, "activityId")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.follows.AddActivityComment(c.Request.Context(), id, req.Content)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"comment": comment})
}

// GET /feed/:activityId/comments
func (h *SocialHandler) Comments(c *gin.Context) {
	id, ok := uuidParam(c, "activityId")
	if !ok {
		return
	}
	comments, err := h.follows.ActivityComments(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"comments": comments})
}
