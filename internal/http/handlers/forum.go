package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type ForumHandler struct {
	forum services.ForumService
}

func NewForumHandler(forum services.ForumService) *ForumHandler {
	return &ForumHandler{forum: forum}
}

// GET /forum/posts?tag=&user_id=&limit=
func (h *ForumHandler) ListPosts(c *gin.Context) {
	in := services.ListPostsInput{
		Tag:   c.Query("tag"),
		Limit: queryInt(c, "limit", 0),
	}
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		in.AuthorID = &id
	}
	posts, err := h.forum.ListPosts(c.Request.Context(), in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts})
}

// POST /forum/posts
func (h *ForumHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.forum.CreatePost(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"post": post})
}

// GET /forum/posts/:id
func (h *ForumHandler) GetPost(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	post, err := h.forum.GetPost(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": post})
}

// DELETE /forum/posts/:id
func (h *ForumHandler) DeletePost(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeletePost(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /forum/posts/:id/comments
func (h *ForumHandler) ListComments(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	comments, err := h.forum.ListComments(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"comments": comments})
}

// POST /forum/posts/:id/comments
func (h *ForumHandler) AddComment(c *gin.Context) {
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
	comment, err := h.forum.AddComment(c.Request.Context(), id, req.Content)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"comment": comment})
}

// DELETE /forum/comments/:id
func (h *ForumHandler) DeleteComment(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.forum.DeleteComment(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /forum/posts/:id/like
func (h *ForumHandler) LikePost(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	res, err := h.forum.LikePost(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /forum/likes
func (h *ForumHandler) LikedPosts(c *gin.Context) {
	ids, err := h.forum.LikedPosts(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post_ids": ids})
}
