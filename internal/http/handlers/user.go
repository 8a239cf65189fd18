package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

// regionSetter is the slice of LeaderboardService that owns region changes.
type regionSetter interface {
	UserRegion(ctx context.Context) (string, error)
	SetUserRegion(ctx context.Context, region string) error
}

type UserHandler struct {
	userService services.UserService
	regions     regionSetter
}

func NewUserHandler(userService services.UserService, regions regionSetter) *UserHandler {
	return &UserHandler{userService: userService, regions: regions}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetProfile(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /me
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	// Region changes go through the leaderboard so cached regional boards are dropped.
	if req.Region != nil && uh.regions != nil {
		if err := uh.regions.SetUserRegion(ctx, *req.Region); err != nil {
			response.RespondErr(c, err)
			return
		}
		req.Region = nil
	}
	me, err := uh.userService.UpdateProfile(ctx, req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /me/region
func (uh *UserHandler) GetRegion(c *gin.Context) {
	region, err := uh.regions.UserRegion(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"region": region})
}

// PUT /me/region
func (uh *UserHandler) SetRegion(c *gin.Context) {
	var req struct {
		Region string `json:"region"`
	}
	if !bindJSON(c, &req) {
		return
	}
	region := strings.TrimSpace(req.Region)
	if err := uh.regions.SetUserRegion(c.Request.Context(), region); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"region": region})
}

// GET /users/:id
func (uh *UserHandler) GetUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	u, err := uh.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": publicUser(u)})
}
