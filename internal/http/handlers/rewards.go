package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type RewardHandler struct {
	rewards services.RewardService
}

func NewRewardHandler(rewards services.RewardService) *RewardHandler {
	return &RewardHandler{rewards: rewards}
}

// GET /rewards
func (h *RewardHandler) Summary(c *gin.Context) {
	sum, err := h.rewards.Summary(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"rewards": sum})
}

// POST /rewards/init
func (h *RewardHandler) Initialize(c *gin.Context) {
	ledger, err := h.rewards.Initialize(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ledger": ledger})
}

// POST /rewards/achievements/:id
func (h *RewardHandler) AwardAchievement(c *gin.Context) {
	res, err := h.rewards.AwardAchievement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /rewards/streak
func (h *RewardHandler) UpdateStreak(c *gin.Context) {
	var req struct {
		Completed bool `json:"completed"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.rewards.UpdateStreak(c.Request.Context(), req.Completed)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
