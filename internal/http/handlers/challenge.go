package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type ChallengeHandler struct {
	challenges services.ChallengeService
}

func NewChallengeHandler(challenges services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges}
}

// GET /challenge
func (h *ChallengeHandler) Today(c *gin.Context) {
	ch, err := h.challenges.FetchDailyChallenge(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"challenge": ch})
}

// PATCH /challenge
func (h *ChallengeHandler) UpdateProgress(c *gin.Context) {
	var req struct {
		Progress int `json:"progress"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.challenges.UpdateProgress(c.Request.Context(), req.Progress)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /challenge/skip
func (h *ChallengeHandler) Skip(c *gin.Context) {
	ch, err := h.challenges.SkipChallenge(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"challenge": ch})
}

// GET /challenge/history
func (h *ChallengeHandler) History(c *gin.Context) {
	rows, err := h.challenges.History(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": rows})
}

// GET /challenge/stats
func (h *ChallengeHandler) Stats(c *gin.Context) {
	stats, err := h.challenges.Stats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
