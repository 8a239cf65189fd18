package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type GoalHandler struct {
	goals services.GoalService
}

func NewGoalHandler(goals services.GoalService) *GoalHandler {
	return &GoalHandler{goals: goals}
}

// GET /goals
func (h *GoalHandler) List(c *gin.Context) {
	goals, err := h.goals.FetchGoals(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goals": goals})
}

// POST /goals
func (h *GoalHandler) Create(c *gin.Context) {
	var req services.AddGoalInput
	if !bindJSON(c, &req) {
		return
	}
	goal, err := h.goals.AddGoal(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"goal": goal})
}

// PATCH /goals/:id
func (h *GoalHandler) UpdateProgress(c *gin.Context) {
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
	goal, err := h.goals.UpdateProgress(c.Request.Context(), id, req.Minutes)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"goal": goal})
}

// DELETE /goals/:id
func (h *GoalHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.goals.DeleteGoal(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /goals/reset/:frequency
func (h *GoalHandler) Reset(c *gin.Context) {
	n, err := h.goals.ResetGoals(c.Request.Context(), types.GoalFrequency(c.Param("frequency")))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reset": n})
}

// POST /goals/check-reset
func (h *GoalHandler) CheckReset(c *gin.Context) {
	res, err := h.goals.CheckAndResetGoals(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"reset": res})
}
