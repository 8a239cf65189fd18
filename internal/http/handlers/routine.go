package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type RoutineHandler struct {
	routines services.RoutineService
}

func NewRoutineHandler(routines services.RoutineService) *RoutineHandler {
	return &RoutineHandler{routines: routines}
}

// GET /routines
func (h *RoutineHandler) List(c *gin.Context) {
	rows, err := h.routines.ListRoutines(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"routines": rows})
}

// POST /routines
func (h *RoutineHandler) Create(c *gin.Context) {
	var req services.AddRoutineInput
	if !bindJSON(c, &req) {
		return
	}
	r, err := h.routines.AddRoutine(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"routine": r})
}

// DELETE /routines/:id
func (h *RoutineHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.routines.DeleteRoutine(c.Request.Context(), id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondNoContent(c)
}

// POST /routines/:id/complete
func (h *RoutineHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	r, err := h.routines.CompleteRoutine(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"routine": r})
}
