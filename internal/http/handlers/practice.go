package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type PracticeHandler struct {
	tracker services.PracticeTracker
}

func NewPracticeHandler(tracker services.PracticeTracker) *PracticeHandler {
	return &PracticeHandler{tracker: tracker}
}

// POST /practice/start
func (h *PracticeHandler) Start(c *gin.Context) {
	var req struct {
		ToolName string `json:"tool_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.tracker.Start(c.Request.Context(), req.ToolName)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tracker": st})
}

// POST /practice/interaction
func (h *PracticeHandler) Interaction(c *gin.Context) {
	ok, err := h.tracker.RecordInteraction(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"recorded": ok})
}

// GET /practice/active
func (h *PracticeHandler) Active(c *gin.Context) {
	st, err := h.tracker.Active(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tracker": st})
}

// POST /practice/end
// Ending without a started session is not an error; the response reports recorded=false.
func (h *PracticeHandler) End(c *gin.Context) {
	var req services.EndSessionInput
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, ok, err := h.tracker.End(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if !ok {
		response.RespondOK(c, gin.H{"recorded": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"recorded":  true,
		"session":   res.Session,
		"goals":     res.Goals,
		"challenge": res.Challenge,
	})
}

// GET /practice/history
func (h *PracticeHandler) History(c *gin.Context) {
	rows, err := h.tracker.History(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": rows})
}
