package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type LearningPathHandler struct {
	paths services.LearningPathService
}

func NewLearningPathHandler(paths services.LearningPathService) *LearningPathHandler {
	return &LearningPathHandler{paths: paths}
}

// GET /paths
func (h *LearningPathHandler) List(c *gin.Context) {
	response.RespondOK(c, gin.H{"paths": h.paths.Paths()})
}

// GET /paths/progress
func (h *LearningPathHandler) Progress(c *gin.Context) {
	p, err := h.paths.Progress(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

// PUT /paths/current
func (h *LearningPathHandler) Select(c *gin.Context) {
	var req struct {
		PathID string `json:"path_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.paths.SelectPath(c.Request.Context(), req.PathID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

// POST /paths/stages/:stageId/complete
func (h *LearningPathHandler) CompleteStage(c *gin.Context) {
	p, err := h.paths.CompleteStage(c.Request.Context(), c.Param("stageId"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p})
}

type AssessmentHandler struct {
	assessments services.AssessmentService
}

func NewAssessmentHandler(assessments services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// GET /assessments/types
func (h *AssessmentHandler) Types(c *gin.Context) {
	response.RespondOK(c, gin.H{"types": h.assessments.Types()})
}

// GET /assessments
func (h *AssessmentHandler) History(c *gin.Context) {
	rows, err := h.assessments.History(c.Request.Context(), queryInt(c, "limit", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessments": rows})
}

// POST /assessments
func (h *AssessmentHandler) Start(c *gin.Context) {
	var req struct {
		Type string `json:"type"`
	}
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assessments.Start(c.Request.Context(), req.Type)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"assessment": a})
}

// POST /assessments/:id/answers
func (h *AssessmentHandler) SubmitAnswer(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Answer json.RawMessage `json:"answer"`
	}
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assessments.SubmitAnswer(c.Request.Context(), id, req.Answer)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessment": a})
}

// POST /assessments/:id/complete
func (h *AssessmentHandler) Complete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Score int `json:"score"`
	}
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.assessments.Complete(c.Request.Context(), id, req.Score)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assessment": a})
}
