package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/services"
)

type LeaderboardHandler struct {
	boards services.LeaderboardService
}

func NewLeaderboardHandler(boards services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{boards: boards}
}

func (h *LeaderboardHandler) period(c *gin.Context) (services.Period, bool) {
	p, ok := services.ParsePeriod(c.Param("period"))
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "validation", errors.New("period must be weekly, monthly or allTime"))
	}
	return p, ok
}

// GET /leaderboards
func (h *LeaderboardHandler) All(c *gin.Context) {
	boards, err := h.boards.AllLeaderboards(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"leaderboards": boards})
}

// GET /leaderboards/:period?regional=true
func (h *LeaderboardHandler) Get(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	var (
		entries []services.LeaderboardEntry
		err     error
	)
	if queryBool(c, "regional") {
		entries, err = h.boards.RegionalLeaderboard(c.Request.Context(), p)
	} else {
		entries, err = h.boards.Leaderboard(c.Request.Context(), p)
	}
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"period": p, "entries": entries})
}

// GET /leaderboards/:period/position?regional=true
func (h *LeaderboardHandler) Position(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	regional := queryBool(c, "regional")
	pos, err := h.boards.UserPosition(c.Request.Context(), p, regional)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	rank, err := h.boards.RelativeRank(c.Request.Context(), p, regional)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"period": p, "position": pos, "relative_rank": rank})
}

// GET /leaderboards/:period/top?limit=
func (h *LeaderboardHandler) Top(c *gin.Context) {
	p, ok := h.period(c)
	if !ok {
		return
	}
	entries, err := h.boards.TopPerformers(c.Request.Context(), p, queryInt(c, "limit", 0))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"period": p, "entries": entries})
}

// GET /leaderboards/stats/me
func (h *LeaderboardHandler) MyStats(c *gin.Context) {
	stats, err := h.boards.UserStats(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"stats": stats})
}
