package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/platform/ctxutil"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /sse/stream
// Streams the caller's private notifications until the client disconnects.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthenticated", errors.New("not authenticated"))
		return
	}
	sub := h.hub.Subscribe(userID, realtime.UserChannel(userID))
	defer sub.Cancel()

	h.log.Debug("SSE stream open", "user_id", userID, "client_id", sub.Client().ID)
	h.hub.ServeHTTP(c.Writer, c.Request, sub.Client())
}
