package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practice-backend/internal/http/response"
	"github.com/yungbote/practice-backend/internal/platform/logger"
)

// Recovery turns handler panics into a 500 envelope and logs the panic value.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("handler panic", "path", c.FullPath(), "panic", recovered)
		}
		response.AbortWithError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
	})
}
