package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	closing  sync.Once
	Logger   *logger.Logger
}

// Done is closed once the client has been removed from the hub.
func (c *SSEClient) Done() <-chan struct{} {
	return c.done
}
