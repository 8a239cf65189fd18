package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Subscription is an explicit listener handle. Cancel releases the hub
// registration; the Messages channel is closed afterwards.
type Subscription struct {
	hub    *SSEHub
	client *SSEClient
	once   sync.Once
}

// Subscribe registers a listener for userID on the given channels.
func (hub *SSEHub) Subscribe(userID uuid.UUID, channels ...string) *Subscription {
	client := hub.NewSSEClient(userID)
	for _, ch := range channels {
		hub.AddChannel(client, ch)
	}
	return &Subscription{hub: hub, client: client}
}

func (s *Subscription) Messages() <-chan SSEMessage {
	return s.client.Outbound
}

func (s *Subscription) Client() *SSEClient {
	return s.client
}

func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.hub.CloseClient(s.client)
	})
}
