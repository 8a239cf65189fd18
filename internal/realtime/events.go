package realtime

import (
	"strings"

	"github.com/google/uuid"
)

type SSEEvent string

const (
	SSEEventChallengeGenerated  SSEEvent = "ChallengeGenerated"
	SSEEventChallengeCompleted  SSEEvent = "ChallengeCompleted"
	SSEEventAchievementUnlocked SSEEvent = "AchievementUnlocked"
	SSEEventGoalsReset          SSEEvent = "GoalsReset"
	SSEEventGroupSessionUpdated SSEEvent = "GroupSessionUpdated"
	SSEEventGroupSessionMessage SSEEvent = "GroupSessionMessage"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the private notification channel of a user.
func UserChannel(userID uuid.UUID) string {
	return userID.String()
}

// GroupSessionChannel carries member tool and chat updates of one group session.
func GroupSessionChannel(sessionID uuid.UUID) string {
	return "group-session:" + sessionID.String()
}

func normalizeChannel(ch string) string {
	return strings.TrimSpace(ch)
}
