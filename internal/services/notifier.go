package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/practice-backend/internal/catalog"
	types "github.com/yungbote/practice-backend/internal/domain"
	"github.com/yungbote/practice-backend/internal/observability"
	"github.com/yungbote/practice-backend/internal/platform/logger"
	"github.com/yungbote/practice-backend/internal/realtime"
)

// Notifier publishes user-facing notices. Delivery is best effort; failures
// are logged and counted, never returned.
type Notifier interface {
	ChallengeGenerated(ctx context.Context, userID uuid.UUID, ch *types.DailyChallenge)
	ChallengeCompleted(ctx context.Context, userID uuid.UUID, ch *types.DailyChallenge, ledger *types.RewardLedger)
	AchievementsUnlocked(ctx context.Context, userID uuid.UUID, rows []*types.UserAchievement)
	GoalsReset(ctx context.Context, userID uuid.UUID, freq types.GoalFrequency, count int64)
	GroupSessionUpdated(ctx context.Context, session *types.GroupSession)
	GroupSessionMessage(ctx context.Context, msg *types.GroupSessionMessage)
}

type notifier struct {
	log     *logger.Logger
	emit    SSEEmitter
	catalog *catalog.Catalog
	metrics *observability.Metrics
}

func NewNotifier(log *logger.Logger, emit SSEEmitter, cat *catalog.Catalog, metrics *observability.Metrics) Notifier {
	if cat == nil {
		cat = catalog.Default()
	}
	return &notifier{
		log:     log.With("service", "Notifier"),
		emit:    emit,
		catalog: cat,
		metrics: metrics,
	}
}

func (n *notifier) send(ctx context.Context, msg realtime.SSEMessage) {
	if n == nil || n.emit == nil || msg.Channel == "" {
		return
	}
	if err := n.emit.Emit(context.WithoutCancel(ctx), msg); err != nil {
		n.log.Warn("notification delivery failed", "event", msg.Event, "error", err)
		n.metrics.IncNotification(string(msg.Event), "error")
		return
	}
	n.metrics.IncNotification(string(msg.Event), "sent")
}

func (n *notifier) ChallengeGenerated(ctx context.Context, userID uuid.UUID, ch *types.DailyChallenge) {
	if userID == uuid.Nil || ch == nil {
		return
	}
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventChallengeGenerated,
		Data: map[string]any{
			"message":   "New daily challenge available!",
			"challenge": ch,
		},
	})
}

func (n *notifier) ChallengeCompleted(ctx context.Context, userID uuid.UUID, ch *types.DailyChallenge, ledger *types.RewardLedger) {
	if userID == uuid.Nil || ch == nil {
		return
	}
	data := map[string]any{
		"message":   fmt.Sprintf("Challenge completed! +%d points", ch.Points),
		"challenge": ch,
	}
	if ledger != nil {
		data["points"] = ledger.Points
		data["streak"] = ledger.ChallengeStreak
	}
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventChallengeCompleted,
		Data:    data,
	})
}

func (n *notifier) AchievementsUnlocked(ctx context.Context, userID uuid.UUID, rows []*types.UserAchievement) {
	if userID == uuid.Nil {
		return
	}
	for _, row := range rows {
		if row == nil {
			continue
		}
		data := map[string]any{
			"achievement_id": row.AchievementID,
			"points":         row.Points,
			"awarded_at":     row.AwardedAt,
		}
		if a, ok := n.catalog.Achievement(row.AchievementID); ok {
			data["title"] = a.Title
			data["message"] = "Achievement unlocked: " + a.Title
		}
		n.send(ctx, realtime.SSEMessage{
			Channel: realtime.UserChannel(userID),
			Event:   realtime.SSEEventAchievementUnlocked,
			Data:    data,
		})
	}
}

func (n *notifier) GoalsReset(ctx context.Context, userID uuid.UUID, freq types.GoalFrequency, count int64) {
	if userID == uuid.Nil || count <= 0 {
		return
	}
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventGoalsReset,
		Data: map[string]any{
			"message":   "Your " + string(freq) + " goals have been reset",
			"frequency": freq,
			"count":     count,
		},
	})
}

func (n *notifier) GroupSessionUpdated(ctx context.Context, session *types.GroupSession) {
	if session == nil {
		return
	}
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.GroupSessionChannel(session.ID),
		Event:   realtime.SSEEventGroupSessionUpdated,
		Data:    map[string]any{"session": session},
	})
}

func (n *notifier) GroupSessionMessage(ctx context.Context, msg *types.GroupSessionMessage) {
	if msg == nil {
		return
	}
	n.send(ctx, realtime.SSEMessage{
		Channel: realtime.GroupSessionChannel(msg.SessionID),
		Event:   realtime.SSEEventGroupSessionMessage,
		Data:    map[string]any{"message": msg},
	})
}
