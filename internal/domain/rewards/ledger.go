package rewards

import (
	"time"

	"github.com/google/uuid"
)

type RewardLedger struct {
	UserID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Points            int        `gorm:"not null;default:0;column:points" json:"points"`
	ChallengeStreak   int        `gorm:"not null;default:0;column:challenge_streak" json:"challenge_streak"`
	LastChallengeDate *time.Time `gorm:"column:last_challenge_date" json:"last_challenge_date,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}

func (RewardLedger) TableName() string { return "reward_ledgers" }

// UserAchievement is the membership row of a user's achievement set.
type UserAchievement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement,priority:1" json:"user_id"`
	AchievementID string    `gorm:"not null;column:achievement_id;uniqueIndex:idx_user_achievement,priority:2" json:"achievement_id"`
	Points        int       `gorm:"not null;column:points" json:"points"`
	AwardedAt     time.Time `gorm:"not null;column:awarded_at" json:"awarded_at"`
}

func (UserAchievement) TableName() string { return "user_achievements" }
