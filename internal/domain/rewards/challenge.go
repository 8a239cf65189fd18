package rewards

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeType is how a challenge's progress is measured.
type ChallengeType string

const (
	ChallengeAccuracy   ChallengeType = "accuracy"
	ChallengeDuration   ChallengeType = "duration"
	ChallengeCompletion ChallengeType = "completion"
)

// DailyChallenge holds the single active challenge of a user, keyed by user id.
type DailyChallenge struct {
	UserID      uuid.UUID     `gorm:"type:uuid;primaryKey" json:"user_id"`
	CatalogID   string        `gorm:"not null;column:catalog_id" json:"id"`
	Type        ChallengeType `gorm:"not null;column:type" json:"type"`
	Title       string        `gorm:"not null;column:title" json:"title"`
	Description string        `gorm:"column:description" json:"description"`
	Tool        string        `gorm:"not null;column:tool" json:"tool"`
	Requirement int           `gorm:"not null;column:requirement" json:"requirement"`
	Points      int           `gorm:"not null;column:points" json:"points"`
	Date        time.Time     `gorm:"not null;column:date" json:"date"`
	Progress    int           `gorm:"not null;default:0;column:progress" json:"progress"`
	Completed   bool          `gorm:"not null;default:false;column:completed" json:"completed"`
	CompletedAt *time.Time    `gorm:"column:completed_at" json:"completed_at,omitempty"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (DailyChallenge) TableName() string { return "daily_challenges" }

// ChallengeHistory is append-only.
type ChallengeHistory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_history_user_completed,priority:1" json:"user_id"`
	ChallengeID string    `gorm:"not null;column:challenge_id" json:"challenge_id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Tool        string    `gorm:"not null;column:tool" json:"tool"`
	Points      int       `gorm:"not null;column:points" json:"points"`
	Requirement int       `gorm:"not null;column:requirement" json:"requirement"`
	CompletedAt time.Time `gorm:"not null;column:completed_at;index:idx_history_user_completed,priority:2" json:"completed_at"`
}

func (ChallengeHistory) TableName() string { return "challenge_history" }
