package practice

import (
	"time"

	"github.com/google/uuid"
)

type GoalFrequency string

const (
	FrequencyDaily  GoalFrequency = "daily"
	FrequencyWeekly GoalFrequency = "weekly"
)

func (f GoalFrequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

type Goal struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index:idx_goal_user_tool,priority:1" json:"user_id"`
	ToolName      string        `gorm:"not null;column:tool_name;index:idx_goal_user_tool,priority:2" json:"tool_name"`
	TargetMinutes int           `gorm:"not null;column:target_minutes" json:"target_minutes"`
	Frequency     GoalFrequency `gorm:"not null;column:frequency;index" json:"frequency"`
	StartDate     time.Time     `gorm:"not null;column:start_date" json:"start_date"`
	Progress      int           `gorm:"not null;default:0;column:progress" json:"progress"`
	Completed     bool          `gorm:"not null;default:false;column:completed" json:"completed"`
	IsChallenge   bool          `gorm:"not null;default:false;column:is_challenge" json:"is_challenge"`
	ChallengeID   string        `gorm:"column:challenge_id" json:"challenge_id,omitempty"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

func (Goal) TableName() string { return "practice_goals" }

// IsComplete reports the completion rule shared by every goal write.
func IsComplete(progress, target int) bool {
	return progress >= target
}
