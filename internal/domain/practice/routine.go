package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RoutineStep struct {
	ToolName string `json:"tool_name"`
	Minutes  int    `json:"minutes"`
}

type Routine struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string         `gorm:"not null;column:name" json:"name"`
	Description    string         `gorm:"column:description" json:"description"`
	Steps          datatypes.JSON `gorm:"column:steps" json:"steps"`
	TotalDuration  int            `gorm:"not null;default:0;column:total_duration" json:"total_duration"`
	TimesCompleted int            `gorm:"not null;default:0;column:times_completed" json:"times_completed"`
	LastCompleted  *time.Time     `gorm:"column:last_completed" json:"last_completed,omitempty"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
}

func (Routine) TableName() string { return "practice_routines" }
