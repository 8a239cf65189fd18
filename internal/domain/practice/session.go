package practice

import (
	"time"

	"github.com/google/uuid"
)

// PracticeSession is written once when a tracked session ends.
type PracticeSession struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_session_user_date,priority:1" json:"user_id"`
	ToolName     string    `gorm:"not null;column:tool_name" json:"tool_name"`
	Duration     int       `gorm:"not null;column:duration" json:"duration"`
	Interactions int       `gorm:"not null;default:0;column:interactions" json:"interactions"`
	Rating       *int      `gorm:"column:rating" json:"rating,omitempty"`
	Notes        string    `gorm:"column:notes" json:"notes,omitempty"`
	Date         time.Time `gorm:"not null;index;index:idx_session_user_date,priority:2;column:date" json:"date"`
	Completed    bool      `gorm:"not null;default:true;column:completed" json:"completed"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (PracticeSession) TableName() string { return "practice_sessions" }
