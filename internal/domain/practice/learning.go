package practice

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PathProgress is a user's position on a learning path. CompletedStages is
// filled from CompletedStage rows.
type PathProgress struct {
	UserID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	CurrentPath     *string   `gorm:"column:current_path" json:"current_path"`
	CurrentStage    *string   `gorm:"column:current_stage" json:"current_stage"`
	CompletedStages []string  `gorm:"-" json:"completed_stages"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (PathProgress) TableName() string { return "user_progress" }

type CompletedStage struct {
	UserID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	StageID     string    `gorm:"primaryKey;column:stage_id" json:"stage_id"`
	PathID      string    `gorm:"not null;column:path_id" json:"path_id"`
	CompletedAt time.Time `gorm:"not null;column:completed_at" json:"completed_at"`
}

func (CompletedStage) TableName() string { return "user_completed_stages" }

// Assessment is one attempt at a catalog assessment type.
type Assessment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_assessment_user_started,priority:1" json:"user_id"`
	Type        string         `gorm:"not null;column:type" json:"type"`
	StartedAt   time.Time      `gorm:"not null;column:started_at;index:idx_assessment_user_started,priority:2" json:"start_time"`
	EndedAt     *time.Time     `gorm:"column:ended_at" json:"end_time,omitempty"`
	Completed   bool           `gorm:"not null;default:false;column:completed" json:"completed"`
	Score       int            `gorm:"not null;default:0;column:score" json:"score"`
	MaxScore    int            `gorm:"not null;column:max_score" json:"max_score"`
	Answers     datatypes.JSON `gorm:"column:answers" json:"answers"`
	AnswerCount int            `gorm:"not null;default:0;column:answer_count" json:"answer_count"`
}

func (Assessment) TableName() string { return "assessments" }
