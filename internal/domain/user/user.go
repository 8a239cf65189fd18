package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password    string         `gorm:"not null;column:password" json:"-"`
	DisplayName string         `gorm:"column:display_name" json:"display_name"`
	PhotoURL    string         `gorm:"column:photo_url" json:"photo_url"`
	Region      string         `gorm:"column:region;index" json:"region"`
	Instruments datatypes.JSON `gorm:"column:instruments" json:"instruments"`

	// Denormalized from practice_sessions by RecalculateUserStats.
	TotalPracticeTime int        `gorm:"not null;default:0;column:total_practice_time" json:"total_practice_time"`
	StatsUpdatedAt    *time.Time `gorm:"column:stats_updated_at" json:"stats_updated_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
