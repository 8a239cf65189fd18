package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Group struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"not null;column:name" json:"name"`
	Description       string    `gorm:"column:description" json:"description"`
	CreatedBy         uuid.UUID `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	IsPublic          bool      `gorm:"not null;default:false;column:is_public;index" json:"is_public"`
	TotalPracticeTime int       `gorm:"not null;default:0;column:total_practice_time" json:"total_practice_time"`
	LastActive        time.Time `gorm:"not null;column:last_active" json:"last_active"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (Group) TableName() string { return "practice_groups" }

type GroupMember struct {
	GroupID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"group_id"`
	UserID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

func (GroupMember) TableName() string { return "group_members" }

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

type GroupInvite struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"group_id"`
	Email     string       `gorm:"not null;column:email;index" json:"email"`
	CreatedBy uuid.UUID    `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	Status    InviteStatus `gorm:"not null;column:status" json:"status"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (GroupInvite) TableName() string { return "group_invites" }

type GroupSessionStatus string

const (
	GroupSessionActive    GroupSessionStatus = "active"
	GroupSessionCompleted GroupSessionStatus = "completed"
)

// MemberTool is the value type of GroupSession.MemberTools, keyed by user id.
type MemberTool struct {
	ToolName  string    `json:"tool_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GroupSession struct {
	ID          uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	GroupID     uuid.UUID          `gorm:"type:uuid;not null;index" json:"group_id"`
	CreatedBy   uuid.UUID          `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	Status      GroupSessionStatus `gorm:"not null;column:status" json:"status"`
	StartTime   time.Time          `gorm:"not null;column:start_time" json:"start_time"`
	EndTime     *time.Time         `gorm:"column:end_time" json:"end_time,omitempty"`
	Duration    int                `gorm:"not null;default:0;column:duration" json:"duration"`
	MemberTools datatypes.JSON     `gorm:"column:member_tools" json:"member_tools"`
	ToolsUsed   datatypes.JSON     `gorm:"column:tools_used" json:"tools_used"`
	UpdatedAt   time.Time          `gorm:"not null" json:"updated_at"`
}

func (GroupSession) TableName() string { return "group_sessions" }

type GroupSessionMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index:idx_session_msg,priority:1" json:"session_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Content   string    `gorm:"not null;column:content" json:"content"`
	CreatedAt time.Time `gorm:"not null;index:idx_session_msg,priority:2" json:"created_at"`
}

func (GroupSessionMessage) TableName() string { return "group_session_messages" }
