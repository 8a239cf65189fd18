package social

import (
	"time"

	"github.com/google/uuid"
)

type Follow struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FollowerID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_edge,priority:1" json:"follower_id"`
	FollowingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_follow_edge,priority:2;index" json:"following_id"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (Follow) TableName() string { return "user_follows" }

type Block struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_block_edge,priority:1" json:"user_id"`
	BlockedUserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_block_edge,priority:2" json:"blocked_user_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (Block) TableName() string { return "user_blocks" }

// ActivityLike is a like on a practice session shown in the following feed.
type ActivityLike struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_like,priority:1" json:"user_id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activity_like,priority:2;index" json:"activity_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (ActivityLike) TableName() string { return "activity_likes" }

type ActivityComment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ActivityID uuid.UUID `gorm:"type:uuid;not null;index" json:"activity_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Content    string    `gorm:"not null;column:content" json:"content"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (ActivityComment) TableName() string { return "activity_comments" }
