package social

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ForumPost struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title        string         `gorm:"not null;column:title" json:"title"`
	Content      string         `gorm:"not null;column:content" json:"content"`
	Tags         datatypes.JSON `gorm:"column:tags" json:"tags"`
	UserName     string         `gorm:"column:user_name" json:"user_name"`
	UserPhotoURL string         `gorm:"column:user_photo_url" json:"user_photo_url,omitempty"`
	Likes        int            `gorm:"not null;default:0;column:likes" json:"likes"`
	Comments     int            `gorm:"not null;default:0;column:comments" json:"comments"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (ForumPost) TableName() string { return "forum_posts" }

type ForumComment struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID       uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	Content      string    `gorm:"not null;column:content" json:"content"`
	UserName     string    `gorm:"column:user_name" json:"user_name"`
	UserPhotoURL string    `gorm:"column:user_photo_url" json:"user_photo_url,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (ForumComment) TableName() string { return "forum_comments" }

type PostLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_like,priority:2" json:"post_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_post_like,priority:1" json:"user_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (PostLike) TableName() string { return "post_likes" }
