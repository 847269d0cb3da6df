package models

import "time"

// Like marks that a user liked a resource. The composite unique index makes
// concurrent duplicate toggles collapse into a single row at the store level.
type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uniq_like_user_resource" json:"user_id"`
	ResourceID uint      `gorm:"not null;uniqueIndex:uniq_like_user_resource;index" json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Bookmark has the same shape and uniqueness rule as Like but lives in its
// own table; liking and bookmarking are independent.
type Bookmark struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:uniq_bookmark_user_resource" json:"user_id"`
	ResourceID uint      `gorm:"not null;uniqueIndex:uniq_bookmark_user_resource;index" json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Comment is a reply attached to a resource.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResourceID uint      `gorm:"index;not null" json:"resource_id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}
