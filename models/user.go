package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a student account. Passwords are stored as bcrypt hashes only.
// Level and Track stay at their zero values until the profile is completed;
// the feed refuses to serve users whose profile is still incomplete.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash   string    `gorm:"size:255;not null" json:"-"`
	Name           string    `gorm:"size:100" json:"name"`
	School         string    `gorm:"size:100" json:"school"`
	Track          string    `gorm:"size:100" json:"track"`
	Level          int       `gorm:"default:0" json:"level"`
	Specialization string    `gorm:"size:100" json:"specialization"`
	ProfilePicture string    `gorm:"size:255" json:"profile_picture"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProfileComplete reports whether the academic fields required by the feed
// visibility rule are set.
func (u *User) ProfileComplete() bool {
	return u.Level >= 1 && u.Track != ""
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// AuthorSummary is the public author block embedded in feed and search items.
type AuthorSummary struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture"`
	Level          int    `json:"level,omitempty"`
	Track          string `json:"track,omitempty"`
}

// Summary projects the public author fields of a user.
func (u *User) Summary() AuthorSummary {
	return AuthorSummary{
		ID:             u.ID,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		Level:          u.Level,
		Track:          u.Track,
	}
}
