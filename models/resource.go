package models

import "time"

// Resource types. A resource is any user-authored content item: a plain
// post, an exam paper, or course material.
const (
	TypePost           = "post"
	TypeExamPaper      = "exam_paper"
	TypeCourseMaterial = "course_material"
)

// ValidResourceType reports whether t is one of the known resource types.
func ValidResourceType(t string) bool {
	return t == TypePost || t == TypeExamPaper || t == TypeCourseMaterial
}

// Resource is a content item published by a user. Level 0 and empty Track /
// Specialization mean "general": visible to everyone regardless of profile.
// CommentsCount is denormalized and maintained with in-place SQL arithmetic;
// it must always equal the number of live comments referencing the resource.
type Resource struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	Type           string    `gorm:"size:32;not null" json:"type"`
	Content        string    `gorm:"type:text" json:"content"`
	Title          string    `gorm:"size:255" json:"title"`
	Level          int       `gorm:"index;default:0" json:"level"`
	Track          string    `gorm:"size:100;index" json:"track"`
	Specialization string    `gorm:"size:100" json:"specialization"`
	Professor      string    `gorm:"size:100" json:"professor"`
	Year           int       `gorm:"default:0" json:"year"`
	CommentsCount  int       `gorm:"default:0;not null" json:"comments_count"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User        User                 `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Attachments []ResourceAttachment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"attachments,omitempty"`
}

// ResourceAttachment is a stored file belonging to one resource.
type ResourceAttachment struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	ResourceID uint   `gorm:"index;not null" json:"resource_id"`
	FilePath   string `gorm:"size:500;not null" json:"file_path"`
	FileName   string `gorm:"size:255;not null" json:"file_name"`
	FileType   string `gorm:"size:50" json:"file_type"`
	FileSize   int64  `json:"file_size"`
}

// IsImage reports whether the attachment carries an image MIME type.
func (a *ResourceAttachment) IsImage() bool {
	return len(a.FileType) > 6 && a.FileType[:6] == "image/"
}

// IsPDF reports whether the attachment is a PDF document.
func (a *ResourceAttachment) IsPDF() bool {
	return a.FileType == "application/pdf"
}
