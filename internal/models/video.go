package models

import "time"

type Video struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	URL         string    `gorm:"type:varchar(1024);not null" json:"url"`
	Duration    int       `gorm:"not null;default:0" json:"duration"`
	Order       int       `gorm:"column:position;not null;uniqueIndex:idx_video_course_position" json:"order"`
	CourseID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_video_course_position" json:"courseId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
