package models

import "time"

type Course struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Description    string    `gorm:"type:text" json:"description"`
	Thumbnail      *string   `gorm:"type:varchar(512)" json:"thumbnail,omitempty"`
	OrganizationID string    `gorm:"type:varchar(36);not null;index" json:"organizationId"`
	InstructorID   string    `gorm:"type:varchar(36);not null;index" json:"instructorId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	// Relations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Instructor   *User         `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Videos       []Video       `gorm:"foreignKey:CourseID" json:"videos"`
	Enrollments  []Enrollment  `gorm:"foreignKey:CourseID" json:"enrollments"`
}
