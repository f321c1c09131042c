package models

import "time"

type EnrollmentStatus string

const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusDropped   EnrollmentStatus = "DROPPED"
)

// Valid reports whether s is one of the closed set of statuses.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusCompleted, EnrollmentStatusDropped:
		return true
	}
	return false
}

type Enrollment struct {
	ID          string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_user_course" json:"userId"`
	CourseID    string           `gorm:"type:varchar(36);not null;uniqueIndex:idx_enrollment_user_course;index" json:"courseId"`
	Status      EnrollmentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	EnrolledAt  time.Time        `gorm:"not null" json:"enrolledAt"`
	CompletedAt *time.Time       `json:"completedAt,omitempty"`

	// Relations
	User     *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course   *Course         `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Progress []VideoProgress `gorm:"foreignKey:EnrollmentID" json:"progress,omitempty"`
}

// SetStatus moves the enrollment to status, keeping CompletedAt consistent:
// it is stamped on the transition into COMPLETED and cleared on the way out.
func (e *Enrollment) SetStatus(status EnrollmentStatus, now time.Time) {
	if status == EnrollmentStatusCompleted {
		if e.Status != EnrollmentStatusCompleted || e.CompletedAt == nil {
			t := now
			e.CompletedAt = &t
		}
	} else {
		e.CompletedAt = nil
	}
	e.Status = status
}
