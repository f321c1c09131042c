package models

import (
	"time"

	"github.com/yukikurage/learning-admin-api/internal/constants"
)

type VideoProgress struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID         string    `gorm:"type:varchar(36);not null;index" json:"userId"`
	VideoID        string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_enrollment_video" json:"videoId"`
	EnrollmentID   string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_enrollment_video" json:"enrollmentId"`
	WatchedPercent float64   `gorm:"not null;default:0" json:"watchedPercent"`
	LastWatchedAt  time.Time `gorm:"index" json:"lastWatchedAt"`

	// Relations
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Video      *Video      `gorm:"foreignKey:VideoID" json:"video,omitempty"`
	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
}

// TableName keeps the plural form stable across dialects.
func (VideoProgress) TableName() string { return "video_progress" }

// ClampPercent bounds p to [0,100].
func ClampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// IsComplete reports whether the video counts as watched.
func (p VideoProgress) IsComplete() bool {
	return IsWatched(p.WatchedPercent)
}

// IsWatched applies the completion threshold to a watched percent.
func IsWatched(percent float64) bool {
	return percent >= constants.VideoCompletionThreshold
}
