package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormProgressRepository is a GORM implementation of ProgressRepository
type GormProgressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new ProgressRepository
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &GormProgressRepository{db: db}
}

// Upsert inserts progress or, when the enrollment already has a record for
// the video, overwrites its percent and timestamp. progress is reloaded from
// the stored row.
func (r *GormProgressRepository) Upsert(ctx context.Context, progress *models.VideoProgress) error {
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}, {Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"watched_percent", "last_watched_at"}),
	}).Omit(clause.Associations).Create(progress).Error
	if err != nil {
		return translate("record progress", err)
	}

	var stored models.VideoProgress
	if err := db.Preload("Video").
		Where("enrollment_id = ? AND video_id = ?", progress.EnrollmentID, progress.VideoID).
		First(&stored).Error; err != nil {
		return translate("reload progress", err)
	}
	*progress = stored
	return nil
}

// ListByEnrollment returns the enrollment's progress in video order
func (r *GormProgressRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.VideoProgress, error) {
	var progress []models.VideoProgress
	err := r.db.WithContext(ctx).
		Joins("Video").
		Where("video_progress.enrollment_id = ?", enrollmentID).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "Video", Name: "position"}}).
		Find(&progress).Error
	if err != nil {
		return nil, translate("list progress", err)
	}
	return progress, nil
}

// CountCompleted counts the enrollment's records at or past the completion threshold
func (r *GormProgressRepository) CountCompleted(ctx context.Context, enrollmentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VideoProgress{}).
		Where("enrollment_id = ? AND watched_percent >= ?", enrollmentID, constants.VideoCompletionThreshold).
		Count(&count).Error
	return count, translate("count completed videos", err)
}

// Recent returns the latest watched records with user, video and course
func (r *GormProgressRepository) Recent(ctx context.Context, limit int) ([]models.VideoProgress, error) {
	var progress []models.VideoProgress
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Video.Course").
		Order("last_watched_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&progress).Error
	if err != nil {
		return nil, translate("recent progress", err)
	}
	return progress, nil
}
