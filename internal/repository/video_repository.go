package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormVideoRepository is a GORM implementation of VideoRepository
type GormVideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new VideoRepository
func NewVideoRepository(db *gorm.DB) VideoRepository {
	return &GormVideoRepository{db: db}
}

func (r *GormVideoRepository) Create(ctx context.Context, video *models.Video) error {
	return translate("create video", r.db.WithContext(ctx).Omit(clause.Associations).Create(video).Error)
}

func (r *GormVideoRepository) FindByID(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Preload("Course").Where("id = ?", id).First(&video).Error; err != nil {
		return nil, notFoundOr("video", id, err)
	}
	return &video, nil
}

// List retrieves videos ordered by course and position
func (r *GormVideoRepository) List(ctx context.Context, filter VideoFilter) ([]models.Video, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Video{}).
		Scopes(database.Search(filter.Search, "videos.title", "videos.description"))

	if filter.CourseID != nil {
		query = query.Where("videos.course_id = ?", *filter.CourseID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count videos", err)
	}

	var videos []models.Video
	if err := query.
		Preload("Course").
		Order("videos.course_id ASC").
		Order("videos.position ASC").
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&videos).Error; err != nil {
		return nil, 0, translate("list videos", err)
	}

	return videos, total, nil
}

func (r *GormVideoRepository) Update(ctx context.Context, video *models.Video) error {
	return translate("update video", r.db.WithContext(ctx).Omit(clause.Associations).Save(video).Error)
}

// Delete deletes a video and its progress records
func (r *GormVideoRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", id).Delete(&models.VideoProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Video{}).Error
	})
	return translate("delete video", err)
}

// CountByCourse returns the number of videos in a course
func (r *GormVideoRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Video{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, translate("count videos", err)
}

// NextOrder returns one past the highest order in the course
func (r *GormVideoRepository) NextOrder(ctx context.Context, courseID string) (int, error) {
	var last int
	err := r.db.WithContext(ctx).Model(&models.Video{}).
		Select("COALESCE(MAX(position), 0)").
		Where("course_id = ?", courseID).
		Scan(&last).Error
	if err != nil {
		return 0, translate("next video order", err)
	}
	return last + 1, nil
}

// OrderTaken reports whether order is used by a video of the course other than exceptID
func (r *GormVideoRepository) OrderTaken(ctx context.Context, courseID string, order int, exceptID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("course_id = ? AND position = ? AND id <> ?", courseID, order, exceptID).
		Count(&count).Error
	if err != nil {
		return false, translate("check video order", err)
	}
	return count > 0, nil
}
