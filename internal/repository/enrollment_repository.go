package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormEnrollmentRepository is a GORM implementation of EnrollmentRepository
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

func (r *GormEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	return translate("create enrollment", r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error)
}

func (r *GormEnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Where("id = ?", id).
		First(&enrollment).Error; err != nil {
		return nil, notFoundOr("enrollment", id, err)
	}
	return &enrollment, nil
}

func (r *GormEnrollmentRepository) FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&enrollment).Error; err != nil {
		return nil, notFoundOr("enrollment", userID+"/"+courseID, err)
	}
	return &enrollment, nil
}

// List retrieves enrollments with filtering and pagination. The search term
// matches the learner's name and the course title.
func (r *GormEnrollmentRepository) List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})

	if filter.Search != "" {
		query = query.
			Joins("JOIN users ON users.id = enrollments.user_id").
			Joins("JOIN courses ON courses.id = enrollments.course_id").
			Scopes(database.Search(filter.Search, "users.first_name", "users.last_name", "courses.title"))
	}
	if filter.Status != nil {
		query = query.Where("enrollments.status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("enrollments.user_id = ?", *filter.UserID)
	}
	if filter.CourseID != nil {
		query = query.Where("enrollments.course_id = ?", *filter.CourseID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count enrollments", err)
	}

	var enrollments []models.Enrollment
	if err := query.
		Preload("User").
		Preload("Course").
		Order("enrollments.enrolled_at DESC").
		Order("enrollments.id ASC").
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&enrollments).Error; err != nil {
		return nil, 0, translate("list enrollments", err)
	}

	return enrollments, total, nil
}

func (r *GormEnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	return translate("update enrollment", r.db.WithContext(ctx).Omit(clause.Associations).Save(enrollment).Error)
}

// Delete deletes an enrollment and its progress
func (r *GormEnrollmentRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", id).Delete(&models.VideoProgress{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Enrollment{}).Error
	})
	return translate("delete enrollment", err)
}

// Count returns the number of enrollments, optionally with the given status
func (r *GormEnrollmentRepository) Count(ctx context.Context, status *models.EnrollmentStatus) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Enrollment{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var count int64
	err := query.Count(&count).Error
	return count, translate("count enrollments", err)
}
