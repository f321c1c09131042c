package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormCourseRepository is a GORM implementation of CourseRepository
type GormCourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db *gorm.DB) CourseRepository {
	return &GormCourseRepository{db: db}
}

func preloadCourseRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Organization").
		Preload("Instructor").
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("videos.position ASC")
		}).
		Preload("Enrollments")
}

// Create creates a new course
func (r *GormCourseRepository) Create(ctx context.Context, course *models.Course) error {
	return translate("create course", r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error)
}

// FindByID finds a course by ID with its relations
func (r *GormCourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.WithContext(ctx).Scopes(preloadCourseRelations).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, notFoundOr("course", id, err)
	}
	return &course, nil
}

// List retrieves courses with filtering and pagination
func (r *GormCourseRepository) List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Course{}).
		Scopes(database.Search(filter.Search, "courses.title", "courses.description"))

	if filter.OrganizationID != nil {
		query = query.Where("courses.organization_id = ?", *filter.OrganizationID)
	}
	if filter.InstructorID != nil {
		query = query.Where("courses.instructor_id = ?", *filter.InstructorID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count courses", err)
	}

	var courses []models.Course
	if err := query.
		Scopes(preloadCourseRelations, database.Paginate(filter.Page, filter.Limit)).
		Order("courses.created_at DESC").
		Order("courses.id ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, translate("list courses", err)
	}

	return courses, total, nil
}

// Update updates a course
func (r *GormCourseRepository) Update(ctx context.Context, course *models.Course) error {
	return translate("update course", r.db.WithContext(ctx).Omit(clause.Associations).Save(course).Error)
}

// Delete deletes a course with its videos, enrollments and progress
func (r *GormCourseRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteCourseContent(tx, []string{id}); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Course{}).Error
	})
	return translate("delete course", err)
}

// Count returns the number of courses
func (r *GormCourseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error
	return count, translate("count courses", err)
}

// CountByInstructor returns the number of courses taught by userID
func (r *GormCourseRepository) CountByInstructor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Course{}).Where("instructor_id = ?", userID).Count(&count).Error
	return count, translate("count courses", err)
}
