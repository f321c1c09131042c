package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// Create creates a new organization
func (r *GormOrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return translate("create organization", r.db.WithContext(ctx).Omit(clause.Associations).Create(org).Error)
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, notFoundOr("organization", id, err)
	}
	return &org, nil
}

// List retrieves organizations matching the search term
func (r *GormOrganizationRepository) List(ctx context.Context, filter OrganizationFilter) ([]models.Organization, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Organization{}).
		Scopes(database.Search(filter.Search, "organizations.name", "organizations.description")).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count organizations", err)
	}

	var orgs []models.Organization
	if err := query.
		Order("organizations.created_at DESC").
		Order("organizations.id ASC").
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&orgs).Error; err != nil {
		return nil, 0, translate("list organizations", err)
	}

	return orgs, total, nil
}

// Update updates an organization
func (r *GormOrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	return translate("update organization", r.db.WithContext(ctx).Omit(clause.Associations).Save(org).Error)
}

// Delete deletes an organization and all related data in a transaction
func (r *GormOrganizationRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courseIDs := tx.Model(&models.Course{}).Select("id").Where("organization_id = ?", id)
		if err := deleteCourseContent(tx, courseIDs); err != nil {
			return err
		}
		if err := tx.Where("organization_id = ?", id).Delete(&models.Course{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("organization_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", id).Delete(&models.Organization{}).Error
	})
	return translate("delete organization", err)
}

// deleteCourseContent removes the progress, enrollments and videos of the
// courses selected by courseIDs (a slice or a subquery). The courses
// themselves are left to the caller.
func deleteCourseContent(tx *gorm.DB, courseIDs interface{}) error {
	videoIDs := tx.Model(&models.Video{}).Select("id").Where("course_id IN (?)", courseIDs)
	enrollmentIDs := tx.Model(&models.Enrollment{}).Select("id").Where("course_id IN (?)", courseIDs)

	if err := tx.Where("video_id IN (?) OR enrollment_id IN (?)", videoIDs, enrollmentIDs).
		Delete(&models.VideoProgress{}).Error; err != nil {
		return err
	}
	if err := tx.Where("course_id IN (?)", courseIDs).Delete(&models.Enrollment{}).Error; err != nil {
		return err
	}
	return tx.Where("course_id IN (?)", courseIDs).Delete(&models.Video{}).Error
}
