package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

func (r *GormMembershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	return translate("create membership", r.db.WithContext(ctx).Omit(clause.Associations).Create(membership).Error)
}

func (r *GormMembershipRepository) FindByID(ctx context.Context, id string) (*models.Membership, error) {
	var membership models.Membership
	if err := r.db.WithContext(ctx).Preload("Organization").Where("id = ?", id).First(&membership).Error; err != nil {
		return nil, notFoundOr("membership", id, err)
	}
	return &membership, nil
}

// List retrieves memberships; the search term matches the organization name.
func (r *GormMembershipRepository) List(ctx context.Context, filter MembershipFilter) ([]models.Membership, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Membership{})

	if filter.Search != "" {
		query = query.Joins("JOIN organizations ON organizations.id = memberships.organization_id").
			Scopes(database.Search(filter.Search, "organizations.name"))
	}
	if filter.OrganizationID != nil {
		query = query.Where("memberships.organization_id = ?", *filter.OrganizationID)
	}
	if filter.UserID != nil {
		query = query.Where("memberships.user_id = ?", *filter.UserID)
	}
	if filter.Role != nil {
		query = query.Where("memberships.role = ?", *filter.Role)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count memberships", err)
	}

	var memberships []models.Membership
	if err := query.
		Preload("Organization").
		Preload("User").
		Order("memberships.created_at ASC").
		Order("memberships.id ASC").
		Scopes(database.Paginate(filter.Page, filter.Limit)).
		Find(&memberships).Error; err != nil {
		return nil, 0, translate("list memberships", err)
	}

	return memberships, total, nil
}

func (r *GormMembershipRepository) Delete(ctx context.Context, id string) error {
	return translate("delete membership", r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Membership{}).Error)
}
