package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/learning-admin-api/internal/database"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

func preloadMemberships(db *gorm.DB) *gorm.DB {
	return db.Preload("Memberships", func(db *gorm.DB) *gorm.DB {
		return db.Order("memberships.created_at ASC")
	}).Preload("Memberships.Organization")
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return translate("create user", r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

// CreateWithMemberships creates the user and the memberships atomically.
func (r *GormUserRepository) CreateWithMemberships(ctx context.Context, user *models.User, memberships []models.Membership) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}

		for i := range memberships {
			memberships[i].UserID = user.ID
			if err := tx.Omit(clause.Associations).Create(&memberships[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
	return translate("create user", err)
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(preloadMemberships).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFoundOr("user", id, err)
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr("user", email, err)
	}
	return &user, nil
}

// List retrieves users with filtering and pagination
func (r *GormUserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{}).
		Scopes(database.Search(filter.Search, "users.first_name", "users.last_name", "users.email"))

	if filter.Role != nil || filter.OrganizationID != nil {
		membershipSubQuery := r.db.Model(&models.Membership{}).
			Select("1").
			Where("memberships.user_id = users.id")
		if filter.Role != nil {
			membershipSubQuery = membershipSubQuery.Where("memberships.role = ?", *filter.Role)
		}
		if filter.OrganizationID != nil {
			membershipSubQuery = membershipSubQuery.Where("memberships.organization_id = ?", *filter.OrganizationID)
		}
		query = query.Where("EXISTS (?)", membershipSubQuery)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate("count users", err)
	}

	var users []models.User
	if err := query.
		Scopes(preloadMemberships, database.Paginate(filter.Page, filter.Limit)).
		Order("users.created_at DESC").
		Order("users.id ASC").
		Find(&users).Error; err != nil {
		return nil, 0, translate("list users", err)
	}

	return users, total, nil
}

// Update updates a user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return translate("update user", r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error)
}

// Delete deletes a user with their memberships, enrollments and progress
func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.VideoProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
	return translate("delete user", err)
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, translate("count users", err)
}
