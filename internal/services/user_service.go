package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/repository"
)

// UserService provides business logic for users and their memberships.
type UserService struct {
	userRepo       repository.UserRepository
	membershipRepo repository.MembershipRepository
	orgRepo        repository.OrganizationRepository
	courseRepo     repository.CourseRepository
	latency        Latency
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	membershipRepo repository.MembershipRepository,
	orgRepo repository.OrganizationRepository,
	courseRepo repository.CourseRepository,
	latency Latency,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		membershipRepo: membershipRepo,
		orgRepo:        orgRepo,
		courseRepo:     courseRepo,
		latency:        latency,
	}
}

// MembershipInput grants a role in an organization.
type MembershipInput struct {
	OrganizationID string      `json:"organizationId" validate:"required"`
	Role           models.Role `json:"role" validate:"required,role"`
}

// CreateUserInput represents parameters to create a new user.
type CreateUserInput struct {
	Email       string            `json:"email" validate:"required,email,max=255"`
	FirstName   string            `json:"firstName" validate:"required,notblank,max=100"`
	LastName    string            `json:"lastName" validate:"required,notblank,max=100"`
	Avatar      *string           `json:"avatar" validate:"omitempty,url,max=512"`
	Password    *string           `json:"password" validate:"omitempty,min=8,max=72"`
	Memberships []MembershipInput `json:"memberships" validate:"omitempty,dive"`
}

// UpdateUserInput carries a partial update; nil fields are unchanged.
type UpdateUserInput struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName *string `json:"firstName" validate:"omitempty,notblank,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,notblank,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,url,max=512"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
}

// List returns a page of users. Filters: role, organizationId.
func (s *UserService) List(ctx context.Context, params ListParams) (Page[models.User], error) {
	opts := params.options(constants.DefaultPageSize)
	if err := s.latency.wait(ctx); err != nil {
		return Page[models.User]{}, err
	}
	if err := checkFilters(params.Filters, "role", "organizationId"); err != nil {
		return Page[models.User]{}, err
	}
	role, err := roleFilter(params.Filters, "role")
	if err != nil {
		return Page[models.User]{}, err
	}

	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		ListOptions:    opts,
		Role:           role,
		OrganizationID: stringFilter(params.Filters, "organizationId"),
	})
	if err != nil {
		return Page[models.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return newPage(users, total, opts), nil
}

// GetByID returns a user with memberships, or NotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	return s.userRepo.FindByID(ctx, id)
}

// Create creates a user and any initial memberships.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	input.Email = normalizeEmail(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	email := input.Email
	if err := s.ensureEmailAvailable(ctx, email, ""); err != nil {
		return nil, err
	}

	now := utcNow()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Avatar:    input.Avatar,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	memberships := make([]models.Membership, 0, len(input.Memberships))
	seen := make(map[string]bool, len(input.Memberships))
	for _, m := range input.Memberships {
		if seen[m.OrganizationID] {
			return nil, apierrors.NewValidationError("organizationId", "is listed more than once")
		}
		seen[m.OrganizationID] = true

		if err := s.ensureOrganizationExists(ctx, m.OrganizationID); err != nil {
			return nil, err
		}
		memberships = append(memberships, models.Membership{
			ID:             uuid.NewString(),
			OrganizationID: m.OrganizationID,
			Role:           m.Role,
			CreatedAt:      now,
		})
	}

	if err := s.userRepo.CreateWithMemberships(ctx, user, memberships); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("email", "is already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.userRepo.FindByID(ctx, user.ID)
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*models.User, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		input.Email = &email
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := *input.Email
		if email != user.Email {
			if err := s.ensureEmailAvailable(ctx, email, user.ID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Avatar != nil {
		user.Avatar = input.Avatar
	}
	if input.Password != nil {
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = utcNow()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("email", "is already taken")
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes a user with their memberships, enrollments and progress.
// A user who still instructs a course cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.latency.wait(ctx); err != nil {
		return err
	}

	taught, err := s.courseRepo.CountByInstructor(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check instructed courses: %w", err)
	}
	if taught > 0 {
		return apierrors.NewValidationError("instructorId", fmt.Sprintf("user is the instructor of %d course(s)", taught))
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListMemberships returns the user's memberships with their organizations.
func (s *UserService) ListMemberships(ctx context.Context, userID string) ([]models.Membership, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	memberships, _, err := s.membershipRepo.List(ctx, repository.MembershipFilter{UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	if memberships == nil {
		memberships = []models.Membership{}
	}
	return memberships, nil
}

// AddMembership grants the user a role in an organization.
func (s *UserService) AddMembership(ctx context.Context, userID string, input MembershipInput) (*models.Membership, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.ensureOrganizationExists(ctx, input.OrganizationID); err != nil {
		return nil, err
	}

	membership := &models.Membership{
		ID:             uuid.NewString(),
		UserID:         userID,
		OrganizationID: input.OrganizationID,
		Role:           input.Role,
		CreatedAt:      utcNow(),
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("organizationId", "user is already a member of this organization")
		}
		return nil, fmt.Errorf("failed to add membership: %w", err)
	}

	return s.membershipRepo.FindByID(ctx, membership.ID)
}

// RemoveMembership revokes one of the user's memberships. Removing a
// membership that no longer exists succeeds.
func (s *UserService) RemoveMembership(ctx context.Context, userID, membershipID string) error {
	if err := s.latency.wait(ctx); err != nil {
		return err
	}

	membership, err := s.membershipRepo.FindByID(ctx, membershipID)
	if err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if membership.UserID != userID {
		return apierrors.NotFoundf("membership", membershipID)
	}

	if err := s.membershipRepo.Delete(ctx, membershipID); err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	return nil
}

func (s *UserService) ensureEmailAvailable(ctx context.Context, email, exceptID string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != exceptID:
		return apierrors.NewValidationError("email", "is already taken")
	case err == nil, errors.Is(err, apierrors.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check email: %w", err)
	}
}

func (s *UserService) ensureOrganizationExists(ctx context.Context, orgID string) error {
	if _, err := s.orgRepo.FindByID(ctx, orgID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return apierrors.NewValidationError("organizationId", "does not exist")
		}
		return err
	}
	return nil
}
