package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/repository"
)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
	latency Latency
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository, latency Latency) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
		latency: latency,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name        string `json:"name" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateOrganizationInput carries a partial update; nil fields are unchanged.
type UpdateOrganizationInput struct {
	Name        *string `json:"name" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// List returns a page of organizations matching the search term.
func (s *OrganizationService) List(ctx context.Context, params ListParams) (Page[models.Organization], error) {
	opts := params.options(constants.DefaultPageSize)
	if err := s.latency.wait(ctx); err != nil {
		return Page[models.Organization]{}, err
	}
	if err := checkFilters(params.Filters); err != nil {
		return Page[models.Organization]{}, err
	}

	orgs, total, err := s.orgRepo.List(ctx, repository.OrganizationFilter{ListOptions: opts})
	if err != nil {
		return Page[models.Organization]{}, fmt.Errorf("failed to list organizations: %w", err)
	}
	return newPage(orgs, total, opts), nil
}

// GetByID returns an organization or NotFound.
func (s *OrganizationService) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	return s.orgRepo.FindByID(ctx, id)
}

// Create creates a new organization.
func (s *OrganizationService) Create(ctx context.Context, input CreateOrganizationInput) (*models.Organization, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	now := utcNow()
	org := &models.Organization{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orgRepo.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	return org, nil
}

// Update applies a partial update to an organization.
func (s *OrganizationService) Update(ctx context.Context, id string, input UpdateOrganizationInput) (*models.Organization, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		org.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		org.Description = strings.TrimSpace(*input.Description)
	}
	org.UpdatedAt = utcNow()

	if err := s.orgRepo.Update(ctx, org); err != nil {
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

// Delete removes an organization with its memberships and courses. Deleting
// a missing organization succeeds.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	if err := s.latency.wait(ctx); err != nil {
		return err
	}
	if err := s.orgRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	return nil
}
