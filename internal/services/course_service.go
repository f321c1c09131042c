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

// CourseService provides business logic for course operations.
type CourseService struct {
	courseRepo repository.CourseRepository
	orgRepo    repository.OrganizationRepository
	userRepo   repository.UserRepository
	latency    Latency
}

// NewCourseService creates a new CourseService.
func NewCourseService(
	courseRepo repository.CourseRepository,
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	latency Latency,
) *CourseService {
	return &CourseService{
		courseRepo: courseRepo,
		orgRepo:    orgRepo,
		userRepo:   userRepo,
		latency:    latency,
	}
}

// CreateCourseInput represents parameters to create a new course.
type CreateCourseInput struct {
	Title          string  `json:"title" validate:"required,notblank,max=255"`
	Description    string  `json:"description" validate:"max=5000"`
	Thumbnail      *string `json:"thumbnail" validate:"omitempty,url,max=512"`
	OrganizationID string  `json:"organizationId" validate:"required"`
	InstructorID   string  `json:"instructorId" validate:"required"`
}

// UpdateCourseInput carries a partial update; nil fields are unchanged.
type UpdateCourseInput struct {
	Title          *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description    *string `json:"description" validate:"omitempty,max=5000"`
	Thumbnail      *string `json:"thumbnail" validate:"omitempty,url,max=512"`
	OrganizationID *string `json:"organizationId" validate:"omitempty,notblank"`
	InstructorID   *string `json:"instructorId" validate:"omitempty,notblank"`
}

// List returns a page of courses. Filters: organizationId, instructorId.
func (s *CourseService) List(ctx context.Context, params ListParams) (Page[models.Course], error) {
	opts := params.options(constants.CoursePageSize)
	if err := s.latency.wait(ctx); err != nil {
		return Page[models.Course]{}, err
	}
	if err := checkFilters(params.Filters, "organizationId", "instructorId"); err != nil {
		return Page[models.Course]{}, err
	}

	courses, total, err := s.courseRepo.List(ctx, repository.CourseFilter{
		ListOptions:    opts,
		OrganizationID: stringFilter(params.Filters, "organizationId"),
		InstructorID:   stringFilter(params.Filters, "instructorId"),
	})
	if err != nil {
		return Page[models.Course]{}, fmt.Errorf("failed to list courses: %w", err)
	}
	return newPage(courses, total, opts), nil
}

// GetByID returns a course with organization, instructor, videos and enrollments.
func (s *CourseService) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	return s.courseRepo.FindByID(ctx, id)
}

// Create creates a new course.
func (s *CourseService) Create(ctx context.Context, input CreateCourseInput) (*models.Course, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.ensureReferences(ctx, input.OrganizationID, input.InstructorID); err != nil {
		return nil, err
	}

	now := utcNow()
	course := &models.Course{
		ID:             uuid.NewString(),
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Thumbnail:      input.Thumbnail,
		OrganizationID: input.OrganizationID,
		InstructorID:   input.InstructorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return s.courseRepo.FindByID(ctx, course.ID)
}

// Update applies a partial update to a course.
func (s *CourseService) Update(ctx context.Context, id string, input UpdateCourseInput) (*models.Course, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	orgID, instructorID := course.OrganizationID, course.InstructorID
	if input.OrganizationID != nil {
		orgID = *input.OrganizationID
	}
	if input.InstructorID != nil {
		instructorID = *input.InstructorID
	}
	if err := s.ensureReferences(ctx, orgID, instructorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		course.Description = strings.TrimSpace(*input.Description)
	}
	if input.Thumbnail != nil {
		course.Thumbnail = input.Thumbnail
	}
	course.OrganizationID = orgID
	course.InstructorID = instructorID
	course.UpdatedAt = utcNow()

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	return s.courseRepo.FindByID(ctx, id)
}

// Delete removes a course with its videos, enrollments and progress.
func (s *CourseService) Delete(ctx context.Context, id string) error {
	if err := s.latency.wait(ctx); err != nil {
		return err
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (s *CourseService) ensureReferences(ctx context.Context, orgID, instructorID string) error {
	if _, err := s.orgRepo.FindByID(ctx, orgID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return apierrors.NewValidationError("organizationId", "does not exist")
		}
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, instructorID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return apierrors.NewValidationError("instructorId", "does not exist")
		}
		return err
	}
	return nil
}
