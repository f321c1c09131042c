package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/repository"
)

// EnrollmentService provides business logic for course enrollments.
type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	latency        Latency
}

// NewEnrollmentService creates a new EnrollmentService.
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	latency Latency,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		latency:        latency,
	}
}

// EnrollInput enrolls a user in a course.
type EnrollInput struct {
	UserID   string `json:"userId" validate:"required"`
	CourseID string `json:"courseId" validate:"required"`
}

// UpdateEnrollmentInput changes an enrollment's status.
type UpdateEnrollmentInput struct {
	Status *models.EnrollmentStatus `json:"status" validate:"omitempty,enrollment_status"`
}

// List returns a page of enrollments. Filters: status, userId, courseId.
func (s *EnrollmentService) List(ctx context.Context, params ListParams) (Page[models.Enrollment], error) {
	opts := params.options(constants.DefaultPageSize)
	if err := s.latency.wait(ctx); err != nil {
		return Page[models.Enrollment]{}, err
	}
	if err := checkFilters(params.Filters, "status", "userId", "courseId"); err != nil {
		return Page[models.Enrollment]{}, err
	}
	status, err := statusFilter(params.Filters, "status")
	if err != nil {
		return Page[models.Enrollment]{}, err
	}

	enrollments, total, err := s.enrollmentRepo.List(ctx, repository.EnrollmentFilter{
		ListOptions: opts,
		Status:      status,
		UserID:      stringFilter(params.Filters, "userId"),
		CourseID:    stringFilter(params.Filters, "courseId"),
	})
	if err != nil {
		return Page[models.Enrollment]{}, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return newPage(enrollments, total, opts), nil
}

// GetByID returns an enrollment with its user and course.
func (s *EnrollmentService) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.FindByID(ctx, id)
}

// Enroll creates an ACTIVE enrollment of a user in a course.
func (s *EnrollmentService) Enroll(ctx context.Context, input EnrollInput) (*models.Enrollment, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, apierrors.NewValidationError("userId", "does not exist")
		}
		return nil, err
	}
	if _, err := s.courseRepo.FindByID(ctx, input.CourseID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, apierrors.NewValidationError("courseId", "does not exist")
		}
		return nil, err
	}

	if _, err := s.enrollmentRepo.FindByUserAndCourse(ctx, input.UserID, input.CourseID); err == nil {
		return nil, apierrors.NewValidationError("courseId", "user is already enrolled in this course")
	} else if !errors.Is(err, apierrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}

	enrollment := &models.Enrollment{
		ID:         uuid.NewString(),
		UserID:     input.UserID,
		CourseID:   input.CourseID,
		Status:     models.EnrollmentStatusActive,
		EnrolledAt: utcNow(),
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("courseId", "user is already enrolled in this course")
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return s.enrollmentRepo.FindByID(ctx, enrollment.ID)
}

// Update changes an enrollment's status, keeping completedAt consistent.
func (s *EnrollmentService) Update(ctx context.Context, id string, input UpdateEnrollmentInput) (*models.Enrollment, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		enrollment.SetStatus(*input.Status, utcNow())
	}

	if err := s.enrollmentRepo.Update(ctx, enrollment); err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", err)
	}
	return enrollment, nil
}

// Delete removes an enrollment and its progress.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if err := s.latency.wait(ctx); err != nil {
		return err
	}
	if err := s.enrollmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return nil
}
