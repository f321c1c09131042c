package services

import (
	"context"
	"fmt"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/repository"
)

// DashboardService aggregates platform-wide metrics.
type DashboardService struct {
	userRepo       repository.UserRepository
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	progressRepo   repository.ProgressRepository
	latency        Latency
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	enrollmentRepo repository.EnrollmentRepository,
	progressRepo repository.ProgressRepository,
	latency Latency,
) *DashboardService {
	return &DashboardService{
		userRepo:       userRepo,
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		latency:        latency,
	}
}

// Metrics are the dashboard headline numbers.
type Metrics struct {
	TotalUsers        int64   `json:"totalUsers"`
	TotalCourses      int64   `json:"totalCourses"`
	TotalEnrollments  int64   `json:"totalEnrollments"`
	ActiveEnrollments int64   `json:"activeEnrollments"`
	CompletionRate    float64 `json:"completionRate"`
}

// Metrics counts users, courses and enrollments. CompletionRate is the
// rounded percentage of enrollments that are COMPLETED.
func (s *DashboardService) Metrics(ctx context.Context) (*Metrics, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	var m Metrics
	var err error
	if m.TotalUsers, err = s.userRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if m.TotalCourses, err = s.courseRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if m.TotalEnrollments, err = s.enrollmentRepo.Count(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	active := models.EnrollmentStatusActive
	if m.ActiveEnrollments, err = s.enrollmentRepo.Count(ctx, &active); err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}

	completed := models.EnrollmentStatusCompleted
	done, err := s.enrollmentRepo.Count(ctx, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", err)
	}
	m.CompletionRate = percentOf(done, m.TotalEnrollments)

	return &m, nil
}

// RecentProgress returns the latest progress records with user, video and
// course. limit < 1 uses the default feed size.
func (s *DashboardService) RecentProgress(ctx context.Context, limit int) ([]models.VideoProgress, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = constants.RecentProgressLimit
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	progress, err := s.progressRepo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent progress: %w", err)
	}
	if progress == nil {
		progress = []models.VideoProgress{}
	}
	return progress, nil
}
