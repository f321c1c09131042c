package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/repository"
)

// ProgressService records and summarises video progress per enrollment.
type ProgressService struct {
	progressRepo   repository.ProgressRepository
	enrollmentRepo repository.EnrollmentRepository
	videoRepo      repository.VideoRepository
	latency        Latency
}

// NewProgressService creates a new ProgressService.
func NewProgressService(
	progressRepo repository.ProgressRepository,
	enrollmentRepo repository.EnrollmentRepository,
	videoRepo repository.VideoRepository,
	latency Latency,
) *ProgressService {
	return &ProgressService{
		progressRepo:   progressRepo,
		enrollmentRepo: enrollmentRepo,
		videoRepo:      videoRepo,
		latency:        latency,
	}
}

// RecordProgressInput is the watched percent to store; it is clamped to [0,100].
type RecordProgressInput struct {
	WatchedPercent *float64 `json:"watchedPercent" validate:"required"`
}

// Overview summarises an enrollment's completion.
type Overview struct {
	EnrollmentID    string  `json:"enrollmentId"`
	CompletedVideos int64   `json:"completedVideos"`
	TotalVideos     int64   `json:"totalVideos"`
	OverallPercent  float64 `json:"overallPercent"`
}

// Record upserts the progress of one video within an enrollment.
func (s *ProgressService) Record(ctx context.Context, enrollmentID, videoID string, input RecordProgressInput) (*models.VideoProgress, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	video, err := s.videoRepo.FindByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, apierrors.NewValidationError("videoId", "does not exist")
		}
		return nil, err
	}
	if video.CourseID != enrollment.CourseID {
		return nil, apierrors.NewValidationError("videoId", "is not part of the enrolled course")
	}

	progress := &models.VideoProgress{
		ID:             uuid.NewString(),
		UserID:         enrollment.UserID,
		VideoID:        video.ID,
		EnrollmentID:   enrollment.ID,
		WatchedPercent: models.ClampPercent(*input.WatchedPercent),
		LastWatchedAt:  utcNow(),
	}
	if err := s.progressRepo.Upsert(ctx, progress); err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}
	return progress, nil
}

// ListByEnrollment returns the enrollment's progress joined with videos, in video order.
func (s *ProgressService) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.VideoProgress, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if _, err := s.enrollmentRepo.FindByID(ctx, enrollmentID); err != nil {
		return nil, err
	}

	progress, err := s.progressRepo.ListByEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if progress == nil {
		progress = []models.VideoProgress{}
	}
	return progress, nil
}

// Overview counts completed videos against the course's videos.
func (s *ProgressService) Overview(ctx context.Context, enrollmentID string) (*Overview, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	enrollment, err := s.enrollmentRepo.FindByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}

	total, err := s.videoRepo.CountByCourse(ctx, enrollment.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	completed, err := s.progressRepo.CountCompleted(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed videos: %w", err)
	}

	return &Overview{
		EnrollmentID:    enrollmentID,
		CompletedVideos: completed,
		TotalVideos:     total,
		OverallPercent:  percentOf(completed, total),
	}, nil
}

// percentOf returns part/whole as a whole-number percentage, 0 for an empty whole.
func percentOf(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part) / float64(whole) * 100)
}
