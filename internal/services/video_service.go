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
	"github.com/yukikurage/learning-admin-api/internal/storage"
)

// VideoService provides business logic for course videos.
type VideoService struct {
	videoRepo  repository.VideoRepository
	courseRepo repository.CourseRepository
	media      storage.MediaResolver
	latency    Latency
}

// NewVideoService creates a new VideoService.
func NewVideoService(
	videoRepo repository.VideoRepository,
	courseRepo repository.CourseRepository,
	media storage.MediaResolver,
	latency Latency,
) *VideoService {
	return &VideoService{
		videoRepo:  videoRepo,
		courseRepo: courseRepo,
		media:      media,
		latency:    latency,
	}
}

// CreateVideoInput represents parameters to add a video to a course.
// A nil Order appends the video after the course's last one.
type CreateVideoInput struct {
	Title       string  `json:"title" validate:"required,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	URL         string  `json:"url" validate:"required,url,max=1024"`
	Duration    int     `json:"duration" validate:"gte=0"`
	Order       *int    `json:"order" validate:"omitempty,gte=1"`
	CourseID    string  `json:"courseId" validate:"required"`
}

// UpdateVideoInput carries a partial update; nil fields are unchanged.
type UpdateVideoInput struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	URL         *string `json:"url" validate:"omitempty,url,max=1024"`
	Duration    *int    `json:"duration" validate:"omitempty,gte=0"`
	Order       *int    `json:"order" validate:"omitempty,gte=1"`
}

// Playback is a resolved, playable video location.
type Playback struct {
	VideoID string `json:"videoId"`
	storage.Media
}

// List returns a page of videos ordered by course and position. Filters: courseId.
func (s *VideoService) List(ctx context.Context, params ListParams) (Page[models.Video], error) {
	opts := params.options(constants.DefaultPageSize)
	if err := s.latency.wait(ctx); err != nil {
		return Page[models.Video]{}, err
	}
	if err := checkFilters(params.Filters, "courseId"); err != nil {
		return Page[models.Video]{}, err
	}

	videos, total, err := s.videoRepo.List(ctx, repository.VideoFilter{
		ListOptions: opts,
		CourseID:    stringFilter(params.Filters, "courseId"),
	})
	if err != nil {
		return Page[models.Video]{}, fmt.Errorf("failed to list videos: %w", err)
	}
	return newPage(videos, total, opts), nil
}

func (s *VideoService) GetByID(ctx context.Context, id string) (*models.Video, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	return s.videoRepo.FindByID(ctx, id)
}

// Create adds a video to a course.
func (s *VideoService) Create(ctx context.Context, input CreateVideoInput) (*models.Video, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if _, err := s.courseRepo.FindByID(ctx, input.CourseID); err != nil {
		if errors.Is(err, apierrors.ErrNotFound) {
			return nil, apierrors.NewValidationError("courseId", "does not exist")
		}
		return nil, err
	}

	var order int
	if input.Order != nil {
		order = *input.Order
		if err := s.ensureOrderFree(ctx, input.CourseID, order, ""); err != nil {
			return nil, err
		}
	} else {
		next, err := s.videoRepo.NextOrder(ctx, input.CourseID)
		if err != nil {
			return nil, err
		}
		order = next
	}

	now := utcNow()
	video := &models.Video{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		URL:         strings.TrimSpace(input.URL),
		Duration:    input.Duration,
		Order:       order,
		CourseID:    input.CourseID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.videoRepo.Create(ctx, video); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("order", "is already used in this course")
		}
		return nil, fmt.Errorf("failed to create video: %w", err)
	}
	return video, nil
}

// Update applies a partial update to a video.
func (s *VideoService) Update(ctx context.Context, id string, input UpdateVideoInput) (*models.Video, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Order != nil && *input.Order != video.Order {
		if err := s.ensureOrderFree(ctx, video.CourseID, *input.Order, video.ID); err != nil {
			return nil, err
		}
		video.Order = *input.Order
	}
	if input.Title != nil {
		video.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		video.Description = input.Description
	}
	if input.URL != nil {
		video.URL = strings.TrimSpace(*input.URL)
	}
	if input.Duration != nil {
		video.Duration = *input.Duration
	}
	video.UpdatedAt = utcNow()

	if err := s.videoRepo.Update(ctx, video); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apierrors.NewValidationError("order", "is already used in this course")
		}
		return nil, fmt.Errorf("failed to update video: %w", err)
	}
	return video, nil
}

// Delete removes a video and its progress records.
func (s *VideoService) Delete(ctx context.Context, id string) error {
	if err := s.latency.wait(ctx); err != nil {
		return err
	}
	if err := s.videoRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// Playback resolves the video's media locator to a playable URL.
func (s *VideoService) Playback(ctx context.Context, id string) (*Playback, error) {
	if err := s.latency.wait(ctx); err != nil {
		return nil, err
	}

	video, err := s.videoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	media, err := s.media.Resolve(ctx, video.URL)
	if err != nil {
		return nil, apierrors.Transient("resolve video media", err)
	}
	return &Playback{VideoID: video.ID, Media: media}, nil
}

func (s *VideoService) ensureOrderFree(ctx context.Context, courseID string, order int, exceptID string) error {
	taken, err := s.videoRepo.OrderTaken(ctx, courseID, order, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apierrors.NewValidationError("order", "is already used in this course")
	}
	return nil
}
