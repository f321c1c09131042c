package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/learning-admin-api/internal/repository"
	"github.com/yukikurage/learning-admin-api/internal/storage"
)

// Latency is an artificial delay applied before every data-service call.
// Zero disables it.
type Latency time.Duration

// wait blocks for the configured latency or until ctx is done.
func (l Latency) wait(ctx context.Context) error {
	if l <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(time.Duration(l))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Options tune the data service.
type Options struct {
	Latency time.Duration
	Media   storage.MediaResolver
}

// Registry groups the data services over one database.
type Registry struct {
	Auth          *AuthService
	Organizations *OrganizationService
	Users         *UserService
	Courses       *CourseService
	Videos        *VideoService
	Enrollments   *EnrollmentService
	Progress      *ProgressService
	Dashboard     *DashboardService
}

// New wires repositories and services over db.
func New(db *gorm.DB, opts Options) *Registry {
	latency := Latency(opts.Latency)
	media := opts.Media
	if media == nil {
		media = storage.Passthrough{}
	}

	orgRepo := repository.NewOrganizationRepository(db)
	userRepo := repository.NewUserRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	return &Registry{
		Auth:          NewAuthService(userRepo, latency),
		Organizations: NewOrganizationService(orgRepo, latency),
		Users:         NewUserService(userRepo, membershipRepo, orgRepo, courseRepo, latency),
		Courses:       NewCourseService(courseRepo, orgRepo, userRepo, latency),
		Videos:        NewVideoService(videoRepo, courseRepo, media, latency),
		Enrollments:   NewEnrollmentService(enrollmentRepo, userRepo, courseRepo, latency),
		Progress:      NewProgressService(progressRepo, enrollmentRepo, videoRepo, latency),
		Dashboard:     NewDashboardService(userRepo, courseRepo, enrollmentRepo, progressRepo, latency),
	}
}
