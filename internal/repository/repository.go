package repository

import (
	"context"

	"github.com/yukikurage/learning-admin-api/internal/models"
)

// ListOptions holds the paging and search window shared by every list query.
// Page and Limit are expected to be normalised by the caller.
type ListOptions struct {
	Page   int
	Limit  int
	Search string
}

// OrganizationFilter holds filtering options for listing organizations
type OrganizationFilter struct {
	ListOptions
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	ListOptions
	Role           *models.Role
	OrganizationID *string
}

// CourseFilter holds filtering options for listing courses
type CourseFilter struct {
	ListOptions
	OrganizationID *string
	InstructorID   *string
}

// VideoFilter holds filtering options for listing videos
type VideoFilter struct {
	ListOptions
	CourseID *string
}

// EnrollmentFilter holds filtering options for listing enrollments
type EnrollmentFilter struct {
	ListOptions
	Status   *models.EnrollmentStatus
	UserID   *string
	CourseID *string
}

// MembershipFilter holds filtering options for listing memberships
type MembershipFilter struct {
	ListOptions
	OrganizationID *string
	UserID         *string
	Role           *models.Role
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// Create creates a new organization
	Create(ctx context.Context, org *models.Organization) error

	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id string) (*models.Organization, error)

	// List retrieves organizations with search and pagination
	List(ctx context.Context, filter OrganizationFilter) ([]models.Organization, int64, error)

	// Update updates an organization
	Update(ctx context.Context, org *models.Organization) error

	// Delete deletes an organization with its memberships and courses
	Delete(ctx context.Context, id string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateWithMemberships creates a user and their memberships within a
	// single transaction.
	CreateWithMemberships(ctx context.Context, user *models.User, memberships []models.Membership) error

	// FindByID finds a user by ID with memberships loaded
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users with filtering and pagination
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)

	// Update updates a user
	Update(ctx context.Context, user *models.User) error

	// Delete deletes a user with their memberships, enrollments and progress
	Delete(ctx context.Context, id string) error

	// Count returns the number of users
	Count(ctx context.Context) (int64, error)
}

// MembershipRepository defines the interface for membership data access
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	FindByID(ctx context.Context, id string) (*models.Membership, error)
	List(ctx context.Context, filter MembershipFilter) ([]models.Membership, int64, error)
	Delete(ctx context.Context, id string) error
}

// CourseRepository defines the interface for course data access
type CourseRepository interface {
	// Create creates a new course
	Create(ctx context.Context, course *models.Course) error

	// FindByID finds a course by ID with organization, instructor, videos and enrollments
	FindByID(ctx context.Context, id string) (*models.Course, error)

	// List retrieves courses with filtering and pagination
	List(ctx context.Context, filter CourseFilter) ([]models.Course, int64, error)

	// Update updates a course
	Update(ctx context.Context, course *models.Course) error

	// Delete deletes a course with its videos, enrollments and progress
	Delete(ctx context.Context, id string) error

	// Count returns the number of courses
	Count(ctx context.Context) (int64, error)

	// CountByInstructor returns the number of courses taught by userID
	CountByInstructor(ctx context.Context, userID string) (int64, error)
}

// VideoRepository defines the interface for video data access
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	FindByID(ctx context.Context, id string) (*models.Video, error)
	List(ctx context.Context, filter VideoFilter) ([]models.Video, int64, error)
	Update(ctx context.Context, video *models.Video) error

	// Delete deletes a video and the progress recorded against it
	Delete(ctx context.Context, id string) error

	// CountByCourse returns the number of videos in a course
	CountByCourse(ctx context.Context, courseID string) (int64, error)

	// NextOrder returns the order a video appended to the course would take
	NextOrder(ctx context.Context, courseID string) (int, error)

	// OrderTaken reports whether another video of the course already uses order
	OrderTaken(ctx context.Context, courseID string, order int, exceptID string) (bool, error)
}

// EnrollmentRepository defines the interface for enrollment data access
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)

	// FindByUserAndCourse finds the enrollment of a user in a course
	FindByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error)

	List(ctx context.Context, filter EnrollmentFilter) ([]models.Enrollment, int64, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error

	// Delete deletes an enrollment and its progress
	Delete(ctx context.Context, id string) error

	// Count returns the number of enrollments, optionally restricted to one status
	Count(ctx context.Context, status *models.EnrollmentStatus) (int64, error)
}

// ProgressRepository defines the interface for video progress data access
type ProgressRepository interface {
	// Upsert stores the progress for (enrollment, video), replacing any existing record
	Upsert(ctx context.Context, progress *models.VideoProgress) error

	// ListByEnrollment returns the enrollment's progress in video order
	ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.VideoProgress, error)

	// CountCompleted counts the enrollment's videos watched past the completion threshold
	CountCompleted(ctx context.Context, enrollmentID string) (int64, error)

	// Recent returns the most recently watched records with user, video and course
	Recent(ctx context.Context, limit int) ([]models.VideoProgress, error)
}
