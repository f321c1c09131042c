package queries

import (
	"context"

	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/query"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

// Operation names. Each is the first element of the cache keys it produces.
const (
	OpOrganizationsList  = "organizations.list"
	OpOrganizationsGet   = "organizations.get"
	OpUsersList          = "users.list"
	OpUsersGet           = "users.get"
	OpUserMemberships    = "users.memberships"
	OpCoursesList        = "courses.list"
	OpCoursesGet         = "courses.get"
	OpVideosList         = "videos.list"
	OpVideosGet          = "videos.get"
	OpVideoPlayback      = "videos.playback"
	OpEnrollmentsList    = "enrollments.list"
	OpEnrollmentsGet     = "enrollments.get"
	OpEnrollmentProgress = "progress.list"
	OpProgressOverview   = "progress.overview"
	OpDashboardMetrics   = "dashboard.metrics"
	OpRecentProgress     = "dashboard.recentProgress"
)

// Dependency tags per read. A read lists every entity family whose writes
// can change what it returns, including embedded relations.
var (
	organizationTags = []query.Tag{query.TagOrganizations}
	userTags         = []query.Tag{query.TagUsers, query.TagMemberships, query.TagOrganizations}
	membershipTags   = []query.Tag{query.TagMemberships, query.TagUsers, query.TagOrganizations}
	courseTags       = []query.Tag{query.TagCourses, query.TagOrganizations, query.TagUsers, query.TagVideos, query.TagEnrollments}
	videoTags        = []query.Tag{query.TagVideos, query.TagCourses}
	enrollmentTags   = []query.Tag{query.TagEnrollments, query.TagUsers, query.TagCourses}
	progressTags     = []query.Tag{query.TagProgress, query.TagVideos, query.TagEnrollments}
	metricsTags      = []query.Tag{query.TagDashboard, query.TagUsers, query.TagCourses, query.TagEnrollments}
	recentTags       = []query.Tag{query.TagDashboard, query.TagProgress, query.TagUsers, query.TagVideos, query.TagCourses}
)

// Queries exposes the data service through the query client: reads are
// cached under tagged keys, writes run as mutations.
type Queries struct {
	client *query.Client
	svc    *services.Registry

	OrganizationList ListQuery[models.Organization]
	UserList         ListQuery[models.User]
	CourseList       ListQuery[models.Course]
	VideoList        ListQuery[models.Video]
	EnrollmentList   ListQuery[models.Enrollment]
}

// New creates Queries over svc, caching in client.
func New(client *query.Client, svc *services.Registry) *Queries {
	return &Queries{
		client:           client,
		svc:              svc,
		OrganizationList: newListQuery(client, OpOrganizationsList, organizationTags, svc.Organizations.List),
		UserList:         newListQuery(client, OpUsersList, userTags, svc.Users.List),
		CourseList:       newListQuery(client, OpCoursesList, courseTags, svc.Courses.List),
		VideoList:        newListQuery(client, OpVideosList, videoTags, svc.Videos.List),
		EnrollmentList:   newListQuery(client, OpEnrollmentsList, enrollmentTags, svc.Enrollments.List),
	}
}

// Client returns the underlying cache.
func (q *Queries) Client() *query.Client {
	return q.client
}

// ListQuery is a cached, paginated list read.
type ListQuery[T any] struct {
	client *query.Client
	op     string
	tags   []query.Tag
	fetch  func(ctx context.Context, params services.ListParams) (services.Page[T], error)
}

func newListQuery[T any](
	client *query.Client,
	op string,
	tags []query.Tag,
	fetch func(ctx context.Context, params services.ListParams) (services.Page[T], error),
) ListQuery[T] {
	return ListQuery[T]{client: client, op: op, tags: tags, fetch: fetch}
}

// Key returns the cache key of params.
func (l ListQuery[T]) Key(params services.ListParams) query.Key {
	return query.NewKey(l.op, params)
}

// Fetch reads one page through the cache.
func (l ListQuery[T]) Fetch(ctx context.Context, params services.ListParams) (services.Page[T], error) {
	return query.Fetch(ctx, l.client, query.Query[services.Page[T]]{
		Key:  l.Key(params),
		Tags: l.tags,
		Fetch: func(ctx context.Context) (services.Page[T], error) {
			return l.fetch(ctx, params)
		},
	})
}

// State returns the cached state of params without fetching.
func (l ListQuery[T]) State(params services.ListParams) query.State {
	return l.client.State(l.Key(params))
}

func read[T any](ctx context.Context, c *query.Client, op string, params interface{}, tags []query.Tag, fetch func(ctx context.Context) (T, error)) (T, error) {
	return query.Fetch(ctx, c, query.Query[T]{
		Key:   query.NewKey(op, params),
		Tags:  tags,
		Fetch: fetch,
	})
}

// Organization returns one organization.
func (q *Queries) Organization(ctx context.Context, id string) (*models.Organization, error) {
	return read(ctx, q.client, OpOrganizationsGet, id, organizationTags, func(ctx context.Context) (*models.Organization, error) {
		return q.svc.Organizations.GetByID(ctx, id)
	})
}

// User returns one user with memberships.
func (q *Queries) User(ctx context.Context, id string) (*models.User, error) {
	return read(ctx, q.client, OpUsersGet, id, userTags, func(ctx context.Context) (*models.User, error) {
		return q.svc.Users.GetByID(ctx, id)
	})
}

// UserMemberships returns the memberships of a user.
func (q *Queries) UserMemberships(ctx context.Context, userID string) ([]models.Membership, error) {
	return read(ctx, q.client, OpUserMemberships, userID, membershipTags, func(ctx context.Context) ([]models.Membership, error) {
		return q.svc.Users.ListMemberships(ctx, userID)
	})
}

// Course returns one course with its relations.
func (q *Queries) Course(ctx context.Context, id string) (*models.Course, error) {
	return read(ctx, q.client, OpCoursesGet, id, courseTags, func(ctx context.Context) (*models.Course, error) {
		return q.svc.Courses.GetByID(ctx, id)
	})
}

// Video returns one video.
func (q *Queries) Video(ctx context.Context, id string) (*models.Video, error) {
	return read(ctx, q.client, OpVideosGet, id, videoTags, func(ctx context.Context) (*models.Video, error) {
		return q.svc.Videos.GetByID(ctx, id)
	})
}

// Playback returns the playable location of a video. Presigned URLs expire,
// so playback is never served from cache.
func (q *Queries) Playback(ctx context.Context, id string) (*services.Playback, error) {
	return q.svc.Videos.Playback(ctx, id)
}

// Enrollment returns one enrollment with user and course.
func (q *Queries) Enrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	return read(ctx, q.client, OpEnrollmentsGet, id, enrollmentTags, func(ctx context.Context) (*models.Enrollment, error) {
		return q.svc.Enrollments.GetByID(ctx, id)
	})
}

// EnrollmentProgress returns the progress records of an enrollment in video order.
func (q *Queries) EnrollmentProgress(ctx context.Context, enrollmentID string) ([]models.VideoProgress, error) {
	return read(ctx, q.client, OpEnrollmentProgress, enrollmentID, progressTags, func(ctx context.Context) ([]models.VideoProgress, error) {
		return q.svc.Progress.ListByEnrollment(ctx, enrollmentID)
	})
}

// ProgressOverview returns the completion summary of an enrollment.
func (q *Queries) ProgressOverview(ctx context.Context, enrollmentID string) (*services.Overview, error) {
	return read(ctx, q.client, OpProgressOverview, enrollmentID, progressTags, func(ctx context.Context) (*services.Overview, error) {
		return q.svc.Progress.Overview(ctx, enrollmentID)
	})
}

// Metrics returns the dashboard counters.
func (q *Queries) Metrics(ctx context.Context) (*services.Metrics, error) {
	return read(ctx, q.client, OpDashboardMetrics, nil, metricsTags, q.svc.Dashboard.Metrics)
}

// RecentProgress returns the latest watch activity.
func (q *Queries) RecentProgress(ctx context.Context, limit int) ([]models.VideoProgress, error) {
	return read(ctx, q.client, OpRecentProgress, map[string]int{"limit": limit}, recentTags, func(ctx context.Context) ([]models.VideoProgress, error) {
		return q.svc.Dashboard.RecentProgress(ctx, limit)
	})
}
