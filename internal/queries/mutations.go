package queries

import (
	"context"

	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/query"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

// Tags invalidated by each family of writes. Deletes follow the cascade
// policy, so they also reach the dependent families.
var (
	organizationWrite  = []query.Tag{query.TagOrganizations}
	organizationDelete = []query.Tag{
		query.TagOrganizations, query.TagMemberships, query.TagUsers, query.TagCourses,
		query.TagVideos, query.TagEnrollments, query.TagProgress, query.TagDashboard,
	}
	userWrite        = []query.Tag{query.TagUsers, query.TagMemberships, query.TagDashboard}
	userDelete       = []query.Tag{query.TagUsers, query.TagMemberships, query.TagEnrollments, query.TagProgress, query.TagDashboard}
	membershipWrite  = []query.Tag{query.TagMemberships, query.TagUsers}
	courseWrite      = []query.Tag{query.TagCourses, query.TagDashboard}
	courseDelete     = []query.Tag{query.TagCourses, query.TagVideos, query.TagEnrollments, query.TagProgress, query.TagDashboard}
	videoWrite       = []query.Tag{query.TagVideos, query.TagCourses, query.TagProgress}
	videoDelete      = []query.Tag{query.TagVideos, query.TagCourses, query.TagProgress, query.TagDashboard}
	enrollmentWrite  = []query.Tag{query.TagEnrollments, query.TagCourses, query.TagDashboard}
	enrollmentDelete = []query.Tag{query.TagEnrollments, query.TagCourses, query.TagProgress, query.TagDashboard}
	progressWrite    = []query.Tag{query.TagProgress, query.TagDashboard}
)

func deleteMutation(name string, tags []query.Tag, del func(ctx context.Context, id string) error) query.Mutation[string, struct{}] {
	return query.Mutation[string, struct{}]{
		Name: name,
		Do: func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, del(ctx, id)
		},
		Invalidates: tags,
	}
}

func (q *Queries) remove(ctx context.Context, m query.Mutation[string, struct{}], id string) error {
	_, err := query.Mutate(ctx, q.client, m, id)
	return err
}

// CreateOrganization creates an organization.
func (q *Queries) CreateOrganization(ctx context.Context, input services.CreateOrganizationInput) (*models.Organization, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.CreateOrganizationInput, *models.Organization]{
		Name:        "organizations.create",
		Do:          q.svc.Organizations.Create,
		Invalidates: organizationWrite,
	}, input)
}

// UpdateOrganization updates an organization.
func (q *Queries) UpdateOrganization(ctx context.Context, id string, input services.UpdateOrganizationInput) (*models.Organization, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.UpdateOrganizationInput, *models.Organization]{
		Name: "organizations.update",
		Do: func(ctx context.Context, in services.UpdateOrganizationInput) (*models.Organization, error) {
			return q.svc.Organizations.Update(ctx, id, in)
		},
		Invalidates: organizationWrite,
	}, input)
}

// DeleteOrganization deletes an organization and everything under it.
func (q *Queries) DeleteOrganization(ctx context.Context, id string) error {
	return q.remove(ctx, deleteMutation("organizations.delete", organizationDelete, q.svc.Organizations.Delete), id)
}

// CreateUser creates a user.
func (q *Queries) CreateUser(ctx context.Context, input services.CreateUserInput) (*models.User, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.CreateUserInput, *models.User]{
		Name:        "users.create",
		Do:          q.svc.Users.Create,
		Invalidates: userWrite,
	}, input)
}

// UpdateUser updates a user.
func (q *Queries) UpdateUser(ctx context.Context, id string, input services.UpdateUserInput) (*models.User, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.UpdateUserInput, *models.User]{
		Name: "users.update",
		Do: func(ctx context.Context, in services.UpdateUserInput) (*models.User, error) {
			return q.svc.Users.Update(ctx, id, in)
		},
		Invalidates: userWrite,
	}, input)
}

// DeleteUser deletes a user with their memberships, enrollments and progress.
func (q *Queries) DeleteUser(ctx context.Context, id string) error {
	return q.remove(ctx, deleteMutation("users.delete", userDelete, q.svc.Users.Delete), id)
}

// AddMembership grants a user a role in an organization.
func (q *Queries) AddMembership(ctx context.Context, userID string, input services.MembershipInput) (*models.Membership, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.MembershipInput, *models.Membership]{
		Name: "users.memberships.add",
		Do: func(ctx context.Context, in services.MembershipInput) (*models.Membership, error) {
			return q.svc.Users.AddMembership(ctx, userID, in)
		},
		Invalidates: membershipWrite,
	}, input)
}

// RemoveMembership removes one membership of a user.
func (q *Queries) RemoveMembership(ctx context.Context, userID, membershipID string) error {
	return q.remove(ctx, deleteMutation("users.memberships.remove", membershipWrite, func(ctx context.Context, id string) error {
		return q.svc.Users.RemoveMembership(ctx, userID, id)
	}), membershipID)
}

// CreateCourse creates a course.
func (q *Queries) CreateCourse(ctx context.Context, input services.CreateCourseInput) (*models.Course, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.CreateCourseInput, *models.Course]{
		Name:        "courses.create",
		Do:          q.svc.Courses.Create,
		Invalidates: courseWrite,
	}, input)
}

// UpdateCourse updates a course.
func (q *Queries) UpdateCourse(ctx context.Context, id string, input services.UpdateCourseInput) (*models.Course, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.UpdateCourseInput, *models.Course]{
		Name: "courses.update",
		Do: func(ctx context.Context, in services.UpdateCourseInput) (*models.Course, error) {
			return q.svc.Courses.Update(ctx, id, in)
		},
		Invalidates: courseWrite,
	}, input)
}

// DeleteCourse deletes a course with its videos, enrollments and progress.
func (q *Queries) DeleteCourse(ctx context.Context, id string) error {
	return q.remove(ctx, deleteMutation("courses.delete", courseDelete, q.svc.Courses.Delete), id)
}

// CreateVideo adds a video to a course.
func (q *Queries) CreateVideo(ctx context.Context, input services.CreateVideoInput) (*models.Video, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.CreateVideoInput, *models.Video]{
		Name:        "videos.create",
		Do:          q.svc.Videos.Create,
		Invalidates: videoWrite,
	}, input)
}

// UpdateVideo updates a video.
func (q *Queries) UpdateVideo(ctx context.Context, id string, input services.UpdateVideoInput) (*models.Video, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.UpdateVideoInput, *models.Video]{
		Name: "videos.update",
		Do: func(ctx context.Context, in services.UpdateVideoInput) (*models.Video, error) {
			return q.svc.Videos.Update(ctx, id, in)
		},
		Invalidates: videoWrite,
	}, input)
}

// DeleteVideo deletes a video and its progress records.
func (q *Queries) DeleteVideo(ctx context.Context, id string) error {
	return q.remove(ctx, deleteMutation("videos.delete", videoDelete, q.svc.Videos.Delete), id)
}

// Enroll enrolls a user in a course.
func (q *Queries) Enroll(ctx context.Context, input services.EnrollInput) (*models.Enrollment, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.EnrollInput, *models.Enrollment]{
		Name:        "enrollments.create",
		Do:          q.svc.Enrollments.Enroll,
		Invalidates: enrollmentWrite,
	}, input)
}

// UpdateEnrollment changes the status of an enrollment.
func (q *Queries) UpdateEnrollment(ctx context.Context, id string, input services.UpdateEnrollmentInput) (*models.Enrollment, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.UpdateEnrollmentInput, *models.Enrollment]{
		Name: "enrollments.update",
		Do: func(ctx context.Context, in services.UpdateEnrollmentInput) (*models.Enrollment, error) {
			return q.svc.Enrollments.Update(ctx, id, in)
		},
		Invalidates: enrollmentWrite,
	}, input)
}

// DeleteEnrollment deletes an enrollment and its progress.
func (q *Queries) DeleteEnrollment(ctx context.Context, id string) error {
	return q.remove(ctx, deleteMutation("enrollments.delete", enrollmentDelete, q.svc.Enrollments.Delete), id)
}

// RecordProgress stores the watched percent of a video within an enrollment.
func (q *Queries) RecordProgress(ctx context.Context, enrollmentID, videoID string, input services.RecordProgressInput) (*models.VideoProgress, error) {
	return query.Mutate(ctx, q.client, query.Mutation[services.RecordProgressInput, *models.VideoProgress]{
		Name: "progress.record",
		Do: func(ctx context.Context, in services.RecordProgressInput) (*models.VideoProgress, error) {
			return q.svc.Progress.Record(ctx, enrollmentID, videoID, in)
		},
		Invalidates: progressWrite,
	}, input)
}
