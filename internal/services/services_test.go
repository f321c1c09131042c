package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/learning-admin-api/internal/database"
	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
)

type ServicesTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context
	svc *Registry
}

func (s *ServicesTestSuite) SetupTest() {
	db, err := database.OpenSQLite(database.InMemoryDSN)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.ctx = context.Background()
	s.Require().NoError(database.Seed(s.ctx, db))

	s.db = db
	s.svc = New(db, Options{})
}

func (s *ServicesTestSuite) TearDownTest() {
	_ = database.Close(s.db)
}

func (s *ServicesTestSuite) find(dest interface{}, query string, args ...interface{}) {
	s.Require().NoError(s.db.Where(query, args...).First(dest).Error)
}

func (s *ServicesTestSuite) requireField(err error, field string) {
	s.Require().Error(err)
	s.Require().Equal(apierrors.KindValidation, apierrors.KindOf(err), err.Error())
	var verr *apierrors.ValidationError
	s.Require().True(errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	s.Contains(fields, field)
}

func (s *ServicesTestSuite) TestOrganizations_CreateThenList() {
	org, err := s.svc.Organizations.Create(s.ctx, CreateOrganizationInput{Name: "Acme", Description: "x"})
	s.Require().NoError(err)
	s.NotEmpty(org.ID)
	s.False(org.CreatedAt.IsZero())

	page, err := s.svc.Organizations.List(s.ctx, ListParams{Page: 1, Limit: 10, Search: "acme"})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal(org.ID, page.Items[0].ID)
	s.Equal(1, page.TotalPages)
}

func (s *ServicesTestSuite) TestOrganizations_CreateRejectsBlankName() {
	_, err := s.svc.Organizations.Create(s.ctx, CreateOrganizationInput{Name: "   "})
	s.requireField(err, "name")
}

func (s *ServicesTestSuite) TestOrganizations_UpdateIsPartial() {
	var org models.Organization
	s.find(&org, "name = ?", "Tech Corp")

	name := "Tech Corporation"
	updated, err := s.svc.Organizations.Update(s.ctx, org.ID, UpdateOrganizationInput{Name: &name})
	s.Require().NoError(err)
	s.Equal("Tech Corporation", updated.Name)
	s.Equal("Leading technology company", updated.Description)
	s.True(updated.UpdatedAt.After(org.UpdatedAt))

	_, err = s.svc.Organizations.Update(s.ctx, "missing", UpdateOrganizationInput{Name: &name})
	s.Equal(apierrors.KindNotFound, apierrors.KindOf(err))
}

func (s *ServicesTestSuite) TestList_NormalisesPaging() {
	page, err := s.svc.Users.List(s.ctx, ListParams{Page: 0, Limit: 0})
	s.Require().NoError(err)
	s.Equal(1, page.Page)
	s.Equal(10, page.Limit)
	s.Equal(int64(4), page.Total)
	s.Equal(1, page.TotalPages)

	page, err = s.svc.Users.List(s.ctx, ListParams{Page: 3, Limit: 1000})
	s.Require().NoError(err)
	s.Equal(100, page.Limit)
	s.Empty(page.Items)
	s.NotNil(page.Items)

	courses, err := s.svc.Courses.List(s.ctx, ListParams{})
	s.Require().NoError(err)
	s.Equal(12, courses.Limit)
}

func (s *ServicesTestSuite) TestList_HugePageIsEmpty() {
	page, err := s.svc.Users.List(s.ctx, ListParams{Page: math.MaxInt64/100 + 2, Limit: 100})
	s.Require().NoError(err)
	s.Empty(page.Items)
	s.Equal(int64(4), page.Total)
	s.Equal(1, page.TotalPages)
	s.Greater(page.Page, page.TotalPages)
}

func (s *ServicesTestSuite) TestList_TotalPagesRoundsUp() {
	page, err := s.svc.Users.List(s.ctx, ListParams{Page: 1, Limit: 3})
	s.Require().NoError(err)
	s.Equal(2, page.TotalPages)
	s.Len(page.Items, 3)
}

func (s *ServicesTestSuite) TestUsers_RoleFilter() {
	page, err := s.svc.Users.List(s.ctx, ListParams{Filters: map[string]string{"role": "INSTRUCTOR"}})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Bob", page.Items[0].FirstName)

	_, err = s.svc.Users.List(s.ctx, ListParams{Filters: map[string]string{"role": "OWNER"}})
	s.requireField(err, "role")

	_, err = s.svc.Users.List(s.ctx, ListParams{Filters: map[string]string{"team": "x"}})
	s.requireField(err, "team")
}

func (s *ServicesTestSuite) TestUsers_CreateWithMembershipAndPassword() {
	var eduTech models.Organization
	s.find(&eduTech, "name = ?", "EduTech Solutions")
	password := "correct-horse"

	user, err := s.svc.Users.Create(s.ctx, CreateUserInput{
		Email:       "  Dana@Example.com ",
		FirstName:   "Dana",
		LastName:    "Lee",
		Password:    &password,
		Memberships: []MembershipInput{{OrganizationID: eduTech.ID, Role: models.RoleLearner}},
	})
	s.Require().NoError(err)
	s.Equal("dana@example.com", user.Email)
	s.Require().Len(user.Memberships, 1)
	s.Equal("EduTech Solutions", user.Memberships[0].Organization.Name)

	loggedIn, err := s.svc.Auth.Login(s.ctx, LoginInput{Email: "dana@example.com", Password: password})
	s.Require().NoError(err)
	s.Equal(user.ID, loggedIn.ID)

	_, err = s.svc.Users.Create(s.ctx, CreateUserInput{Email: "dana@example.com", FirstName: "D", LastName: "L"})
	s.requireField(err, "email")
}

func (s *ServicesTestSuite) TestUsers_CreateReportsEveryInvalidField() {
	_, err := s.svc.Users.Create(s.ctx, CreateUserInput{
		Email:       "not-an-email",
		Memberships: []MembershipInput{{OrganizationID: "org", Role: "OWNER"}},
	})
	s.requireField(err, "email")
	s.requireField(err, "firstName")
	s.requireField(err, "lastName")
	s.requireField(err, "role")
}

func (s *ServicesTestSuite) TestUsers_DeleteThenGetIsNotFound() {
	var carol models.User
	s.find(&carol, "email = ?", "carol.davis@example.com")

	s.Require().NoError(s.svc.Users.Delete(s.ctx, carol.ID))
	_, err := s.svc.Users.GetByID(s.ctx, carol.ID)
	s.Equal(apierrors.KindNotFound, apierrors.KindOf(err))

	s.NoError(s.svc.Users.Delete(s.ctx, carol.ID))
}

func (s *ServicesTestSuite) TestUsers_DeleteInstructorIsRestricted() {
	var bob models.User
	s.find(&bob, "email = ?", "bob.smith@example.com")

	err := s.svc.Users.Delete(s.ctx, bob.ID)
	s.requireField(err, "instructorId")

	_, err = s.svc.Users.GetByID(s.ctx, bob.ID)
	s.NoError(err)
}

func (s *ServicesTestSuite) TestUsers_Memberships() {
	var carol models.User
	var techCorp models.Organization
	s.find(&carol, "email = ?", "carol.davis@example.com")
	s.find(&techCorp, "name = ?", "Tech Corp")

	membership, err := s.svc.Users.AddMembership(s.ctx, carol.ID, MembershipInput{OrganizationID: techCorp.ID, Role: models.RoleInstructor})
	s.Require().NoError(err)
	s.Equal("Tech Corp", membership.Organization.Name)

	_, err = s.svc.Users.AddMembership(s.ctx, carol.ID, MembershipInput{OrganizationID: techCorp.ID, Role: models.RoleLearner})
	s.requireField(err, "organizationId")

	memberships, err := s.svc.Users.ListMemberships(s.ctx, carol.ID)
	s.Require().NoError(err)
	s.Len(memberships, 2)

	s.Require().NoError(s.svc.Users.RemoveMembership(s.ctx, carol.ID, membership.ID))
	s.Require().NoError(s.svc.Users.RemoveMembership(s.ctx, carol.ID, membership.ID))

	memberships, err = s.svc.Users.ListMemberships(s.ctx, carol.ID)
	s.Require().NoError(err)
	s.Len(memberships, 1)
}

func (s *ServicesTestSuite) TestCourses_CreateValidatesReferences() {
	var techCorp models.Organization
	var alice models.User
	s.find(&techCorp, "name = ?", "Tech Corp")
	s.find(&alice, "email = ?", "alice.johnson@example.com")

	_, err := s.svc.Courses.Create(s.ctx, CreateCourseInput{Title: "Go", OrganizationID: techCorp.ID, InstructorID: "nobody"})
	s.requireField(err, "instructorId")

	course, err := s.svc.Courses.Create(s.ctx, CreateCourseInput{Title: "Go", OrganizationID: techCorp.ID, InstructorID: alice.ID})
	s.Require().NoError(err)
	s.Equal("Alice", course.Instructor.FirstName)
	s.Empty(course.Videos)
}

func (s *ServicesTestSuite) TestVideos_AppendAndOrderConflicts() {
	var basics models.Course
	s.find(&basics, "title = ?", "React Fundamentals")

	video, err := s.svc.Videos.Create(s.ctx, CreateVideoInput{Title: "Hooks", URL: "https://media.example.com/hooks.mp4", Duration: 900, CourseID: basics.ID})
	s.Require().NoError(err)
	s.Equal(4, video.Order)

	taken := 2
	_, err = s.svc.Videos.Create(s.ctx, CreateVideoInput{Title: "Dup", URL: "https://media.example.com/dup.mp4", Order: &taken, CourseID: basics.ID})
	s.requireField(err, "order")

	_, err = s.svc.Videos.Update(s.ctx, video.ID, UpdateVideoInput{Order: &taken})
	s.requireField(err, "order")

	playback, err := s.svc.Videos.Playback(s.ctx, video.ID)
	s.Require().NoError(err)
	s.Equal("https://media.example.com/hooks.mp4", playback.URL)
}

func (s *ServicesTestSuite) TestEnrollments_EnrollAndComplete() {
	var carol models.User
	var advanced models.Course
	s.find(&carol, "email = ?", "carol.davis@example.com")
	s.find(&advanced, "title = ?", "Advanced React")

	enrollment, err := s.svc.Enrollments.Enroll(s.ctx, EnrollInput{UserID: carol.ID, CourseID: advanced.ID})
	s.Require().NoError(err)
	s.Equal(models.EnrollmentStatusActive, enrollment.Status)
	s.False(enrollment.EnrolledAt.IsZero())
	s.Nil(enrollment.CompletedAt)

	_, err = s.svc.Enrollments.Enroll(s.ctx, EnrollInput{UserID: carol.ID, CourseID: advanced.ID})
	s.requireField(err, "courseId")

	completed := models.EnrollmentStatusCompleted
	enrollment, err = s.svc.Enrollments.Update(s.ctx, enrollment.ID, UpdateEnrollmentInput{Status: &completed})
	s.Require().NoError(err)
	s.NotNil(enrollment.CompletedAt)

	bogus := models.EnrollmentStatus("PAUSED")
	_, err = s.svc.Enrollments.Update(s.ctx, enrollment.ID, UpdateEnrollmentInput{Status: &bogus})
	s.requireField(err, "status")
}

func (s *ServicesTestSuite) TestEnrollments_SearchAndStatusFilter() {
	page, err := s.svc.Enrollments.List(s.ctx, ListParams{Search: "ALICE", Filters: map[string]string{"status": "active"}})
	s.Require().NoError(err)
	s.Require().Len(page.Items, 1)
	s.Equal("Alice", page.Items[0].User.FirstName)
}

func (s *ServicesTestSuite) TestProgress_RecordClampsAndOverview() {
	var alice models.User
	var basics models.Course
	s.find(&alice, "email = ?", "alice.johnson@example.com")
	s.find(&basics, "title = ?", "React Fundamentals")
	var enrollment models.Enrollment
	s.find(&enrollment, "user_id = ? AND course_id = ?", alice.ID, basics.ID)
	var third models.Video
	s.find(&third, "course_id = ? AND position = ?", basics.ID, 3)

	overview, err := s.svc.Progress.Overview(s.ctx, enrollment.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), overview.CompletedVideos)
	s.Equal(int64(3), overview.TotalVideos)
	s.Equal(float64(33), overview.OverallPercent)

	percent := 140.0
	record, err := s.svc.Progress.Record(s.ctx, enrollment.ID, third.ID, RecordProgressInput{WatchedPercent: &percent})
	s.Require().NoError(err)
	s.Equal(100.0, record.WatchedPercent)
	s.True(record.IsComplete())

	overview, err = s.svc.Progress.Overview(s.ctx, enrollment.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), overview.CompletedVideos)
	s.Equal(float64(67), overview.OverallPercent)

	list, err := s.svc.Progress.ListByEnrollment(s.ctx, enrollment.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal(third.ID, list[2].VideoID)
}

func (s *ServicesTestSuite) TestProgress_RejectsVideoOfAnotherCourse() {
	var alice models.User
	var basics, advanced models.Course
	s.find(&alice, "email = ?", "alice.johnson@example.com")
	s.find(&basics, "title = ?", "React Fundamentals")
	s.find(&advanced, "title = ?", "Advanced React")
	var enrollment models.Enrollment
	s.find(&enrollment, "user_id = ? AND course_id = ?", alice.ID, basics.ID)
	var other models.Video
	s.find(&other, "course_id = ?", advanced.ID)

	percent := 50.0
	_, err := s.svc.Progress.Record(s.ctx, enrollment.ID, other.ID, RecordProgressInput{WatchedPercent: &percent})
	s.requireField(err, "videoId")

	_, err = s.svc.Progress.Record(s.ctx, "missing", other.ID, RecordProgressInput{WatchedPercent: &percent})
	s.Equal(apierrors.KindNotFound, apierrors.KindOf(err))
}

func (s *ServicesTestSuite) TestDashboard() {
	metrics, err := s.svc.Dashboard.Metrics(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(4), metrics.TotalUsers)
	s.Equal(int64(2), metrics.TotalCourses)
	s.Equal(int64(3), metrics.TotalEnrollments)
	s.Equal(int64(2), metrics.ActiveEnrollments)
	s.Equal(float64(33), metrics.CompletionRate)

	recent, err := s.svc.Dashboard.RecentProgress(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(recent, 5)
	s.Equal("State Management", recent[0].Video.Title)
}

func (s *ServicesTestSuite) TestAuth_LoginFailuresAreUnauthorized() {
	_, err := s.svc.Auth.Login(s.ctx, LoginInput{Email: database.DemoAdminEmail, Password: "wrong-password"})
	s.True(errors.Is(err, apierrors.ErrUnauthorized))

	_, err = s.svc.Auth.Login(s.ctx, LoginInput{Email: "alice.johnson@example.com", Password: "anything"})
	s.True(errors.Is(err, ErrInvalidCredentials))

	user, err := s.svc.Auth.Login(s.ctx, LoginInput{Email: "ADMIN@example.com", Password: database.DemoAdminPassword})
	s.Require().NoError(err)
	s.Equal("John", user.FirstName)
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

func TestLatency_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := Latency(time.Hour).wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	require.NoError(t, Latency(time.Millisecond).wait(context.Background()))
	require.NoError(t, Latency(0).wait(context.Background()))
}
