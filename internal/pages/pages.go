package pages

import (
	"context"
	"strings"
	"time"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
	"github.com/yukikurage/learning-admin-api/internal/utils"
)

// OrganizationForm is the organization create/edit form.
type OrganizationForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OrganizationsPage lists organizations with create, edit and delete.
type OrganizationsPage struct {
	List   *ListPage[models.Organization]
	Form   *FormModal[OrganizationForm, *models.Organization]
	Delete *DeleteDialog
}

// OrganizationsView is the render model of OrganizationsPage.
type OrganizationsView struct {
	List   ListView[models.Organization] `json:"list"`
	Form   FormState[OrganizationForm]   `json:"form"`
	Delete DialogState                   `json:"delete"`
}

func NewOrganizationsPage(q *queries.Queries) *OrganizationsPage {
	return &OrganizationsPage{
		List: NewListPage[models.Organization](q.OrganizationList, constants.DefaultPageSize),
		Form: NewFormModal(
			func(ctx context.Context, f OrganizationForm) (*models.Organization, error) {
				return q.CreateOrganization(ctx, services.CreateOrganizationInput{Name: f.Name, Description: f.Description})
			},
			func(ctx context.Context, id string, f OrganizationForm) (*models.Organization, error) {
				return q.UpdateOrganization(ctx, id, services.UpdateOrganizationInput{Name: &f.Name, Description: &f.Description})
			},
		),
		Delete: NewDeleteDialog(q.DeleteOrganization),
	}
}

// Edit opens the form prefilled from org.
func (p *OrganizationsPage) Edit(org models.Organization) error {
	return p.Form.OpenEdit(org.ID, OrganizationForm{Name: org.Name, Description: org.Description})
}

func (p *OrganizationsPage) Load(ctx context.Context) OrganizationsView {
	return OrganizationsView{List: p.List.Load(ctx), Form: p.Form.State(), Delete: p.Delete.State()}
}

func (p *OrganizationsPage) Close() {
	p.List.Close()
	p.Form.Close()
	p.Delete.Close()
}

// UserForm is the user create form. A non-empty OrganizationID adds an
// initial membership with Role.
type UserForm struct {
	Email          string      `json:"email"`
	FirstName      string      `json:"firstName"`
	LastName       string      `json:"lastName"`
	OrganizationID string      `json:"organizationId"`
	Role           models.Role `json:"role"`
}

func (f UserForm) input() services.CreateUserInput {
	in := services.CreateUserInput{
		Email:     f.Email,
		FirstName: f.FirstName,
		LastName:  f.LastName,
	}
	if f.OrganizationID != "" {
		in.Memberships = []services.MembershipInput{{OrganizationID: f.OrganizationID, Role: f.Role}}
	}
	return in
}

// UsersPage lists users with a role filter, create and delete.
type UsersPage struct {
	List   *ListPage[models.User]
	Form   *FormModal[UserForm, *models.User]
	Delete *DeleteDialog
}

type UsersView struct {
	List   ListView[models.User] `json:"list"`
	Form   FormState[UserForm]   `json:"form"`
	Delete DialogState           `json:"delete"`
}

func NewUsersPage(q *queries.Queries) *UsersPage {
	return &UsersPage{
		List: NewListPage[models.User](q.UserList, constants.DefaultPageSize),
		Form: NewFormModal(
			func(ctx context.Context, f UserForm) (*models.User, error) {
				return q.CreateUser(ctx, f.input())
			},
			nil,
		),
		Delete: NewDeleteDialog(q.DeleteUser),
	}
}

// SetRole filters by membership role. An empty role shows every user.
func (p *UsersPage) SetRole(role string) {
	p.List.SetFilter("role", strings.ToUpper(role))
}

func (p *UsersPage) Load(ctx context.Context) UsersView {
	return UsersView{List: p.List.Load(ctx), Form: p.Form.State(), Delete: p.Delete.State()}
}

func (p *UsersPage) Close() {
	p.List.Close()
	p.Form.Close()
	p.Delete.Close()
}

// CourseForm is the course create form.
type CourseForm struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	OrganizationID string `json:"organizationId"`
	InstructorID   string `json:"instructorId"`
}

// CoursesPage shows courses as a grid of CoursePageSize cards.
type CoursesPage struct {
	List   *ListPage[models.Course]
	Form   *FormModal[CourseForm, *models.Course]
	Delete *DeleteDialog
}

type CoursesView struct {
	List   ListView[models.Course] `json:"list"`
	Form   FormState[CourseForm]   `json:"form"`
	Delete DialogState             `json:"delete"`
}

func NewCoursesPage(q *queries.Queries) *CoursesPage {
	return &CoursesPage{
		List: NewListPage[models.Course](q.CourseList, constants.CoursePageSize),
		Form: NewFormModal(
			func(ctx context.Context, f CourseForm) (*models.Course, error) {
				return q.CreateCourse(ctx, services.CreateCourseInput{
					Title:          f.Title,
					Description:    f.Description,
					OrganizationID: f.OrganizationID,
					InstructorID:   f.InstructorID,
				})
			},
			nil,
		),
		Delete: NewDeleteDialog(q.DeleteCourse),
	}
}

func (p *CoursesPage) Load(ctx context.Context) CoursesView {
	return CoursesView{List: p.List.Load(ctx), Form: p.Form.State(), Delete: p.Delete.State()}
}

func (p *CoursesPage) Close() {
	p.List.Close()
	p.Form.Close()
	p.Delete.Close()
}

// EnrollmentsPage lists enrollments with a status filter.
type EnrollmentsPage struct {
	List *ListPage[models.Enrollment]
}

func NewEnrollmentsPage(q *queries.Queries) *EnrollmentsPage {
	return &EnrollmentsPage{
		List: NewListPage[models.Enrollment](q.EnrollmentList, constants.DefaultPageSize),
	}
}

// SetStatus filters by enrollment status. An empty status shows all.
func (p *EnrollmentsPage) SetStatus(status string) {
	p.List.SetFilter("status", strings.ToUpper(status))
}

func (p *EnrollmentsPage) Load(ctx context.Context) ListView[models.Enrollment] {
	return p.List.Load(ctx)
}

func (p *EnrollmentsPage) Close() {
	p.List.Close()
}

// ProgressRow is one watched video of an enrollment.
type ProgressRow struct {
	VideoID        string    `json:"videoId"`
	Title          string    `json:"title"`
	Order          int       `json:"order"`
	Duration       string    `json:"duration"`
	WatchedPercent float64   `json:"watchedPercent"`
	Complete       bool      `json:"complete"`
	LastWatchedAt  time.Time `json:"lastWatchedAt"`
}

// ProgressView is the render model of ProgressPage.
type ProgressView struct {
	Enrollment Section[*models.Enrollment] `json:"enrollment"`
	Overview   Section[*services.Overview] `json:"overview"`
	Videos     Section[[]ProgressRow]      `json:"videos"`
}

// ProgressPage shows one enrollment with its per-video progress.
type ProgressPage struct {
	q            *queries.Queries
	enrollmentID string
	detail       detail[ProgressView]
}

func NewProgressPage(q *queries.Queries, enrollmentID string) *ProgressPage {
	return &ProgressPage{q: q, enrollmentID: enrollmentID}
}

func (p *ProgressPage) Load(ctx context.Context) ProgressView {
	var v ProgressView
	return p.detail.load(ctx, func() ProgressView { return v },
		func(ctx context.Context) {
			v.Enrollment = loadSection(ctx, func(ctx context.Context) (*models.Enrollment, error) {
				return p.q.Enrollment(ctx, p.enrollmentID)
			})
		},
		func(ctx context.Context) {
			v.Overview = loadSection(ctx, func(ctx context.Context) (*services.Overview, error) {
				return p.q.ProgressOverview(ctx, p.enrollmentID)
			})
		},
		func(ctx context.Context) {
			v.Videos = loadSection(ctx, func(ctx context.Context) ([]ProgressRow, error) {
				records, err := p.q.EnrollmentProgress(ctx, p.enrollmentID)
				if err != nil {
					return nil, err
				}
				return progressRows(records), nil
			})
		},
	)
}

// View returns the last loaded view, if any.
func (p *ProgressPage) View() (ProgressView, bool) {
	return p.detail.view()
}

func (p *ProgressPage) Close() {
	p.detail.close()
}

func progressRows(records []models.VideoProgress) []ProgressRow {
	rows := make([]ProgressRow, 0, len(records))
	for _, r := range records {
		row := ProgressRow{
			VideoID:        r.VideoID,
			WatchedPercent: r.WatchedPercent,
			Complete:       r.IsComplete(),
			LastWatchedAt:  r.LastWatchedAt,
		}
		if r.Video != nil {
			row.Title = r.Video.Title
			row.Order = r.Video.Order
			row.Duration = utils.FormatDuration(r.Video.Duration)
		}
		rows = append(rows, row)
	}
	return rows
}

// ActivityRow is one entry of the dashboard activity feed.
type ActivityRow struct {
	UserName       string    `json:"userName"`
	VideoTitle     string    `json:"videoTitle"`
	CourseTitle    string    `json:"courseTitle"`
	WatchedPercent float64   `json:"watchedPercent"`
	Complete       bool      `json:"complete"`
	LastWatchedAt  time.Time `json:"lastWatchedAt"`
}

// DashboardView is the render model of DashboardPage.
type DashboardView struct {
	Metrics Section[*services.Metrics] `json:"metrics"`
	Recent  Section[[]ActivityRow]     `json:"recentActivity"`
}

// DashboardPage shows platform counters and recent watch activity.
type DashboardPage struct {
	q      *queries.Queries
	limit  int
	detail detail[DashboardView]
}

func NewDashboardPage(q *queries.Queries) *DashboardPage {
	return &DashboardPage{q: q, limit: constants.RecentProgressLimit}
}

func (p *DashboardPage) Load(ctx context.Context) DashboardView {
	var v DashboardView
	return p.detail.load(ctx, func() DashboardView { return v },
		func(ctx context.Context) {
			v.Metrics = loadSection(ctx, p.q.Metrics)
		},
		func(ctx context.Context) {
			v.Recent = loadSection(ctx, func(ctx context.Context) ([]ActivityRow, error) {
				records, err := p.q.RecentProgress(ctx, p.limit)
				if err != nil {
					return nil, err
				}
				return activityRows(records), nil
			})
		},
	)
}

func (p *DashboardPage) View() (DashboardView, bool) {
	return p.detail.view()
}

func (p *DashboardPage) Close() {
	p.detail.close()
}

func activityRows(records []models.VideoProgress) []ActivityRow {
	rows := make([]ActivityRow, 0, len(records))
	for _, r := range records {
		row := ActivityRow{
			WatchedPercent: r.WatchedPercent,
			Complete:       r.IsComplete(),
			LastWatchedAt:  r.LastWatchedAt,
		}
		if r.User != nil {
			row.UserName = r.User.FullName()
		}
		if r.Video != nil {
			row.VideoTitle = r.Video.Title
			if r.Video.Course != nil {
				row.CourseTitle = r.Video.Course.Title
			}
		}
		rows = append(rows, row)
	}
	return rows
}
