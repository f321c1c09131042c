package pages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/learning-admin-api/internal/database"
	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/query"
	"github.com/yukikurage/learning-admin-api/internal/services"
	"github.com/yukikurage/learning-admin-api/internal/utils"
)

// numberSource lists the integers 1..total.
type numberSource struct {
	client *query.Client
	total  int
	err    error
}

func newNumberSource(total int) *numberSource {
	return &numberSource{
		client: query.NewClient(query.Options{Retry: &query.RetryPolicy{}}),
		total:  total,
	}
}

func (s *numberSource) Key(params services.ListParams) query.Key {
	return query.NewKey("numbers.list", params)
}

func (s *numberSource) Fetch(ctx context.Context, params services.ListParams) (services.Page[int], error) {
	return query.Fetch(ctx, s.client, query.Query[services.Page[int]]{
		Key: s.Key(params),
		Fetch: func(ctx context.Context) (services.Page[int], error) {
			if s.err != nil {
				return services.Page[int]{}, s.err
			}
			items := []int{}
			for i := (params.Page-1)*params.Limit + 1; i <= s.total && len(items) < params.Limit; i++ {
				items = append(items, i)
			}
			return services.Page[int]{
				Items:      items,
				Total:      int64(s.total),
				Page:       params.Page,
				Limit:      params.Limit,
				TotalPages: utils.TotalPages(int64(s.total), params.Limit),
			}, nil
		},
	})
}

func (s *numberSource) State(params services.ListParams) query.State {
	return s.client.State(s.Key(params))
}

func TestListPage_PaginationBoundaries(t *testing.T) {
	ctx := context.Background()
	page := NewListPage[int](newNumberSource(25), 10)

	v := page.Load(ctx)
	require.Equal(t, StatusReady, v.Status)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, v.Items)
	assert.Equal(t, 3, v.TotalPages)
	assert.False(t, v.CanPrev)
	assert.True(t, v.CanNext)

	page.PrevPage()
	assert.Equal(t, 1, page.Params().Page)

	for i := 0; i < 5; i++ {
		page.NextPage()
		page.Load(ctx)
	}
	v = page.Load(ctx)
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, []int{21, 22, 23, 24, 25}, v.Items)
	assert.True(t, v.CanPrev)
	assert.False(t, v.CanNext)
}

func TestListPage_PageBeyondTotalPagesDisablesNext(t *testing.T) {
	page := NewListPage[int](newNumberSource(15), 10)
	page.SetPage(5)

	v := page.Load(context.Background())
	assert.Equal(t, 5, v.Page)
	assert.Equal(t, 2, v.TotalPages)
	assert.Empty(t, v.Items)
	assert.False(t, v.CanNext)
	assert.True(t, v.CanPrev)

	page.NextPage()
	assert.Equal(t, 5, page.Params().Page)
}

func TestListPage_EmptyListHasOnePage(t *testing.T) {
	v := NewListPage[int](newNumberSource(0), 10).Load(context.Background())
	assert.Equal(t, StatusReady, v.Status)
	assert.Equal(t, 1, v.TotalPages)
	assert.False(t, v.CanNext)
	assert.False(t, v.CanPrev)
}

func TestListPage_SearchAndFilterResetPage(t *testing.T) {
	page := NewListPage[int](newNumberSource(50), 10)
	page.SetPage(3)

	page.SetSearch("  ali ")
	assert.Equal(t, 1, page.Params().Page)
	assert.Equal(t, "ali", page.Params().Search)

	page.SetPage(2)
	page.SetFilter("role", "ADMIN")
	params := page.Params()
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, map[string]string{"role": "ADMIN"}, params.Filters)

	page.SetFilter("role", "")
	assert.Nil(t, page.Params().Filters)
	assert.Equal(t, query.NewKey("numbers.list", services.ListParams{Page: 1, Limit: 10, Search: "ali"}), page.Key())
}

func TestListPage_NextPageAfterSearchWaitsForLoad(t *testing.T) {
	ctx := context.Background()
	page := NewListPage[int](newNumberSource(50), 10)
	require.Equal(t, 5, page.Load(ctx).TotalPages)

	page.SetSearch("x")
	page.NextPage()
	assert.Equal(t, 1, page.Params().Page)

	page.Load(ctx)
	page.SetFilter("role", "ADMIN")
	page.NextPage()
	assert.Equal(t, 1, page.Params().Page)

	page.Load(ctx)
	page.NextPage()
	assert.Equal(t, 2, page.Params().Page)
}

func TestListPage_ViewReadsCacheWithoutFetching(t *testing.T) {
	page := NewListPage[int](newNumberSource(5), 10)

	v := page.View()
	assert.Equal(t, StatusLoading, v.Status)
	assert.Empty(t, v.Items)
	assert.False(t, v.CanNext)

	page.Load(context.Background())
	v = page.View()
	assert.Equal(t, StatusReady, v.Status)
	assert.Len(t, v.Items, 5)
}

func TestListPage_ErrorState(t *testing.T) {
	source := newNumberSource(5)
	source.err = apierrors.ErrUnauthorized
	page := NewListPage[int](source, 10)

	v := page.Load(context.Background())
	assert.Equal(t, StatusError, v.Status)
	require.NotNil(t, v.Error)
	assert.Equal(t, apierrors.KindUnauthorized, v.Error.Kind)
	assert.False(t, v.Error.Retryable)
	assert.False(t, v.CanNext)

	assert.Equal(t, StatusError, page.View().Status)
}

func TestListPage_CloseIgnoresLaterChanges(t *testing.T) {
	page := NewListPage[int](newNumberSource(30), 10)
	page.Close()

	page.Load(context.Background())
	page.NextPage()
	page.SetSearch("x")
	assert.Equal(t, services.ListParams{Page: 1, Limit: 10}, page.Params())
}

type orgForm struct {
	Name string
}

func TestFormModal_FailureKeepsValues(t *testing.T) {
	ctx := context.Background()
	fail := true
	var created []string
	modal := NewFormModal(
		func(ctx context.Context, f orgForm) (string, error) {
			if fail {
				return "", apierrors.Transient("create organization", errors.New("timeout"))
			}
			created = append(created, f.Name)
			return "id-1", nil
		},
		nil,
	)

	_, err := modal.Submit(ctx)
	assert.ErrorIs(t, err, ErrFormClosed)
	assert.ErrorIs(t, modal.OpenEdit("x", orgForm{}), ErrEditUnsupported)

	modal.OpenCreate(orgForm{})
	modal.Edit(func(f *orgForm) { f.Name = "Acme" })

	_, err = modal.Submit(ctx)
	require.Error(t, err)
	state := modal.State()
	assert.True(t, state.Open)
	assert.Equal(t, FormModeCreate, state.Mode)
	assert.Equal(t, "Acme", state.Values.Name)
	require.NotNil(t, state.Error)
	assert.True(t, state.Error.Retryable)

	fail = false
	out, err := modal.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "id-1", out)
	assert.Equal(t, []string{"Acme"}, created)

	state = modal.State()
	assert.False(t, state.Open)
	assert.Empty(t, state.Values.Name)
	assert.Nil(t, state.Error)
}

func TestFormModal_EditAndCancel(t *testing.T) {
	var gotID string
	modal := NewFormModal(
		func(ctx context.Context, f orgForm) (string, error) { return "", nil },
		func(ctx context.Context, id string, f orgForm) (string, error) {
			gotID = id
			return f.Name, nil
		},
	)

	require.NoError(t, modal.OpenEdit("org-1", orgForm{Name: "Tech Corp"}))
	assert.Equal(t, FormModeEdit, modal.State().Mode)
	modal.Cancel()
	assert.False(t, modal.State().Open)

	require.NoError(t, modal.OpenEdit("org-1", orgForm{Name: "Tech Corp"}))
	modal.Edit(func(f *orgForm) { f.Name = "Tech Corporation" })
	out, err := modal.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "org-1", gotID)
	assert.Equal(t, "Tech Corporation", out)
}

func TestFormModal_CloseDoesNotApplyResult(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	modal := NewFormModal(
		func(ctx context.Context, f orgForm) (string, error) {
			<-release
			return "id", nil
		},
		nil,
	)
	modal.OpenCreate(orgForm{Name: "Acme"})

	go func() {
		defer close(done)
		_, _ = modal.Submit(context.Background())
	}()
	require.Eventually(t, func() bool { return modal.State().Submitting }, time.Second, time.Millisecond)

	modal.Close()
	close(release)
	<-done

	state := modal.State()
	assert.True(t, state.Open)
	assert.Equal(t, "Acme", state.Values.Name)
}

func TestDeleteDialog_RequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	var deleted []string
	fail := false
	dialog := NewDeleteDialog(func(ctx context.Context, id string) error {
		if fail {
			return apierrors.Transient("delete", errors.New("down"))
		}
		deleted = append(deleted, id)
		return nil
	})

	assert.ErrorIs(t, dialog.Confirm(ctx), ErrNothingToDelete)

	dialog.Request("u1")
	assert.Equal(t, DialogState{Open: true, TargetID: "u1"}, dialog.State())
	dialog.Cancel()
	assert.False(t, dialog.State().Open)
	assert.Empty(t, deleted)

	dialog.Request("u2")
	fail = true
	require.Error(t, dialog.Confirm(ctx))
	assert.True(t, dialog.State().Open)
	assert.NotNil(t, dialog.State().Error)

	fail = false
	require.NoError(t, dialog.Confirm(ctx))
	assert.Equal(t, []string{"u2"}, deleted)
	assert.False(t, dialog.State().Open)
}

type PagesTestSuite struct {
	suite.Suite
	db  *gorm.DB
	ctx context.Context
	q   *queries.Queries
}

func (s *PagesTestSuite) SetupTest() {
	db, err := database.OpenSQLite(database.InMemoryDSN)
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.ctx = context.Background()
	s.Require().NoError(database.Seed(s.ctx, db))

	s.db = db
	s.q = queries.New(query.NewClient(query.Options{}), services.New(db, services.Options{}))
}

func (s *PagesTestSuite) TearDownTest() {
	_ = database.Close(s.db)
}

func (s *PagesTestSuite) TestOrganizationsPage_CreateShowsInList() {
	page := NewOrganizationsPage(s.q)
	defer page.Close()

	v := page.Load(s.ctx)
	s.Equal(int64(2), v.List.Total)

	page.Form.OpenCreate(OrganizationForm{})
	page.Form.Edit(func(f *OrganizationForm) {
		f.Name = "Acme"
		f.Description = "x"
	})
	org, err := page.Form.Submit(s.ctx)
	s.Require().NoError(err)

	v = page.Load(s.ctx)
	s.False(v.Form.Open)
	s.Equal(int64(3), v.List.Total)
	s.Equal(org.ID, v.List.Items[0].ID)
}

func (s *PagesTestSuite) TestOrganizationsPage_InvalidSubmitKeepsModalOpen() {
	page := NewOrganizationsPage(s.q)
	page.Form.OpenCreate(OrganizationForm{Name: " ", Description: "kept"})

	_, err := page.Form.Submit(s.ctx)
	s.Equal(apierrors.KindValidation, apierrors.KindOf(err))

	state := page.Form.State()
	s.True(state.Open)
	s.Equal("kept", state.Values.Description)
	s.Require().NotNil(state.Error)
	s.False(state.Error.Retryable)
}

func (s *PagesTestSuite) TestUsersPage_RoleFilterAndDelete() {
	page := NewUsersPage(s.q)
	page.SetRole("instructor")

	v := page.Load(s.ctx)
	s.Require().Len(v.List.Items, 1)
	s.Equal("Bob", v.List.Items[0].FirstName)

	page.SetRole("")
	page.List.SetSearch("carol")
	v = page.Load(s.ctx)
	s.Require().Len(v.List.Items, 1)
	carol := v.List.Items[0]

	page.Delete.Request(carol.ID)
	s.Require().NoError(page.Delete.Confirm(s.ctx))

	v = page.Load(s.ctx)
	s.Empty(v.List.Items)
	_, err := s.q.User(s.ctx, carol.ID)
	s.Equal(apierrors.KindNotFound, apierrors.KindOf(err))
}

func (s *PagesTestSuite) TestCoursesPage_UsesGridLimit() {
	page := NewCoursesPage(s.q)
	v := page.Load(s.ctx)
	s.Equal(12, v.List.Limit)
	s.Equal(int64(2), v.List.Total)
	s.False(v.List.CanNext)
}

func (s *PagesTestSuite) TestEnrollmentsPage_StatusFilter() {
	page := NewEnrollmentsPage(s.q)
	page.SetStatus("completed")

	v := page.Load(s.ctx)
	s.Require().Len(v.Items, 1)
	s.Equal(models.EnrollmentStatusCompleted, v.Items[0].Status)
}

func (s *PagesTestSuite) TestProgressPage() {
	var enrollment models.Enrollment
	s.Require().NoError(s.db.Joins("JOIN users ON users.id = enrollments.user_id").
		Where("users.first_name = ?", "Alice").First(&enrollment).Error)

	page := NewProgressPage(s.q, enrollment.ID)
	_, ok := page.View()
	s.False(ok)

	v := page.Load(s.ctx)
	s.Equal(StatusReady, v.Enrollment.Status)
	s.Require().Equal(StatusReady, v.Videos.Status)
	s.Require().Len(v.Videos.Data, 3)
	s.Equal("Introduction to Components", v.Videos.Data[0].Title)
	s.Equal("20:00", v.Videos.Data[0].Duration)
	s.True(v.Videos.Data[0].Complete)
	s.False(v.Videos.Data[1].Complete)
	s.Require().Equal(StatusReady, v.Overview.Status)
	s.Equal(int64(1), v.Overview.Data.CompletedVideos)
	s.Equal(int64(3), v.Overview.Data.TotalVideos)

	_, ok = page.View()
	s.True(ok)
}

func (s *PagesTestSuite) TestProgressPage_MissingEnrollmentScopesErrors() {
	v := NewProgressPage(s.q, "missing").Load(s.ctx)
	s.Equal(StatusError, v.Enrollment.Status)
	s.Equal(apierrors.KindNotFound, v.Enrollment.Error.Kind)
	s.Equal(StatusError, v.Videos.Status)
}

func (s *PagesTestSuite) TestDashboardPage() {
	page := NewDashboardPage(s.q)
	v := page.Load(s.ctx)

	s.Require().Equal(StatusReady, v.Metrics.Status)
	s.Equal(int64(4), v.Metrics.Data.TotalUsers)
	s.Equal(int64(2), v.Metrics.Data.TotalCourses)
	s.Equal(int64(3), v.Metrics.Data.TotalEnrollments)
	s.Equal(int64(2), v.Metrics.Data.ActiveEnrollments)

	s.Require().Equal(StatusReady, v.Recent.Status)
	s.Require().Len(v.Recent.Data, 5)
	s.Equal("Bob Smith", v.Recent.Data[0].UserName)
	s.Equal("Advanced React", v.Recent.Data[0].CourseTitle)
	s.True(v.Recent.Data[0].Complete)

	page.Close()
	page.Load(s.ctx)
	_, ok := page.View()
	s.True(ok)
}

func TestPagesTestSuite(t *testing.T) {
	suite.Run(t, new(PagesTestSuite))
}
