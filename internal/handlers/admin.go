package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/pages"
	"github.com/yukikurage/learning-admin-api/internal/queries"
)

// AdminHandler serves the dashboard screens as JSON view models. Each
// request builds the page from its query string, loads it and abandons it.
type AdminHandler struct {
	queries *queries.Queries
}

func NewAdminHandler(q *queries.Queries) *AdminHandler {
	return &AdminHandler{queries: q}
}

// listState is the subset of list page state carried in the query string.
type listState interface {
	SetSearch(search string)
	SetPage(page int)
}

func applyListState(c *gin.Context, list listState) {
	list.SetSearch(c.Query("search"))
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		list.SetPage(page)
	}
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	page := pages.NewDashboardPage(h.queries)
	defer page.Close()
	dto.OK(c, page.Load(c.Request.Context()))
}

func (h *AdminHandler) Organizations(c *gin.Context) {
	page := pages.NewOrganizationsPage(h.queries)
	defer page.Close()
	applyListState(c, page.List)
	dto.OK(c, page.Load(c.Request.Context()))
}

// Users accepts ?role= in addition to search and page.
func (h *AdminHandler) Users(c *gin.Context) {
	page := pages.NewUsersPage(h.queries)
	defer page.Close()
	page.SetRole(c.Query("role"))
	applyListState(c, page.List)
	dto.OK(c, page.Load(c.Request.Context()))
}

func (h *AdminHandler) Courses(c *gin.Context) {
	page := pages.NewCoursesPage(h.queries)
	defer page.Close()
	applyListState(c, page.List)
	dto.OK(c, page.Load(c.Request.Context()))
}

// Enrollments accepts ?status= in addition to search and page.
func (h *AdminHandler) Enrollments(c *gin.Context) {
	page := pages.NewEnrollmentsPage(h.queries)
	defer page.Close()
	page.SetStatus(c.Query("status"))
	applyListState(c, page.List)
	dto.OK(c, page.Load(c.Request.Context()))
}

func (h *AdminHandler) Progress(c *gin.Context) {
	page := pages.NewProgressPage(h.queries, c.Param("enrollmentId"))
	defer page.Close()
	dto.OK(c, page.Load(c.Request.Context()))
}
