package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

type CourseHandler struct {
	queries *queries.Queries
}

func NewCourseHandler(q *queries.Queries) *CourseHandler {
	return &CourseHandler{queries: q}
}

// ListCourses returns a page of courses, 12 per page unless limit is given.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	page, err := h.queries.CourseList.Fetch(c.Request.Context(), dto.ListParams(c, constants.CoursePageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.queries.Course(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, course)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseInput
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.queries.CreateCourse(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req services.UpdateCourseInput
	if !bindJSON(c, &req) {
		return
	}

	course, err := h.queries.UpdateCourse(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	if err := h.queries.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	dto.Message(c, "Course deleted successfully")
}
