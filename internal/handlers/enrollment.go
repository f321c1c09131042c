package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

type EnrollmentHandler struct {
	queries *queries.Queries
}

func NewEnrollmentHandler(q *queries.Queries) *EnrollmentHandler {
	return &EnrollmentHandler{queries: q}
}

// ListEnrollments returns a page of enrollments. Filters: status, userId, courseId.
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	page, err := h.queries.EnrollmentList.Fetch(c.Request.Context(), dto.ListParams(c, constants.DefaultPageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	enrollment, err := h.queries.Enrollment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, enrollment)
}

func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req services.EnrollInput
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.queries.Enroll(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, enrollment)
}

func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	var req services.UpdateEnrollmentInput
	if !bindJSON(c, &req) {
		return
	}

	enrollment, err := h.queries.UpdateEnrollment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, enrollment)
}

func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	if err := h.queries.DeleteEnrollment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	dto.Message(c, "Enrollment deleted successfully")
}

// enrollmentProgress is the body of GET /enrollments/:id/progress.
type enrollmentProgress struct {
	Overview *services.Overview     `json:"overview"`
	Records  []models.VideoProgress `json:"records"`
}

// GetProgress returns the enrollment's per-video progress and its overview
func (h *EnrollmentHandler) GetProgress(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	overview, err := h.queries.ProgressOverview(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	records, err := h.queries.EnrollmentProgress(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, enrollmentProgress{Overview: overview, Records: records})
}

// RecordProgress stores the watched percent of one video
func (h *EnrollmentHandler) RecordProgress(c *gin.Context) {
	var req services.RecordProgressInput
	if !bindJSON(c, &req) {
		return
	}

	progress, err := h.queries.RecordProgress(c.Request.Context(), c.Param("id"), c.Param("videoId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, progress)
}
