package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

type OrganizationHandler struct {
	queries *queries.Queries
}

func NewOrganizationHandler(q *queries.Queries) *OrganizationHandler {
	return &OrganizationHandler{queries: q}
}

// ListOrganizations returns a page of organizations
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	page, err := h.queries.OrganizationList.Fetch(c.Request.Context(), dto.ListParams(c, constants.DefaultPageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetOrganization returns organization details
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, err := h.queries.Organization(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, org)
}

// CreateOrganization creates a new organization
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req services.CreateOrganizationInput
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.queries.CreateOrganization(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, org)
}

// UpdateOrganization applies a partial update
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	var req services.UpdateOrganizationInput
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.queries.UpdateOrganization(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, org)
}

// DeleteOrganization deletes an organization with its memberships and courses
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	if err := h.queries.DeleteOrganization(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	dto.Message(c, "Organization deleted successfully")
}
