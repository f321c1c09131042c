package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/queries"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

type UserHandler struct {
	queries *queries.Queries
}

func NewUserHandler(q *queries.Queries) *UserHandler {
	return &UserHandler{queries: q}
}

// ListUsers returns a page of users. Filters: role, organizationId.
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.queries.UserList.Fetch(c.Request.Context(), dto.ListParams(c, constants.DefaultPageSize))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.queries.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, user)
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.queries.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.queries.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, user)
}

// DeleteUser deletes a user unless they still instruct a course
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.queries.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	dto.Message(c, "User deleted successfully")
}

func (h *UserHandler) ListMemberships(c *gin.Context) {
	memberships, err := h.queries.UserMemberships(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, memberships)
}

func (h *UserHandler) AddMembership(c *gin.Context) {
	var req services.MembershipInput
	if !bindJSON(c, &req) {
		return
	}

	membership, err := h.queries.AddMembership(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.Created(c, membership)
}

func (h *UserHandler) RemoveMembership(c *gin.Context) {
	if err := h.queries.RemoveMembership(c.Request.Context(), c.Param("id"), c.Param("membershipId")); err != nil {
		respondError(c, err)
		return
	}
	dto.Message(c, "Membership removed successfully")
}
