package handlers

import (
	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
)

// respondError attaches err to the request for the logger and writes the
// matching error response.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	apierrors.Respond(c, err)
}

// bindJSON decodes the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}
