package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
	"github.com/yukikurage/learning-admin-api/internal/dto"
	"github.com/yukikurage/learning-admin-api/internal/queries"
)

type DashboardHandler struct {
	queries *queries.Queries
}

func NewDashboardHandler(q *queries.Queries) *DashboardHandler {
	return &DashboardHandler{queries: q}
}

func (h *DashboardHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.queries.Metrics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, metrics)
}

// GetRecentProgress returns the latest watch activity, ?limit= records.
func (h *DashboardHandler) GetRecentProgress(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.RecentProgressLimit)))
	if err != nil || limit < 1 {
		limit = constants.RecentProgressLimit
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}

	records, err := h.queries.RecentProgress(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	dto.OK(c, records)
}
