package dto

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/services"
	"github.com/yukikurage/learning-admin-api/internal/utils"
)

// reservedParams are list query parameters that are not filters.
var reservedParams = map[string]bool{"page": true, "limit": true, "search": true}

// ListParams reads page, limit and search from the query string. Every
// other non-empty query parameter becomes a filter; the service rejects
// names it does not know.
func ListParams(c *gin.Context, defaultLimit int) services.ListParams {
	pagination := utils.GetPaginationParams(c, defaultLimit)
	params := services.ListParams{
		Page:   pagination.Page,
		Limit:  pagination.Limit,
		Search: strings.TrimSpace(c.Query("search")),
	}

	for name, values := range c.Request.URL.Query() {
		if reservedParams[name] || len(values) == 0 {
			continue
		}
		value := strings.TrimSpace(values[0])
		if value == "" {
			continue
		}
		if params.Filters == nil {
			params.Filters = map[string]string{}
		}
		params.Filters[name] = value
	}
	return params
}
