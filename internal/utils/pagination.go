package utils

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/learning-admin-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// maxOffset bounds the row offset so (page-1)*limit cannot overflow and
// stays within every driver's OFFSET range.
const maxOffset = math.MaxInt32

// NormalizePagination clamps page to >= 1 and limit to [1, MaxPageSize],
// substituting defaultLimit for a missing or non-positive limit. Pages whose
// offset would exceed maxOffset are clamped to the last addressable page.
func NormalizePagination(page, limit, defaultLimit int) PaginationParams {
	if defaultLimit < constants.MinPageSize {
		defaultLimit = constants.DefaultPageSize
	}
	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize {
		limit = defaultLimit
	}
	if limit > constants.MaxPageSize {
		limit = constants.MaxPageSize
	}
	if lastPage := maxOffset/limit + 1; page > lastPage {
		page = lastPage
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// GetPaginationParams extracts and validates pagination parameters from the request
func GetPaginationParams(c *gin.Context, defaultLimit int) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	return NormalizePagination(page, limit, defaultLimit)
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	pages := int(total / int64(limit))
	if total%int64(limit) > 0 {
		pages++
	}
	return pages
}
