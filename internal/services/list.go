package services

import (
	"sort"
	"strings"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/models"
	"github.com/yukikurage/learning-admin-api/internal/repository"
	"github.com/yukikurage/learning-admin-api/internal/utils"
)

// ListParams is the request shape shared by every List operation.
type ListParams struct {
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Search  string            `json:"search,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

// Page is one page of a list result.
type Page[T any] struct {
	Items      []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func (p ListParams) options(defaultLimit int) repository.ListOptions {
	pagination := utils.NormalizePagination(p.Page, p.Limit, defaultLimit)
	return repository.ListOptions{
		Page:   pagination.Page,
		Limit:  pagination.Limit,
		Search: strings.TrimSpace(p.Search),
	}
}

func newPage[T any](items []T, total int64, opts repository.ListOptions) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: utils.TotalPages(total, opts.Limit),
	}
}

// checkFilters rejects filter names outside allowed.
func checkFilters(filters map[string]string, allowed ...string) error {
	var unknown []string
	for name := range filters {
		found := false
		for _, a := range allowed {
			if name == a {
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}

	sort.Strings(unknown)
	verr := &apierrors.ValidationError{}
	for _, name := range unknown {
		verr.Fields = append(verr.Fields, apierrors.FieldError{Field: name, Message: "unknown filter"})
	}
	return verr
}

// stringFilter returns the filter value, or nil when it is absent or empty.
func stringFilter(filters map[string]string, name string) *string {
	v := strings.TrimSpace(filters[name])
	if v == "" {
		return nil
	}
	return &v
}

func roleFilter(filters map[string]string, name string) (*models.Role, error) {
	v := stringFilter(filters, name)
	if v == nil {
		return nil, nil
	}
	role := models.Role(strings.ToUpper(*v))
	if !role.Valid() {
		return nil, apierrors.NewValidationError(name, "must be one of ADMIN, INSTRUCTOR, LEARNER")
	}
	return &role, nil
}

func statusFilter(filters map[string]string, name string) (*models.EnrollmentStatus, error) {
	v := stringFilter(filters, name)
	if v == nil {
		return nil, nil
	}
	status := models.EnrollmentStatus(strings.ToUpper(*v))
	if !status.Valid() {
		return nil, apierrors.NewValidationError(name, "must be one of ACTIVE, COMPLETED, DROPPED")
	}
	return &status, nil
}
