package pages

import (
	"context"
	"strings"
	"sync"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
	"github.com/yukikurage/learning-admin-api/internal/query"
	"github.com/yukikurage/learning-admin-api/internal/services"
)

// Status is the render state of a view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusReady   Status = "ready"
)

// ErrorView is the inline error affordance shown instead of data.
type ErrorView struct {
	Kind      apierrors.Kind `json:"kind"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
}

func newErrorView(err error) *ErrorView {
	if err == nil {
		return nil
	}
	return &ErrorView{
		Kind:      apierrors.KindOf(err),
		Message:   err.Error(),
		Retryable: apierrors.Retryable(err),
	}
}

// ListSource is a cached, paginated read a ListPage renders.
type ListSource[T any] interface {
	Key(params services.ListParams) query.Key
	Fetch(ctx context.Context, params services.ListParams) (services.Page[T], error)
	State(params services.ListParams) query.State
}

// ListView is the render model of a list page.
type ListView[T any] struct {
	Status     Status            `json:"status"`
	Items      []T               `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
	CanPrev    bool              `json:"canPrev"`
	CanNext    bool              `json:"canNext"`
	Search     string            `json:"search"`
	Filters    map[string]string `json:"filters,omitempty"`
	Error      *ErrorView        `json:"error,omitempty"`
}

// ListPage holds the local state of a list screen: search text, filter
// values and page number. Changing search or a filter returns to page 1
// and forgets the page count until the next Load.
type ListPage[T any] struct {
	mu         sync.Mutex
	source     ListSource[T]
	limit      int
	search     string
	filters    map[string]string
	page       int
	totalPages int
	closed     bool
}

// NewListPage creates a page over source showing limit items per page.
func NewListPage[T any](source ListSource[T], limit int) *ListPage[T] {
	return &ListPage[T]{
		source:     source,
		limit:      limit,
		filters:    map[string]string{},
		page:       1,
		totalPages: 1,
	}
}

// SetSearch replaces the search text.
func (p *ListPage[T]) SetSearch(search string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.search = strings.TrimSpace(search)
	p.page = 1
	p.totalPages = 1
}

// SetFilter sets a filter value. An empty value clears the filter.
func (p *ListPage[T]) SetFilter(name, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if value == "" {
		delete(p.filters, name)
	} else {
		p.filters[name] = value
	}
	p.page = 1
	p.totalPages = 1
}

// SetPage jumps to page. Values below 1 select page 1.
func (p *ListPage[T]) SetPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if page < 1 {
		page = 1
	}
	p.page = page
}

// NextPage advances one page unless the last known page is shown.
func (p *ListPage[T]) NextPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.page >= p.totalPages {
		return
	}
	p.page++
}

// PrevPage goes back one page unless the first page is shown.
func (p *ListPage[T]) PrevPage() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.page <= 1 {
		return
	}
	p.page--
}

// Params returns the list parameters derived from the page state.
func (p *ListPage[T]) Params() services.ListParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paramsLocked()
}

func (p *ListPage[T]) paramsLocked() services.ListParams {
	var filters map[string]string
	if len(p.filters) > 0 {
		filters = make(map[string]string, len(p.filters))
		for k, v := range p.filters {
			filters[k] = v
		}
	}
	return services.ListParams{
		Page:    p.page,
		Limit:   p.limit,
		Search:  p.search,
		Filters: filters,
	}
}

// Key returns the query key of the current state.
func (p *ListPage[T]) Key() query.Key {
	return p.source.Key(p.Params())
}

// Load fetches the current page through the cache and returns its view.
// Results that land after Close, or after the state moved on, do not
// update the page.
func (p *ListPage[T]) Load(ctx context.Context) ListView[T] {
	params := p.Params()
	data, err := p.source.Fetch(ctx, params)
	if err != nil {
		return p.view(params, nil, err)
	}

	p.mu.Lock()
	if !p.closed && p.page == params.Page && p.search == params.Search && sameFilters(p.filters, params.Filters) {
		p.totalPages = data.TotalPages
	}
	p.mu.Unlock()

	return p.view(params, &data, nil)
}

// View renders the cached state of the current parameters without fetching.
func (p *ListPage[T]) View() ListView[T] {
	params := p.Params()
	state := p.source.State(params)

	var data *services.Page[T]
	if d, ok := state.Data.(services.Page[T]); ok {
		data = &d
	}
	if data == nil && state.Status != query.StatusError {
		return p.view(params, nil, nil)
	}
	return p.view(params, data, state.Err)
}

// Close abandons the page.
func (p *ListPage[T]) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}

func (p *ListPage[T]) view(params services.ListParams, data *services.Page[T], err error) ListView[T] {
	v := ListView[T]{
		Status:     StatusLoading,
		Items:      []T{},
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: 1,
		Search:     params.Search,
		Filters:    params.Filters,
		Error:      newErrorView(err),
	}
	if data != nil {
		v.Status = StatusReady
		v.Items = data.Items
		v.Total = data.Total
		v.Limit = data.Limit
		v.TotalPages = data.TotalPages
	} else if err != nil {
		v.Status = StatusError
	}
	v.CanPrev = v.Page > 1
	v.CanNext = v.Status == StatusReady && v.Page < v.TotalPages
	return v
}

func sameFilters(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
