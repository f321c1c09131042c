package pages

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrFormClosed is returned when submitting a modal that is not open.
	ErrFormClosed = errors.New("form is not open")
	// ErrFormBusy is returned when a submit is already in flight.
	ErrFormBusy = errors.New("form is already submitting")
	// ErrEditUnsupported is returned by OpenEdit on create-only modals.
	ErrEditUnsupported = errors.New("form does not support editing")
)

// FormMode tells whether a modal creates a record or edits one.
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// FormState is the render model of a modal.
type FormState[F any] struct {
	Open       bool       `json:"open"`
	Mode       FormMode   `json:"mode,omitempty"`
	EditID     string     `json:"editId,omitempty"`
	Values     F          `json:"values"`
	Submitting bool       `json:"submitting"`
	Error      *ErrorView `json:"error,omitempty"`
}

// FormModal binds a create/edit modal to a local form record. Submit runs
// the matching mutation; success closes the modal and resets the form,
// failure keeps it open with the entered values.
type FormModal[F any, Out any] struct {
	mu         sync.Mutex
	create     func(ctx context.Context, form F) (Out, error)
	update     func(ctx context.Context, id string, form F) (Out, error)
	open       bool
	mode       FormMode
	editID     string
	values     F
	submitting bool
	err        error
	closed     bool
}

// NewFormModal creates a modal. update may be nil for create-only screens.
func NewFormModal[F any, Out any](
	create func(ctx context.Context, form F) (Out, error),
	update func(ctx context.Context, id string, form F) (Out, error),
) *FormModal[F, Out] {
	return &FormModal[F, Out]{create: create, update: update}
}

// OpenCreate opens the modal for a new record with initial values.
func (m *FormModal[F, Out]) OpenCreate(initial F) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.open = true
	m.mode = FormModeCreate
	m.editID = ""
	m.values = initial
	m.err = nil
}

// OpenEdit opens the modal for record id, prefilled with values.
func (m *FormModal[F, Out]) OpenEdit(id string, values F) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.update == nil {
		return ErrEditUnsupported
	}
	if m.closed {
		return nil
	}
	m.open = true
	m.mode = FormModeEdit
	m.editID = id
	m.values = values
	m.err = nil
	return nil
}

// Edit applies fn to the form values.
func (m *FormModal[F, Out]) Edit(fn func(values *F)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open || m.closed {
		return
	}
	fn(&m.values)
}

// Submit runs the mutation for the current mode.
func (m *FormModal[F, Out]) Submit(ctx context.Context) (Out, error) {
	var zero Out

	m.mu.Lock()
	if !m.open || m.closed {
		m.mu.Unlock()
		return zero, ErrFormClosed
	}
	if m.submitting {
		m.mu.Unlock()
		return zero, ErrFormBusy
	}
	m.submitting = true
	mode, id, values := m.mode, m.editID, m.values
	m.mu.Unlock()

	var (
		out Out
		err error
	)
	if mode == FormModeEdit {
		out, err = m.update(ctx, id, values)
	} else {
		out, err = m.create(ctx, values)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitting = false
	if m.closed {
		return out, err
	}
	if err != nil {
		m.err = err
		return out, err
	}
	m.reset()
	return out, nil
}

// Cancel closes the modal and discards the form.
func (m *FormModal[F, Out]) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitting {
		return
	}
	m.reset()
}

// State returns the render model.
func (m *FormModal[F, Out]) State() FormState[F] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return FormState[F]{
		Open:       m.open,
		Mode:       m.mode,
		EditID:     m.editID,
		Values:     m.values,
		Submitting: m.submitting,
		Error:      newErrorView(m.err),
	}
}

// Close abandons the modal. A submit in flight still completes but its
// result is not applied.
func (m *FormModal[F, Out]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *FormModal[F, Out]) reset() {
	var zero F
	m.open = false
	m.mode = ""
	m.editID = ""
	m.values = zero
	m.err = nil
}
