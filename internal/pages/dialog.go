package pages

import (
	"context"
	"errors"
	"sync"
)

// ErrNothingToDelete is returned by Confirm without a pending request.
var ErrNothingToDelete = errors.New("no delete is pending confirmation")

// DialogState is the render model of a delete confirmation.
type DialogState struct {
	Open     bool       `json:"open"`
	TargetID string     `json:"targetId,omitempty"`
	Deleting bool       `json:"deleting"`
	Error    *ErrorView `json:"error,omitempty"`
}

// DeleteDialog asks for confirmation before issuing a delete mutation.
type DeleteDialog struct {
	mu       sync.Mutex
	del      func(ctx context.Context, id string) error
	target   string
	deleting bool
	err      error
	closed   bool
}

// NewDeleteDialog creates a dialog running del on confirmation.
func NewDeleteDialog(del func(ctx context.Context, id string) error) *DeleteDialog {
	return &DeleteDialog{del: del}
}

// Request asks to delete id. Nothing is deleted until Confirm.
func (d *DeleteDialog) Request(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.deleting {
		return
	}
	d.target = id
	d.err = nil
}

// Confirm deletes the requested record. On failure the request stays
// pending so it can be confirmed again.
func (d *DeleteDialog) Confirm(ctx context.Context) error {
	d.mu.Lock()
	if d.closed || d.target == "" {
		d.mu.Unlock()
		return ErrNothingToDelete
	}
	if d.deleting {
		d.mu.Unlock()
		return ErrFormBusy
	}
	d.deleting = true
	id := d.target
	d.mu.Unlock()

	err := d.del(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleting = false
	if d.closed {
		return err
	}
	if err != nil {
		d.err = err
		return err
	}
	d.target = ""
	d.err = nil
	return nil
}

// Cancel discards the pending request.
func (d *DeleteDialog) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deleting {
		return
	}
	d.target = ""
	d.err = nil
}

// State returns the render model.
func (d *DeleteDialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DialogState{
		Open:     d.target != "",
		TargetID: d.target,
		Deleting: d.deleting,
		Error:    newErrorView(d.err),
	}
}

// Close abandons the dialog.
func (d *DeleteDialog) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
