package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apierrors "github.com/yukikurage/learning-admin-api/internal/errors"
)

// ErrDuplicate is returned when a write violates a unique index.
var ErrDuplicate = fmt.Errorf("record already exists: %w", apierrors.ErrValidationFailed)

// translate maps gorm and driver errors onto the error taxonomy.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, apierrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return apierrors.Transient(op, err)
	}
}

// notFoundOr reports a missing record as NotFound for entity/id and
// translates anything else.
func notFoundOr(entity, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.NotFoundf(entity, id)
	}
	return translate("find "+entity, err)
}
