package service

import (
	"errors"

	"github.com/noah-isme/sciclass-api/internal/repository"
	appErrors "github.com/noah-isme/sciclass-api/pkg/errors"
)

// storeError maps repository failures onto API errors.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case errors.Is(err, repository.ErrVersionConflict):
		return appErrors.Wrap(err, appErrors.ErrVersionConflict.Code, appErrors.ErrVersionConflict.Status, appErrors.ErrVersionConflict.Message)
	case errors.Is(err, repository.ErrInsufficientBalance):
		return appErrors.Wrap(err, appErrors.ErrInsufficientPoints.Code, appErrors.ErrInsufficientPoints.Status, appErrors.ErrInsufficientPoints.Message)
	case errors.Is(err, repository.ErrInvalidTransition):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "status transition not allowed")
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
	}
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
