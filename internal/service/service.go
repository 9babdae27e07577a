// Package service implements the figureshelf application services. Services
// validate input, enforce permissions, call the store and the matching
// engine, and return coded errors from internal/errors.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/figureshelf/figureshelf-server/internal/errors"
	"github.com/figureshelf/figureshelf-server/internal/store"
)

// storeError converts well-known store failures into domain errors. Anything
// else is wrapped with op and surfaces as an internal error.
func storeError(err error, op, what string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	case errors.Is(err, store.ErrAlreadyExists):
		return domainerrors.AlreadyExists(what + " already exists").WithCause(err)
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Validation(err.Error())
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
