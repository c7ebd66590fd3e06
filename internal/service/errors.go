package service

import (
	"errors"
	"fmt"

	"github.com/rihanvyakoob07/authenflow-platform/internal/repository"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateEntry     = errors.New("product already in wishlist")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("admin privileges required")
	ErrSeedingDisabled    = fmt.Errorf("review seeding is disabled: %w", ErrForbidden)
	ErrNotFound           = errors.New("not found")
)

// ValidationError carries a client-facing message about a malformed
// input.  It matches ErrValidation under errors.Is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// notFound tags a missing entity with its kind so the message reads
// "product not found" while still matching ErrNotFound.
type notFound struct{ kind string }

func (e *notFound) Error() string        { return e.kind + " not found" }
func (e *notFound) Is(target error) bool { return target == ErrNotFound }

func missing(kind string) error { return &notFound{kind: kind} }

// translate maps repository sentinels onto the service taxonomy.  Any
// other error is wrapped with op and treated as unexpected upstream.
func translate(op, kind string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return missing(kind)
	case errors.Is(err, repository.ErrEmailExists):
		return ErrDuplicateEmail
	case errors.Is(err, repository.ErrDuplicateEntry):
		return ErrDuplicateEntry
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }
