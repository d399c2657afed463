package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/tour-booking/internal/repository"
)

// Error taxonomy shared by every service.  Handlers map these onto HTTP
// status codes; anything else is an internal failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrUnavailable     = errors.New("unavailable")
	ErrUnauthorized    = errors.New("unauthorized")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFound(what string, id uint64) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

// fromStore maps repository sentinels onto the service taxonomy, naming
// the entity involved.  Other store failures are wrapped as they are.
func fromStore(err error, what string, id uint64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound(what, id)
	case errors.Is(err, repository.ErrEmailExists):
		return fmt.Errorf("%w: email already registered", ErrConflict)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%w: %s %d already exists", ErrConflict, what, id)
	default:
		return fmt.Errorf("%s %d: %w", what, id, err)
	}
}
