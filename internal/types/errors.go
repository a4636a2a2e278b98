package types

import "errors"

// Domain specific errors for the city store and the state container.
var (
	ErrNotFound         = errors.New("requested item not found")
	ErrConflict         = errors.New("item already exists or conflict")
	ErrBadRequest       = errors.New("bad request")
	ErrStoreUnavailable = errors.New("city store request failed")
	ErrInvalidCityID    = errors.New("invalid city id")

	// ErrContainerNotInitialized is returned when the city container is looked up
	// outside the scope that provides it.
	ErrContainerNotInitialized = errors.New("city container used outside of its provider scope")
)
