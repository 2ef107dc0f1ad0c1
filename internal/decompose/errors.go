package decompose

import "errors"

var (
	// ErrNotFound is returned when the requested milestone or paper does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyDecomposed is returned when decomposing a milestone that
	// already has tasks without Force.
	ErrAlreadyDecomposed = errors.New("milestone has already been decomposed")

	// ErrNoSchedulableDays is returned when the availability window is empty.
	ErrNoSchedulableDays = errors.New("no available days for scheduling tasks")

	// ErrGeneration wraps any failure of the text generator.
	ErrGeneration = errors.New("text generation failed")

	// ErrResponseParse is returned when the generator output is not a valid
	// task list.
	ErrResponseParse = errors.New("failed to parse generator response")

	// ErrReferentialIntegrity is returned when a milestone's paper is missing
	// or the store rejects the tasks' owners.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
)
