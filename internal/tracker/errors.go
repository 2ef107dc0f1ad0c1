// Package tracker implements the paper, milestone and task operations
// behind the command line on top of a store.Store.
package tracker

import "errors"

var (
	// ErrPaperNotFound is returned when a paper id or name matches nothing.
	ErrPaperNotFound = errors.New("paper not found")

	// ErrMilestoneNotFound is returned when a milestone ref matches nothing.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrTaskNotFound is returned when a task ref matches nothing.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDuplicatePaper is returned when a paper name is already taken.
	ErrDuplicatePaper = errors.New("paper already exists")

	// ErrAmbiguousRef is returned when an id prefix matches several records.
	ErrAmbiguousRef = errors.New("ambiguous reference")

	// ErrInvalidInput is returned for empty names, out-of-range priorities
	// and unknown statuses.
	ErrInvalidInput = errors.New("invalid input")
)
