package models

import (
	"time"

	"github.com/google/uuid"
)

// Paper is a tracked research submission with a deadline.
type Paper struct {
	// ID is the unique identifier for this paper.
	ID string `json:"id" yaml:"id"`
	// Name is unique across papers, compared case-insensitively.
	Name string `json:"name" yaml:"name"`
	// Deadline is the submission date.
	Deadline Date `json:"deadline" yaml:"deadline"`
	// Conference is the target venue, if any.
	Conference string `json:"conference,omitempty" yaml:"conference,omitempty"`
	// Description is free text, if any.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Archived papers are hidden from default listings.
	Archived bool `json:"archived" yaml:"archived"`
	// CreatedAt is when the paper was added.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewPaper returns a Paper with a fresh ID and CreatedAt set.
func NewPaper(name string, deadline Date) Paper {
	return Paper{
		ID:        NewID(),
		Name:      name,
		Deadline:  deadline,
		CreatedAt: time.Now().UTC(),
	}
}

// NewID returns a new random record identifier.
func NewID() string {
	return uuid.New().String()
}

// ShortID returns the first eight characters of id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
