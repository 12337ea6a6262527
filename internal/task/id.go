package task

import "github.com/google/uuid"

// NewID returns a random (version 4) UUID for a new task. No registry of
// issued IDs is kept; collisions are treated as impossible.
func NewID() string {
	return uuid.NewString()
}
