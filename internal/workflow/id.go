package workflow

import "github.com/google/uuid"

// NewID returns a fresh workflow-scoped identifier.
func NewID() string {
	return uuid.NewString()
}
