package engine

import "fmt"

// MissingInputError reports a required input that neither an upstream
// connection nor the caller's initial inputs could supply.
type MissingInputError struct {
	ModuleID string
	Input    string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("module %q: required input %q is unresolved", e.ModuleID, e.Input)
}
