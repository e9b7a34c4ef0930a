package checkout

import "fmt"

// ValidationError is a missing or malformed request field. It is raised before
// any provider call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}
