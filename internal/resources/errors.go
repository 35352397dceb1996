package resources

import "fmt"

// ResourceOperationError reports a convenience call that observed a status
// other than the one its operation expects. Raw calls never produce it.
type ResourceOperationError struct {
	Op     string
	Status int
}

func (e *ResourceOperationError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

// NotFoundError reports a named lookup that matched nothing.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Name)
}
