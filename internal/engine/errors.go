package engine

import (
	"errors"
	"fmt"
)

// Engine errors. CheckWorkflow surfaces ErrUnknownWorkflowType to the caller;
// every other failure mode is absorbed into the returned result.
var (
	// ErrUnknownWorkflowType indicates a workflow type outside the closed set.
	ErrUnknownWorkflowType = errors.New("unknown workflow type")

	// ErrNilContext indicates a nil workflow context was passed.
	ErrNilContext = errors.New("workflow context is nil")
)

// CollaboratorError wraps a failure from an external collaborator with the
// operation that failed. The evaluator converts these into failed
// prerequisites rather than propagating them.
type CollaboratorError struct {
	Operation string
	Err       error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// NewCollaboratorError wraps err with the failing operation name.
func NewCollaboratorError(operation string, err error) *CollaboratorError {
	return &CollaboratorError{Operation: operation, Err: err}
}
