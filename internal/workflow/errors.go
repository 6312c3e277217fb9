package workflow

import "errors"

// Sentinel errors surfaced by the engine and the verification gateway.
var (
	// ErrUnauthorized means the actor's role is not the one assigned to the
	// workflow's current step.
	ErrUnauthorized = errors.New("actor is not the assigned reviewer for the current step")

	// ErrInvalidAction means the submitted action keyword is not recognized.
	ErrInvalidAction = errors.New("invalid workflow action")

	// ErrWorkflowCompleted means an action arrived after the workflow reached
	// a terminal state. It is never silently ignored.
	ErrWorkflowCompleted = errors.New("workflow already completed")

	// ErrConflict means a concurrent submission advanced the workflow between
	// our read and our write. The caller may retry against the fresh state.
	ErrConflict = errors.New("workflow modified concurrently")

	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidHashFormat means the verification input is not a 64-character
	// hex string. Raised before any lookup or audit write.
	ErrInvalidHashFormat = errors.New("content hash must be 64 hex characters")
)
