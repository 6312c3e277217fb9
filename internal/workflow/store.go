package workflow

import (
	"context"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
)

// Store is the persistence contract of the engine. Each operation is
// individually durable; Atomically provides the composite atomicity the
// engine needs around the {append action, update workflow, update document}
// triple of a submission.
type Store interface {
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)

	// UpdateWorkflow persists step pointer, completion flag and version. It
	// must apply the write only while the persisted version still equals
	// w.Version and return ErrConflict otherwise.
	UpdateWorkflow(ctx context.Context, w *models.Workflow) error

	AppendAction(ctx context.Context, a *models.WorkflowAction) error
	ListActions(ctx context.Context, workflowID string) ([]models.WorkflowAction, error)

	GetDocument(ctx context.Context, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, d *models.Document) error

	// GetTemplate returns (nil, nil) when no template exists for the type.
	GetTemplate(ctx context.Context, docType string) (*models.DocumentTemplate, error)

	// FindDocumentByHash matches the hash case-insensitively and returns
	// (nil, nil) when nothing matches.
	FindDocumentByHash(ctx context.Context, hash string) (*models.Document, error)
	AppendVerificationLog(ctx context.Context, rec *models.VerificationLog) error

	// Atomically runs fn inside one transaction; the Store handed to fn sees
	// and writes uncommitted state.
	Atomically(ctx context.Context, fn func(Store) error) error
}
