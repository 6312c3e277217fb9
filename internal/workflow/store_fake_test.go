package workflow_test

import (
	"context"
	"strings"
	"time"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
)

// fakeStore is an in-memory workflow.Store. Atomically snapshots all state
// before running fn and restores it when fn fails, mirroring the rollback a
// database transaction gives the real store.
type fakeStore struct {
	workflows     map[string]*models.Workflow
	documents     map[string]*models.Document
	templates     map[string]*models.DocumentTemplate
	actions       []models.WorkflowAction
	verifications []models.VerificationLog

	hashLookups int
	nextID      uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		workflows: make(map[string]*models.Workflow),
		documents: make(map[string]*models.Document),
		templates: make(map[string]*models.DocumentTemplate),
	}
}

func (s *fakeStore) putWorkflow(w models.Workflow) {
	s.workflows[w.ID] = &w
}

func (s *fakeStore) putDocument(d models.Document) {
	s.documents[d.ID] = &d
}

func (s *fakeStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	w, ok := s.workflows[id]
	if !ok {
		return nil, workflow.ErrWorkflowNotFound
	}
	cp := *w
	cp.StepRoles = append(models.StringList{}, w.StepRoles...)
	return &cp, nil
}

func (s *fakeStore) UpdateWorkflow(ctx context.Context, w *models.Workflow) error {
	stored, ok := s.workflows[w.ID]
	if !ok {
		return workflow.ErrWorkflowNotFound
	}
	if stored.Version != w.Version {
		return workflow.ErrConflict
	}
	cp := *w
	cp.StepRoles = append(models.StringList{}, w.StepRoles...)
	cp.Version++
	s.workflows[w.ID] = &cp
	w.Version++
	return nil
}

func (s *fakeStore) AppendAction(ctx context.Context, a *models.WorkflowAction) error {
	s.nextID++
	a.ID = s.nextID
	a.CreatedAt = time.Now().Add(time.Duration(s.nextID) * time.Millisecond)
	s.actions = append(s.actions, *a)
	return nil
}

func (s *fakeStore) ListActions(ctx context.Context, workflowID string) ([]models.WorkflowAction, error) {
	var out []models.WorkflowAction
	for _, a := range s.actions {
		if a.WorkflowID == workflowID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	d, ok := s.documents[id]
	if !ok {
		return nil, workflow.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) UpdateDocument(ctx context.Context, d *models.Document) error {
	cp := *d
	s.documents[d.ID] = &cp
	return nil
}

func (s *fakeStore) GetTemplate(ctx context.Context, docType string) (*models.DocumentTemplate, error) {
	tpl, ok := s.templates[strings.ToLower(docType)]
	if !ok {
		return nil, nil
	}
	return tpl, nil
}

func (s *fakeStore) FindDocumentByHash(ctx context.Context, hash string) (*models.Document, error) {
	s.hashLookups++
	for _, d := range s.documents {
		if strings.EqualFold(d.ContentHash, hash) {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) AppendVerificationLog(ctx context.Context, rec *models.VerificationLog) error {
	s.verifications = append(s.verifications, *rec)
	return nil
}

func (s *fakeStore) Atomically(ctx context.Context, fn func(workflow.Store) error) error {
	snapWf := make(map[string]*models.Workflow, len(s.workflows))
	for k, v := range s.workflows {
		cp := *v
		snapWf[k] = &cp
	}
	snapDoc := make(map[string]*models.Document, len(s.documents))
	for k, v := range s.documents {
		cp := *v
		snapDoc[k] = &cp
	}
	snapActions := append([]models.WorkflowAction(nil), s.actions...)

	if err := fn(s); err != nil {
		s.workflows = snapWf
		s.documents = snapDoc
		s.actions = snapActions
		return err
	}
	return nil
}
