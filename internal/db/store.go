package db

import (
	"context"
	"errors"
	"strings"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
	"gorm.io/gorm"
)

// GormStore implements workflow.Store on top of gorm. Atomically maps onto a
// database transaction, which is what gives the submit triple its atomicity.
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	var wf models.Workflow
	if err := s.db.WithContext(ctx).First(&wf, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrWorkflowNotFound
		}
		return nil, err
	}
	return &wf, nil
}

// UpdateWorkflow writes the step pointer and completion flag guarded by the
// version the caller read. RowsAffected == 0 means someone got there first.
func (s *GormStore) UpdateWorkflow(ctx context.Context, w *models.Workflow) error {
	res := s.db.WithContext(ctx).Model(&models.Workflow{}).
		Where("id = ? AND version = ?", w.ID, w.Version).
		Updates(map[string]interface{}{
			"current_step": w.CurrentStep,
			"is_completed": w.IsCompleted,
			"version":      w.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return workflow.ErrConflict
	}
	w.Version++
	return nil
}

func (s *GormStore) AppendAction(ctx context.Context, a *models.WorkflowAction) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormStore) ListActions(ctx context.Context, workflowID string) ([]models.WorkflowAction, error) {
	var actions []models.WorkflowAction
	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&actions).Error
	return actions, err
}

func (s *GormStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (s *GormStore) UpdateDocument(ctx context.Context, d *models.Document) error {
	return s.db.WithContext(ctx).Save(d).Error
}

func (s *GormStore) GetTemplate(ctx context.Context, docType string) (*models.DocumentTemplate, error) {
	var tpl models.DocumentTemplate
	err := s.db.WithContext(ctx).First(&tpl, "doc_type = ?", strings.ToLower(docType)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *GormStore) FindDocumentByHash(ctx context.Context, hash string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).
		Where("LOWER(content_hash) = ?", strings.ToLower(hash)).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *GormStore) AppendVerificationLog(ctx context.Context, rec *models.VerificationLog) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) Atomically(ctx context.Context, fn func(workflow.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
