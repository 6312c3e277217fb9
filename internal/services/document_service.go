package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNoApprovalPath  = errors.New("no approval path configured for document type")
	ErrDocumentExists  = errors.New("document already under review")
	ErrNotOwner        = errors.New("only the owner may do this")
	ErrAlreadyResolved = errors.New("document already resolved")
)

type DocumentService struct {
	db           *gorm.DB
	defaultPaths map[string][]string
	logger       *zap.Logger
	metrics      *metrics.Collector
}

func NewDocumentService(db *gorm.DB, defaultPaths map[string][]string, logger *zap.Logger, collector *metrics.Collector) *DocumentService {
	return &DocumentService{
		db:           db,
		defaultPaths: defaultPaths,
		logger:       logger.With(zap.String("service", "document_service")),
		metrics:      collector,
	}
}

// UploadDocument stores the artifact with its SHA-256 and leaves it PENDING
// until it is submitted for review.
func (ds *DocumentService) UploadDocument(ctx context.Context, userID uint, title, docType string, content []byte) (*models.Document, error) {
	start := time.Now()
	sum := sha256.Sum256(content)

	mimeType := http.DetectContentType(content)
	if len(content) >= 5 && string(content[:5]) == "%PDF-" {
		mimeType = "application/pdf"
	}

	doc := &models.Document{
		ID:          uuid.New().String(),
		Title:       title,
		DocType:     strings.ToLower(docType),
		Content:     content,
		MimeType:    mimeType,
		ContentHash: hex.EncodeToString(sum[:]),
		Status:      models.StatusPending,
		UserID:      userID,
		Metadata:    models.JSONMap{},
	}

	if err := ds.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}

	ds.metrics.IncrementCounter("documents.uploaded", nil)
	ds.metrics.ObserveSize("document.size", float64(len(content)))
	ds.metrics.ObserveLatency("document.upload", time.Since(start))

	ds.logger.Info("Document uploaded",
		zap.String("doc_id", doc.ID),
		zap.String("doc_type", doc.DocType),
		zap.Uint("user_id", userID))

	return doc, nil
}

// RequestDocument creates a content-less document request; staff fills in the
// file later, typically from the template PDF.
func (ds *DocumentService) RequestDocument(ctx context.Context, userID uint, title, docType string) (*models.Document, error) {
	doc := &models.Document{
		ID:       uuid.New().String(),
		Title:    title,
		DocType:  strings.ToLower(docType),
		Status:   models.StatusPending,
		UserID:   userID,
		Metadata: models.JSONMap{},
	}
	if err := ds.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}

	ds.metrics.IncrementCounter("documents.requested", nil)
	return doc, nil
}

// SubmitForReview attaches a workflow to the document and moves it to
// IN_REVIEW. The role chain comes from the document type's template, or the
// configured default path when no template exists. Workflow creation, the
// UPLOADED audit row and the status flip commit together.
func (ds *DocumentService) SubmitForReview(ctx context.Context, docID string, userID uint) (*models.Workflow, error) {
	var wf *models.Workflow

	err := ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := tx.First(&doc, "id = ?", docID).Error; err != nil {
			return err
		}
		if doc.UserID != userID {
			return ErrNotOwner
		}
		if doc.Status != models.StatusPending {
			return ErrDocumentExists
		}

		path, err := ds.approvalPath(tx, doc.DocType)
		if err != nil {
			return err
		}

		wf = &models.Workflow{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			StepRoles:   path,
			CurrentStep: 0,
			TotalSteps:  len(path),
			IsCompleted: false,
			Version:     1,
		}
		if err := tx.Create(wf).Error; err != nil {
			return err
		}

		action := &models.WorkflowAction{
			WorkflowID: wf.ID,
			ActorID:    userID,
			ActorRole:  string(models.RoleStudent),
			Action:     models.ActionUploaded,
			Step:       0,
		}
		if err := tx.Create(action).Error; err != nil {
			return err
		}

		return tx.Model(&doc).Update("status", models.StatusInReview).Error
	})
	if err != nil {
		return nil, err
	}

	ds.metrics.IncrementCounter("workflows.created", nil)
	ds.logger.Info("Document submitted for review",
		zap.String("doc_id", docID),
		zap.String("workflow_id", wf.ID),
		zap.Int("total_steps", wf.TotalSteps))

	return wf, nil
}

func (ds *DocumentService) approvalPath(tx *gorm.DB, docType string) (models.StringList, error) {
	var tpl models.DocumentTemplate
	err := tx.First(&tpl, "doc_type = ?", docType).Error
	switch {
	case err == nil:
		if len(tpl.ApprovalPath) > 0 {
			return normalizeRoles(tpl.ApprovalPath), nil
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if path, ok := ds.defaultPaths[docType]; ok && len(path) > 0 {
		return normalizeRoles(path), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNoApprovalPath, docType)
}

func normalizeRoles(roles []string) models.StringList {
	out := make(models.StringList, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (ds *DocumentService) GetDocument(ctx context.Context, docID string) (*models.Document, error) {
	var doc models.Document
	if err := ds.db.WithContext(ctx).First(&doc, "id = ?", docID).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (ds *DocumentService) GetWorkflowForDocument(ctx context.Context, docID string) (*models.Workflow, error) {
	var wf models.Workflow
	err := ds.db.WithContext(ctx).First(&wf, "document_id = ?", docID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wf, nil
}

type DocSummary struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	DocType     string                `json:"docType"`
	Status      models.DocumentStatus `json:"status"`
	ContentHash string                `json:"contentHash"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// ListDocuments returns the caller's own documents, newest first.
func (ds *DocumentService) ListDocuments(ctx context.Context, userID uint) ([]DocSummary, error) {
	var docs []models.Document
	if err := ds.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return summarize(docs), nil
}

// ListPendingReview returns documents whose workflow currently waits on the
// given role. Step-role matching happens in Go; the chain lives in a JSON
// column.
func (ds *DocumentService) ListPendingReview(ctx context.Context, role string) ([]DocSummary, error) {
	var wfs []models.Workflow
	if err := ds.db.WithContext(ctx).
		Where("is_completed = ?", false).
		Find(&wfs).Error; err != nil {
		return nil, err
	}

	var ids []string
	for _, wf := range wfs {
		if current, ok := wf.CurrentRole(); ok && strings.EqualFold(current, role) {
			ids = append(ids, wf.DocumentID)
		}
	}
	if len(ids) == 0 {
		return []DocSummary{}, nil
	}

	var docs []models.Document
	if err := ds.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return summarize(docs), nil
}

func summarize(docs []models.Document) []DocSummary {
	summaries := make([]DocSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, DocSummary{
			ID:          d.ID,
			Title:       d.Title,
			DocType:     d.DocType,
			Status:      d.Status,
			ContentHash: d.ContentHash,
			CreatedAt:   d.CreatedAt,
		})
	}
	return summaries
}

// DeleteDocument removes an unresolved document. Only the owner may delete,
// and only before the review reached a terminal state.
func (ds *DocumentService) DeleteDocument(ctx context.Context, docID string, userID uint) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doc models.Document
		if err := tx.First(&doc, "id = ?", docID).Error; err != nil {
			return err
		}
		if doc.UserID != userID {
			return ErrNotOwner
		}
		if doc.Resolved() {
			return ErrAlreadyResolved
		}

		if err := tx.Where("document_id = ?", docID).Delete(&models.Workflow{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&doc).Error; err != nil {
			return err
		}

		ds.logger.Info("Document deleted", zap.String("doc_id", docID), zap.Uint("user_id", userID))
		return nil
	})
}
