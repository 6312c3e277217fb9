package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrTemplateNotUsable = errors.New("template is missing placements for approval-path roles")

type TemplateService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewTemplateService(db *gorm.DB, logger *zap.Logger) *TemplateService {
	return &TemplateService{
		db:     db,
		logger: logger.With(zap.String("service", "template_service")),
	}
}

type TemplateInput struct {
	DocType      string
	ApprovalPath []string
	Placements   []models.SignaturePlacement
	TemplateFile []byte
}

// UpsertTemplate creates or replaces the blueprint for a document type.
// The template must carry at least one placement for every role on its
// approval path before it is accepted.
func (ts *TemplateService) UpsertTemplate(ctx context.Context, in TemplateInput) (*models.DocumentTemplate, error) {
	docType := strings.ToLower(strings.TrimSpace(in.DocType))
	if docType == "" {
		return nil, errors.New("document type is required")
	}
	if len(in.ApprovalPath) == 0 {
		return nil, errors.New("approval path must name at least one role")
	}

	path := make(models.StringList, 0, len(in.ApprovalPath))
	for _, r := range in.ApprovalPath {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			path = append(path, r)
		}
	}

	placements := make(models.PlacementList, 0, len(in.Placements))
	for _, p := range in.Placements {
		p.Role = strings.ToLower(strings.TrimSpace(p.Role))
		if p.Page < 1 {
			p.Page = 1
		}
		if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
			return nil, fmt.Errorf("placement for %s: coordinates must be normalized to [0,1]", p.Role)
		}
		placements = append(placements, p)
	}

	tpl := &models.DocumentTemplate{
		ID:           uuid.New().String(),
		DocType:      docType,
		ApprovalPath: path,
		Placements:   placements,
	}

	if missing := tpl.MissingPlacementRoles(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotUsable, strings.Join(missing, ", "))
	}

	if len(in.TemplateFile) > 0 {
		count, err := api.PageCount(bytes.NewReader(in.TemplateFile), model.NewDefaultConfiguration())
		if err != nil {
			return nil, fmt.Errorf("template file is not a readable pdf: %w", err)
		}
		tpl.TemplateFile = in.TemplateFile
		tpl.PageCount = count
	}

	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DocumentTemplate
		err := tx.First(&existing, "doc_type = ?", docType).Error
		switch {
		case err == nil:
			tpl.ID = existing.ID
			tpl.CreatedAt = existing.CreatedAt
			return tx.Save(tpl).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(tpl).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	ts.logger.Info("Template saved",
		zap.String("doc_type", docType),
		zap.Strings("approval_path", path),
		zap.Int("placements", len(placements)),
		zap.Int("pages", tpl.PageCount))

	return tpl, nil
}

func (ts *TemplateService) GetTemplate(ctx context.Context, docType string) (*models.DocumentTemplate, error) {
	var tpl models.DocumentTemplate
	err := ts.db.WithContext(ctx).First(&tpl, "doc_type = ?", strings.ToLower(docType)).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (ts *TemplateService) ListTemplates(ctx context.Context) ([]models.DocumentTemplate, error) {
	var tpls []models.DocumentTemplate
	err := ts.db.WithContext(ctx).
		Omit("template_file").
		Order("doc_type ASC").
		Find(&tpls).Error
	return tpls, err
}

func (ts *TemplateService) DeleteTemplate(ctx context.Context, docType string) error {
	return ts.db.WithContext(ctx).
		Where("doc_type = ?", strings.ToLower(docType)).
		Delete(&models.DocumentTemplate{}).Error
}
