package handlers

import (
	"errors"
	"net/http"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type TemplateHandler struct {
	templates *services.TemplateService
	logger    *zap.Logger
}

func NewTemplateHandler(templates *services.TemplateService, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates: templates,
		logger:    logger.With(zap.String("handler", "template")),
	}
}

type templateBody struct {
	DocType      string                      `json:"docType" binding:"required"`
	ApprovalPath []string                    `json:"approvalPath" binding:"required"`
	Placements   []models.SignaturePlacement `json:"placements"`
	// TemplateFile is a base64 pdf; optional.
	TemplateFile []byte `json:"templateFile"`
}

func (h *TemplateHandler) UpsertTemplate(c *gin.Context) {
	var body templateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "docType and approvalPath are required"})
		return
	}

	tpl, err := h.templates.UpsertTemplate(c.Request.Context(), services.TemplateInput{
		DocType:      body.DocType,
		ApprovalPath: body.ApprovalPath,
		Placements:   body.Placements,
		TemplateFile: body.TemplateFile,
	})
	if err != nil {
		if errors.Is(err, services.ErrTemplateNotUsable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("template upsert failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           tpl.ID,
		"docType":      tpl.DocType,
		"approvalPath": tpl.ApprovalPath,
		"placements":   tpl.Placements,
		"pageCount":    tpl.PageCount,
	})
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	tpls, err := h.templates.ListTemplates(c.Request.Context())
	if err != nil {
		h.logger.Error("list templates failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": tpls})
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.templates.GetTemplate(c.Request.Context(), c.Param("docType"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, tpl)
}

func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	if err := h.templates.DeleteTemplate(c.Request.Context(), c.Param("docType")); err != nil {
		h.logger.Error("delete template failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("docType")})
}
