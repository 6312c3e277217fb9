package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/services"
	"github.com/Asantha20535/docuverify-sub000/internal/visibility"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DocumentHandler struct {
	documents *services.DocumentService
	maxUpload int64
	db        *gorm.DB
	logger    *zap.Logger
}

func NewDocumentHandler(documents *services.DocumentService, maxUpload int64, db *gorm.DB, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		maxUpload: maxUpload,
		db:        db,
		logger:    logger.With(zap.String("handler", "document")),
	}
}

func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	userID := c.GetUint("userID")

	title := c.PostForm("title")
	docType := c.PostForm("doc_type")
	if title == "" || docType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and doc_type are required"})
		return
	}

	fileHdr, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHdr.Size > h.maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	f, err := fileHdr.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil || int64(len(content)) > h.maxUpload {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}

	doc, err := h.documents.UploadDocument(c.Request.Context(), userID, title, docType, content)
	if err != nil {
		h.logger.Error("upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":          doc.ID,
		"contentHash": doc.ContentHash,
		"status":      doc.Status,
	})
}

type requestDocumentBody struct {
	Title   string `json:"title" binding:"required"`
	DocType string `json:"docType" binding:"required"`
}

func (h *DocumentHandler) RequestDocument(c *gin.Context) {
	userID := c.GetUint("userID")

	var body requestDocumentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and docType are required"})
		return
	}

	doc, err := h.documents.RequestDocument(c.Request.Context(), userID, body.Title, body.DocType)
	if err != nil {
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "request failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": doc.ID, "status": doc.Status})
}

func (h *DocumentHandler) SubmitForReview(c *gin.Context) {
	userID := c.GetUint("userID")
	docID := c.Param("id")

	wf, err := h.documents.SubmitForReview(c.Request.Context(), docID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrDocumentExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoApprovalPath):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		default:
			h.logger.Error("submit for review failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "submission failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workflowId":  wf.ID,
		"stepRoles":   wf.StepRoles,
		"currentStep": wf.CurrentStep,
	})
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	userID := c.GetUint("userID")
	role := c.GetString("role")

	// Reviewers may ask for their queue instead of their own uploads.
	if c.Query("view") == "pending" && !strings.EqualFold(role, string(models.RoleStudent)) {
		summaries, err := h.documents.ListPendingReview(c.Request.Context(), role)
		if err != nil {
			h.logger.Error("list pending failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list documents"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": summaries})
		return
	}

	summaries, err := h.documents.ListDocuments(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list documents failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": summaries})
}

func (h *DocumentHandler) GetDocument(c *gin.Context) {
	docID := c.Param("id")

	doc, err := h.documents.GetDocument(c.Request.Context(), docID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if !h.mayView(c, doc) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	wf, err := h.documents.GetWorkflowForDocument(c.Request.Context(), docID)
	if err != nil {
		h.logger.Error("workflow lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	resp := gin.H{
		"id":          doc.ID,
		"title":       doc.Title,
		"docType":     doc.DocType,
		"status":      doc.Status,
		"contentHash": doc.ContentHash,
		"placements":  doc.PlacementHistory(),
		"createdAt":   doc.CreatedAt,
	}
	if wf != nil {
		resp["workflow"] = gin.H{
			"id":          wf.ID,
			"stepRoles":   wf.StepRoles,
			"currentStep": wf.CurrentStep,
			"totalSteps":  wf.TotalSteps,
			"isCompleted": wf.IsCompleted,
			"actions":     h.visibleActions(c, wf.ID, doc),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	docID := c.Param("id")

	doc, err := h.documents.GetDocument(c.Request.Context(), docID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	if !h.mayView(c, doc) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	if len(doc.Content) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "document has no content"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Title+`"`)
	c.Data(http.StatusOK, doc.MimeType, doc.Content)
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	userID := c.GetUint("userID")
	docID := c.Param("id")

	err := h.documents.DeleteDocument(c.Request.Context(), docID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		default:
			h.logger.Error("delete failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": docID})
}

// mayView: owners, admins, and any staff role see the document; other
// students do not.
func (h *DocumentHandler) mayView(c *gin.Context, doc *models.Document) bool {
	userID := c.GetUint("userID")
	role := c.GetString("role")

	if doc.UserID == userID {
		return true
	}
	return !strings.EqualFold(role, string(models.RoleStudent))
}

type actionView struct {
	Action     models.ActionType `json:"action"`
	ActorRole  string            `json:"actorRole"`
	SignerName string            `json:"signerName,omitempty"`
	Step       int               `json:"step"`
	Comment    string            `json:"comment,omitempty"`
	CreatedAt  string            `json:"createdAt"`
}

// visibleActions returns the audit trail with each comment filtered through
// the visibility codec for the requesting viewer.
func (h *DocumentHandler) visibleActions(c *gin.Context, workflowID string, doc *models.Document) []actionView {
	userID := c.GetUint("userID")
	role := c.GetString("role")

	var actions []models.WorkflowAction
	if err := h.db.Where("workflow_id = ?", workflowID).
		Order("created_at ASC").
		Find(&actions).Error; err != nil {
		h.logger.Warn("failed to load workflow actions", zap.Error(err))
		return nil
	}

	viewer := visibility.Viewer{
		Role:       role,
		IsOwner:    doc.UserID == userID,
		Privileged: strings.EqualFold(role, string(models.RoleAdmin)),
	}

	views := make([]actionView, 0, len(actions))
	for _, a := range actions {
		view := actionView{
			Action:     a.Action,
			ActorRole:  a.ActorRole,
			SignerName: a.SignerName,
			Step:       a.Step,
			CreatedAt:  a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if a.Comment != "" {
			decoded := visibility.Decode(a.Comment)
			if decoded.VisibleTo(viewer) {
				view.Comment = decoded.Text
			}
		}
		views = append(views, view)
	}
	return views
}
