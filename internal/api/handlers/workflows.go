package handlers

import (
	"errors"
	"net/http"

	"github.com/Asantha20535/docuverify-sub000/internal/visibility"
	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkflowHandler struct {
	engine *workflow.Engine
	logger *zap.Logger
}

func NewWorkflowHandler(engine *workflow.Engine, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{
		engine: engine,
		logger: logger.With(zap.String("handler", "workflow")),
	}
}

type submitActionBody struct {
	Action   string   `json:"action" binding:"required"`
	Comment  string   `json:"comment"`
	Audience string   `json:"audience"`
	Targets  []string `json:"targets"`
	// Signature is a base64 data URI (image/png or image/jpeg).
	Signature string `json:"signature"`
}

func (h *WorkflowHandler) SubmitAction(c *gin.Context) {
	workflowID := c.Param("id")

	var body submitActionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required"})
		return
	}

	result, err := h.engine.SubmitAction(c.Request.Context(), workflow.SubmitRequest{
		WorkflowID: workflowID,
		Actor: workflow.Actor{
			ID:   c.GetUint("userID"),
			Name: c.GetString("fullName"),
			Role: c.GetString("role"),
		},
		Action:  workflow.Action(body.Action),
		Comment: body.Comment,
		Visibility: visibility.Visibility{
			Audience: visibility.Audience(body.Audience),
			Targets:  body.Targets,
		},
		SignatureDataURI: body.Signature,
	})
	if err != nil {
		switch {
		case errors.Is(err, workflow.ErrUnauthorized):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, workflow.ErrInvalidAction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, workflow.ErrWorkflowCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, workflow.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, workflow.ErrWorkflowNotFound), errors.Is(err, workflow.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			h.logger.Error("submit action failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "action failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentStep": result.Workflow.CurrentStep,
		"isCompleted": result.Workflow.IsCompleted,
		"status":      result.Document.Status,
		"contentHash": result.Document.ContentHash,
		"stamped":     result.Stamped,
	})
}
