package handlers

import (
	"errors"
	"net/http"

	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerificationHandler exposes the public hash-verification endpoint. It is
// the only unauthenticated surface besides login and health.
type VerificationHandler struct {
	gateway *workflow.Gateway
	logger  *zap.Logger
}

func NewVerificationHandler(gateway *workflow.Gateway, logger *zap.Logger) *VerificationHandler {
	return &VerificationHandler{
		gateway: gateway,
		logger:  logger.With(zap.String("handler", "verify")),
	}
}

func (h *VerificationHandler) Verify(c *gin.Context) {
	verdict, err := h.gateway.Verify(c.Request.Context(), c.Param("hash"), c.ClientIP())
	if err != nil {
		if errors.Is(err, workflow.ErrInvalidHashFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}
	c.JSON(http.StatusOK, verdict)
}
