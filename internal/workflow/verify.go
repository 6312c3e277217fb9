package workflow

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/pkg/metrics"
	"go.uber.org/zap"
)

var hashPattern = regexp.MustCompile(`^[0-9a-fA-F]{64}$`)

// Gateway answers public "is this hash an approved document" queries. Only
// the terminal APPROVED status is authoritative: an in-review or rejected
// document with a matching hash verifies false.
type Gateway struct {
	store   Store
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewGateway(store Store, logger *zap.Logger, collector *metrics.Collector) *Gateway {
	return &Gateway{
		store:   store,
		logger:  logger.With(zap.String("service", "verification_gateway")),
		metrics: collector,
	}
}

type DocumentSummary struct {
	Title      string                `json:"title"`
	DocType    string                `json:"docType"`
	Status     models.DocumentStatus `json:"status"`
	ApprovedAt time.Time             `json:"approvedAt"`
}

type Verdict struct {
	Verified bool             `json:"verified"`
	Document *DocumentSummary `json:"document,omitempty"`
}

// Verify resolves a content hash to a verdict. Malformed input fails with
// ErrInvalidHashFormat before any lookup or audit write happens. Every
// well-formed attempt is appended to the verification audit stream.
func (g *Gateway) Verify(ctx context.Context, hash, clientIP string) (*Verdict, error) {
	if !hashPattern.MatchString(hash) {
		g.metrics.IncrementCounter("verify.malformed", nil)
		return nil, ErrInvalidHashFormat
	}
	normalized := strings.ToLower(hash)

	doc, err := g.store.FindDocumentByHash(ctx, normalized)
	if err != nil {
		return nil, err
	}

	verified := doc != nil && doc.Status == models.StatusApproved

	rec := &models.VerificationLog{
		Hash:     normalized,
		Verified: verified,
		ClientIP: clientIP,
	}
	if err := g.store.AppendVerificationLog(ctx, rec); err != nil {
		// The audit stream is for abuse monitoring; a write failure must not
		// block the caller's answer.
		g.logger.Warn("Failed to append verification log", zap.Error(err))
	}

	g.metrics.IncrementCounter("verify.attempts", map[string]string{"verified": boolLabel(verified)})
	g.logger.Info("Verification attempt",
		zap.String("hash", normalized),
		zap.Bool("verified", verified),
		zap.String("client_ip", clientIP))

	verdict := &Verdict{Verified: verified}
	if verified {
		verdict.Document = &DocumentSummary{
			Title:      doc.Title,
			DocType:    doc.DocType,
			Status:     doc.Status,
			ApprovedAt: doc.UpdatedAt,
		}
	}
	return verdict, nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
