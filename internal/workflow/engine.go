package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/pdf"
	"github.com/Asantha20535/docuverify-sub000/internal/visibility"
	"github.com/Asantha20535/docuverify-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// Action is a reviewer decision keyword as submitted over the API.
type Action string

const (
	ActionApprove Action = "approve"
	ActionForward Action = "forward"
	ActionReject  Action = "reject"
)

// Actor is the authenticated reviewer submitting an action. The engine never
// authenticates; it only authorizes the supplied role against the current
// step.
type Actor struct {
	ID   uint
	Name string
	Role string
}

// Engine advances documents through their ordered reviewer chain.
type Engine struct {
	store   Store
	stamper *pdf.Stamper
	logger  *zap.Logger
	metrics *metrics.Collector
}

func NewEngine(store Store, stamper *pdf.Stamper, logger *zap.Logger, collector *metrics.Collector) *Engine {
	return &Engine{
		store:   store,
		stamper: stamper,
		logger:  logger.With(zap.String("service", "workflow_engine")),
		metrics: collector,
	}
}

type SubmitRequest struct {
	WorkflowID string
	Actor      Actor
	Action     Action
	Comment    string
	Visibility visibility.Visibility
	// SignatureDataURI, when set, triggers stamping for PDF documents.
	SignatureDataURI string
}

type SubmitResult struct {
	Workflow *models.Workflow
	Document *models.Document
	Stamped  bool
}

// SubmitAction validates the actor against the current step, appends the
// audit record, optionally stamps the signature image into the PDF, and
// advances the state machine. The audit append, the workflow update and the
// document update commit together or not at all.
//
// Stamping is deliberately non-transactional with the decision: a failed
// stamp is logged and counted but the review decision still stands.
func (e *Engine) SubmitAction(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	start := time.Now()
	var result SubmitResult

	err := e.store.Atomically(ctx, func(tx Store) error {
		wf, err := tx.GetWorkflow(ctx, req.WorkflowID)
		if err != nil {
			return err
		}
		if wf.IsCompleted {
			return ErrWorkflowCompleted
		}
		stepRole, ok := wf.CurrentRole()
		if !ok {
			return ErrWorkflowCompleted
		}
		if !strings.EqualFold(req.Actor.Role, stepRole) {
			return ErrUnauthorized
		}

		var recorded models.ActionType
		switch req.Action {
		case ActionApprove:
			recorded = models.ActionApproved
		case ActionForward:
			recorded = models.ActionForwarded
		case ActionReject:
			recorded = models.ActionRejected
		default:
			return ErrInvalidAction
		}

		doc, err := tx.GetDocument(ctx, wf.DocumentID)
		if err != nil {
			return err
		}

		action := &models.WorkflowAction{
			WorkflowID:    wf.ID,
			ActorID:       req.Actor.ID,
			ActorRole:     strings.ToLower(stepRole),
			Action:        recorded,
			Comment:       visibility.Encode(req.Visibility, req.Comment),
			Step:          wf.CurrentStep,
			SignatureData: req.SignatureDataURI,
			SignerName:    req.Actor.Name,
		}
		if err := tx.AppendAction(ctx, action); err != nil {
			return err
		}

		if req.SignatureDataURI != "" && doc.IsPDF() {
			result.Stamped = e.stamp(ctx, tx, wf, doc, stepRole, req.SignatureDataURI)
		}

		switch req.Action {
		case ActionReject:
			// The step pointer stays put on reject; completion is what stops
			// further submissions.
			wf.IsCompleted = true
			doc.Status = models.StatusRejected
		default:
			wf.CurrentStep++
			if wf.CurrentStep >= wf.TotalSteps {
				wf.IsCompleted = true
				doc.Status = models.StatusApproved
			} else {
				doc.Status = models.StatusInReview
			}
		}

		if err := tx.UpdateWorkflow(ctx, wf); err != nil {
			return err
		}
		if err := tx.UpdateDocument(ctx, doc); err != nil {
			return err
		}

		result.Workflow = wf
		result.Document = doc
		return nil
	})
	if err != nil {
		e.metrics.IncrementCounter("workflow.submit_failures", map[string]string{"action": string(req.Action)})
		return nil, err
	}

	e.metrics.IncrementCounter("workflow.actions", map[string]string{"action": string(req.Action)})
	e.metrics.ObserveLatency("workflow.submit", time.Since(start))

	e.logger.Info("Workflow action applied",
		zap.String("workflow_id", req.WorkflowID),
		zap.String("action", string(req.Action)),
		zap.Uint("actor_id", req.Actor.ID),
		zap.Int("step", result.Workflow.CurrentStep),
		zap.Bool("completed", result.Workflow.IsCompleted))

	return &result, nil
}

// stamp embeds the signature image and rewrites the document content and
// hash. Returns false on any failure; failures never propagate.
func (e *Engine) stamp(ctx context.Context, tx Store, wf *models.Workflow, doc *models.Document, role, sigDataURI string) bool {
	var explicit []pdf.NormalizedPlacement
	tpl, err := tx.GetTemplate(ctx, doc.DocType)
	if err != nil {
		e.logger.Warn("Template lookup failed, using default layout", zap.Error(err), zap.String("doc_type", doc.DocType))
	} else if tpl != nil {
		for _, p := range tpl.PlacementsFor(role) {
			explicit = append(explicit, pdf.NormalizedPlacement{
				Page: p.Page, X: p.X, Y: p.Y, Width: p.Width, Height: p.Height,
			})
		}
	}

	res, err := e.stamper.Stamp(pdf.StampRequest{
		Content:          doc.Content,
		DocType:          doc.DocType,
		Role:             role,
		SignatureDataURI: sigDataURI,
		Explicit:         explicit,
		SlotIndex:        e.priorSignings(ctx, tx, wf.ID, role),
	})
	if err != nil {
		if errors.Is(err, pdf.ErrNoPlacement) {
			e.logger.Info("No placement for role, skipping stamp",
				zap.String("workflow_id", wf.ID), zap.String("role", role))
		} else {
			e.logger.Warn("Signature stamping failed, decision stands",
				zap.Error(err), zap.String("workflow_id", wf.ID), zap.String("role", role))
		}
		e.metrics.IncrementCounter("workflow.stamp_failures", nil)
		return false
	}

	doc.Content = res.Content
	doc.ContentHash = res.Hash
	doc.MimeType = "application/pdf"
	doc.RecordPlacement(models.PlacementRecord{
		Role:     strings.ToLower(role),
		Page:     res.Placement.Page + 1,
		X:        res.Placement.X,
		Y:        res.Placement.Y,
		Width:    res.Placement.Width,
		Height:   res.Placement.Height,
		SignedAt: res.SignedAt,
	})

	sigAction := &models.WorkflowAction{
		WorkflowID: wf.ID,
		ActorRole:  strings.ToLower(role),
		Action:     models.ActionSigned,
		Step:       wf.CurrentStep,
	}
	if err := tx.AppendAction(ctx, sigAction); err != nil {
		e.logger.Warn("Failed to record signing audit row", zap.Error(err))
	}

	e.metrics.IncrementCounter("workflow.stamps", nil)
	return true
}

// priorSignings counts earlier SIGNED audit rows by the role, which selects
// the next candidate slot when a template defines several for one role.
func (e *Engine) priorSignings(ctx context.Context, tx Store, workflowID, role string) int {
	actions, err := tx.ListActions(ctx, workflowID)
	if err != nil {
		return 0
	}
	n := 0
	for _, a := range actions {
		if a.Action == models.ActionSigned && strings.EqualFold(a.ActorRole, role) {
			n++
		}
	}
	return n
}
