package models

import (
	"time"

	"gorm.io/gorm"
)

// Workflow tracks the ordered reviewer chain of a single document.
// Version is an optimistic concurrency token: the store only applies an
// update when the persisted version still matches the one that was read.
type Workflow struct {
	ID          string     `gorm:"primaryKey"`
	DocumentID  string     `gorm:"uniqueIndex;not null"`
	StepRoles   StringList `gorm:"type:json;not null"`
	CurrentStep int        `gorm:"not null;default:0"`
	TotalSteps  int        `gorm:"not null"`
	IsCompleted bool       `gorm:"not null;default:false"`
	Version     int        `gorm:"not null;default:1"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CurrentRole returns the role assigned to the current step, or false when
// the step pointer has moved past the end of the chain.
func (w *Workflow) CurrentRole() (string, bool) {
	if w.CurrentStep < 0 || w.CurrentStep >= len(w.StepRoles) {
		return "", false
	}
	return w.StepRoles[w.CurrentStep], true
}

type ActionType string

const (
	ActionUploaded  ActionType = "UPLOADED"
	ActionApproved  ActionType = "APPROVED"
	ActionForwarded ActionType = "FORWARDED"
	ActionRejected  ActionType = "REJECTED"
	ActionSigned    ActionType = "SIGNED"
)

// WorkflowAction is one immutable audit record of a reviewer decision.
// Rows are append-only; creation order defines the audit trail.
type WorkflowAction struct {
	gorm.Model
	WorkflowID    string     `gorm:"index;not null"`
	ActorID       uint       `gorm:"index"`
	ActorRole     string     `gorm:"not null"`
	Action        ActionType `gorm:"not null"`
	Comment       string     `gorm:"type:text"` // visibility-encoded, see internal/visibility
	Step          int        `gorm:"not null"`
	SignatureData string     `gorm:"type:text"` // signature image data URI, if any
	SignerName    string
}
