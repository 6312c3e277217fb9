package models

import (
	"encoding/json"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusPending   DocumentStatus = "PENDING"
	StatusInReview  DocumentStatus = "IN_REVIEW"
	StatusApproved  DocumentStatus = "APPROVED"
	StatusRejected  DocumentStatus = "REJECTED"
	StatusCompleted DocumentStatus = "COMPLETED"
)

// Document is an uploaded or requested artifact. ContentHash always reflects
// the current Content bytes; stamping a signature rewrites both together.
type Document struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	DocType     string `gorm:"index;not null"`
	Content     []byte `gorm:"type:bytea"`
	MimeType    string
	ContentHash string         `gorm:"index;not null"`
	Status      DocumentStatus `gorm:"not null;default:'PENDING'"`
	UserID      uint           `gorm:"index"`
	Metadata    JSONMap        `gorm:"type:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (d *Document) IsPDF() bool {
	if strings.EqualFold(d.MimeType, "application/pdf") {
		return true
	}
	return len(d.Content) >= 5 && string(d.Content[:5]) == "%PDF-"
}

// Resolved reports whether the document reached a terminal review state.
func (d *Document) Resolved() bool {
	switch d.Status {
	case StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// PlacementRecord is one entry of the signature placement history kept in the
// document metadata map.
type PlacementRecord struct {
	Role     string    `json:"role"`
	Page     int       `json:"page"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	SignedAt time.Time `json:"signedAt"`
}

const metadataPlacementsKey = "placements"

func (d *Document) PlacementHistory() []PlacementRecord {
	raw, ok := d.Metadata[metadataPlacementsKey]
	if !ok {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var recs []PlacementRecord
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil
	}
	return recs
}

// RecordPlacement appends rec to the placement history, replacing any prior
// record for the same role. Records of other roles are preserved.
func (d *Document) RecordPlacement(rec PlacementRecord) {
	history := d.PlacementHistory()
	kept := make([]PlacementRecord, 0, len(history)+1)
	for _, r := range history {
		if !strings.EqualFold(r.Role, rec.Role) {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rec)
	if d.Metadata == nil {
		d.Metadata = JSONMap{}
	}
	d.Metadata[metadataPlacementsKey] = kept
}
