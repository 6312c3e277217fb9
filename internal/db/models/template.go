package models

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
	"time"
)

// SignaturePlacement is a normalized slot on the template PDF. Page is
// 1-indexed, X and Y are measured top-down in [0,1]. Width/Height are in PDF
// points; zero means the default stamp size applies.
type SignaturePlacement struct {
	Role   string  `json:"role"`
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

type PlacementList []SignaturePlacement

func (l PlacementList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *PlacementList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// DocumentTemplate is the admin-configured blueprint for a document type:
// the approval-role path plus the signature slots each role stamps into.
type DocumentTemplate struct {
	ID           string        `gorm:"primaryKey"`
	DocType      string        `gorm:"uniqueIndex;not null"`
	ApprovalPath StringList    `gorm:"type:json;not null"`
	Placements   PlacementList `gorm:"type:json"`
	TemplateFile []byte        `gorm:"type:bytea"`
	PageCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlacementsFor returns the candidate slots for role, in declaration order.
func (t *DocumentTemplate) PlacementsFor(role string) []SignaturePlacement {
	var slots []SignaturePlacement
	for _, p := range t.Placements {
		if strings.EqualFold(p.Role, role) {
			slots = append(slots, p)
		}
	}
	return slots
}

// MissingPlacementRoles lists approval-path roles that have no slot yet.
// A template is usable only when this is empty.
func (t *DocumentTemplate) MissingPlacementRoles() []string {
	var missing []string
	for _, role := range t.ApprovalPath {
		if len(t.PlacementsFor(role)) == 0 {
			missing = append(missing, role)
		}
	}
	return missing
}
