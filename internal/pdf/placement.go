package pdf

import (
	"errors"
	"math"
	"strings"
)

// Default stamp rectangle, in PDF points.
const (
	DefaultStampWidth  = 150.0
	DefaultStampHeight = 56.0
)

var (
	// ErrNoPlacement means neither the template nor the default layout has a
	// slot for the (document type, role) pair. Callers skip stamping; this is
	// never a hard failure.
	ErrNoPlacement = errors.New("no signature placement for role")

	ErrInvalidSignatureFormat = errors.New("signature must be a png or jpeg data URI")
	ErrSourceUnavailable      = errors.New("document content is not available")
)

// NormalizedPlacement is a template-relative slot: Page is 1-indexed and X/Y
// are fractions of the page measured from the top-left corner.
type NormalizedPlacement struct {
	Page   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Placement is an absolute rectangle. Page is 0-indexed; X/Y are the
// lower-left corner in PDF points.
type Placement struct {
	Page   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Layout maps document type -> role -> candidate slots. It backs legacy
// templates that carry no explicit placements.
type Layout map[string]map[string][]NormalizedPlacement

// DefaultLayout returns the built-in per-document-type slot table. Every
// supported (type, role) pair gets some slot even when the template predates
// explicit placement configuration.
func DefaultLayout() Layout {
	return Layout{
		"transcript": {
			"dean":      {{Page: 1, X: 0.28, Y: 0.88}},
			"registrar": {{Page: 1, X: 0.72, Y: 0.88}},
		},
		"recommendation_letter": {
			"hod":  {{Page: 1, X: 0.25, Y: 0.85}},
			"dean": {{Page: 1, X: 0.75, Y: 0.85}},
		},
		"enrollment_verification": {
			"registrar": {{Page: 1, X: 0.5, Y: 0.9}},
		},
	}
}

// Resolver picks the normalized slot for a signing role and converts it into
// an absolute page rectangle.
type Resolver struct {
	layout Layout
}

func NewResolver(layout Layout) *Resolver {
	return &Resolver{layout: layout}
}

// Slot returns the normalized slot to use. An explicit template placement
// wins; otherwise the layout table supplies the fallback, with slotIndex
// selecting among multiple candidates (clamped to the last one).
func (r *Resolver) Slot(docType, role string, explicit []NormalizedPlacement, slotIndex int) (NormalizedPlacement, error) {
	candidates := explicit
	if len(candidates) == 0 {
		candidates = r.fallback(docType, role)
	}
	if len(candidates) == 0 {
		return NormalizedPlacement{}, ErrNoPlacement
	}
	if slotIndex < 0 {
		slotIndex = 0
	}
	if slotIndex >= len(candidates) {
		slotIndex = len(candidates) - 1
	}
	return candidates[slotIndex], nil
}

func (r *Resolver) fallback(docType, role string) []NormalizedPlacement {
	byRole, ok := r.layout[strings.ToLower(docType)]
	if !ok {
		return nil
	}
	return byRole[strings.ToLower(role)]
}

// Rect converts a normalized slot to an absolute rectangle on a page of the
// given size. Normalized Y grows top-down while PDF coordinates grow
// bottom-up, hence the 1-y flip. The rectangle is clamped to stay on-page.
func Rect(np NormalizedPlacement, pageWidth, pageHeight float64) Placement {
	w := np.Width
	if w <= 0 {
		w = DefaultStampWidth
	}
	h := np.Height
	if h <= 0 {
		h = DefaultStampHeight
	}

	page := np.Page - 1
	if page < 0 {
		page = 0
	}

	x := clamp(np.X*pageWidth-w/2, 0, pageWidth-w)
	y := clamp(pageHeight*(1-np.Y)-h/2, 0, pageHeight-h)

	return Placement{Page: page, X: x, Y: y, Width: w, Height: h}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Min(math.Max(v, lo), hi)
}
