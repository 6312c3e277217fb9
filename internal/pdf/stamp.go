package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/vincent-petithory/dataurl"
	"go.uber.org/zap"
)

const stampOpacity = 0.95

// Stamper embeds signature images into document PDFs and recomputes the
// content hash over the re-serialized bytes. Every successful stamp gives the
// document a new public identity.
type Stamper struct {
	resolver *Resolver
	logger   *zap.Logger
}

func NewStamper(resolver *Resolver, logger *zap.Logger) *Stamper {
	return &Stamper{
		resolver: resolver,
		logger:   logger.With(zap.String("component", "stamper")),
	}
}

type StampRequest struct {
	Content          []byte
	DocType          string
	Role             string
	SignatureDataURI string
	// Explicit template slots for the role, in declaration order. Empty means
	// fall back to the resolver's default layout.
	Explicit  []NormalizedPlacement
	SlotIndex int
}

type StampResult struct {
	Content   []byte
	Hash      string
	Placement Placement
	SignedAt  time.Time
}

// Stamp validates the signature payload, resolves the target rectangle and
// renders the image centered inside it at 95% opacity, scaled uniformly to
// fit. Returns the new PDF bytes together with their SHA-256.
func (s *Stamper) Stamp(req StampRequest) (*StampResult, error) {
	if len(req.Content) == 0 {
		return nil, ErrSourceUnavailable
	}

	imgBytes, err := DecodeSignatureDataURI(req.SignatureDataURI)
	if err != nil {
		return nil, err
	}

	slot, err := s.resolver.Slot(req.DocType, req.Role, req.Explicit, req.SlotIndex)
	if err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()

	pageCount, err := api.PageCount(bytes.NewReader(req.Content), conf)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	pageIdx := slot.Page - 1
	if pageIdx < 0 {
		pageIdx = 0
	}

	content := req.Content
	if pageIdx >= pageCount {
		content, err = extendWithBlankPages(content, pageCount, pageIdx+1, conf)
		if err != nil {
			return nil, fmt.Errorf("extending pdf to page %d: %w", pageIdx+1, err)
		}
	}

	dims, err := api.PageDims(bytes.NewReader(content), conf)
	if err != nil {
		return nil, fmt.Errorf("reading page dimensions: %w", err)
	}
	if pageIdx >= len(dims) {
		return nil, fmt.Errorf("page %d out of range after extension", pageIdx+1)
	}
	dim := dims[pageIdx]

	rect := Rect(slot, dim.Width, dim.Height)

	imgCfg, _, err := image.DecodeConfig(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureFormat, err)
	}
	scale := fitScale(rect, imgCfg.Width, imgCfg.Height)

	// Center the scaled image inside the rectangle, anchored at the page's
	// bottom-left corner.
	offX := rect.X + (rect.Width-float64(imgCfg.Width)*scale)/2
	offY := rect.Y + (rect.Height-float64(imgCfg.Height)*scale)/2

	desc := fmt.Sprintf("pos:bl, off:%.2f %.2f, scale:%.4f abs, rot:0, op:%.2f",
		offX, offY, scale, stampOpacity)

	wm, err := api.ImageWatermarkForReader(bytes.NewReader(imgBytes), desc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("building stamp: %w", err)
	}

	var out bytes.Buffer
	wms := map[int][]*model.Watermark{pageIdx + 1: {wm}}
	if err := api.AddWatermarksSliceMap(bytes.NewReader(content), &out, wms, conf); err != nil {
		return nil, fmt.Errorf("applying stamp: %w", err)
	}

	stamped := out.Bytes()
	sum := sha256.Sum256(stamped)

	s.logger.Info("Signature stamped",
		zap.String("doc_type", req.DocType),
		zap.String("role", req.Role),
		zap.Int("page", pageIdx+1),
		zap.Float64("x", rect.X),
		zap.Float64("y", rect.Y))

	return &StampResult{
		Content:   stamped,
		Hash:      hex.EncodeToString(sum[:]),
		Placement: rect,
		SignedAt:  time.Now().UTC(),
	}, nil
}

// DecodeSignatureDataURI parses a base64 image data URI and returns the raw
// image bytes. Only image/png and image/jpeg payloads are accepted.
func DecodeSignatureDataURI(uri string) ([]byte, error) {
	du, err := dataurl.DecodeString(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignatureFormat, err)
	}
	switch du.ContentType() {
	case "image/png", "image/jpeg":
	default:
		return nil, fmt.Errorf("%w: got %s", ErrInvalidSignatureFormat, du.ContentType())
	}
	if len(du.Data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidSignatureFormat)
	}
	return du.Data, nil
}

// fitScale returns the uniform scale that fits an image of the given pixel
// size inside rect while preserving aspect ratio.
func fitScale(rect Placement, imgWidth, imgHeight int) float64 {
	if imgWidth <= 0 || imgHeight <= 0 {
		return 1
	}
	sx := rect.Width / float64(imgWidth)
	sy := rect.Height / float64(imgHeight)
	if sx < sy {
		return sx
	}
	return sy
}

func extendWithBlankPages(content []byte, pageCount, wantPages int, conf *model.Configuration) ([]byte, error) {
	for n := pageCount; n < wantPages; n++ {
		var buf bytes.Buffer
		// Insert after the current last page.
		if err := api.InsertPages(bytes.NewReader(content), &buf, []string{strconv.Itoa(n)}, false, conf); err != nil {
			return nil, err
		}
		content = buf.Bytes()
	}
	return content, nil
}
