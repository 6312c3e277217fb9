package pdf

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 1x1 transparent PNG.
const testSignatureDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

func TestDecodeSignatureDataURI(t *testing.T) {
	data, err := DecodeSignatureDataURI(testSignatureDataURI)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestDecodeSignatureDataURIRejectsGarbage(t *testing.T) {
	_, err := DecodeSignatureDataURI("not a data uri")
	assert.ErrorIs(t, err, ErrInvalidSignatureFormat)
}

func TestDecodeSignatureDataURIRejectsNonImageMime(t *testing.T) {
	_, err := DecodeSignatureDataURI("data:text/plain;base64,aGVsbG8=")
	assert.ErrorIs(t, err, ErrInvalidSignatureFormat)

	_, err = DecodeSignatureDataURI("data:image/gif;base64,R0lGODlhAQABAAAAACw=")
	assert.ErrorIs(t, err, ErrInvalidSignatureFormat)
}

func TestDecodeSignatureDataURIRejectsEmptyPayload(t *testing.T) {
	_, err := DecodeSignatureDataURI("data:image/png;base64,")
	assert.ErrorIs(t, err, ErrInvalidSignatureFormat)
}

func TestStampEmptyContent(t *testing.T) {
	s := NewStamper(NewResolver(DefaultLayout()), zap.NewNop())

	_, err := s.Stamp(StampRequest{
		Content:          nil,
		DocType:          "transcript",
		Role:             "dean",
		SignatureDataURI: testSignatureDataURI,
	})
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestStampInvalidSignatureBeforeTouchingPDF(t *testing.T) {
	s := NewStamper(NewResolver(DefaultLayout()), zap.NewNop())

	_, err := s.Stamp(StampRequest{
		Content:          []byte("%PDF-1.4 whatever"),
		DocType:          "transcript",
		Role:             "dean",
		SignatureDataURI: "data:text/plain;base64,aGVsbG8=",
	})
	assert.ErrorIs(t, err, ErrInvalidSignatureFormat)
}

func TestStampWithoutPlacement(t *testing.T) {
	s := NewStamper(NewResolver(DefaultLayout()), zap.NewNop())

	_, err := s.Stamp(StampRequest{
		Content:          []byte("%PDF-1.4 whatever"),
		DocType:          "transcript",
		Role:             "bursar",
		SignatureDataURI: testSignatureDataURI,
	})
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestStampUnreadablePDF(t *testing.T) {
	s := NewStamper(NewResolver(DefaultLayout()), zap.NewNop())

	_, err := s.Stamp(StampRequest{
		Content:          []byte("%PDF-1.4 truncated garbage"),
		DocType:          "transcript",
		Role:             "dean",
		SignatureDataURI: testSignatureDataURI,
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoPlacement)
	assert.NotErrorIs(t, err, ErrInvalidSignatureFormat)
}

func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 30, B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func onePagePDF(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(signaturePNG(t))}, nil, model.NewDefaultConfiguration())
	require.NoError(t, err)
	return buf.Bytes()
}

func TestStampRewritesContentAndHash(t *testing.T) {
	s := NewStamper(NewResolver(DefaultLayout()), zap.NewNop())
	src := onePagePDF(t)

	res, err := s.Stamp(StampRequest{
		Content:          src,
		DocType:          "transcript",
		Role:             "dean",
		SignatureDataURI: testSignatureDataURI,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	assert.NotEqual(t, src, res.Content)

	sum := sha256.Sum256(res.Content)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Hash)
	assert.Equal(t, 0, res.Placement.Page)
	assert.False(t, res.SignedAt.IsZero())

	// The stamped bytes are a readable single-page PDF.
	count, err := api.PageCount(bytes.NewReader(res.Content), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStampExtendsWithBlankPages(t *testing.T) {
	s := NewStamper(NewResolver(DefaultLayout()), zap.NewNop())

	res, err := s.Stamp(StampRequest{
		Content:          onePagePDF(t),
		DocType:          "transcript",
		Role:             "dean",
		SignatureDataURI: testSignatureDataURI,
		Explicit:         []NormalizedPlacement{{Page: 3, X: 0.5, Y: 0.5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Placement.Page)

	count, err := api.PageCount(bytes.NewReader(res.Content), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFitScalePreservesAspectRatio(t *testing.T) {
	rect := Placement{Width: 150, Height: 56}

	// Height is the binding constraint for a 2:1 image in a ~2.7:1 rectangle.
	assert.InDelta(t, 0.5, fitScale(rect, 300, 112), 0.0001)

	// Width binds for a very wide image.
	assert.InDelta(t, 0.25, fitScale(rect, 600, 50), 0.0001)

	// Degenerate dimensions fall back to no scaling.
	assert.Equal(t, 1.0, fitScale(rect, 0, 100))
	assert.Equal(t, 1.0, fitScale(rect, 100, -1))
}
