package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	letterWidth  = 612.0
	letterHeight = 792.0
)

func TestRectCentersOnLetterPage(t *testing.T) {
	rect := Rect(NormalizedPlacement{Page: 1, X: 0.5, Y: 0.5}, letterWidth, letterHeight)

	assert.Equal(t, 0, rect.Page)
	assert.InDelta(t, (letterWidth-DefaultStampWidth)/2, rect.X, 0.001)
	assert.InDelta(t, (letterHeight-DefaultStampHeight)/2, rect.Y, 0.001)
	assert.Equal(t, DefaultStampWidth, rect.Width)
	assert.Equal(t, DefaultStampHeight, rect.Height)
}

func TestRectFlipsNormalizedY(t *testing.T) {
	// Normalized Y near the top of the page lands near the top in PDF
	// coordinates, i.e. at a large Y value.
	top := Rect(NormalizedPlacement{Page: 1, X: 0.5, Y: 0.0}, letterWidth, letterHeight)
	bottom := Rect(NormalizedPlacement{Page: 1, X: 0.5, Y: 1.0}, letterWidth, letterHeight)

	assert.Equal(t, letterHeight-DefaultStampHeight, top.Y)
	assert.Equal(t, 0.0, bottom.Y)
}

func TestRectClampsToPageBounds(t *testing.T) {
	left := Rect(NormalizedPlacement{Page: 1, X: 0.0, Y: 0.5}, letterWidth, letterHeight)
	right := Rect(NormalizedPlacement{Page: 1, X: 1.0, Y: 0.5}, letterWidth, letterHeight)

	assert.Equal(t, 0.0, left.X)
	assert.Equal(t, letterWidth-DefaultStampWidth, right.X)
}

func TestRectHonorsExplicitSize(t *testing.T) {
	rect := Rect(NormalizedPlacement{Page: 2, X: 0.5, Y: 0.5, Width: 200, Height: 80}, letterWidth, letterHeight)

	assert.Equal(t, 1, rect.Page)
	assert.Equal(t, 200.0, rect.Width)
	assert.Equal(t, 80.0, rect.Height)
	assert.InDelta(t, (letterWidth-200)/2, rect.X, 0.001)
}

func TestRectTreatsPageZeroAsFirstPage(t *testing.T) {
	rect := Rect(NormalizedPlacement{Page: 0, X: 0.5, Y: 0.5}, letterWidth, letterHeight)
	assert.Equal(t, 0, rect.Page)
}

func TestSlotPrefersExplicitPlacement(t *testing.T) {
	r := NewResolver(DefaultLayout())

	explicit := []NormalizedPlacement{{Page: 3, X: 0.1, Y: 0.9}}
	slot, err := r.Slot("transcript", "dean", explicit, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, slot.Page)
}

func TestSlotFallsBackToDefaultLayout(t *testing.T) {
	r := NewResolver(DefaultLayout())

	slot, err := r.Slot("transcript", "dean", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, slot.Page)

	// Role matching is case-insensitive.
	_, err = r.Slot("Transcript", "DEAN", nil, 0)
	assert.NoError(t, err)
}

func TestSlotWithoutAnyCandidateFails(t *testing.T) {
	r := NewResolver(DefaultLayout())

	_, err := r.Slot("transcript", "bursar", nil, 0)
	assert.ErrorIs(t, err, ErrNoPlacement)

	_, err = r.Slot("unknown_type", "dean", nil, 0)
	assert.ErrorIs(t, err, ErrNoPlacement)
}

func TestSlotIndexSelectsAndClamps(t *testing.T) {
	r := NewResolver(nil)

	explicit := []NormalizedPlacement{
		{Page: 1, X: 0.2, Y: 0.8},
		{Page: 1, X: 0.8, Y: 0.8},
	}

	first, err := r.Slot("any", "dean", explicit, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.2, first.X)

	second, err := r.Slot("any", "dean", explicit, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.8, second.X)

	// Past the last slot, signings keep re-using the final candidate.
	clamped, err := r.Slot("any", "dean", explicit, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.8, clamped.X)
}
