package workflow_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Asantha20535/docuverify-sub000/internal/db/models"
	"github.com/Asantha20535/docuverify-sub000/internal/workflow"
	"github.com/Asantha20535/docuverify-sub000/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(store workflow.Store) *workflow.Gateway {
	return workflow.NewGateway(store, zap.NewNop(), metrics.NewCollector())
}

func TestVerifyMalformedHashFailsBeforeLookup(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store)

	cases := []string{
		strings.Repeat("a", 63),
		strings.Repeat("a", 65),
		strings.Repeat("g", 64),
		"",
		"DROP TABLE documents",
	}
	for _, hash := range cases {
		_, err := gw.Verify(context.Background(), hash, "203.0.113.9")
		assert.ErrorIs(t, err, workflow.ErrInvalidHashFormat, "hash %q", hash)
	}

	assert.Zero(t, store.hashLookups)
	assert.Empty(t, store.verifications)
}

func TestVerifyApprovedDocument(t *testing.T) {
	store := newFakeStore()
	hash := strings.Repeat("ab", 32)
	store.putDocument(models.Document{
		ID:          "doc-1",
		Title:       "Final Transcript",
		DocType:     "transcript",
		ContentHash: hash,
		Status:      models.StatusApproved,
	})
	gw := newTestGateway(store)

	// Lookup is case-insensitive over the hex form.
	verdict, err := gw.Verify(context.Background(), strings.ToUpper(hash), "203.0.113.9")
	require.NoError(t, err)

	assert.True(t, verdict.Verified)
	require.NotNil(t, verdict.Document)
	assert.Equal(t, "Final Transcript", verdict.Document.Title)
	assert.Equal(t, "transcript", verdict.Document.DocType)
	assert.Equal(t, models.StatusApproved, verdict.Document.Status)

	require.Len(t, store.verifications, 1)
	assert.Equal(t, hash, store.verifications[0].Hash)
	assert.True(t, store.verifications[0].Verified)
	assert.Equal(t, "203.0.113.9", store.verifications[0].ClientIP)
}

func TestVerifyUnapprovedDocumentIsNotVerified(t *testing.T) {
	store := newFakeStore()
	hash := strings.Repeat("cd", 32)
	store.putDocument(models.Document{
		ID:          "doc-1",
		Title:       "Pending Transcript",
		DocType:     "transcript",
		ContentHash: hash,
		Status:      models.StatusInReview,
	})
	gw := newTestGateway(store)

	verdict, err := gw.Verify(context.Background(), hash, "203.0.113.9")
	require.NoError(t, err)

	// A matching hash is not enough; only terminal approval verifies.
	assert.False(t, verdict.Verified)
	assert.Nil(t, verdict.Document)

	require.Len(t, store.verifications, 1)
	assert.False(t, store.verifications[0].Verified)
}

func TestVerifyUnknownHashIsLogged(t *testing.T) {
	store := newFakeStore()
	gw := newTestGateway(store)

	verdict, err := gw.Verify(context.Background(), strings.Repeat("0", 64), "198.51.100.4")
	require.NoError(t, err)

	assert.False(t, verdict.Verified)
	assert.Nil(t, verdict.Document)
	require.Len(t, store.verifications, 1)
	assert.False(t, store.verifications[0].Verified)
}
