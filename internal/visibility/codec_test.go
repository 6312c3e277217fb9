package visibility_test

import (
	"testing"

	"github.com/Asantha20535/docuverify-sub000/internal/visibility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeTargetsRoundTrip(t *testing.T) {
	encoded := visibility.Encode(visibility.Visibility{
		Targets: []string{"Dean", "student", "DEAN", " Student "},
	}, "please re-check the GPA column")

	decoded := visibility.Decode(encoded)

	assert.ElementsMatch(t, []string{"dean", "student"}, decoded.Targets)
	assert.Equal(t, "please re-check the GPA column", decoded.Text)
	assert.Equal(t, visibility.AudienceNone, decoded.Audience)
}

func TestRoundTripIsOrderIndependent(t *testing.T) {
	a := visibility.Encode(visibility.Visibility{Targets: []string{"dean", "student"}}, "x")
	b := visibility.Encode(visibility.Visibility{Targets: []string{"STUDENT", "Dean"}}, "x")
	assert.Equal(t, a, b)
}

func TestEncodeAudienceShorthand(t *testing.T) {
	encoded := visibility.Encode(visibility.Visibility{Audience: visibility.AudienceBoth}, "approved")
	assert.Equal(t, "[aud:both] approved", encoded)

	decoded := visibility.Decode(encoded)
	assert.Equal(t, visibility.AudienceBoth, decoded.Audience)
	assert.Equal(t, "approved", decoded.Text)
}

func TestEncodeWithoutTagIsInternalOnly(t *testing.T) {
	encoded := visibility.Encode(visibility.Visibility{}, "internal note")
	assert.Equal(t, "internal note", encoded)

	decoded := visibility.Decode(encoded)
	assert.False(t, decoded.VisibleTo(visibility.Viewer{Role: "dean"}))
	assert.False(t, decoded.VisibleTo(visibility.Viewer{Role: "student", IsOwner: true}))
	assert.True(t, decoded.VisibleTo(visibility.Viewer{Role: "admin", Privileged: true}))
}

func TestDecodeStripsAtMostOneTag(t *testing.T) {
	decoded := visibility.Decode("[aud:both] [vis:dean] nested")
	assert.Equal(t, visibility.AudienceBoth, decoded.Audience)
	assert.Equal(t, "[vis:dean] nested", decoded.Text)
}

func TestDecodeUnknownAudience(t *testing.T) {
	decoded := visibility.Decode("[aud:everyone] hello")
	assert.Equal(t, visibility.AudienceNone, decoded.Audience)
	assert.Empty(t, decoded.Targets)
	assert.Equal(t, "hello", decoded.Text)
	assert.False(t, decoded.VisibleTo(visibility.Viewer{Role: "dean"}))
}

func TestTargetVisibilityIsCaseInsensitive(t *testing.T) {
	decoded := visibility.Decode("[vis:dean,registrar] sign here")
	require.Len(t, decoded.Targets, 2)

	assert.True(t, decoded.VisibleTo(visibility.Viewer{Role: "Dean"}))
	assert.True(t, decoded.VisibleTo(visibility.Viewer{Role: "REGISTRAR"}))
	assert.False(t, decoded.VisibleTo(visibility.Viewer{Role: "hod"}))
	assert.False(t, decoded.VisibleTo(visibility.Viewer{Role: "student", IsOwner: true}))
}

func TestAudienceVisibility(t *testing.T) {
	student := visibility.Decode("[aud:student] your transcript is ready")
	assert.True(t, student.VisibleTo(visibility.Viewer{Role: "student", IsOwner: true}))
	assert.False(t, student.VisibleTo(visibility.Viewer{Role: "student", IsOwner: false}))
	assert.False(t, student.VisibleTo(visibility.Viewer{Role: "dean"}))

	next := visibility.Decode("[aud:next_reviewer] check page two")
	assert.True(t, next.VisibleTo(visibility.Viewer{Role: "registrar"}))
	assert.True(t, next.VisibleTo(visibility.Viewer{Role: "dean"}))
	assert.False(t, next.VisibleTo(visibility.Viewer{Role: "student", IsOwner: true}))
}

func TestFilter(t *testing.T) {
	stored := []string{
		"[aud:both] visible to all",
		"[aud:student] owner only",
		"[vis:dean] dean only",
		"plain internal",
	}

	visible := visibility.Filter(stored, visibility.Viewer{Role: "dean"})
	require.Len(t, visible, 2)
	assert.Equal(t, "visible to all", visible[0].Text)
	assert.Equal(t, "dean only", visible[1].Text)

	owner := visibility.Filter(stored, visibility.Viewer{Role: "student", IsOwner: true})
	require.Len(t, owner, 2)
	assert.Equal(t, "visible to all", owner[0].Text)
	assert.Equal(t, "owner only", owner[1].Text)

	admin := visibility.Filter(stored, visibility.Viewer{Role: "admin", Privileged: true})
	assert.Len(t, admin, 4)
}
