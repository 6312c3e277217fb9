// Package visibility encodes and decodes the audience of review comments.
//
// Reviewer comments are stored as plain text with at most one leading inline
// tag: "[vis:role1,role2]" names explicit recipient roles, "[aud:student]",
// "[aud:next_reviewer]" or "[aud:both]" is the coarse audience shorthand used
// when no recipient list is given. A comment without a tag is internal-only
// and surfaces nowhere outside privileged audit views.
package visibility

import (
	"regexp"
	"sort"
	"strings"
)

type Audience string

const (
	AudienceNone         Audience = ""
	AudienceStudent      Audience = "student"
	AudienceNextReviewer Audience = "next_reviewer"
	AudienceBoth         Audience = "both"
)

// Visibility is the first-class form of a comment's audience. Targets wins
// over Audience when both are set.
type Visibility struct {
	Audience Audience
	Targets  []string
}

// Comment is a decoded stored comment.
type Comment struct {
	Audience Audience
	Targets  []string
	Text     string
}

// Viewer identifies who is asking to read a comment. Privileged viewers
// (admin audit views) see everything.
type Viewer struct {
	Role       string
	IsOwner    bool
	Privileged bool
}

var tagPattern = regexp.MustCompile(`^\[(vis|aud):([^\]]*)\]\s*`)

// NormalizeRoles lower-cases, trims and de-duplicates a role list. The result
// is sorted so that encoding is deterministic regardless of input order.
func NormalizeRoles(roles []string) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// Encode prepends the visibility tag to text. An empty Visibility leaves the
// text untouched, which makes the comment internal-only.
func Encode(v Visibility, text string) string {
	targets := NormalizeRoles(v.Targets)
	if len(targets) > 0 {
		return "[vis:" + strings.Join(targets, ",") + "] " + text
	}
	switch v.Audience {
	case AudienceStudent, AudienceNextReviewer, AudienceBoth:
		return "[aud:" + string(v.Audience) + "] " + text
	}
	return text
}

// Decode strips at most one leading tag and returns the structured comment.
// Unknown audience values decode to AudienceNone.
func Decode(stored string) Comment {
	m := tagPattern.FindStringSubmatch(stored)
	if m == nil {
		return Comment{Text: stored}
	}
	text := stored[len(m[0]):]
	switch m[1] {
	case "vis":
		targets := NormalizeRoles(strings.Split(m[2], ","))
		if len(targets) == 0 {
			return Comment{Text: text}
		}
		return Comment{Targets: targets, Text: text}
	case "aud":
		switch Audience(strings.ToLower(strings.TrimSpace(m[2]))) {
		case AudienceStudent:
			return Comment{Audience: AudienceStudent, Text: text}
		case AudienceNextReviewer:
			return Comment{Audience: AudienceNextReviewer, Text: text}
		case AudienceBoth:
			return Comment{Audience: AudienceBoth, Text: text}
		}
		return Comment{Text: text}
	}
	return Comment{Text: stored}
}

// VisibleTo reports whether the comment may be shown to v.
func (c Comment) VisibleTo(v Viewer) bool {
	if v.Privileged {
		return true
	}
	if len(c.Targets) > 0 {
		role := strings.ToLower(strings.TrimSpace(v.Role))
		for _, t := range c.Targets {
			if t == role {
				return true
			}
		}
		return false
	}
	switch c.Audience {
	case AudienceStudent:
		return v.IsOwner
	case AudienceNextReviewer:
		return !strings.EqualFold(v.Role, "student")
	case AudienceBoth:
		return true
	}
	return false
}

// Filter decodes stored comments and keeps the ones visible to v.
func Filter(stored []string, v Viewer) []Comment {
	visible := make([]Comment, 0, len(stored))
	for _, s := range stored {
		c := Decode(s)
		if c.VisibleTo(v) {
			visible = append(visible, c)
		}
	}
	return visible
}
