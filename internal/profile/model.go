// Package profile holds the profile data model and the pure normalization and
// diffing logic the settings engine is built on. Nothing in this package does
// I/O; storage, registry and upload concerns live in their own clients.
package profile

import (
	"strings"

	"github.com/binarybhaskar/branchit/internal/common"
)

// Profile is the durable profile record, keyed by user identity. Social link
// fields hold fully qualified canonical URLs; the bare usernames shown in the
// editor are derived, not stored. Timestamps are Unix milliseconds; zero means
// never set.
type Profile struct {
	DisplayName       string   `json:"displayName"`
	PhotoURL          string   `json:"photoUrl"`
	About             string   `json:"about"`
	LinkedIn          string   `json:"linkedin"`
	Instagram         string   `json:"instagram"`
	GitHub            string   `json:"github"`
	Skills            []string `json:"skills"`
	ResumeURL         string   `json:"resumeUrl"`
	ProjectLinks      []string `json:"projectLinks"`
	Username          string   `json:"username"`
	UsernameUpdatedAt int64    `json:"usernameUpdatedAt"`
	UpdatedAt         int64    `json:"updatedAt"`
}

// Clone returns a deep copy. Slices are copied so a baseline snapshot cannot
// be mutated through the edit buffer.
func (p Profile) Clone() Profile {
	c := p
	c.Skills = append([]string(nil), p.Skills...)
	c.ProjectLinks = append([]string(nil), p.ProjectLinks...)
	return c
}

// EditBuffer is the session-local working copy of the profile fields under
// active editing. Social links are held as bare usernames, the way the editor
// presents them. ProjectLinks is padded to MaxProjectLinks slots so the editor
// can address slots positionally; blanks are filtered on save and on diff.
type EditBuffer struct {
	DisplayName  string
	PhotoURL     string
	About        string
	LinkedIn     string
	Instagram    string
	GitHub       string
	Skills       []string
	ResumeURL    string
	ProjectLinks []string

	// UsernameInput is the candidate username being typed. It is committed
	// through the registry, never through Save, and is excluded from diffing.
	UsernameInput string
}

// NewEditBuffer seeds an edit buffer from a profile snapshot, applying the
// same input-time truncation and username extraction the editor applies.
func NewEditBuffer(p Profile) EditBuffer {
	return EditBuffer{
		DisplayName:   TruncateRunes(p.DisplayName, common.MaxDisplayNameLen),
		PhotoURL:      p.PhotoURL,
		About:         TruncateRunes(p.About, common.MaxAboutLen),
		LinkedIn:      LinkedInUsername(p.LinkedIn),
		Instagram:     InstagramUsername(p.Instagram),
		GitHub:        GitHubUsername(p.GitHub),
		Skills:        append([]string(nil), p.Skills...),
		ResumeURL:     p.ResumeURL,
		ProjectLinks:  PadLinks(p.ProjectLinks),
		UsernameInput: p.Username,
	}
}

// Build assembles a full Profile from the edit buffer, expanding bare
// usernames to canonical URLs and dropping blank project links. Username
// fields and timestamps are carried over from the baseline: username changes
// bypass Save entirely, and UpdatedAt is assigned by the store.
func (b EditBuffer) Build(baseline Profile) Profile {
	return Profile{
		DisplayName:       b.DisplayName,
		PhotoURL:          b.PhotoURL,
		About:             b.About,
		LinkedIn:          LinkedInURL(b.LinkedIn),
		Instagram:         InstagramURL(b.Instagram),
		GitHub:            GitHubURL(b.GitHub),
		Skills:            append([]string(nil), b.Skills...),
		ResumeURL:         b.ResumeURL,
		ProjectLinks:      FilterBlank(b.ProjectLinks),
		Username:          baseline.Username,
		UsernameUpdatedAt: baseline.UsernameUpdatedAt,
		UpdatedAt:         baseline.UpdatedAt,
	}
}

// PadLinks pads (or trims) a project link slice to exactly MaxProjectLinks
// slots, preserving existing entries.
func PadLinks(links []string) []string {
	padded := make([]string, common.MaxProjectLinks)
	copy(padded, links)
	return padded
}

// FilterBlank returns the non-blank entries, preserving order.
func FilterBlank(links []string) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

// TruncateRunes cuts s to at most n runes. Used at input time only.
func TruncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
