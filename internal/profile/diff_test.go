package profile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func baseProfile() Profile {
	return Profile{
		DisplayName:  "Jane Doe",
		PhotoURL:     "https://cdn.example.com/u1/avatar",
		About:        "Aspiring developer",
		LinkedIn:     "https://linkedin.com/in/janedoe",
		Instagram:    "https://instagram.com/jane.ig",
		GitHub:       "https://github.com/janedoe",
		Skills:       []string{"Go", "SQL"},
		ResumeURL:    "https://cdn.example.com/u1/resume.pdf",
		ProjectLinks: []string{"https://x.com/a"},
		Username:     "janedoe",
	}
}

func TestIsDirty_BufferSeededFromBaselineIsClean(t *testing.T) {
	p := baseProfile()
	buf := NewEditBuffer(p)
	require.False(t, IsDirty(buf, p), "freshly seeded buffer must be clean")
}

func TestIsDirty_BareUsernameMatchesFullURL(t *testing.T) {
	p := baseProfile()
	buf := NewEditBuffer(p)
	buf.LinkedIn = "janedoe"
	require.False(t, IsDirty(buf, p))
}

func TestIsDirty_BlankProjectSlotsIgnored(t *testing.T) {
	p := baseProfile()
	buf := NewEditBuffer(p)
	buf.ProjectLinks = []string{"https://x.com/a", "", ""}
	require.False(t, IsDirty(buf, p))
}

func TestIsDirty_UsernameInputExcluded(t *testing.T) {
	p := baseProfile()
	buf := NewEditBuffer(p)
	buf.UsernameInput = "completely-different"
	require.False(t, IsDirty(buf, p), "username is not part of the save flow")
}

func TestIsDirty_FieldChanges(t *testing.T) {
	p := baseProfile()

	mutations := map[string]func(*EditBuffer){
		"display name":    func(b *EditBuffer) { b.DisplayName = "Someone Else" },
		"photo url":       func(b *EditBuffer) { b.PhotoURL = "" },
		"about":           func(b *EditBuffer) { b.About = "changed" },
		"linkedin":        func(b *EditBuffer) { b.LinkedIn = "other" },
		"instagram":       func(b *EditBuffer) { b.Instagram = "" },
		"github":          func(b *EditBuffer) { b.GitHub = "other" },
		"resume url":      func(b *EditBuffer) { b.ResumeURL = "" },
		"skills order":    func(b *EditBuffer) { b.Skills = []string{"SQL", "Go"} },
		"skill added":     func(b *EditBuffer) { b.Skills = append(b.Skills, "Redis") },
		"project link":    func(b *EditBuffer) { b.ProjectLinks[0] = "https://x.com/b" },
		"project cleared": func(b *EditBuffer) { b.ProjectLinks[0] = "" },
	}

	for name, mutate := range mutations {
		buf := NewEditBuffer(p)
		mutate(&buf)
		require.True(t, IsDirty(buf, p), "mutation %q must flip dirty", name)
	}
}

func TestIsDirty_NonCanonicalBaselineURL(t *testing.T) {
	p := baseProfile()
	p.LinkedIn = "https://www.linkedin.com/in/janedoe/?trk=feed"
	buf := NewEditBuffer(p)
	require.Equal(t, "janedoe", buf.LinkedIn)
	require.False(t, IsDirty(buf, p), "both sides normalize through the same path")
}

func TestBuild_ExpandsAndFilters(t *testing.T) {
	p := baseProfile()
	buf := NewEditBuffer(p)
	buf.LinkedIn = "janedoe"
	buf.ProjectLinks = []string{"https://x.com/a", "", "  "}

	built := buf.Build(p)
	require.Equal(t, "https://linkedin.com/in/janedoe", built.LinkedIn)
	require.Equal(t, []string{"https://x.com/a"}, built.ProjectLinks)
	require.Equal(t, p.Username, built.Username, "Build never touches the username")
}

func TestBuild_ThenSeed_IsClean(t *testing.T) {
	p := baseProfile()
	buf := NewEditBuffer(p)
	buf.About = "edited"

	built := buf.Build(p)
	require.False(t, IsDirty(NewEditBuffer(built), built),
		"normalization must be idempotent across a save round trip")
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "abc", TruncateRunes("abc", 5))
	require.Equal(t, "ab", TruncateRunes("abc", 2))
	require.Equal(t, "日本", TruncateRunes("日本語", 2), "truncation counts runes, not bytes")
}

func TestFilterBlank(t *testing.T) {
	require.Equal(t, []string{"a", "b"}, FilterBlank([]string{"a", "", "  ", "b"}))
	require.Empty(t, FilterBlank([]string{"", " "}))
}

func TestPadLinks(t *testing.T) {
	require.Equal(t, []string{"a", "", ""}, PadLinks([]string{"a"}))
	require.Equal(t, []string{"a", "b", "c"}, PadLinks([]string{"a", "b", "c", "d"}))
}
