package profile

// IsDirty reports whether the edit buffer differs semantically from the
// baseline. Both sides are normalized identically before comparison: bare
// usernames are expanded to canonical URLs (the baseline's stored URLs are
// re-canonicalized through the same extract-then-expand path), and project
// links are blank-filtered, so trailing empty editor slots never register as
// a change. Username is deliberately excluded: username changes commit
// immediately through the registry, outside the batched save flow.
func IsDirty(buf EditBuffer, baseline Profile) bool {
	if buf.DisplayName != baseline.DisplayName {
		return true
	}
	if buf.PhotoURL != baseline.PhotoURL {
		return true
	}
	if buf.About != baseline.About {
		return true
	}
	if LinkedInURL(buf.LinkedIn) != LinkedInURL(LinkedInUsername(baseline.LinkedIn)) {
		return true
	}
	if InstagramURL(buf.Instagram) != InstagramURL(InstagramUsername(baseline.Instagram)) {
		return true
	}
	if GitHubURL(buf.GitHub) != GitHubURL(GitHubUsername(baseline.GitHub)) {
		return true
	}
	if buf.ResumeURL != baseline.ResumeURL {
		return true
	}
	if !equalSeq(buf.Skills, baseline.Skills) {
		return true
	}
	if !equalSeq(FilterBlank(buf.ProjectLinks), FilterBlank(baseline.ProjectLinks)) {
		return true
	}
	return false
}

// equalSeq is ordered sequence equality; nil and empty compare equal.
func equalSeq(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
