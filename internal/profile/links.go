package profile

import "strings"

// The editor accepts either a bare username or a pasted profile URL for each
// social link. Extraction strips the host prefix and query noise down to the
// bare username; expansion rebuilds the canonical URL at save time. Both
// directions are used by the diff engine so a buffer and a baseline are always
// compared in the same form.

func extractUsername(raw string, prefixes ...string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	for _, p := range prefixes {
		if _, after, found := strings.Cut(s, p); found {
			s = after
			break
		}
	}
	s, _, _ = strings.Cut(s, "?")
	return strings.Trim(strings.TrimSpace(s), "/")
}

func expandUsername(username, base string) string {
	u := strings.Trim(strings.TrimSpace(username), "/")
	if u == "" {
		return ""
	}
	return base + u
}

// LinkedInUsername extracts the bare username from a pasted LinkedIn URL or
// returns the input cleaned up if it is already bare.
func LinkedInUsername(raw string) string {
	return extractUsername(raw, "linkedin.com/in/", "linkedin.com/")
}

// GitHubUsername extracts the bare username from a pasted GitHub URL.
func GitHubUsername(raw string) string {
	return extractUsername(raw, "github.com/")
}

// InstagramUsername extracts the bare handle from a pasted Instagram URL.
func InstagramUsername(raw string) string {
	return extractUsername(raw, "instagram.com/")
}

// LinkedInURL expands a bare username to the canonical profile URL.
// Empty stays empty.
func LinkedInURL(username string) string {
	return expandUsername(username, "https://linkedin.com/in/")
}

// GitHubURL expands a bare username to the canonical profile URL.
func GitHubURL(username string) string {
	return expandUsername(username, "https://github.com/")
}

// InstagramURL expands a bare handle to the canonical profile URL.
func InstagramURL(username string) string {
	return expandUsername(username, "https://instagram.com/")
}
