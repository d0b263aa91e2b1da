package profile

import "testing"

func TestLinkedInUsername(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"bare username", "janedoe", "janedoe"},
		{"full url", "https://linkedin.com/in/janedoe", "janedoe"},
		{"www url with trailing slash", "https://www.linkedin.com/in/janedoe/", "janedoe"},
		{"url with query", "https://linkedin.com/in/janedoe?trk=feed", "janedoe"},
		{"host without /in/", "linkedin.com/janedoe", "janedoe"},
		{"surrounding whitespace", "  janedoe  ", "janedoe"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := LinkedInUsername(tt.raw); got != tt.want {
				t.Fatalf("LinkedInUsername(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestGitHubUsername(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"octocat", "octocat"},
		{"https://github.com/octocat", "octocat"},
		{"github.com/octocat/", "octocat"},
		{"https://github.com/octocat?tab=repositories", "octocat"},
	}
	for _, tt := range tests {
		if got := GitHubUsername(tt.raw); got != tt.want {
			t.Fatalf("GitHubUsername(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestInstagramUsername(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"jane.ig", "jane.ig"},
		{"https://instagram.com/jane.ig/", "jane.ig"},
		{"https://www.instagram.com/jane.ig?igsh=x", "jane.ig"},
	}
	for _, tt := range tests {
		if got := InstagramUsername(tt.raw); got != tt.want {
			t.Fatalf("InstagramUsername(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestExpansion_EmptyStaysEmpty(t *testing.T) {
	if got := LinkedInURL(""); got != "" {
		t.Fatalf("LinkedInURL(\"\") = %q, want empty", got)
	}
	if got := GitHubURL("  "); got != "" {
		t.Fatalf("GitHubURL blank = %q, want empty", got)
	}
	if got := InstagramURL("/"); got != "" {
		t.Fatalf("InstagramURL slash = %q, want empty", got)
	}
}

func TestExpansion_CanonicalURLs(t *testing.T) {
	if got := LinkedInURL("janedoe"); got != "https://linkedin.com/in/janedoe" {
		t.Fatalf("LinkedInURL = %q", got)
	}
	if got := GitHubURL("octocat/"); got != "https://github.com/octocat" {
		t.Fatalf("GitHubURL = %q", got)
	}
	if got := InstagramURL("jane.ig"); got != "https://instagram.com/jane.ig" {
		t.Fatalf("InstagramURL = %q", got)
	}
}

// Extraction after expansion must be the identity on bare usernames: this is
// what keeps the diff comparison stable across load/save cycles.
func TestExtractExpand_RoundTrip(t *testing.T) {
	for _, u := range []string{"janedoe", "jane-doe", "jane_doe99"} {
		if got := LinkedInUsername(LinkedInURL(u)); got != u {
			t.Fatalf("linkedin round trip %q -> %q", u, got)
		}
		if got := GitHubUsername(GitHubURL(u)); got != u {
			t.Fatalf("github round trip %q -> %q", u, got)
		}
		if got := InstagramUsername(InstagramURL(u)); got != u {
			t.Fatalf("instagram round trip %q -> %q", u, got)
		}
	}
}
