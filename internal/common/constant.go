package common

// Input-time limits for profile text fields. Values longer than these are
// truncated when they enter the edit buffer, never at save time.
const (
	MaxDisplayNameLen = 50
	MaxAboutLen       = 300
)

// MaxProjectLinks is the number of project link slots on a profile. Blank
// slots are filtered out before persistence.
const MaxProjectLinks = 3

// MaxResumeBytes is the default client-side size cap for resume uploads.
const MaxResumeBytes = 1 << 20 // 1 MiB

// AuthorizationHeaderName carries the bearer token on inbound requests.
const AuthorizationHeaderName = "Authorization"
