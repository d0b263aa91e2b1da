// Package identity models the signed-in identity supplied by the identity
// provider: the stable user id plus the provider's default display name,
// avatar and email, carried in a signed bearer token.
package identity

// Identity describes the authenticated caller.
type Identity struct {
	UserID string
	Email  string

	// Provider defaults, used to fill a freshly created profile and to
	// reset the photo to the provider's avatar.
	DisplayName string
	PhotoURL    string
}
