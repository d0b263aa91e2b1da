package profiles

import (
	"context"

	"github.com/binarybhaskar/branchit/internal/profile"
)

type Repository interface {
	// Get returns the profile for the given user, or common.ErrorNotFound.
	Get(ctx context.Context, userID string) (*profile.Profile, error)

	// Upsert writes the full profile record for the given user,
	// replacing any existing row. Partial patches are not supported;
	// callers merge before calling.
	Upsert(ctx context.Context, userID string, p *profile.Profile) error
}
