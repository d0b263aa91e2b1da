package usernames

import "context"

// Claim is the outcome of a successful username reservation.
type Claim struct {
	Username  string
	UpdatedAt int64 // Unix milliseconds, assigned at claim time
}

type Repository interface {
	// Owner returns the user id holding the given case-normalized key,
	// or common.ErrorNotFound if the key is unclaimed.
	Owner(ctx context.Context, key string) (string, error)

	// LastChangeAt returns the Unix-millisecond timestamp of the user's last
	// username change, or 0 if the user has never held a username.
	LastChangeAt(ctx context.Context, userID string) (int64, error)

	// Claim atomically reserves the username for the user: it verifies the
	// key is unclaimed (or already held by this user), releases any previous
	// username held by the user, inserts the new reservation, and mirrors
	// the result onto the profile row. Fails with common.ErrorUsernameTaken
	// when another identity holds the key, including when losing a race.
	Claim(ctx context.Context, userID, key, username string, now int64) (*Claim, error)
}
