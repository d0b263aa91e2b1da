// Package registry manages unique usernames: availability lookups and
// cooldown-gated changes backed by the usernames repository.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/server/repositories/usernames"
)

// Client is the username registry surface used by profile sessions.
type Client interface {
	// CheckAvailability reports whether the candidate is free to claim.
	// It is a pure read and never reserves anything.
	CheckAvailability(ctx context.Context, candidate string) (bool, error)
	// ChangeUsername claims the candidate for the user, releasing their
	// previous username. Fails with common.ErrorInvalidUsername,
	// common.ErrorCooldownActive or common.ErrorUsernameTaken.
	ChangeUsername(ctx context.Context, userID string, candidate string) (*usernames.Claim, error)
}

type client struct {
	repo      usernames.Repository
	policy    CooldownPolicy
	nowMillis func() int64
}

// NewClient returns a registry client with the given cooldown policy.
func NewClient(repo usernames.Repository, policy CooldownPolicy) Client {
	return &client{
		repo:   repo,
		policy: policy,
		nowMillis: func() int64 {
			return time.Now().UnixMilli()
		},
	}
}

// normalizeKey produces the case-insensitive uniqueness key for a username.
func normalizeKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func (c *client) CheckAvailability(ctx context.Context, candidate string) (bool, error) {
	key := normalizeKey(candidate)
	if key == "" {
		return false, common.ErrorInvalidUsername
	}

	_, err := c.repo.Owner(ctx, key)
	if errors.Is(err, common.ErrorNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return false, nil
}

func (c *client) ChangeUsername(ctx context.Context, userID string, candidate string) (*usernames.Claim, error) {
	username := strings.TrimSpace(candidate)
	if username == "" {
		return nil, common.ErrorInvalidUsername
	}

	lastChangeAt, err := c.repo.LastChangeAt(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	now := c.nowMillis()
	if !c.policy.Permitted(lastChangeAt, now) {
		return nil, &CooldownError{RemainingDays: c.policy.RemainingDays(lastChangeAt, now)}
	}

	claim, err := c.repo.Claim(ctx, userID, normalizeKey(username), username, now)
	if err != nil {
		if errors.Is(err, common.ErrorUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	return claim, nil
}
