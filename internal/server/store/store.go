// Package store implements the profile store client: reads and full-record
// upserts against the profiles repository, with write-through to the
// process-wide cache on every successful read or write.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/profile"
	"github.com/binarybhaskar/branchit/internal/server/cache"
	"github.com/binarybhaskar/branchit/internal/server/identity"
	"github.com/binarybhaskar/branchit/internal/server/repositories/profiles"
)

type Client interface {
	// GetOrCreate returns the identity's profile, creating a default-shaped
	// record (display name and photo filled from provider defaults) on
	// first use.
	GetOrCreate(ctx context.Context, id identity.Identity) (*profile.Profile, error)

	// Save upserts the full profile record. Callers must merge before
	// calling; there is no partial patch. The returned profile carries the
	// assigned UpdatedAt.
	Save(ctx context.Context, userID string, p *profile.Profile) (*profile.Profile, error)

	// Cached returns the cache entry for the user without touching the
	// remote store.
	Cached(ctx context.Context, userID string) (*profile.Profile, bool)

	// Evict drops the user's cache entry, e.g. on sign-out.
	Evict(ctx context.Context, userID string)
}

type client struct {
	repo  profiles.Repository
	cache cache.Cache

	// nowMillis is a seam for tests.
	nowMillis func() int64
}

func NewClient(repo profiles.Repository, c cache.Cache) Client {
	return &client{
		repo:      repo,
		cache:     c,
		nowMillis: func() int64 { return time.Now().UnixMilli() },
	}
}

func (c *client) GetOrCreate(ctx context.Context, id identity.Identity) (*profile.Profile, error) {

	p, err := c.repo.Get(ctx, id.UserID)
	if err == nil {
		c.cache.Set(ctx, id.UserID, p)
		return p, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	created := &profile.Profile{
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Skills:      []string{},
		UpdatedAt:   c.nowMillis(),
	}
	if created.DisplayName == "" {
		created.DisplayName = "User"
	}

	if err := c.repo.Upsert(ctx, id.UserID, created); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	c.cache.Set(ctx, id.UserID, created)
	return created, nil
}

func (c *client) Save(ctx context.Context, userID string, p *profile.Profile) (*profile.Profile, error) {

	saved := p.Clone()
	saved.UpdatedAt = c.nowMillis()

	if err := c.repo.Upsert(ctx, userID, &saved); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	c.cache.Set(ctx, userID, &saved)
	return &saved, nil
}

func (c *client) Cached(ctx context.Context, userID string) (*profile.Profile, bool) {
	return c.cache.Get(ctx, userID)
}

func (c *client) Evict(ctx context.Context, userID string) {
	c.cache.Delete(ctx, userID)
}
