package store

import (
	"context"
	"errors"
	"testing"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/profile"
	"github.com/binarybhaskar/branchit/internal/server/cache"
	"github.com/binarybhaskar/branchit/internal/server/identity"
	"github.com/binarybhaskar/branchit/internal/server/repositories/profiles"
	"github.com/stretchr/testify/require"
)

// -------- test fakes --------

type fakeRepo struct {
	profiles.Repository
	byID      map[string]*profile.Profile
	getErr    error
	upsertErr error
	upserts   int
}

func (f *fakeRepo) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.byID[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := p.Clone()
	return &c, nil
}

func (f *fakeRepo) Upsert(ctx context.Context, userID string, p *profile.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.byID == nil {
		f.byID = map[string]*profile.Profile{}
	}
	c := p.Clone()
	f.byID[userID] = &c
	f.upserts++
	return nil
}

func newClient(repo *fakeRepo) (Client, cache.Cache) {
	c := cache.NewMemory()
	cl := NewClient(repo, c).(*client)
	cl.nowMillis = func() int64 { return 1234 }
	return cl, c
}

var jane = identity.Identity{
	UserID:      "u1",
	Email:       "jane@example.com",
	DisplayName: "Jane Doe",
	PhotoURL:    "https://provider/avatar.png",
}

// -------- tests --------

func TestGetOrCreate_ExistingProfile(t *testing.T) {
	repo := &fakeRepo{byID: map[string]*profile.Profile{
		"u1": {DisplayName: "Stored Jane", Username: "jane"},
	}}
	cl, c := newClient(repo)

	got, err := cl.GetOrCreate(context.Background(), jane)
	require.NoError(t, err)
	require.Equal(t, "Stored Jane", got.DisplayName)

	cached, ok := c.Get(context.Background(), "u1")
	require.True(t, ok, "read must seed the cache")
	require.Equal(t, "Stored Jane", cached.DisplayName)
}

func TestGetOrCreate_CreatesDefaultShapedProfile(t *testing.T) {
	repo := &fakeRepo{}
	cl, c := newClient(repo)

	got, err := cl.GetOrCreate(context.Background(), jane)
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", got.DisplayName, "display name from provider default")
	require.Equal(t, "https://provider/avatar.png", got.PhotoURL)
	require.Equal(t, int64(1234), got.UpdatedAt)
	require.Equal(t, 1, repo.upserts, "created record must be persisted")

	_, ok := c.Get(context.Background(), "u1")
	require.True(t, ok)
}

func TestGetOrCreate_BlankProviderNameFallsBack(t *testing.T) {
	repo := &fakeRepo{}
	cl, _ := newClient(repo)

	got, err := cl.GetOrCreate(context.Background(), identity.Identity{UserID: "u2"})
	require.NoError(t, err)
	require.Equal(t, "User", got.DisplayName)
}

func TestGetOrCreate_PersistenceError(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("network down")}
	cl, _ := newClient(repo)

	_, err := cl.GetOrCreate(context.Background(), jane)
	require.ErrorIs(t, err, common.ErrorPersistence)
}

func TestSave_AssignsUpdatedAtAndCaches(t *testing.T) {
	repo := &fakeRepo{}
	cl, c := newClient(repo)

	p := &profile.Profile{DisplayName: "Jane", UpdatedAt: 1}
	saved, err := cl.Save(context.Background(), "u1", p)
	require.NoError(t, err)
	require.Equal(t, int64(1234), saved.UpdatedAt)
	require.Equal(t, int64(1), p.UpdatedAt, "input must not be mutated")

	cached, ok := c.Get(context.Background(), "u1")
	require.True(t, ok)
	require.Equal(t, *saved, *cached)
}

func TestSave_RoundTripEqualsSaved(t *testing.T) {
	repo := &fakeRepo{}
	cl, _ := newClient(repo)
	ctx := context.Background()

	p := &profile.Profile{
		DisplayName:  "Jane",
		LinkedIn:     "https://linkedin.com/in/jane",
		Skills:       []string{"Go", "SQL"},
		ProjectLinks: []string{"https://x.com/a"},
		Username:     "jane",
	}
	saved, err := cl.Save(ctx, "u1", p)
	require.NoError(t, err)

	loaded, err := cl.GetOrCreate(ctx, jane)
	require.NoError(t, err)
	require.Equal(t, *saved, *loaded)
}

func TestSave_FailurePropagatesAndSkipsCache(t *testing.T) {
	repo := &fakeRepo{upsertErr: errors.New("write refused")}
	cl, c := newClient(repo)

	_, err := cl.Save(context.Background(), "u1", &profile.Profile{})
	require.ErrorIs(t, err, common.ErrorPersistence)

	_, ok := c.Get(context.Background(), "u1")
	require.False(t, ok, "failed save must not poison the cache")
}

func TestEvict(t *testing.T) {
	repo := &fakeRepo{byID: map[string]*profile.Profile{"u1": {DisplayName: "Jane"}}}
	cl, _ := newClient(repo)
	ctx := context.Background()

	_, err := cl.GetOrCreate(ctx, jane)
	require.NoError(t, err)

	_, ok := cl.Cached(ctx, "u1")
	require.True(t, ok)

	cl.Evict(ctx, "u1")
	_, ok = cl.Cached(ctx, "u1")
	require.False(t, ok)
}
