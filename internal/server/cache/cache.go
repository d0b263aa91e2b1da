// Package cache provides the process-wide profile cache: the most recently
// loaded or saved profile per user identity, for instant paint on re-entry.
// The cache is an explicit, injectable service initialized at startup; it is
// best-effort and last-writer-wins, so implementations never surface errors
// to callers.
package cache

import (
	"context"
	"sync"

	"github.com/binarybhaskar/branchit/internal/profile"
)

type Cache interface {
	// Get returns the cached profile for the user, if any.
	Get(ctx context.Context, userID string) (*profile.Profile, bool)

	// Set stores the profile for the user, replacing any previous value.
	Set(ctx context.Context, userID string, p *profile.Profile)

	// Delete evicts the user's entry, e.g. on sign-out.
	Delete(ctx context.Context, userID string)
}

// Memory is the in-process implementation: process lifetime, no expiry.
// Entries are cloned on the way in and out so cached snapshots cannot be
// mutated through an edit buffer.
type Memory struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
}

func NewMemory() *Memory {
	return &Memory{profiles: make(map[string]profile.Profile)}
}

func (m *Memory) Get(_ context.Context, userID string) (*profile.Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, false
	}
	c := p.Clone()
	return &c, true
}

func (m *Memory) Set(_ context.Context, userID string, p *profile.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p.Clone()
}

func (m *Memory) Delete(_ context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
}
