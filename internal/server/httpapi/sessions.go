package httpapi

import (
	"context"
	"sync"

	"github.com/binarybhaskar/branchit/internal/logging"
	"github.com/binarybhaskar/branchit/internal/server/blob"
	"github.com/binarybhaskar/branchit/internal/server/identity"
	"github.com/binarybhaskar/branchit/internal/server/registry"
	"github.com/binarybhaskar/branchit/internal/server/store"
	"github.com/binarybhaskar/branchit/internal/session"
)

// SessionManager hands out one settings session per identity. Sessions are
// created lazily on first use and loaded immediately so the first response
// already carries a seeded edit buffer.
type SessionManager struct {
	store    store.Client
	registry registry.Client
	blobs    blob.Client
	logger   logging.Logger

	mu       sync.Mutex
	sessions map[string]*session.Controller
}

func NewSessionManager(st store.Client, reg registry.Client, blobs blob.Client, logger logging.Logger) *SessionManager {
	return &SessionManager{
		store:    st,
		registry: reg,
		blobs:    blobs,
		logger:   logger,
		sessions: map[string]*session.Controller{},
	}
}

// Get returns the identity's session, creating and loading it on first use.
func (m *SessionManager) Get(ctx context.Context, id identity.Identity) *session.Controller {
	m.mu.Lock()
	c, ok := m.sessions[id.UserID]
	m.mu.Unlock()
	if ok {
		return c
	}

	created := session.NewController(id, m.store, m.registry, m.blobs, m.logger)

	m.mu.Lock()
	if existing, ok := m.sessions[id.UserID]; ok {
		m.mu.Unlock()
		created.Close()
		return existing
	}
	m.sessions[id.UserID] = created
	m.mu.Unlock()

	created.Load(ctx)
	return created
}

// Remove closes and drops the identity's session, e.g. on sign-out or a
// confirmed exit.
func (m *SessionManager) Remove(userID string) {
	m.mu.Lock()
	c, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()
	if ok {
		c.Close()
	}
}

// Close shuts down every live session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, c := range m.sessions {
		c.Close()
		delete(m.sessions, id)
	}
}
