// Package session implements the settings session controller: one instance
// per signed-in identity per editing session. It owns the edit buffer and the
// baseline snapshot, recomputes the dirty flag on every mutation, serializes
// save and upload operations behind a single busy flag, and publishes every
// transition and operation outcome as a discrete event.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/logging"
	"github.com/binarybhaskar/branchit/internal/profile"
	"github.com/binarybhaskar/branchit/internal/server/blob"
	"github.com/binarybhaskar/branchit/internal/server/identity"
	"github.com/binarybhaskar/branchit/internal/server/registry"
	"github.com/binarybhaskar/branchit/internal/server/store"
)

// State is the session state machine position. Uploads overlap Clean and
// Dirty rather than having a state of their own; they share the busy flag
// with Save.
type State int

const (
	StateLoading State = iota
	StateClean
	StateDirty
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

const (
	eventBufferSize     = 64
	maxUsernameAttempts = 5
)

// Controller orchestrates one editing session.
type Controller struct {
	id       identity.Identity
	store    store.Client
	registry registry.Client
	blobs    blob.Client
	logger   logging.Logger

	mu       sync.Mutex
	state    State
	dirty    bool
	stale    bool
	busy     bool
	buffer   profile.EditBuffer
	baseline profile.Profile

	events    chan Event
	closeOnce sync.Once
}

// NewController returns a controller in the Loading state. Call Load before
// anything else.
func NewController(id identity.Identity, st store.Client, reg registry.Client, blobs blob.Client, logger logging.Logger) *Controller {
	return &Controller{
		id:       id,
		store:    st,
		registry: reg,
		blobs:    blobs,
		logger:   logger.With("user_id", id.UserID),
		state:    StateLoading,
		events:   make(chan Event, eventBufferSize),
	}
}

// Events returns the session's event channel. Events are dropped, not
// blocked on, when no one is consuming.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Close releases the event channel. The controller must not be used after.
func (c *Controller) Close() {
	c.closeOnce.Do(func() { close(c.events) })
}

func (c *Controller) publish(e Event) {
	select {
	case c.events <- e:
	default:
		c.logger.Warn(context.Background(), "event dropped", "kind", string(e.Kind))
	}
}

// snapshotLocked captures state/dirty for event payloads. Caller holds mu.
func (c *Controller) snapshotLocked() (State, bool) {
	return c.state, c.dirty
}

func defaultProfile(id identity.Identity) profile.Profile {
	p := profile.Profile{
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		Skills:      []string{},
	}
	if p.DisplayName == "" {
		p.DisplayName = "User"
	}
	return p
}

// Load fetches the baseline and seeds the edit buffer. A cached snapshot is
// painted first when present; a remote failure falls back to the painted
// snapshot (or provider defaults) and sets the stale flag instead of
// blocking the session.
func (c *Controller) Load(ctx context.Context) profile.EditBuffer {
	if cached, ok := c.store.Cached(ctx, c.id.UserID); ok {
		c.seed(*cached, false)
	}

	p, err := c.store.GetOrCreate(ctx, c.id)
	if err != nil {
		c.logger.Warn(ctx, "profile load failed, falling back", "error", err)
		fallback, ok := c.store.Cached(ctx, c.id.UserID)
		if !ok {
			def := defaultProfile(c.id)
			fallback = &def
		}
		c.seed(*fallback, true)
		return c.Buffer()
	}

	c.seed(*p, false)
	return c.Buffer()
}

func (c *Controller) seed(p profile.Profile, stale bool) {
	c.mu.Lock()
	c.baseline = p.Clone()
	c.buffer = profile.NewEditBuffer(c.baseline)
	c.dirty = false
	c.stale = stale
	c.state = StateClean
	c.mu.Unlock()

	c.publish(Event{Kind: EventLoaded, State: StateClean, Stale: stale})
}

// Buffer returns a snapshot of the edit buffer.
func (c *Controller) Buffer() profile.EditBuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.buffer
	b.Skills = append([]string(nil), c.buffer.Skills...)
	b.ProjectLinks = append([]string(nil), c.buffer.ProjectLinks...)
	return b
}

// Baseline returns a snapshot of the last known-persisted profile.
func (c *Controller) Baseline() profile.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline.Clone()
}

// State returns the current state machine position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dirty reports whether the edit buffer differs from the baseline.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Stale reports whether the session is running on fallback data after a
// failed load.
func (c *Controller) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// mutate applies fn to the edit buffer and recomputes the dirty flag,
// publishing dirty and state transitions.
func (c *Controller) mutate(fn func(b *profile.EditBuffer)) {
	c.mu.Lock()
	fn(&c.buffer)

	wasDirty := c.dirty
	c.dirty = profile.IsDirty(c.buffer, c.baseline)
	dirtyChanged := c.dirty != wasDirty

	var stateChanged bool
	if c.state == StateClean || c.state == StateDirty {
		next := StateClean
		if c.dirty {
			next = StateDirty
		}
		stateChanged = next != c.state
		c.state = next
	}
	state, dirty := c.snapshotLocked()
	c.mu.Unlock()

	if dirtyChanged {
		c.publish(Event{Kind: EventDirtyChanged, State: state, Dirty: dirty})
	}
	if stateChanged {
		c.publish(Event{Kind: EventStateChanged, State: state, Dirty: dirty})
	}
}

func (c *Controller) SetDisplayName(v string) {
	c.mutate(func(b *profile.EditBuffer) {
		b.DisplayName = profile.TruncateRunes(v, common.MaxDisplayNameLen)
	})
}

func (c *Controller) SetAbout(v string) {
	c.mutate(func(b *profile.EditBuffer) {
		b.About = profile.TruncateRunes(v, common.MaxAboutLen)
	})
}

// SetLinkedIn accepts a bare username or a pasted profile URL; either way
// the bare username is kept.
func (c *Controller) SetLinkedIn(v string) {
	c.mutate(func(b *profile.EditBuffer) { b.LinkedIn = profile.LinkedInUsername(v) })
}

func (c *Controller) SetGitHub(v string) {
	c.mutate(func(b *profile.EditBuffer) { b.GitHub = profile.GitHubUsername(v) })
}

func (c *Controller) SetInstagram(v string) {
	c.mutate(func(b *profile.EditBuffer) { b.Instagram = profile.InstagramUsername(v) })
}

// AddSkill appends a trimmed skill, ignoring blanks and case-sensitive
// duplicates.
func (c *Controller) AddSkill(v string) {
	skill := strings.TrimSpace(v)
	if skill == "" {
		return
	}
	c.mutate(func(b *profile.EditBuffer) {
		for _, s := range b.Skills {
			if s == skill {
				return
			}
		}
		b.Skills = append(b.Skills, skill)
	})
}

// RemoveSkill drops the skill if present.
func (c *Controller) RemoveSkill(v string) {
	c.mutate(func(b *profile.EditBuffer) {
		for i, s := range b.Skills {
			if s == v {
				b.Skills = append(b.Skills[:i], b.Skills[i+1:]...)
				return
			}
		}
	})
}

// SetProjectLink sets the link at the given editor slot.
func (c *Controller) SetProjectLink(slot int, v string) error {
	if slot < 0 || slot >= common.MaxProjectLinks {
		return fmt.Errorf("%w: project link slot %d out of range", common.ErrorValidation, slot)
	}
	c.mutate(func(b *profile.EditBuffer) {
		b.ProjectLinks = profile.PadLinks(b.ProjectLinks)
		b.ProjectLinks[slot] = v
	})
	return nil
}

// SetUsernameInput records the candidate username being typed. It never
// affects the dirty flag; usernames are committed through ChangeUsername.
func (c *Controller) SetUsernameInput(v string) {
	c.mu.Lock()
	c.buffer.UsernameInput = v
	c.mu.Unlock()
}

// ResetPhoto restores the identity provider's avatar URL.
func (c *Controller) ResetPhoto() {
	c.mutate(func(b *profile.EditBuffer) { b.PhotoURL = c.id.PhotoURL })
}

// RemoveResume clears the resume URL from the buffer. The stored blob is
// left behind; only the reference changes, and only on save.
func (c *Controller) RemoveResume() {
	c.mutate(func(b *profile.EditBuffer) { b.ResumeURL = "" })
}

// beginBusy claims the shared busy flag, failing fast when another save or
// upload is in flight.
func (c *Controller) beginBusy() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrorBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) endBusy() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// Save builds a full profile from the edit buffer and upserts it. On success
// the baseline is replaced and the dirty flag recomputed against whatever the
// buffer holds by then. On failure the buffer is untouched so the user can
// retry. A clean session saves nothing.
func (c *Controller) Save(ctx context.Context) error {
	if err := c.beginBusy(); err != nil {
		return err
	}
	defer c.endBusy()

	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	c.state = StateSaving
	buf := c.buffer
	buf.Skills = append([]string(nil), c.buffer.Skills...)
	buf.ProjectLinks = append([]string(nil), c.buffer.ProjectLinks...)
	baseline := c.baseline.Clone()
	c.mu.Unlock()
	c.publish(Event{Kind: EventStateChanged, State: StateSaving, Dirty: true})

	built := buf.Build(baseline)
	saved, err := c.store.Save(ctx, c.id.UserID, &built)

	c.mu.Lock()
	if err != nil {
		// The buffer may have changed while the save was in flight; a user
		// who reverted their edits is back to a clean session.
		c.dirty = profile.IsDirty(c.buffer, c.baseline)
		if c.dirty {
			c.state = StateDirty
		} else {
			c.state = StateClean
		}
		state, dirty := c.snapshotLocked()
		c.mu.Unlock()
		c.publish(Event{Kind: EventSaveFailed, State: state, Dirty: dirty, Err: err})
		return err
	}

	c.baseline = saved.Clone()
	c.dirty = profile.IsDirty(c.buffer, c.baseline)
	if c.dirty {
		c.state = StateDirty
	} else {
		c.state = StateClean
	}
	state, dirty := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(Event{Kind: EventSaved, State: state, Dirty: dirty})
	return nil
}

// UploadPhoto stores the avatar and updates the buffer's photo URL. The
// profile is not saved; the session turns dirty until the user saves.
func (c *Controller) UploadPhoto(ctx context.Context, data []byte, contentType string) (string, error) {
	if err := c.beginBusy(); err != nil {
		return "", err
	}
	defer c.endBusy()

	url, err := c.blobs.UploadImage(ctx, c.id.UserID, data, contentType)
	if err != nil {
		c.publish(Event{Kind: EventUploadFailed, Err: err})
		return "", err
	}

	c.mutate(func(b *profile.EditBuffer) { b.PhotoURL = url })
	c.publish(Event{Kind: EventPhotoUploaded, URL: url, Dirty: c.Dirty()})
	return url, nil
}

// UploadResume stores the resume PDF and updates the buffer's resume URL.
// Oversized or malformed documents are rejected before any transfer.
func (c *Controller) UploadResume(ctx context.Context, data []byte) (string, error) {
	if err := c.beginBusy(); err != nil {
		return "", err
	}
	defer c.endBusy()

	url, err := c.blobs.UploadDocument(ctx, c.id.UserID, data)
	if err != nil {
		c.publish(Event{Kind: EventUploadFailed, Err: err})
		return "", err
	}

	c.mutate(func(b *profile.EditBuffer) { b.ResumeURL = url })
	c.publish(Event{Kind: EventResumeUploaded, URL: url, Dirty: c.Dirty()})
	return url, nil
}

// CheckUsername looks up candidate availability. Pure read; the result can
// be stale by the time a change is attempted.
func (c *Controller) CheckUsername(ctx context.Context, candidate string) (bool, error) {
	available, err := c.registry.CheckAvailability(ctx, candidate)
	if err != nil {
		return false, err
	}
	c.publish(Event{Kind: EventUsernameChecked, Candidate: candidate, Available: available})
	return available, nil
}

// ChangeUsername commits a username claim. Success updates both the buffer
// and the baseline immediately; the claim bypasses Save entirely. Losing a
// race or hitting the cooldown leaves the buffer's username input untouched.
func (c *Controller) ChangeUsername(ctx context.Context, candidate string) error {
	claim, err := c.registry.ChangeUsername(ctx, c.id.UserID, candidate)
	if err != nil {
		c.publish(Event{Kind: EventUsernameChangeFailed, Candidate: candidate, Err: err})
		return err
	}

	c.applyClaim(claim.Username, claim.UpdatedAt)
	c.publish(Event{Kind: EventUsernameChanged, Username: claim.Username})
	return nil
}

func (c *Controller) applyClaim(username string, updatedAt int64) {
	c.mu.Lock()
	c.baseline.Username = username
	c.baseline.UsernameUpdatedAt = updatedAt
	c.buffer.UsernameInput = username
	c.mu.Unlock()

	// The registry already mirrored the claim onto the stored profile; the
	// cache entry predates it.
	c.store.Evict(context.Background(), c.id.UserID)
}

// EnsureUsername generates and claims a username when the identity has none.
// The candidate derives from the email local-part; collisions retry with a
// short random suffix. Idempotent: an existing username is returned as is.
func (c *Controller) EnsureUsername(ctx context.Context) (string, error) {
	c.mu.Lock()
	current := c.baseline.Username
	c.mu.Unlock()
	if current != "" {
		return current, nil
	}

	base := usernameFromEmail(c.id.Email)
	candidate := base
	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		claim, err := c.registry.ChangeUsername(ctx, c.id.UserID, candidate)
		if errors.Is(err, common.ErrorUsernameTaken) {
			candidate = base + "." + uuid.NewString()[:4]
			continue
		}
		if err != nil {
			return "", err
		}
		c.applyClaim(claim.Username, claim.UpdatedAt)
		c.publish(Event{Kind: EventUsernameChanged, Username: claim.Username})
		return claim.Username, nil
	}
	return "", fmt.Errorf("%w: could not find a free username", common.ErrorUsernameTaken)
}

// usernameFromEmail lowercases the local part and keeps [a-z0-9._].
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var sb strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "user"
	}
	return sb.String()
}

// RequestExit reports whether the shell may navigate away now. With unsaved
// changes it publishes a confirmation request instead. A save in flight does
// not block leaving; the save completes detached and still replaces the
// baseline and cache.
func (c *Controller) RequestExit() bool {
	c.mu.Lock()
	dirty := c.dirty
	c.mu.Unlock()

	if dirty {
		c.publish(Event{Kind: EventExitConfirmationRequired, State: StateDirty, Dirty: true})
		return false
	}
	c.publish(Event{Kind: EventExited})
	return true
}

// ConfirmExit resolves a pending exit confirmation: save-then-leave when
// save is true, discard-then-leave otherwise.
func (c *Controller) ConfirmExit(ctx context.Context, save bool) error {
	if save {
		if err := c.Save(ctx); err != nil {
			return err
		}
	} else {
		c.mu.Lock()
		c.buffer = profile.NewEditBuffer(c.baseline)
		c.dirty = false
		c.state = StateClean
		c.mu.Unlock()
	}
	c.publish(Event{Kind: EventExited})
	return nil
}
