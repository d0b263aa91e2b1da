package session

// EventKind discriminates the events a settings session publishes.
type EventKind string

const (
	// EventLoaded reports the edit buffer was seeded from a profile
	// snapshot. Stale is set when the remote load failed and the session
	// fell back to the cache or to provider defaults.
	EventLoaded EventKind = "loaded"
	// EventStateChanged reports a state machine transition.
	EventStateChanged EventKind = "state_changed"
	// EventDirtyChanged reports the dirty flag flipping.
	EventDirtyChanged EventKind = "dirty_changed"
	// EventSaved reports a successful save; the baseline was replaced.
	EventSaved EventKind = "saved"
	// EventSaveFailed reports a failed save; the edit buffer is preserved.
	EventSaveFailed EventKind = "save_failed"
	// EventPhotoUploaded and EventResumeUploaded report a stored blob and
	// the buffer URL update. The profile itself is not saved yet.
	EventPhotoUploaded  EventKind = "photo_uploaded"
	EventResumeUploaded EventKind = "resume_uploaded"
	// EventUploadFailed reports a rejected or failed upload.
	EventUploadFailed EventKind = "upload_failed"
	// EventUsernameChecked reports an availability lookup result.
	EventUsernameChecked EventKind = "username_checked"
	// EventUsernameChanged reports a committed username claim.
	EventUsernameChanged EventKind = "username_changed"
	// EventUsernameChangeFailed reports a rejected claim (taken, cooldown,
	// invalid format).
	EventUsernameChangeFailed EventKind = "username_change_failed"
	// EventExitConfirmationRequired reports a leave attempt with unsaved
	// changes; the shell must confirm before navigating away.
	EventExitConfirmationRequired EventKind = "exit_confirmation_required"
	// EventExited reports the session ended.
	EventExited EventKind = "exited"
)

// Event is a discrete state transition or operation outcome published on the
// session's event channel.
type Event struct {
	Kind  EventKind
	State State
	Dirty bool
	Stale bool

	// Operation payloads, set per kind.
	URL       string
	Candidate string
	Available bool
	Username  string
	Err       error
}
