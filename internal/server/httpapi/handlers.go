// Package httpapi exposes the settings engine to the mobile shell over a
// bearer-authenticated HTTP API. Each route forwards one shell intent to the
// identity's settings session.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/binarybhaskar/branchit/internal/common"
	"github.com/binarybhaskar/branchit/internal/profile"
	"github.com/binarybhaskar/branchit/internal/server/registry"
	"github.com/binarybhaskar/branchit/internal/server/store"
	"github.com/binarybhaskar/branchit/internal/session"
)

type AppDeps struct {
	Sessions  *SessionManager
	Store     store.Client
	SecretKey []byte
	// MaxUploadBytes caps inbound upload bodies. The document size guard in
	// the blob client still runs; this only bounds what is read off the wire.
	MaxUploadBytes int64
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuth(deps.SecretKey))

	r.Get("/profile", handleGetProfile(deps))
	r.Patch("/profile", handlePatchProfile(deps))
	r.Post("/profile/save", handleSave(deps))
	r.Post("/profile/skills", handleAddSkill(deps))
	r.Delete("/profile/skills/{skill}", handleRemoveSkill(deps))
	r.Put("/profile/project-links/{slot}", handleSetProjectLink(deps))
	r.Post("/profile/photo", handleUploadPhoto(deps))
	r.Delete("/profile/photo", handleResetPhoto(deps))
	r.Post("/profile/resume", handleUploadResume(deps))
	r.Delete("/profile/resume", handleRemoveResume(deps))
	r.Get("/username/availability", handleCheckUsername(deps))
	r.Put("/username", handleChangeUsername(deps))
	r.Post("/username/ensure", handleEnsureUsername(deps))
	r.Post("/session/exit", handleExit(deps))
	r.Post("/signout", handleSignOut(deps))

	return r
}

// bufferView is the wire shape of the edit buffer: social links as bare
// usernames, project links padded to their editor slots.
type bufferView struct {
	DisplayName   string   `json:"displayName"`
	PhotoURL      string   `json:"photoUrl"`
	About         string   `json:"about"`
	LinkedIn      string   `json:"linkedin"`
	Instagram     string   `json:"instagram"`
	GitHub        string   `json:"github"`
	Skills        []string `json:"skills"`
	ResumeURL     string   `json:"resumeUrl"`
	ProjectLinks  []string `json:"projectLinks"`
	UsernameInput string   `json:"usernameInput"`
}

type sessionView struct {
	State    string          `json:"state"`
	Dirty    bool            `json:"dirty"`
	Stale    bool            `json:"stale"`
	Buffer   bufferView      `json:"buffer"`
	Baseline profile.Profile `json:"baseline"`
}

func newBufferView(b profile.EditBuffer) bufferView {
	return bufferView{
		DisplayName:   b.DisplayName,
		PhotoURL:      b.PhotoURL,
		About:         b.About,
		LinkedIn:      b.LinkedIn,
		Instagram:     b.Instagram,
		GitHub:        b.GitHub,
		Skills:        b.Skills,
		ResumeURL:     b.ResumeURL,
		ProjectLinks:  b.ProjectLinks,
		UsernameInput: b.UsernameInput,
	}
}

func newSessionView(c *session.Controller) sessionView {
	return sessionView{
		State:    c.State().String(),
		Dirty:    c.Dirty(),
		Stale:    c.Stale(),
		Buffer:   newBufferView(c.Buffer()),
		Baseline: c.Baseline(),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

// operationError maps engine errors onto HTTP statuses. Cooldown responses
// carry the remaining wait so the shell can render it.
func operationError(w http.ResponseWriter, err error) {
	var cerr *registry.CooldownError
	switch {
	case errors.As(err, &cerr):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": map[string]any{
				"message":       cerr.Error(),
				"type":          "cooldown_error",
				"daysRemaining": cerr.RemainingDays,
			},
		})
	case errors.Is(err, common.ErrorFileTooLarge):
		httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "%v", err)
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrorInvalidUsername):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, common.ErrorUsernameTaken):
		httpError(w, http.StatusConflict, "conflict_error", "%v", err)
	case errors.Is(err, common.ErrorBusy):
		httpError(w, http.StatusConflict, "busy_error", "%v", err)
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		httpError(w, http.StatusUnauthorized, "authentication_error", "%v", err)
	default:
		httpError(w, http.StatusBadGateway, "api_error", "%v", err)
	}
}

func (d AppDeps) session(r *http.Request) *session.Controller {
	return d.Sessions.Get(r.Context(), identityFromContext(r.Context()))
}

func handleGetProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, newSessionView(deps.session(r)))
	}
}

// PatchProfileRequest carries optional field updates; absent fields are left
// untouched.
type PatchProfileRequest struct {
	DisplayName   *string `json:"displayName"`
	About         *string `json:"about"`
	LinkedIn      *string `json:"linkedin"`
	Instagram     *string `json:"instagram"`
	GitHub        *string `json:"github"`
	UsernameInput *string `json:"usernameInput"`
}

func handlePatchProfile(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PatchProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		c := deps.session(r)
		if req.DisplayName != nil {
			c.SetDisplayName(*req.DisplayName)
		}
		if req.About != nil {
			c.SetAbout(*req.About)
		}
		if req.LinkedIn != nil {
			c.SetLinkedIn(*req.LinkedIn)
		}
		if req.Instagram != nil {
			c.SetInstagram(*req.Instagram)
		}
		if req.GitHub != nil {
			c.SetGitHub(*req.GitHub)
		}
		if req.UsernameInput != nil {
			c.SetUsernameInput(*req.UsernameInput)
		}

		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

func handleSave(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := deps.session(r)
		if err := c.Save(r.Context()); err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

type skillRequest struct {
	Skill string `json:"skill"`
}

func handleAddSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req skillRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		c := deps.session(r)
		c.AddSkill(req.Skill)
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

func handleRemoveSkill(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := deps.session(r)
		c.RemoveSkill(chi.URLParam(r, "skill"))
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

type projectLinkRequest struct {
	URL string `json:"url"`
}

func handleSetProjectLink(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid slot: %v", err)
			return
		}

		var req projectLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		c := deps.session(r)
		if err := c.SetProjectLink(slot, req.URL); err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

func (d AppDeps) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, d.MaxUploadBytes)
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}

func handleUploadPhoto(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := deps.readUpload(w, r)
		if err != nil {
			httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "upload too large")
			return
		}

		c := deps.session(r)
		url, err := c.UploadPhoto(r.Context(), data, r.Header.Get("Content-Type"))
		if err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": url, "dirty": c.Dirty()})
	}
}

func handleResetPhoto(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := deps.session(r)
		c.ResetPhoto()
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

func handleUploadResume(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := deps.readUpload(w, r)
		if err != nil {
			httpError(w, http.StatusRequestEntityTooLarge, "invalid_request_error", "upload too large")
			return
		}

		c := deps.session(r)
		url, err := c.UploadResume(r.Context(), data)
		if err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"url": url, "dirty": c.Dirty()})
	}
}

func handleRemoveResume(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := deps.session(r)
		c.RemoveResume()
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

func handleCheckUsername(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidate := r.URL.Query().Get("candidate")
		available, err := deps.session(r).CheckUsername(r.Context(), candidate)
		if err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"candidate": candidate, "available": available})
	}
}

type changeUsernameRequest struct {
	Username string `json:"username"`
}

func handleChangeUsername(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changeUsernameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		c := deps.session(r)
		if err := c.ChangeUsername(r.Context(), req.Username); err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newSessionView(c))
	}
}

func handleEnsureUsername(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := deps.session(r)
		username, err := c.EnsureUsername(r.Context())
		if err != nil {
			operationError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"username": username})
	}
}

// exitRequest resolves a leave attempt. Without confirm the request only
// probes whether leaving is allowed; with confirm the session is settled
// (saved or discarded) and removed.
type exitRequest struct {
	Confirm bool `json:"confirm"`
	Save    bool `json:"save"`
}

func handleExit(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req exitRequest
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
				return
			}
		}

		id := identityFromContext(r.Context())
		c := deps.session(r)

		if !req.Confirm {
			if allowed := c.RequestExit(); !allowed {
				writeJSON(w, http.StatusConflict, map[string]any{"allowed": false, "dirty": true})
				return
			}
			deps.Sessions.Remove(id.UserID)
			writeJSON(w, http.StatusOK, map[string]any{"allowed": true})
			return
		}

		if err := c.ConfirmExit(r.Context(), req.Save); err != nil {
			operationError(w, err)
			return
		}
		deps.Sessions.Remove(id.UserID)
		writeJSON(w, http.StatusOK, map[string]any{"allowed": true, "saved": req.Save})
	}
}

// handleSignOut drops the identity's session and evicts its cached profile.
// Unsaved edits are discarded; sign-out does not ask for confirmation.
func handleSignOut(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identityFromContext(r.Context())
		deps.Sessions.Remove(id.UserID)
		deps.Store.Evict(r.Context(), id.UserID)
		writeJSON(w, http.StatusOK, map[string]any{"signedOut": true})
	}
}
