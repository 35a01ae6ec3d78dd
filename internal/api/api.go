// Package api exposes the relay's HTTP/JSON contract. Handlers validate
// input, invoke the stores and token service, and shape responses; all
// business logic lives below this layer.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/statussync/presence-relay/internal/store"
	"github.com/statussync/presence-relay/internal/token"
	"github.com/statussync/presence-relay/pkg/schema"
)

// Handler carries the stores and token service the routes operate on.
type Handler struct {
	Presence *store.PresenceStore
	Consent  *store.ConsentStore
	Inbox    *store.TokenInbox
	Profiles *store.ProfileStore
	Tokens   *token.Service

	// Now may be overridden in tests; nil means time.Now.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// validIdentity checks the syntactic shape of an identity. The relay never
// validates ownership; identities are opaque and self-chosen.
func validIdentity(s string) bool {
	return len(s) >= 8 && len(s) <= 128
}

func badRequest(c *gin.Context, code string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": code})
}

// Root answers probes on / with plain text.
func (h *Handler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Presence relay - nothing to see here")
}

// Health reports liveness and the server clock in epoch ms.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "ts": h.now().UnixMilli()})
}

// UpdatePresence handles POST /presence/update.
func (h *Handler) UpdatePresence(c *gin.Context) {
	var in struct {
		Identity  string `json:"identity"`
		State     string `json:"state"`
		Device    string `json:"device"`
		Timestamp *int64 `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad_json")
		return
	}
	if !validIdentity(in.Identity) {
		badRequest(c, "bad_user_id")
		return
	}
	if err := h.Presence.Update(in.Identity, in.State, in.Device, in.Timestamp); err != nil {
		badRequest(c, "bad_state")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CreateRequest handles POST /requests/create.
func (h *Handler) CreateRequest(c *gin.Context) {
	var in struct {
		From string `json:"from_identity"`
		To   string `json:"to_identity"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad_json")
		return
	}
	if !validIdentity(in.From) || !validIdentity(in.To) {
		badRequest(c, "bad_user_id")
		return
	}
	if in.From == in.To {
		badRequest(c, "same_user")
		return
	}

	req := h.Consent.Create(in.From, in.To)
	c.JSON(http.StatusOK, gin.H{"ok": true, "request_id": req.ID, "expiresAt": req.ExpiresAt})
}

// RequestInbox handles GET /requests/inbox?identity=.
func (h *Handler) RequestInbox(c *gin.Context) {
	identity := c.Query("identity")
	if !validIdentity(identity) {
		badRequest(c, "bad_user_id")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "requests": h.Consent.Inbox(identity)})
}

// RespondRequest handles POST /requests/respond. On allow it mints a
// capability token for the requester and queues it in their inbox; the
// consent store itself only records the decision.
func (h *Handler) RespondRequest(c *gin.Context) {
	var in struct {
		To        string `json:"to_identity"`
		RequestID string `json:"request_id"`
		Decision  string `json:"decision"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad_json")
		return
	}
	if !validIdentity(in.To) {
		badRequest(c, "bad_user_id")
		return
	}
	if in.RequestID == "" {
		badRequest(c, "bad_request_id")
		return
	}
	if in.Decision != "allow" && in.Decision != "deny" {
		badRequest(c, "bad_decision")
		return
	}

	req, err := h.Consent.Respond(in.To, in.RequestID, in.Decision == "allow")
	switch {
	case errors.Is(err, store.ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "request_not_found"})
		return
	case errors.Is(err, store.ErrRequestExpired):
		c.JSON(http.StatusGone, gin.H{"ok": false, "error": "request_expired"})
		return
	case errors.Is(err, store.ErrAlreadyResponded):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "already_responded", "status": req.Status})
		return
	}

	if req.Status == store.StatusAllowed {
		tok, err := h.Tokens.Issue(req.From, req.To, token.ScopeReadPresence)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal_error"})
			return
		}
		t := h.now()
		h.Inbox.Push(req.From, schema.TokenGrant{
			From:      req.To,
			Token:     tok,
			IssuedAt:  t.UnixMilli(),
			ExpiresAt: t.Add(token.TTL).UnixMilli(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "status": req.Status})
}

// TokenGrants handles GET /tokens/inbox?identity=.
func (h *Handler) TokenGrants(c *gin.Context) {
	identity := c.Query("identity")
	if !validIdentity(identity) {
		badRequest(c, "bad_user_id")
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tokens": h.Inbox.List(identity)})
}

// AckToken handles POST /tokens/ack.
func (h *Handler) AckToken(c *gin.Context) {
	var in struct {
		Identity string `json:"identity"`
		Token    string `json:"token"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad_json")
		return
	}
	if !validIdentity(in.Identity) {
		badRequest(c, "bad_user_id")
		return
	}
	if in.Token == "" {
		badRequest(c, "bad_token")
		return
	}

	h.Inbox.Ack(in.Identity, in.Token)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetPresence handles POST /presence/get. Authorization is decided purely
// from the presented token; the server keeps no record of issuance.
func (h *Handler) GetPresence(c *gin.Context) {
	var in struct {
		Requester string `json:"requester_identity"`
		Target    string `json:"target_identity"`
		Token     string `json:"capability_token"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad_json")
		return
	}
	if !validIdentity(in.Requester) || !validIdentity(in.Target) {
		badRequest(c, "bad_user_id")
		return
	}

	res := h.Tokens.Verify(in.Token, in.Requester, in.Target, token.ScopeReadPresence)
	if !res.OK {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "unauthorized", "reason": res.Reason})
		return
	}

	p, ok := h.Presence.Get(in.Target)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"ok": true, "presence": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "presence": p})
}

// UpdateProfile handles POST /profile/update. Profile writes are
// deliberately unauthenticated; see ProfileStore.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in struct {
		Identity    string  `json:"identity"`
		DisplayName *string `json:"displayName"`
		Handle      *string `json:"handle"`
		AvatarBlob  []byte  `json:"avatarBlob"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "bad_json")
		return
	}
	if !validIdentity(in.Identity) {
		badRequest(c, "bad_user_id")
		return
	}
	if in.DisplayName == nil || in.Handle == nil {
		badRequest(c, "bad_profile_data")
		return
	}

	h.Profiles.Update(in.Identity, *in.DisplayName, *in.Handle, in.AvatarBlob)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetProfile handles GET /profile/get?identity=. Profiles are public read.
func (h *Handler) GetProfile(c *gin.Context) {
	identity := c.Query("identity")
	if !validIdentity(identity) {
		badRequest(c, "bad_user_id")
		return
	}

	p, ok := h.Profiles.Get(identity)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"ok": true, "profile": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "profile": p})
}
