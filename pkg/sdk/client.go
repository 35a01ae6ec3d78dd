// Package sdk provides the Go client for the presence relay HTTP API. Every
// method maps to exactly one endpoint and returns typed schema records;
// non-2xx responses surface as *APIError.
package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/statussync/presence-relay/pkg/schema"
)

// Client talks to a single relay instance. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the relay at baseURL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// APIError is a non-2xx response decoded into its machine-readable parts.
type APIError struct {
	// HTTPStatus is the response status code.
	HTTPStatus int
	// Code is the error code from the body, e.g. "request_not_found".
	Code string
	// Reason carries the token verification failure on 403 responses.
	Reason string
	// Status carries the existing decision on already_responded conflicts.
	Status string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("relay error %d: %s (%s)", e.HTTPStatus, e.Code, e.Reason)
	}
	return fmt.Sprintf("relay error %d: %s", e.HTTPStatus, e.Code)
}

// UpdatePresence reports the caller's availability. timestamp (client clock,
// epoch seconds) may be nil to let the server fill it in.
func (c *Client) UpdatePresence(identity, state, device string, timestamp *int64) error {
	body := map[string]any{"identity": identity, "state": state}
	if device != "" {
		body["device"] = device
	}
	if timestamp != nil {
		body["timestamp"] = *timestamp
	}
	return c.postJSON("/presence/update", body, nil)
}

// CreateRequest asks the relay to create a consent request from one identity
// to another, returning the request id and its expiry (epoch ms).
func (c *Client) CreateRequest(from, to string) (string, int64, error) {
	var out struct {
		RequestID string `json:"request_id"`
		ExpiresAt int64  `json:"expiresAt"`
	}
	err := c.postJSON("/requests/create", map[string]any{
		"from_identity": from,
		"to_identity":   to,
	}, &out)
	return out.RequestID, out.ExpiresAt, err
}

// RequestInbox lists the pending consent requests addressed to identity.
func (c *Client) RequestInbox(identity string) ([]schema.ConsentRequest, error) {
	var out struct {
		Requests []schema.ConsentRequest `json:"requests"`
	}
	err := c.getJSON("/requests/inbox", url.Values{"identity": {identity}}, &out)
	return out.Requests, err
}

// Respond applies a decision ("allow" or "deny") to a request addressed to
// the calling identity and returns the resulting status.
func (c *Client) Respond(to, requestID, decision string) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	err := c.postJSON("/requests/respond", map[string]any{
		"to_identity": to,
		"request_id":  requestID,
		"decision":    decision,
	}, &out)
	return out.Status, err
}

// TokenInbox lists the capability token grants awaiting pickup by identity.
func (c *Client) TokenInbox(identity string) ([]schema.TokenGrant, error) {
	var out struct {
		Tokens []schema.TokenGrant `json:"tokens"`
	}
	err := c.getJSON("/tokens/inbox", url.Values{"identity": {identity}}, &out)
	return out.Tokens, err
}

// AckToken removes a delivered token from identity's inbox. Acknowledging a
// token that is already gone succeeds.
func (c *Client) AckToken(identity, tok string) error {
	return c.postJSON("/tokens/ack", map[string]any{
		"identity": identity,
		"token":    tok,
	}, nil)
}

// GetPresence reads target's presence using a capability token previously
// granted to requester. A nil result with nil error means the peer has no
// fresh presence.
func (c *Client) GetPresence(requester, target, capabilityToken string) (*schema.Presence, error) {
	var out struct {
		Presence *schema.Presence `json:"presence"`
	}
	err := c.postJSON("/presence/get", map[string]any{
		"requester_identity": requester,
		"target_identity":    target,
		"capability_token":   capabilityToken,
	}, &out)
	return out.Presence, err
}

// UpdateProfile replaces identity's public profile. avatar may be nil.
func (c *Client) UpdateProfile(identity, displayName, handle string, avatar []byte) error {
	return c.postJSON("/profile/update", map[string]any{
		"identity":    identity,
		"displayName": displayName,
		"handle":      handle,
		"avatarBlob":  avatar,
	}, nil)
}

// GetProfile reads an identity's public profile. A nil result with nil
// error means no profile was ever set.
func (c *Client) GetProfile(identity string) (*schema.Profile, error) {
	var out struct {
		Profile *schema.Profile `json:"profile"`
	}
	err := c.getJSON("/profile/get", url.Values{"identity": {identity}}, &out)
	return out.Profile, err
}

// Health checks liveness.
func (c *Client) Health() error {
	return c.getJSON("/health", nil, nil)
}

func (c *Client) postJSON(path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		var e struct {
			Error  string `json:"error"`
			Reason string `json:"reason"`
			Status string `json:"status"`
		}
		if json.Unmarshal(body, &e) == nil {
			apiErr.Code = e.Error
			apiErr.Reason = e.Reason
			apiErr.Status = e.Status
		}
		return apiErr
	}

	if out != nil {
		return json.Unmarshal(body, out)
	}
	return nil
}
