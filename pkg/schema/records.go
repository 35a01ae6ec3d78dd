// Package schema defines the wire-level records exchanged between the
// presence relay and its clients. The same structs are used by the server
// handlers and the SDK so both sides agree on field names.
package schema

// Presence is a participant's last reported availability. Timestamp is the
// client's own clock in epoch seconds; the server tracks receipt time
// separately and never exposes it.
type Presence struct {
	Identity  string `json:"identity"`
	State     string `json:"state"`
	Device    string `json:"device"`
	Timestamp int64  `json:"timestamp"`
}

// ConsentRequest is a pending ask from one identity to another for standing
// permission to read presence. All times are epoch milliseconds.
type ConsentRequest struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	To        string `json:"to"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
	Status    string `json:"status"`
}

// TokenGrant is the delivery envelope for a freshly issued capability token,
// queued in the recipient's inbox until acknowledged. From names the identity
// the token authorizes reading.
type TokenGrant struct {
	From      string `json:"from"`
	Token     string `json:"token"`
	IssuedAt  int64  `json:"issuedAt"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Profile is public display metadata for an identity. AvatarBlob travels as
// base64 in JSON and may be empty.
type Profile struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	AvatarBlob  []byte `json:"avatarBlob,omitempty"`
}
