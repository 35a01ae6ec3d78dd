// Package token issues and verifies the relay's capability tokens: signed,
// self-describing bearer credentials that scope exactly one
// (subject, resource, scope) triple. A token's validity is decided from its
// own bytes plus the shared secret, so verification never touches a store.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// ScopeReadPresence is the only scope the relay currently issues.
const ScopeReadPresence = "read_presence"

// TTL is how long an issued token stays valid. Revocation before natural
// expiry is rotation-only: changing the server secret invalidates every
// outstanding token at once.
const TTL = 7 * 24 * time.Hour

// Version is the payload format version embedded in every token.
const Version = 1

const issuer = "presence-relay"

// Reason codes returned by Verify, listed in check order. Exactly one is
// reported per failed verification.
const (
	ReasonBadFormat        = "bad_format"
	ReasonBadSignature     = "bad_signature"
	ReasonBadPayload       = "bad_payload"
	ReasonBadVersion       = "bad_version"
	ReasonExpired          = "expired"
	ReasonSubjectMismatch  = "subject_mismatch"
	ReasonResourceMismatch = "resource_mismatch"
	ReasonScopeMismatch    = "scope_mismatch"
)

// payload is the signed portion of a token. Field names match the wire
// format: sub is the reader, res is the read target.
type payload struct {
	V     int    `json:"v"`
	Iss   string `json:"iss"`
	Sub   string `json:"sub"`
	Res   string `json:"res"`
	Scope string `json:"scope"`
	Iat   int64  `json:"iat"`
	Exp   int64  `json:"exp"`
}

// Result is the outcome of a verification. Reason is set only when OK is
// false.
type Result struct {
	OK     bool
	Reason string
}

// Service mints and checks tokens with a server-wide secret. It holds no
// other state.
type Service struct {
	secret []byte
	now    func() time.Time
}

// NewService creates a token service. now may be nil, in which case the wall
// clock is used; tests inject their own.
func NewService(secret []byte, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{secret: secret, now: now}
}

// Issue builds a token authorizing subject to perform scope against
// resource. The result is base64url(payload) + "." + base64url(signature).
func (s *Service) Issue(subject, resource, scope string) (string, error) {
	t := s.now()
	p := payload{
		V:     Version,
		Iss:   issuer,
		Sub:   subject,
		Res:   resource,
		Scope: scope,
		Iat:   t.Unix(),
		Exp:   t.Add(TTL).Unix(),
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + s.sign(encoded), nil
}

// Verify checks a presented token against the expected triple. The signature
// is recomputed over the raw payload segment and compared in constant time
// before the payload is decoded, so malformed-but-signed and
// forged-but-well-formed tokens report distinct reasons.
func (s *Service) Verify(tok, expectedSubject, expectedResource, expectedScope string) Result {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return Result{Reason: ReasonBadFormat}
	}
	encoded, sig := parts[0], parts[1]

	if !hmac.Equal([]byte(sig), []byte(s.sign(encoded))) {
		return Result{Reason: ReasonBadSignature}
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Result{Reason: ReasonBadPayload}
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Result{Reason: ReasonBadPayload}
	}

	if p.V != Version {
		return Result{Reason: ReasonBadVersion}
	}
	if p.Exp != 0 && s.now().Unix() > p.Exp {
		return Result{Reason: ReasonExpired}
	}
	if p.Sub != expectedSubject {
		return Result{Reason: ReasonSubjectMismatch}
	}
	if p.Res != expectedResource {
		return Result{Reason: ReasonResourceMismatch}
	}
	if p.Scope != expectedScope {
		return Result{Reason: ReasonScopeMismatch}
	}

	return Result{OK: true}
}

func (s *Service) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
