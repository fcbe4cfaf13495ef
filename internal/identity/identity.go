// Package identity owns the durable client identity primitives: the
// client-generated session id, the server-issued visitor id, the bearer
// token and the cached authenticated-user record. It is the single writer
// for all of them.
package identity

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

// Storage keys. These mirror the web storefront so a future shared backend
// correlation stays stable.
const (
	KeySessionID     = "mg_visitor_session_id"
	KeyVisitorID     = "mg_visitor_id"
	KeyAuthToken     = "auth_token"
	KeyAuthUser      = "auth_user"
	KeyAnonCartID    = "anon_cart_id"
	KeyCookieConsent = "cookie_consent"
)

// SessionIDPrefix deliberately breaks the backend's UUID validation so a
// client-generated session id can never be mistaken for a visitor id.
const SessionIDPrefix = "sess-"

// AnonymousSentinel is returned where an id is required but storage is
// unavailable.
const AnonymousSentinel = "anonymous"

// Store wraps a storex.Store with identity semantics. All operations are
// failure tolerant: a broken underlying store degrades to anonymous
// behavior instead of erroring.
type Store struct {
	kv storex.Store

	mu       sync.Mutex
	fallback string // session id that could not be persisted
}

func New(kv storex.Store) *Store {
	return &Store{kv: kv}
}

// NewSessionID synthesizes a fresh session id that no backend UUID check
// will accept.
func NewSessionID() string {
	return SessionIDPrefix + uuid.NewString()
}

// SessionID returns the durable session id, creating and persisting one on
// first use. If the store cannot persist it, the id is kept in memory so
// every request in this process still carries the same identity.
func (s *Store) SessionID() string {
	if v, ok := s.kv.Get(KeySessionID); ok && v != "" {
		return v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fallback != "" {
		return s.fallback
	}
	id := NewSessionID()
	if err := s.kv.Set(KeySessionID, id); err != nil {
		s.fallback = id
	}
	return id
}

// VisitorID returns the server-issued visitor id, or "" when the identify
// handshake has not happened yet.
func (s *Store) VisitorID() string {
	v, _ := s.kv.Get(KeyVisitorID)
	return v
}

func (s *Store) SetVisitorID(id string) {
	if id == "" {
		return
	}
	_ = s.kv.Set(KeyVisitorID, id)
}

// RequestVisitorID is the value for the x-visitor-id header: the visitor id
// when known, otherwise the session id, with an anonymous fallback.
func (s *Store) RequestVisitorID() string {
	if v := s.VisitorID(); v != "" {
		return v
	}
	if v := s.SessionID(); v != "" {
		return v
	}
	return AnonymousSentinel
}

// Token returns the stored bearer token, "" when logged out.
func (s *Store) Token() string {
	v, _ := s.kv.Get(KeyAuthToken)
	return v
}

// SetToken stores the bearer token; an empty token removes it.
func (s *Store) SetToken(token string) {
	if token == "" {
		_ = s.kv.Delete(KeyAuthToken)
		return
	}
	_ = s.kv.Set(KeyAuthToken, token)
}

// CachedUser returns the cached authenticated-user JSON blob, if any.
func (s *Store) CachedUser() (string, bool) {
	return s.kv.Get(KeyAuthUser)
}

func (s *Store) SetCachedUser(blob string) {
	if blob == "" {
		_ = s.kv.Delete(KeyAuthUser)
		return
	}
	_ = s.kv.Set(KeyAuthUser, blob)
}

// ClearAuth removes the token and the cached user. The request client calls
// this on any 401 before surfacing the error.
func (s *Store) ClearAuth() {
	_ = s.kv.Delete(KeyAuthToken)
	_ = s.kv.Delete(KeyAuthUser)
}

// AnonCartID returns the locally stored anonymous cart marker.
func (s *Store) AnonCartID() string {
	v, _ := s.kv.Get(KeyAnonCartID)
	return v
}

func (s *Store) SetAnonCartID(id string) {
	if id == "" {
		return
	}
	_ = s.kv.Set(KeyAnonCartID, id)
}

func (s *Store) ClearAnonCartID() {
	_ = s.kv.Delete(KeyAnonCartID)
}

// CookieConsent returns the persisted consent blob, if any.
func (s *Store) CookieConsent() (string, bool) {
	return s.kv.Get(KeyCookieConsent)
}

func (s *Store) SetCookieConsent(blob string) {
	_ = s.kv.Set(KeyCookieConsent, blob)
}

// IsSessionID reports whether id is a client-generated session id rather
// than a server-issued UUID.
func IsSessionID(id string) bool {
	return strings.HasPrefix(id, SessionIDPrefix)
}
