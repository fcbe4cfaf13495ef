package identity

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

func TestSessionIDShape(t *testing.T) {
	id := NewSessionID()
	if !IsSessionID(id) {
		t.Fatalf("session id %q missing prefix", id)
	}
	// The whole point of the prefix: the id must not parse as a UUID.
	if _, err := uuid.Parse(id); err == nil {
		t.Fatalf("session id %q must not be a valid UUID", id)
	}
}

func TestSessionIDPersists(t *testing.T) {
	kv := storex.NewMemory()
	s := New(kv)

	first := s.SessionID()
	second := s.SessionID()
	if first != second {
		t.Fatalf("session id not stable: %q != %q", first, second)
	}

	// A fresh store over the same kv sees the same id.
	if got := New(kv).SessionID(); got != first {
		t.Fatalf("session id not durable: %q != %q", got, first)
	}
}

func TestRequestVisitorIDPrecedence(t *testing.T) {
	kv := storex.NewMemory()
	s := New(kv)

	if got := s.RequestVisitorID(); !IsSessionID(got) {
		t.Fatalf("want session id before identify, got %q", got)
	}

	s.SetVisitorID("server-visitor")
	if got := s.RequestVisitorID(); got != "server-visitor" {
		t.Fatalf("visitor id should take precedence, got %q", got)
	}
}

func TestRequestVisitorIDWhenStorageBroken(t *testing.T) {
	kv := storex.NewMemory()
	kv.FailReads = true
	kv.FailWrites = true
	s := New(kv)

	// No panic, no error: the call degrades to an in-memory session id.
	got := s.RequestVisitorID()
	if !IsSessionID(got) {
		t.Fatalf("unexpected fallback id %q", got)
	}
	// The fallback must stay stable within the process so every request
	// carries the same identity.
	if again := s.RequestVisitorID(); again != got {
		t.Fatalf("fallback id changed between calls: %q then %q", got, again)
	}
	if s.SessionID() != got {
		t.Fatal("SessionID disagrees with the fallback")
	}
}

func TestSetTokenEmptyDeletes(t *testing.T) {
	kv := storex.NewMemory()
	s := New(kv)

	s.SetToken("tok")
	if s.Token() != "tok" {
		t.Fatal("token not stored")
	}
	s.SetToken("")
	if s.Token() != "" {
		t.Fatal("empty SetToken should delete")
	}
}

func TestClearAuth(t *testing.T) {
	kv := storex.NewMemory()
	s := New(kv)

	s.SetToken("tok")
	s.SetCachedUser(`{"id":"u1"}`)
	s.SetAnonCartID("cart-1")
	s.ClearAuth()

	if s.Token() != "" {
		t.Fatal("token survived ClearAuth")
	}
	if _, ok := s.CachedUser(); ok {
		t.Fatal("cached user survived ClearAuth")
	}
	// The anonymous cart marker is not auth state and must survive.
	if s.AnonCartID() != "cart-1" {
		t.Fatal("anon cart marker should survive ClearAuth")
	}
}
