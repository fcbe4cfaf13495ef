package state

import (
	"context"
	"errors"
	"testing"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

type fakeAttacher struct {
	calls   int
	lastID  string
	err     error
	okFalse bool
}

func (f *fakeAttacher) Attach(ctx context.Context, anonCartID string) (*apix.AttachCartResponse, error) {
	f.calls++
	f.lastID = anonCartID
	if f.err != nil {
		return nil, f.err
	}
	return &apix.AttachCartResponse{OK: !f.okFalse}, nil
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return f.err
}

func newReconcileFixture(t *testing.T) (*identity.Store, *fakeAttacher, *fakeRefresher, *CartReconciler) {
	t.Helper()
	id := identity.New(storex.NewMemory())
	att := &fakeAttacher{}
	ref := &fakeRefresher{}
	return id, att, ref, NewCartReconciler(id, att, ref)
}

func TestRunWithoutMarkerDoesNothing(t *testing.T) {
	_, att, ref, r := newReconcileFixture(t)
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if att.calls != 0 || ref.calls != 0 {
		t.Fatalf("no marker should mean no calls: attach=%d refresh=%d", att.calls, ref.calls)
	}
}

func TestRunAttachesAndRefreshesExactlyOnce(t *testing.T) {
	id, att, ref, r := newReconcileFixture(t)
	id.SetAnonCartID("cart-42")

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if att.calls != 1 || att.lastID != "cart-42" {
		t.Fatalf("attach calls=%d id=%q", att.calls, att.lastID)
	}
	if ref.calls != 1 {
		t.Fatalf("refresh must run exactly once, got %d", ref.calls)
	}
	if id.AnonCartID() != "" {
		t.Fatal("marker should be cleared after successful attach")
	}
}

func TestRunKeepsMarkerOnAttachError(t *testing.T) {
	id, att, ref, r := newReconcileFixture(t)
	id.SetAnonCartID("cart-42")
	att.err = errors.New("backend down")

	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if id.AnonCartID() != "cart-42" {
		t.Fatal("marker must be retained for a later retry")
	}
	if ref.calls != 0 {
		t.Fatalf("refresh must not run on failure, got %d", ref.calls)
	}
}

func TestRunKeepsMarkerOnRejectedAttach(t *testing.T) {
	id, att, _, r := newReconcileFixture(t)
	id.SetAnonCartID("cart-42")
	att.okFalse = true

	if err := r.Run(context.Background()); err == nil {
		t.Fatal("expected error for ok:false")
	}
	if id.AnonCartID() != "cart-42" {
		t.Fatal("marker must be retained when the backend rejects the attach")
	}
}

func TestRunSucceedsEvenWhenRefreshFails(t *testing.T) {
	id, _, ref, r := newReconcileFixture(t)
	id.SetAnonCartID("cart-42")
	ref.err = errors.New("transient")

	// The merge happened server-side; a refresh failure is not a
	// reconciliation failure.
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if id.AnonCartID() != "" {
		t.Fatal("marker should still be cleared")
	}
}
