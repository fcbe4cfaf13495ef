package state

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

type scriptedBackend struct {
	t       *testing.T
	handler func(w http.ResponseWriter, r *http.Request)
}

func (s *scriptedBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler(w, r)
}

func newCartFixture(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*CartStore, *identity.Store, func()) {
	t.Helper()
	srv := httptest.NewServer(&scriptedBackend{t: t, handler: handler})
	id := identity.New(storex.NewMemory())
	client := apix.New(srv.URL, id, apix.WithGETRetries(0))
	store := NewCartStore(apix.NewCartAPI(client), id)
	return store, id, srv.Close
}

func writeCart(w http.ResponseWriter, cart map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "cart": cart})
}

func TestRefreshReplacesSnapshotWholesale(t *testing.T) {
	items := []map[string]any{{"id": "l1", "product_id": "p1", "quantity": 1}}
	store, _, done := newCartFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeCart(w, map[string]any{"id": "c1", "items": items, "item_count": len(items)})
	})
	defer done()

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	cart, phase := store.Snapshot()
	if phase != Ready || cart == nil || cart.ItemCount != 1 {
		t.Fatalf("snapshot = %+v phase=%v", cart, phase)
	}

	items = []map[string]any{
		{"id": "l1", "product_id": "p1", "quantity": 1},
		{"id": "l2", "product_id": "p2", "quantity": 2},
	}
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	cart, _ = store.Snapshot()
	if len(cart.Items) != 2 {
		t.Fatalf("snapshot not replaced: %+v", cart)
	}
}

func TestMutationFailureKeepsLastGoodSnapshot(t *testing.T) {
	store, _, done := newCartFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeCart(w, map[string]any{"id": "c1", "item_count": 1,
				"items": []map[string]any{{"id": "l1", "product_id": "p1", "quantity": 1}}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "boom"})
	})
	defer done()

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}

	got, err := store.AddItem(context.Background(), "p2", 1)
	if err == nil {
		t.Fatal("expected mutation error")
	}
	if got == nil || got.ID != "c1" {
		t.Fatalf("AddItem should return the last good snapshot, got %+v", got)
	}
	cart, phase := store.Snapshot()
	if phase != Ready || cart == nil || cart.ID != "c1" || cart.ItemCount != 1 {
		t.Fatalf("snapshot lost after failed mutation: %+v phase=%v", cart, phase)
	}
}

func TestOKFalseRefreshClearsSnapshot(t *testing.T) {
	hasCart := true
	store, _, done := newCartFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if hasCart {
			writeCart(w, map[string]any{"id": "c1", "item_count": 1})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	})
	defer done()

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	hasCart = false
	if err := store.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if cart, _ := store.Snapshot(); cart != nil {
		t.Fatalf("ok:false refresh should clear snapshot, got %+v", cart)
	}
}

func TestAnonCartMarkerWrittenWhileLoggedOut(t *testing.T) {
	store, id, done := newCartFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeCart(w, map[string]any{"id": "anon-cart-9", "item_count": 1,
			"items": []map[string]any{{"id": "l1", "product_id": "p1", "quantity": 1}}})
	})
	defer done()

	if _, err := store.AddItem(context.Background(), "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := id.AnonCartID(); got != "anon-cart-9" {
		t.Fatalf("anon cart marker = %q", got)
	}
}

func TestAnonCartMarkerNotWrittenWhileLoggedIn(t *testing.T) {
	store, id, done := newCartFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeCart(w, map[string]any{"id": "user-cart-1", "item_count": 1})
	})
	defer done()

	id.SetToken("tok")
	if _, err := store.AddItem(context.Background(), "p1", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := id.AnonCartID(); got != "" {
		t.Fatalf("marker must not be written while logged in, got %q", got)
	}
}
