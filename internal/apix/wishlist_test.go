package apix

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Khatrip009/MinalGems-website/internal/events"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/storex"
)

// wishlistBackend is a minimal in-test wishlist so Toggle round trips can
// exercise the real index bookkeeping.
type wishlistBackend struct {
	items map[string]string // itemID -> productID
	next  int
}

func (b *wishlistBackend) handler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet:
		items := make([]map[string]any, 0, len(b.items))
		for id, pid := range b.items {
			items = append(items, map[string]any{"id": id, "product_id": pid})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true,
			"wishlist": map[string]any{"id": "wl1", "name": "My Wishlist", "items": items}})
	case r.Method == http.MethodPost:
		var body struct {
			ProductID string `json:"product_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for id, pid := range b.items {
			if pid == body.ProductID {
				_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "id": id, "already_exists": true})
				return
			}
		}
		b.next++
		id := "item-" + string(rune('a'+b.next))
		b.items[id] = body.ProductID
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "id": id})
	case r.Method == http.MethodDelete:
		itemID := strings.TrimPrefix(r.URL.Path, "/api/sales/wishlist/")
		if itemID == "" || itemID == "/api/sales/wishlist" {
			b.items = map[string]string{}
		} else {
			delete(b.items, itemID)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func newWishlistFixture(t *testing.T) (*WishlistAPI, *events.Bus[events.WishlistEvent], *wishlistBackend, func()) {
	t.Helper()
	backend := &wishlistBackend{items: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(backend.handler))
	id := identity.New(storex.NewMemory())
	bus := events.NewBus[events.WishlistEvent]()
	api := NewWishlistAPI(New(srv.URL, id, WithGETRetries(0)), bus)
	return api, bus, backend, srv.Close
}

func TestToggleRoundTrip(t *testing.T) {
	api, bus, backend, done := newWishlistFixture(t)
	defer done()

	var got []events.WishlistEvent
	bus.Subscribe(func(ev events.WishlistEvent) { got = append(got, ev) })

	ctx := context.Background()
	if err := api.Toggle(ctx, "ring-1"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if len(backend.items) != 1 {
		t.Fatalf("backend items = %d", len(backend.items))
	}
	if _, ok := api.ItemID("ring-1"); !ok {
		t.Fatal("index missing after add")
	}

	if err := api.Toggle(ctx, "ring-1"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if len(backend.items) != 0 {
		t.Fatalf("backend items after remove = %d", len(backend.items))
	}
	if _, ok := api.ItemID("ring-1"); ok {
		t.Fatal("index entry survived remove")
	}

	if len(got) != 2 || got[0].Kind != events.WishlistAdd || got[1].Kind != events.WishlistRemove {
		t.Fatalf("events = %v", got)
	}
}

func TestAlreadyExistsSuppressesDelta(t *testing.T) {
	api, bus, _, done := newWishlistFixture(t)
	defer done()

	var deltas int
	bus.Subscribe(func(ev events.WishlistEvent) {
		if ev.Kind == events.WishlistAdd {
			deltas += ev.Delta
		}
	})

	ctx := context.Background()
	if _, err := api.Add(ctx, "ring-1"); err != nil {
		t.Fatalf("add: %v", err)
	}
	res, err := api.Add(ctx, "ring-1")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if !res.AlreadyExists {
		t.Fatal("second add should report already_exists")
	}
	if deltas != 1 {
		t.Fatalf("already_exists must not emit a second delta, got %d", deltas)
	}
}

func TestGetRebuildsIndex(t *testing.T) {
	api, bus, backend, done := newWishlistFixture(t)
	defer done()

	backend.items["item-z"] = "pendant-7"

	var setCount int
	bus.Subscribe(func(ev events.WishlistEvent) {
		if ev.Kind == events.WishlistSet {
			setCount = ev.Count
		}
	})

	if _, err := api.Get(context.Background()); err != nil {
		t.Fatalf("get: %v", err)
	}
	if id, ok := api.ItemID("pendant-7"); !ok || id != "item-z" {
		t.Fatalf("index not rebuilt: %q/%v", id, ok)
	}
	if setCount != 1 {
		t.Fatalf("set event count = %d", setCount)
	}
}
