package apix

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/Khatrip009/MinalGems-website/internal/events"
)

// WishlistAPI wraps the wishlist resource. It is the sole emitter of
// wishlist events and keeps a productID -> wishlistItemID index so toggles
// resolve without refetching.
type WishlistAPI struct {
	c   *Client
	bus *events.Bus[events.WishlistEvent]

	mu    sync.Mutex
	index map[string]string // productID -> itemID
}

func NewWishlistAPI(c *Client, bus *events.Bus[events.WishlistEvent]) *WishlistAPI {
	return &WishlistAPI{
		c:     c,
		bus:   bus,
		index: make(map[string]string),
	}
}

// Get fetches the wishlist and rebuilds the local index from it.
func (a *WishlistAPI) Get(ctx context.Context) (*WishlistResponse, error) {
	var out WishlistResponse
	if err := a.c.Get(ctx, "/sales/wishlist", &out); err != nil {
		return nil, err
	}
	if out.OK {
		a.mu.Lock()
		a.index = lo.SliceToMap(out.Wishlist.Items, func(it WishlistItem) (string, string) {
			return it.ProductID, it.ID
		})
		a.mu.Unlock()
		a.bus.Emit(events.WishlistEvent{Kind: events.WishlistSet, Count: len(out.Wishlist.Items)})
	}
	return &out, nil
}

// Add puts a product on the wishlist. An already_exists answer succeeds but
// emits no delta.
func (a *WishlistAPI) Add(ctx context.Context, productID string) (*AddToWishlistResponse, error) {
	if err := requireID("product_id_required", productID); err != nil {
		return nil, err
	}
	body := map[string]any{"product_id": productID}
	var out AddToWishlistResponse
	if err := a.c.Post(ctx, "/sales/wishlist", body, &out); err != nil {
		return nil, err
	}
	if out.OK {
		if out.ID != "" {
			a.mu.Lock()
			a.index[productID] = out.ID
			a.mu.Unlock()
		}
		if !out.AlreadyExists {
			a.bus.Emit(events.WishlistEvent{Kind: events.WishlistAdd, Delta: 1})
		}
	}
	return &out, nil
}

// Remove deletes one wishlist item by its item id.
func (a *WishlistAPI) Remove(ctx context.Context, itemID string) (*OKResponse, error) {
	if err := requireID("wishlist_item_id_required", itemID); err != nil {
		return nil, err
	}
	var out OKResponse
	if err := a.c.Delete(ctx, "/sales/wishlist/"+itemID, &out); err != nil {
		return nil, err
	}
	if out.OK {
		a.mu.Lock()
		for pid, iid := range a.index {
			if iid == itemID {
				delete(a.index, pid)
				break
			}
		}
		a.mu.Unlock()
		a.bus.Emit(events.WishlistEvent{Kind: events.WishlistRemove, Delta: 1})
	}
	return &out, nil
}

// Clear empties the wishlist.
func (a *WishlistAPI) Clear(ctx context.Context) (*OKResponse, error) {
	var out OKResponse
	if err := a.c.Delete(ctx, "/sales/wishlist", &out); err != nil {
		return nil, err
	}
	if out.OK {
		a.mu.Lock()
		a.index = make(map[string]string)
		a.mu.Unlock()
		a.bus.Emit(events.WishlistEvent{Kind: events.WishlistClear})
	}
	return &out, nil
}

// ItemID resolves the wishlist item id for a product, if present in the
// last known snapshot.
func (a *WishlistAPI) ItemID(productID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.index[productID]
	return id, ok
}

// Toggle adds the product when absent and removes it when present,
// resolving membership through the local index.
func (a *WishlistAPI) Toggle(ctx context.Context, productID string) error {
	if itemID, ok := a.ItemID(productID); ok {
		_, err := a.Remove(ctx, itemID)
		return err
	}
	_, err := a.Add(ctx, productID)
	return err
}
