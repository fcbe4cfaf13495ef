package apix

import "context"

// CartAPI wraps the cart resource. Every mutating call returns the full
// replacement cart snapshot; the client never computes cart fields locally.
type CartAPI struct {
	c *Client
}

func NewCartAPI(c *Client) *CartAPI {
	return &CartAPI{c: c}
}

// Get fetches the current cart; Cart is nil when no cart exists yet.
func (a *CartAPI) Get(ctx context.Context) (*CartResponse, error) {
	var out CartResponse
	if err := a.c.Get(ctx, "/cart", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddItem adds quantity units of a product.
func (a *CartAPI) AddItem(ctx context.Context, productID string, quantity int) (*CartResponse, error) {
	if err := requireID("product_id_required", productID); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		quantity = 1
	}
	body := map[string]any{"product_id": productID, "quantity": quantity}
	var out CartResponse
	if err := a.c.Post(ctx, "/cart", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateItem sets the quantity of an existing cart line.
func (a *CartAPI) UpdateItem(ctx context.Context, itemID string, quantity int) (*CartResponse, error) {
	if err := requireID("cart_item_id_required", itemID); err != nil {
		return nil, err
	}
	body := map[string]any{"quantity": quantity}
	var out CartResponse
	if err := a.c.Patch(ctx, "/cart/"+itemID, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveItem deletes a cart line.
func (a *CartAPI) RemoveItem(ctx context.Context, itemID string) (*CartResponse, error) {
	if err := requireID("cart_item_id_required", itemID); err != nil {
		return nil, err
	}
	var out CartResponse
	if err := a.c.Delete(ctx, "/cart/"+itemID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Attach merges an anonymous cart into the authenticated user's cart. The
// backend guarantees idempotence for already-consumed markers.
func (a *CartAPI) Attach(ctx context.Context, anonCartID string) (*AttachCartResponse, error) {
	if err := requireID("anon_cart_id_required", anonCartID); err != nil {
		return nil, err
	}
	body := map[string]any{"anon_cart_id": anonCartID}
	var out AttachCartResponse
	if err := a.c.Post(ctx, "/cart/attach", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
