package apix

import "context"

// OrdersAPI lists and inspects the logged-in user's orders.
type OrdersAPI struct {
	c *Client
}

func NewOrdersAPI(c *Client) *OrdersAPI {
	return &OrdersAPI{c: c}
}

func (a *OrdersAPI) My(ctx context.Context) (*OrdersResponse, error) {
	var out OrdersResponse
	if err := a.c.Get(ctx, "/orders/my", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *OrdersAPI) Get(ctx context.Context, orderID string) (*OrderResponse, error) {
	if err := requireID("order_id_required", orderID); err != nil {
		return nil, err
	}
	var out OrderResponse
	if err := a.c.Get(ctx, "/orders/"+orderID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Timeline fetches an order's fulfilment history. The route lives under
// /account because only the owner may read it.
func (a *OrdersAPI) Timeline(ctx context.Context, orderID string) (*TimelineResponse, error) {
	if err := requireID("order_id_required", orderID); err != nil {
		return nil, err
	}
	var out TimelineResponse
	if err := a.c.Get(ctx, "/account/orders/"+orderID+"/timeline", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
