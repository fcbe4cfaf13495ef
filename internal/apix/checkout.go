package apix

import "context"

// CheckoutAPI prices and places orders. Payment capture happens against an
// external provider; Pay only records the provider's result.
type CheckoutAPI struct {
	c *Client
}

func NewCheckoutAPI(c *Client) *CheckoutAPI {
	return &CheckoutAPI{c: c}
}

// SummaryInput selects what to price.
type SummaryInput struct {
	CartID            string `json:"cart_id"`
	ShippingAddressID string `json:"shipping_address_id,omitempty"`
	BillingAddressID  string `json:"billing_address_id,omitempty"`
	CouponCode        string `json:"coupon_code,omitempty"`
	ShippingMethod    string `json:"shipping_method,omitempty"`
}

func (a *CheckoutAPI) Summary(ctx context.Context, in SummaryInput) (*CheckoutSummaryResponse, error) {
	if err := requireID("cart_id_required", in.CartID); err != nil {
		return nil, err
	}
	var out CheckoutSummaryResponse
	if err := a.c.Post(ctx, "/checkout/summary", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceOrderInput finalizes a cart into an order.
type PlaceOrderInput struct {
	CartID            string `json:"cart_id"`
	ShippingAddressID string `json:"shipping_address_id"`
	BillingAddressID  string `json:"billing_address_id"`
	PaymentMethod     string `json:"payment_method"`
	Notes             string `json:"notes,omitempty"`
}

func (a *CheckoutAPI) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*PlaceOrderResponse, error) {
	if err := requireID("cart_id_required", in.CartID); err != nil {
		return nil, err
	}
	var out PlaceOrderResponse
	if err := a.c.Post(ctx, "/checkout/place-order", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PayInput records a provider payment result against an order.
type PayInput struct {
	OrderID           string         `json:"order_id"`
	Amount            float64        `json:"amount"`
	Currency          string         `json:"currency"`
	Provider          string         `json:"provider"`
	ProviderPaymentID string         `json:"provider_payment_id"`
	Status            string         `json:"status"`
	Meta              map[string]any `json:"meta,omitempty"`
}

func (a *CheckoutAPI) Pay(ctx context.Context, in PayInput) (*OKResponse, error) {
	if err := requireID("order_id_required", in.OrderID); err != nil {
		return nil, err
	}
	var out OKResponse
	if err := a.c.Post(ctx, "/checkout/pay", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApplyPromo validates a promo code against the current subtotal.
func (a *CheckoutAPI) ApplyPromo(ctx context.Context, code string, subtotal float64) (*PromoResponse, error) {
	if err := requireID("promo_code_required", code); err != nil {
		return nil, err
	}
	body := map[string]any{"promo_code": code, "subtotal": subtotal}
	var out PromoResponse
	if err := a.c.Post(ctx, "/promo/apply", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
