package apix

import "context"

// StockAlertsAPI registers back-in-stock notifications for a product.
type StockAlertsAPI struct {
	c *Client
}

func NewStockAlertsAPI(c *Client) *StockAlertsAPI {
	return &StockAlertsAPI{c: c}
}

func (a *StockAlertsAPI) Register(ctx context.Context, productID string) (*StockAlertResponse, error) {
	if err := requireID("product_id_required", productID); err != nil {
		return nil, err
	}
	body := map[string]any{"product_id": productID}
	var out StockAlertResponse
	if err := a.c.Post(ctx, "/stock-alerts/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConsentsAPI persists a visitor's cookie consent choices.
type ConsentsAPI struct {
	c *Client
}

func NewConsentsAPI(c *Client) *ConsentsAPI {
	return &ConsentsAPI{c: c}
}

// CookieConsent is the consent matrix; Necessary is always true.
type CookieConsent struct {
	Necessary   bool   `json:"necessary"`
	Analytics   bool   `json:"analytics"`
	Marketing   bool   `json:"marketing"`
	Preferences bool   `json:"preferences"`
	Version     string `json:"version,omitempty"`
}

func (a *ConsentsAPI) Submit(ctx context.Context, visitorID string, consent CookieConsent) (*ConsentResponse, error) {
	if err := requireID("visitor_id_required", visitorID); err != nil {
		return nil, err
	}
	body := map[string]any{"visitor_id": visitorID, "consent": consent}
	var out ConsentResponse
	if err := a.c.Post(ctx, "/cookie-consents", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
