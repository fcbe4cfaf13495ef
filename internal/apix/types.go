package apix

// Wire types for the storefront contract. Every envelope carries an OK
// discriminator that callers check before trusting the payload.

// CartItem is one line of the server-owned cart aggregate. UnitPrice is a
// snapshot taken when the line was created.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Title     string  `json:"title,omitempty"`
	Slug      string  `json:"slug,omitempty"`
	Image     string  `json:"image,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// Cart is the server-owned aggregate. The client never patches it field by
// field; every mutation replaces the whole snapshot.
type Cart struct {
	ID         string     `json:"id"`
	Items      []CartItem `json:"items"`
	ItemCount  int        `json:"item_count"`
	Subtotal   float64    `json:"subtotal"`
	GrandTotal float64    `json:"grand_total"`
}

type CartResponse struct {
	OK   bool  `json:"ok"`
	Cart *Cart `json:"cart"`
}

type AttachCartResponse struct {
	OK bool `json:"ok"`
}

// WishlistItem carries denormalized display fields so list pages render
// without extra product fetches.
type WishlistItem struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	ProductTitle string  `json:"product_title,omitempty"`
	ProductSlug  string  `json:"product_slug,omitempty"`
	Price        float64 `json:"price,omitempty"`
	Image        string  `json:"image,omitempty"`
	AddedAt      string  `json:"added_at,omitempty"`
}

type Wishlist struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Items []WishlistItem `json:"items"`
}

type WishlistResponse struct {
	OK       bool     `json:"ok"`
	Wishlist Wishlist `json:"wishlist"`
}

type AddToWishlistResponse struct {
	OK            bool   `json:"ok"`
	ID            string `json:"id,omitempty"`
	AlreadyExists bool   `json:"already_exists,omitempty"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

type IdentifyResponse struct {
	VisitorID string `json:"visitor_id"`
}

type TrackEventResponse struct {
	OK        bool   `json:"ok"`
	VisitorID string `json:"visitor_id"`
	EventID   string `json:"event_id"`
}

// UserProfile is the account-facing user record.
type UserProfile struct {
	ID         string         `json:"id"`
	Email      string         `json:"email"`
	FullName   string         `json:"full_name"`
	Phone      string         `json:"phone"`
	DOB        string         `json:"dob"`
	KYCStatus  string         `json:"kyc_status,omitempty"`
	IsVerified bool           `json:"is_verified"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// AccountStats summarizes the account dashboard numbers.
type AccountStats struct {
	CartItemCount  int     `json:"cart_item_count"`
	AddressesCount int     `json:"addresses_count"`
	WishlistCount  int     `json:"wishlist_count"`
	OrdersCount    int     `json:"orders_count"`
	LastOrderAt    string  `json:"last_order_at"`
	CartSubtotal   float64 `json:"cart_subtotal"`
	CartGrandTotal float64 `json:"cart_grand_total"`
}

type AccountOverviewResponse struct {
	OK    bool         `json:"ok"`
	User  *UserProfile `json:"user"`
	Cart  *Cart        `json:"cart"`
	Stats AccountStats `json:"stats"`
}

type ProfileResponse struct {
	OK   bool         `json:"ok"`
	User *UserProfile `json:"user"`
}

// TimelineEntry is one step in an order's fulfilment history.
type TimelineEntry struct {
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

type TimelineResponse struct {
	OK       bool            `json:"ok"`
	Timeline []TimelineEntry `json:"timeline"`
}

// Product is the catalog card shape used by listing and detail pages.
type Product struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency,omitempty"`
	Image       string  `json:"image,omitempty"`
	CategoryID  string  `json:"category_id,omitempty"`
	InStock     bool    `json:"in_stock"`
}

type ProductAsset struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

type ProductsResponse struct {
	OK       bool      `json:"ok"`
	Products []Product `json:"products"`
}

type ProductResponse struct {
	OK      bool    `json:"ok"`
	Product Product `json:"product"`
}

type ProductAssetsResponse struct {
	OK     bool           `json:"ok"`
	Assets []ProductAsset `json:"assets"`
}

type Category struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ParentID     string `json:"parent_id,omitempty"`
	ProductCount int    `json:"product_count,omitempty"`
}

type CategoriesResponse struct {
	OK         bool       `json:"ok"`
	Categories []Category `json:"categories"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

// OrderSummary is the per-order row in "my orders".
type OrderSummary struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	GrandTotal float64 `json:"grand_total"`
	PlacedAt   string  `json:"placed_at"`
}

type OrdersResponse struct {
	OK     bool           `json:"ok"`
	Orders []OrderSummary `json:"orders"`
}

type OrderDetail struct {
	OrderSummary
	Items []CartItem `json:"items"`
}

type OrderResponse struct {
	OK    bool        `json:"ok"`
	Order OrderDetail `json:"order"`
}

// CheckoutSummary is the priced view returned before placing an order.
type CheckoutSummary struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Discount   float64 `json:"discount"`
	GrandTotal float64 `json:"grand_total"`
}

type CheckoutSummaryResponse struct {
	OK      bool            `json:"ok"`
	Summary CheckoutSummary `json:"summary"`
}

type PlaceOrderResponse struct {
	OK      bool   `json:"ok"`
	OrderID string `json:"order_id"`
}

type PromoResponse struct {
	OK       bool    `json:"ok"`
	Discount float64 `json:"discount"`
	Code     string  `json:"code"`
}

type StockAlertResponse struct {
	OK            bool   `json:"ok"`
	AlertID       string `json:"alert_id,omitempty"`
	Status        string `json:"status,omitempty"`
	AlreadyExists bool   `json:"already_exists,omitempty"`
}

type ConsentResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// LoginResponse carries the bearer token plus the authenticated profile.
type LoginResponse struct {
	OK    bool         `json:"ok"`
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// Address is a saved shipping or billing address.
type Address struct {
	ID                string         `json:"id"`
	Label             string         `json:"label,omitempty"`
	FullName          string         `json:"full_name,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Line1             string         `json:"line1"`
	Line2             string         `json:"line2,omitempty"`
	City              string         `json:"city"`
	State             string         `json:"state,omitempty"`
	PostalCode        string         `json:"postal_code,omitempty"`
	Country           string         `json:"country"`
	IsDefaultBilling  bool           `json:"is_default_billing"`
	IsDefaultShipping bool           `json:"is_default_shipping"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// AddressInput is the writable subset of Address.
type AddressInput struct {
	Label             string         `json:"label,omitempty"`
	FullName          string         `json:"full_name,omitempty"`
	Phone             string         `json:"phone,omitempty"`
	Line1             string         `json:"line1"`
	Line2             string         `json:"line2,omitempty"`
	City              string         `json:"city"`
	State             string         `json:"state,omitempty"`
	PostalCode        string         `json:"postal_code,omitempty"`
	Country           string         `json:"country"`
	IsDefaultBilling  bool           `json:"is_default_billing"`
	IsDefaultShipping bool           `json:"is_default_shipping"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

type AddressesResponse struct {
	OK        bool      `json:"ok"`
	Addresses []Address `json:"addresses"`
}

type AddressResponse struct {
	OK      bool    `json:"ok"`
	Address Address `json:"address"`
}

// VisitorsMetrics are the public traffic counters shown in the footer.
type VisitorsMetrics struct {
	TotalVisitors    int `json:"total_visitors"`
	VisitorsToday    int `json:"visitors_today"`
	NewVisitorsToday int `json:"new_visitors_today"`
}

type VisitorsMetricsResponse struct {
	OK      bool            `json:"ok"`
	Metrics VisitorsMetrics `json:"metrics"`
}
