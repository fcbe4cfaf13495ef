package stubapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/Khatrip009/MinalGems-website/internal/config"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Algo = "HS256"
	cfg.JWT.HSSecret = "test-secret"
	cfg.JWT.Issuer = "test"
	cfg.JWT.Audience = "test"
	cfg.JWT.AccessMin = 15
	return cfg
}

func newTestApp(t *testing.T) (*fiber.App, *Store) {
	t.Helper()
	cfg := newTestConfig()
	store := NewStore()
	hub := NewHub()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	Register(app, cfg, store, hub)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token, visitor string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if visitor != "" {
		req.Header.Set("x-visitor-id", visitor)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return res.StatusCode, out
}

func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, out := doJSON(t, app, http.MethodPost, "/api/auth/register",
		map[string]any{"email": email, "password": "correct-horse", "full_name": "Test User"}, "", "")
	if status != http.StatusOK {
		t.Fatalf("register status %d: %v", status, out)
	}
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatal("register returned no token")
	}
	return token
}

func firstProductID(t *testing.T, store *Store) string {
	t.Helper()
	products := store.Products()
	if len(products) == 0 {
		t.Fatal("no seeded products")
	}
	return products[0].ID
}

func TestRegisterLoginAndBadPassword(t *testing.T) {
	app, _ := newTestApp(t)
	registerUser(t, app, "a@example.com")

	status, out := doJSON(t, app, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "a@example.com", "password": "correct-horse"}, "", "")
	if status != http.StatusOK || out["ok"] != true {
		t.Fatalf("login: %d %v", status, out)
	}

	status, out = doJSON(t, app, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "a@example.com", "password": "wrong"}, "", "")
	if status != http.StatusUnauthorized || out["error"] != "invalid_credentials" {
		t.Fatalf("bad login: %d %v", status, out)
	}
}

func TestCartCRUDForVisitor(t *testing.T) {
	app, store := newTestApp(t)
	pid := firstProductID(t, store)

	status, out := doJSON(t, app, http.MethodPost, "/api/cart",
		map[string]any{"product_id": pid, "quantity": 2}, "", "sess-visitor-1")
	if status != http.StatusOK {
		t.Fatalf("add: %d %v", status, out)
	}
	cart := out["cart"].(map[string]any)
	if cart["item_count"].(float64) != 2 {
		t.Fatalf("item_count = %v", cart["item_count"])
	}
	itemID := cart["items"].([]any)[0].(map[string]any)["id"].(string)

	status, out = doJSON(t, app, http.MethodPatch, "/api/cart/"+itemID,
		map[string]any{"quantity": 5}, "", "sess-visitor-1")
	if status != http.StatusOK {
		t.Fatalf("patch: %d %v", status, out)
	}
	if got := out["cart"].(map[string]any)["item_count"].(float64); got != 5 {
		t.Fatalf("after patch item_count = %v", got)
	}

	// Another visitor must not see this cart.
	status, out = doJSON(t, app, http.MethodGet, "/api/cart", nil, "", "sess-visitor-2")
	if status != http.StatusOK || out["cart"] != nil {
		t.Fatalf("other visitor cart: %d %v", status, out)
	}

	status, out = doJSON(t, app, http.MethodDelete, "/api/cart/"+itemID, nil, "", "sess-visitor-1")
	if status != http.StatusOK {
		t.Fatalf("delete: %d %v", status, out)
	}
	if got := out["cart"].(map[string]any)["item_count"].(float64); got != 0 {
		t.Fatalf("after delete item_count = %v", got)
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	app, store := newTestApp(t)
	pid := firstProductID(t, store)

	_, out := doJSON(t, app, http.MethodPost, "/api/cart",
		map[string]any{"product_id": pid, "quantity": 3}, "", "sess-anon-7")
	anonCartID := out["cart"].(map[string]any)["id"].(string)

	token := registerUser(t, app, "attach@example.com")

	// Attach without a token is a hard 401.
	status, _ := doJSON(t, app, http.MethodPost, "/api/cart/attach",
		map[string]any{"anon_cart_id": anonCartID}, "", "sess-anon-7")
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous attach status %d", status)
	}

	status, out = doJSON(t, app, http.MethodPost, "/api/cart/attach",
		map[string]any{"anon_cart_id": anonCartID}, token, "sess-anon-7")
	if status != http.StatusOK {
		t.Fatalf("attach: %d %v", status, out)
	}
	if got := out["cart"].(map[string]any)["item_count"].(float64); got != 3 {
		t.Fatalf("merged item_count = %v", got)
	}

	// Replaying the same marker must not duplicate lines.
	status, out = doJSON(t, app, http.MethodPost, "/api/cart/attach",
		map[string]any{"anon_cart_id": anonCartID}, token, "sess-anon-7")
	if status != http.StatusOK {
		t.Fatalf("replay attach: %d %v", status, out)
	}
	if got := out["cart"].(map[string]any)["item_count"].(float64); got != 3 {
		t.Fatalf("replay changed item_count to %v", got)
	}
}

func TestWishlistAlreadyExists(t *testing.T) {
	app, store := newTestApp(t)
	pid := firstProductID(t, store)

	status, out := doJSON(t, app, http.MethodPost, "/api/sales/wishlist",
		map[string]any{"product_id": pid}, "", "sess-w1")
	if status != http.StatusOK || out["already_exists"] == true {
		t.Fatalf("first add: %d %v", status, out)
	}
	firstID := out["id"].(string)

	status, out = doJSON(t, app, http.MethodPost, "/api/sales/wishlist",
		map[string]any{"product_id": pid}, "", "sess-w1")
	if status != http.StatusOK || out["already_exists"] != true {
		t.Fatalf("second add: %d %v", status, out)
	}
	if out["id"].(string) != firstID {
		t.Fatal("already_exists should return the existing item id")
	}
}

func TestAccountRequiresAuth(t *testing.T) {
	app, _ := newTestApp(t)
	status, out := doJSON(t, app, http.MethodGet, "/api/account/overview", nil, "", "sess-x")
	if status != http.StatusUnauthorized || out["error"] != "unauthorized" {
		t.Fatalf("unauthenticated overview: %d %v", status, out)
	}

	status, _ = doJSON(t, app, http.MethodGet, "/api/account/overview", nil, "garbage-token", "sess-x")
	if status != http.StatusUnauthorized {
		t.Fatalf("invalid token overview: %d", status)
	}
}

func TestChangePasswordValidatesCurrent(t *testing.T) {
	app, _ := newTestApp(t)
	token := registerUser(t, app, "pw@example.com")

	status, out := doJSON(t, app, http.MethodPut, "/api/account/password",
		map[string]any{"current_password": "nope", "new_password": "brand-new-pass"}, token, "")
	if status != http.StatusBadRequest || out["error"] != "invalid_current_password" {
		t.Fatalf("wrong current password: %d %v", status, out)
	}

	status, out = doJSON(t, app, http.MethodPut, "/api/account/password",
		map[string]any{"current_password": "correct-horse", "new_password": "brand-new-pass"}, token, "")
	if status != http.StatusOK {
		t.Fatalf("rotate: %d %v", status, out)
	}

	status, _ = doJSON(t, app, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "pw@example.com", "password": "brand-new-pass"}, "", "")
	if status != http.StatusOK {
		t.Fatalf("login with rotated password: %d", status)
	}
}

func TestIdentifyIsStablePerSession(t *testing.T) {
	app, _ := newTestApp(t)

	_, out1 := doJSON(t, app, http.MethodPost, "/api/visitors/identify",
		map[string]any{"session_id": "sess-abc"}, "", "")
	_, out2 := doJSON(t, app, http.MethodPost, "/api/visitors/identify",
		map[string]any{"session_id": "sess-abc"}, "", "")
	_, out3 := doJSON(t, app, http.MethodPost, "/api/visitors/identify",
		map[string]any{"session_id": "sess-other"}, "", "")

	v1 := out1["visitor_id"].(string)
	if v1 == "" || v1 != out2["visitor_id"].(string) {
		t.Fatalf("visitor id not stable: %v vs %v", out1, out2)
	}
	if v1 == out3["visitor_id"].(string) {
		t.Fatal("different sessions must get different visitor ids")
	}
}

func TestCheckoutFlow(t *testing.T) {
	app, store := newTestApp(t)
	pid := firstProductID(t, store)
	token := registerUser(t, app, "buyer@example.com")

	_, out := doJSON(t, app, http.MethodPost, "/api/cart",
		map[string]any{"product_id": pid, "quantity": 1}, token, "")
	cartID := out["cart"].(map[string]any)["id"].(string)

	status, out := doJSON(t, app, http.MethodPost, "/api/checkout/summary",
		map[string]any{"cart_id": cartID, "coupon_code": "WELCOME10"}, token, "")
	if status != http.StatusOK {
		t.Fatalf("summary: %d %v", status, out)
	}
	sum := out["summary"].(map[string]any)
	if sum["discount"].(float64) <= 0 {
		t.Fatalf("coupon not applied: %v", sum)
	}

	status, out = doJSON(t, app, http.MethodPost, "/api/checkout/place-order",
		map[string]any{"cart_id": cartID, "payment_method": "card"}, token, "")
	if status != http.StatusOK {
		t.Fatalf("place order: %d %v", status, out)
	}
	orderID := out["order_id"].(string)

	status, out = doJSON(t, app, http.MethodPost, "/api/checkout/pay",
		map[string]any{"order_id": orderID, "status": "succeeded", "provider": "razorpay"}, token, "")
	if status != http.StatusOK {
		t.Fatalf("pay: %d %v", status, out)
	}

	status, out = doJSON(t, app, http.MethodGet, "/api/account/orders/"+orderID+"/timeline", nil, token, "")
	if status != http.StatusOK {
		t.Fatalf("timeline: %d %v", status, out)
	}
	timeline := out["timeline"].([]any)
	if len(timeline) != 2 {
		t.Fatalf("timeline entries = %d, want placed+paid", len(timeline))
	}
	last := timeline[len(timeline)-1].(map[string]any)
	if last["status"] != "paid" {
		t.Fatalf("last timeline status = %v", last["status"])
	}

	// The consumed cart is gone.
	status, out = doJSON(t, app, http.MethodGet, "/api/cart", nil, token, "")
	if status != http.StatusOK || out["cart"] != nil {
		t.Fatalf("cart after order: %d %v", status, out)
	}
}

func TestPromoApply(t *testing.T) {
	app, _ := newTestApp(t)

	status, out := doJSON(t, app, http.MethodPost, "/api/promo/apply",
		map[string]any{"promo_code": "WELCOME10", "subtotal": 1000.0}, "", "sess-p")
	if status != http.StatusOK {
		t.Fatalf("apply: %d %v", status, out)
	}
	if out["discount"].(float64) != 100 {
		t.Fatalf("discount = %v", out["discount"])
	}

	status, out = doJSON(t, app, http.MethodPost, "/api/promo/apply",
		map[string]any{"promo_code": "NOPE", "subtotal": 1000.0}, "", "sess-p")
	if status != http.StatusNotFound || out["error"] != "promo_not_found" {
		t.Fatalf("unknown promo: %d %v", status, out)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	app, store := newTestApp(t)

	status, out := doJSON(t, app, http.MethodGet, "/api/products", nil, "", "sess-c")
	if status != http.StatusOK {
		t.Fatalf("products: %d %v", status, out)
	}
	products := out["products"].([]any)
	if len(products) != len(store.Products()) {
		t.Fatalf("product count = %d", len(products))
	}

	slug := products[0].(map[string]any)["slug"].(string)
	status, out = doJSON(t, app, http.MethodGet, "/api/products/"+slug, nil, "", "sess-c")
	if status != http.StatusOK {
		t.Fatalf("product by slug: %d %v", status, out)
	}

	status, out = doJSON(t, app, http.MethodGet, "/api/products/"+slug+"/assets", nil, "", "sess-c")
	if status != http.StatusOK || len(out["assets"].([]any)) == 0 {
		t.Fatalf("assets: %d %v", status, out)
	}

	status, out = doJSON(t, app, http.MethodGet, "/api/categories", nil, "", "sess-c")
	if status != http.StatusOK {
		t.Fatalf("categories: %d %v", status, out)
	}
	cats := out["categories"].([]any)
	total := 0
	for _, c := range cats {
		total += int(c.(map[string]any)["product_count"].(float64))
	}
	if total != len(store.Products()) {
		t.Fatalf("category counts sum to %d", total)
	}
}
