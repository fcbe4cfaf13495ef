package e2e

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/config"
	"github.com/Khatrip009/MinalGems-website/internal/events"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/sse"
	"github.com/Khatrip009/MinalGems-website/internal/state"
	"github.com/Khatrip009/MinalGems-website/internal/storex"
	"github.com/Khatrip009/MinalGems-website/internal/stubapi"
)

type sdk struct {
	id       *identity.Store
	client   *apix.Client
	cart     *state.CartStore
	auth     *state.AuthStore
	wishlist *apix.WishlistAPI
	bus      *events.Bus[events.WishlistEvent]
	visitors  *apix.VisitorsAPI
	metrics   *apix.VisitorsMetricsAPI
	account   *apix.AccountAPI
	addresses *apix.AddressesAPI
	products  *apix.ProductsAPI
	checkout  *apix.CheckoutAPI
}

func startBackend(t *testing.T) (string, *stubapi.Hub) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Algo = "HS256"
	cfg.JWT.HSSecret = "e2e-secret"
	cfg.JWT.Issuer = "e2e"
	cfg.JWT.Audience = "e2e"
	cfg.JWT.AccessMin = 5

	store := stubapi.NewStore()
	hub := stubapi.NewHub()
	app := fiber.New(fiber.Config{ErrorHandler: stubapi.ErrorHandler()})
	stubapi.Register(app, cfg, store, hub)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String(), hub
}

func newSDK(t *testing.T, baseURL string) *sdk {
	t.Helper()
	id := identity.New(storex.NewMemory())
	client := apix.New(baseURL, id)
	bus := events.NewBus[events.WishlistEvent]()
	cartAPI := apix.NewCartAPI(client)
	cart := state.NewCartStore(cartAPI, id)
	reconciler := state.NewCartReconciler(id, cartAPI, cart)
	return &sdk{
		id:        id,
		client:    client,
		cart:      cart,
		auth:      state.NewAuthStore(apix.NewAuthAPI(client), id, reconciler),
		wishlist:  apix.NewWishlistAPI(client, bus),
		bus:       bus,
		visitors:  apix.NewVisitorsAPI(client),
		metrics:   apix.NewVisitorsMetricsAPI(client),
		account:   apix.NewAccountAPI(client),
		addresses: apix.NewAddressesAPI(client),
		products:  apix.NewProductsAPI(client),
		checkout:  apix.NewCheckoutAPI(client),
	}
}

func TestAnonymousToAuthenticatedJourney(t *testing.T) {
	baseURL, _ := startBackend(t)
	s := newSDK(t, baseURL)
	ctx := context.Background()

	// Identify: session id in, visitor UUID out.
	vid, err := s.visitors.Identify(ctx, map[string]any{"ua": "e2e"})
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if vid == "" || identity.IsSessionID(vid) {
		t.Fatalf("visitor id = %q", vid)
	}
	if s.id.VisitorID() != vid {
		t.Fatal("visitor id not persisted")
	}
	metrics, err := s.metrics.Summary(ctx)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if !metrics.OK || metrics.Metrics.TotalVisitors != 1 {
		t.Fatalf("metrics = %+v", metrics.Metrics)
	}

	// Browse and fill the cart anonymously.
	list, err := s.products.List(ctx, "")
	if err != nil || len(list.Products) == 0 {
		t.Fatalf("products: %v (%d)", err, len(list.Products))
	}
	pid := list.Products[0].ID

	if _, err := s.cart.AddItem(ctx, pid, 2); err != nil {
		t.Fatalf("anonymous add: %v", err)
	}
	marker := s.id.AnonCartID()
	if marker == "" {
		t.Fatal("anon cart marker not persisted")
	}

	// Register: the anonymous cart must follow the new account.
	user, err := s.auth.Register(ctx, "journey@example.com", "correct-horse", "Journey Tester")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user == nil || user.Email != "journey@example.com" {
		t.Fatalf("user = %+v", user)
	}
	if s.id.AnonCartID() != "" {
		t.Fatal("marker should be consumed by registration")
	}

	cart, phase := s.cart.Snapshot()
	if phase != state.Ready || cart == nil || cart.ItemCount != 2 {
		t.Fatalf("post-merge cart = %+v phase=%v", cart, phase)
	}

	// Save a shipping address for the new account.
	created, err := s.addresses.Create(ctx, apix.AddressInput{
		Label:             "Home",
		Line1:             "12 Ring Road",
		City:              "Surat",
		Country:           "IN",
		IsDefaultShipping: true,
	})
	if err != nil || !created.OK || created.Address.ID == "" {
		t.Fatalf("create address: %v %+v", err, created)
	}
	book, err := s.addresses.List(ctx)
	if err != nil || len(book.Addresses) != 1 || !book.Addresses[0].IsDefaultShipping {
		t.Fatalf("address book: %v %+v", err, book)
	}

	// The account overview sees the merged cart and the address book.
	ov, err := s.account.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if !ov.OK || ov.Stats.CartItemCount != 2 {
		t.Fatalf("overview stats = %+v", ov.Stats)
	}
	if ov.Stats.AddressesCount != 1 {
		t.Fatalf("addresses count = %+v", ov.Stats)
	}

	// Place the order and walk the timeline.
	sum, err := s.checkout.Summary(ctx, apix.SummaryInput{
		CartID:            cart.ID,
		ShippingAddressID: created.Address.ID,
		CouponCode:        "WELCOME10",
	})
	if err != nil || !sum.OK {
		t.Fatalf("summary: %v %+v", err, sum)
	}
	placed, err := s.checkout.PlaceOrder(ctx, apix.PlaceOrderInput{
		CartID:            cart.ID,
		ShippingAddressID: created.Address.ID,
		PaymentMethod:     "card",
	})
	if err != nil || placed.OrderID == "" {
		t.Fatalf("place order: %v %+v", err, placed)
	}
	tl, err := s.account.OrderTimeline(ctx, placed.OrderID)
	if err != nil || len(tl.Timeline) == 0 || tl.Timeline[0].Status != "placed" {
		t.Fatalf("timeline: %v %+v", err, tl)
	}

	// Logout drops local auth; a subsequent account call is a 401 that
	// keeps the client logged out.
	s.auth.Logout()
	if _, err := s.account.Overview(ctx); err == nil {
		t.Fatal("overview should fail after logout")
	}
	if s.auth.LoggedIn() {
		t.Fatal("still logged in after 401")
	}
}

func TestWishlistEventsAcrossSDKAndBackend(t *testing.T) {
	baseURL, _ := startBackend(t)
	s := newSDK(t, baseURL)
	ctx := context.Background()

	var got []events.WishlistEvent
	s.bus.Subscribe(func(ev events.WishlistEvent) { got = append(got, ev) })

	list, err := s.products.List(ctx, "")
	if err != nil {
		t.Fatalf("products: %v", err)
	}
	pid := list.Products[0].ID

	if err := s.wishlist.Toggle(ctx, pid); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	res, err := s.wishlist.Add(ctx, pid)
	if err != nil || !res.AlreadyExists {
		t.Fatalf("duplicate add: %v %+v", err, res)
	}
	if err := s.wishlist.Toggle(ctx, pid); err != nil {
		t.Fatalf("toggle off: %v", err)
	}

	// add, (suppressed duplicate), remove
	if len(got) != 2 {
		t.Fatalf("events = %+v", got)
	}
	if got[0].Kind != events.WishlistAdd || got[1].Kind != events.WishlistRemove {
		t.Fatalf("event kinds = %+v", got)
	}
}

func TestServerEventsReachTheStream(t *testing.T) {
	baseURL, hub := startBackend(t)
	s := newSDK(t, baseURL)

	msgs := make(chan sse.Message, 8)
	stream := sse.New(s.client.BaseURL(), s.id)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream.Connect(ctx, func(m sse.Message) { msgs <- m }, "wishlist")
	defer stream.Close()

	// Give the subscriber a moment to attach before publishing.
	deadline := time.After(5 * time.Second)
	for {
		hub.Publish("wishlist", "wishlist.updated", `{"count":1}`)
		select {
		case m := <-msgs:
			if m.Event != "wishlist.updated" {
				t.Fatalf("event = %q", m.Event)
			}
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("no event received")
		}
	}
}
