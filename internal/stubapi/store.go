package stubapi

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
)

// User is the backend-side account record.
type User struct {
	apix.UserProfile
	PasswordHash string
}

// VisitorEvent is one tracked analytics event.
type VisitorEvent struct {
	ID        string
	VisitorID string
	SessionID string
	EventType string
	Props     map[string]any
	At        time.Time
}

// Store is the in-memory backing state for the stub backend. Carts and
// wishlists are keyed by an owner key: "user:<id>" for authenticated
// actors, otherwise the raw x-visitor-id header value.
type Store struct {
	mu sync.RWMutex

	users        map[string]*User
	usersByEmail map[string]string

	carts           map[string]*apix.Cart // by cart id
	cartByOwner     map[string]string     // owner key -> cart id
	consumedMarkers map[string]bool       // attach idempotence

	wishlists map[string]*apix.Wishlist // by owner key

	products   []apix.Product
	categories []apix.Category
	assets     map[string][]apix.ProductAsset

	orders       map[string]*apix.OrderDetail
	ordersByUser map[string][]string
	timelines    map[string][]apix.TimelineEntry

	addresses map[string][]apix.Address // by user id

	visitors         map[string]string // session id -> visitor id
	visitorFirstSeen map[string]time.Time
	visitorLastSeen  map[string]time.Time
	events           []VisitorEvent

	stockAlerts map[string]string // productID + "|" + actor -> alert id
	consents    map[string]string // visitor id -> consent id
	promos      map[string]float64
}

func NewStore() *Store {
	s := &Store{
		users:            make(map[string]*User),
		usersByEmail:     make(map[string]string),
		carts:            make(map[string]*apix.Cart),
		cartByOwner:      make(map[string]string),
		consumedMarkers:  make(map[string]bool),
		wishlists:        make(map[string]*apix.Wishlist),
		assets:           make(map[string][]apix.ProductAsset),
		orders:           make(map[string]*apix.OrderDetail),
		ordersByUser:     make(map[string][]string),
		timelines:        make(map[string][]apix.TimelineEntry),
		addresses:        make(map[string][]apix.Address),
		visitors:         make(map[string]string),
		visitorFirstSeen: make(map[string]time.Time),
		visitorLastSeen:  make(map[string]time.Time),
		stockAlerts:      make(map[string]string),
		consents:         make(map[string]string),
		promos:           map[string]float64{"WELCOME10": 0.10, "FESTIVE15": 0.15},
	}
	s.seedCatalog()
	return s
}

func (s *Store) seedCatalog() {
	s.categories = []apix.Category{
		{ID: uuid.NewString(), Slug: "rings", Name: "Rings"},
		{ID: uuid.NewString(), Slug: "necklaces", Name: "Necklaces"},
		{ID: uuid.NewString(), Slug: "earrings", Name: "Earrings"},
		{ID: uuid.NewString(), Slug: "loose-diamonds", Name: "Loose Diamonds"},
	}
	cat := func(slug string) string {
		c, _ := lo.Find(s.categories, func(c apix.Category) bool { return c.Slug == slug })
		return c.ID
	}
	s.products = []apix.Product{
		{ID: uuid.NewString(), Slug: "solitaire-diamond-ring", Title: "Solitaire Diamond Ring", Description: "1.0ct round brilliant, 18k white gold", Price: 245000, Currency: "INR", CategoryID: cat("rings"), InStock: true},
		{ID: uuid.NewString(), Slug: "emerald-halo-ring", Title: "Emerald Halo Ring", Description: "Natural emerald with diamond halo", Price: 178500, Currency: "INR", CategoryID: cat("rings"), InStock: true},
		{ID: uuid.NewString(), Slug: "pearl-strand-necklace", Title: "Pearl Strand Necklace", Description: "Akoya pearls, 18 inch strand", Price: 96000, Currency: "INR", CategoryID: cat("necklaces"), InStock: true},
		{ID: uuid.NewString(), Slug: "diamond-pendant-necklace", Title: "Diamond Pendant Necklace", Description: "0.5ct pendant, rose gold chain", Price: 132000, Currency: "INR", CategoryID: cat("necklaces"), InStock: false},
		{ID: uuid.NewString(), Slug: "sapphire-stud-earrings", Title: "Sapphire Stud Earrings", Description: "Ceylon sapphires, platinum setting", Price: 84500, Currency: "INR", CategoryID: cat("earrings"), InStock: true},
		{ID: uuid.NewString(), Slug: "round-brilliant-2ct", Title: "Round Brilliant 2.0ct", Description: "GIA certified, VS1 clarity, F color", Price: 1250000, Currency: "INR", CategoryID: cat("loose-diamonds"), InStock: true},
	}
	for i := range s.products {
		p := s.products[i]
		s.assets[p.ID] = []apix.ProductAsset{
			{ID: uuid.NewString(), Kind: "image", URL: "https://cdn.minalgems.test/" + p.Slug + "/main.jpg"},
			{ID: uuid.NewString(), Kind: "video", URL: "https://cdn.minalgems.test/" + p.Slug + "/360.mp4"},
		}
	}
}

// --- users ---

func (s *Store) CreateUser(email, fullName, passwordHash string) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByEmail[email]; exists {
		return nil, false
	}
	u := &User{
		UserProfile: apix.UserProfile{
			ID:       uuid.NewString(),
			Email:    email,
			FullName: fullName,
		},
		PasswordHash: passwordHash,
	}
	s.users[u.ID] = u
	s.usersByEmail[email] = u.ID
	return u, true
}

func (s *Store) UserByEmail(email string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[email]
	if !ok {
		return nil, false
	}
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UserByID(id string) (*User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Store) UpdateUser(id string, mutate func(*User)) (*User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	mutate(u)
	return u, true
}

// --- catalog ---

func (s *Store) Products() []apix.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]apix.Product(nil), s.products...)
}

func (s *Store) ProductBySlug(slug string) (apix.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.products, func(p apix.Product) bool { return p.Slug == slug })
}

func (s *Store) ProductByID(id string) (apix.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.products, func(p apix.Product) bool { return p.ID == id })
}

func (s *Store) ProductAssets(id string) []apix.ProductAsset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]apix.ProductAsset(nil), s.assets[id]...)
}

func (s *Store) Categories() []apix.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]apix.Category(nil), s.categories...)
	for i := range out {
		cid := out[i].ID
		out[i].ProductCount = lo.CountBy(s.products, func(p apix.Product) bool { return p.CategoryID == cid })
	}
	return out
}

// --- carts ---

func recalc(cart *apix.Cart) {
	cart.ItemCount = 0
	cart.Subtotal = 0
	for i := range cart.Items {
		it := &cart.Items[i]
		it.LineTotal = float64(it.Quantity) * it.UnitPrice
		cart.ItemCount += it.Quantity
		cart.Subtotal += it.LineTotal
	}
	cart.GrandTotal = cart.Subtotal
}

func cloneCart(cart *apix.Cart) *apix.Cart {
	cp := *cart
	cp.Items = append([]apix.CartItem(nil), cart.Items...)
	return &cp
}

// CartForOwner returns the owner's cart or nil.
func (s *Store) CartForOwner(owner string) *apix.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.cartByOwner[owner]; ok {
		return cloneCart(s.carts[id])
	}
	return nil
}

func (s *Store) cartForOwnerLocked(owner string) *apix.Cart {
	if id, ok := s.cartByOwner[owner]; ok {
		return s.carts[id]
	}
	cart := &apix.Cart{ID: uuid.NewString()}
	s.carts[cart.ID] = cart
	s.cartByOwner[owner] = cart.ID
	return cart
}

// AddCartItem adds a product line (or bumps an existing one) and returns
// the full cart.
func (s *Store) AddCartItem(owner, productID string, quantity int) (*apix.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := lo.Find(s.products, func(p apix.Product) bool { return p.ID == productID })
	if !ok {
		return nil, false
	}
	cart := s.cartForOwnerLocked(owner)
	if idx := lo.IndexOf(lo.Map(cart.Items, func(it apix.CartItem, _ int) string { return it.ProductID }), productID); idx >= 0 {
		cart.Items[idx].Quantity += quantity
	} else {
		cart.Items = append(cart.Items, apix.CartItem{
			ID:        uuid.NewString(),
			ProductID: p.ID,
			Title:     p.Title,
			Slug:      p.Slug,
			Quantity:  quantity,
			UnitPrice: p.Price,
		})
	}
	recalc(cart)
	return cloneCart(cart), true
}

// UpdateCartItem sets a line's quantity; zero removes the line.
func (s *Store) UpdateCartItem(owner, itemID string, quantity int) (*apix.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.cartByOwner[owner]
	if !ok {
		return nil, false
	}
	cart := s.carts[id]
	idx := lo.IndexOf(lo.Map(cart.Items, func(it apix.CartItem, _ int) string { return it.ID }), itemID)
	if idx < 0 {
		return nil, false
	}
	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}
	recalc(cart)
	return cloneCart(cart), true
}

func (s *Store) RemoveCartItem(owner, itemID string) (*apix.Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.cartByOwner[owner]
	if !ok {
		return nil, false
	}
	cart := s.carts[id]
	before := len(cart.Items)
	cart.Items = lo.Reject(cart.Items, func(it apix.CartItem, _ int) bool { return it.ID == itemID })
	if len(cart.Items) == before {
		return nil, false
	}
	recalc(cart)
	return cloneCart(cart), true
}

// AttachCart merges the anonymous cart into the user's cart and consumes
// the marker. A marker that was already consumed (or never existed)
// succeeds without changing anything, so retries are idempotent.
func (s *Store) AttachCart(userOwner, anonCartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.consumedMarkers[anonCartID] {
		return
	}
	anon, ok := s.carts[anonCartID]
	if !ok {
		s.consumedMarkers[anonCartID] = true
		return
	}
	dst := s.cartForOwnerLocked(userOwner)
	for _, it := range anon.Items {
		idx := lo.IndexOf(lo.Map(dst.Items, func(d apix.CartItem, _ int) string { return d.ProductID }), it.ProductID)
		if idx >= 0 {
			dst.Items[idx].Quantity += it.Quantity
		} else {
			dst.Items = append(dst.Items, it)
		}
	}
	recalc(dst)
	delete(s.carts, anonCartID)
	for owner, id := range s.cartByOwner {
		if id == anonCartID {
			delete(s.cartByOwner, owner)
		}
	}
	s.consumedMarkers[anonCartID] = true
}

// --- wishlists ---

func (s *Store) WishlistForOwner(owner string) *apix.Wishlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wishlistLocked(owner)
}

func (s *Store) wishlistLocked(owner string) *apix.Wishlist {
	wl, ok := s.wishlists[owner]
	if !ok {
		wl = &apix.Wishlist{ID: uuid.NewString(), Name: "My Wishlist"}
		s.wishlists[owner] = wl
	}
	cp := *wl
	cp.Items = append([]apix.WishlistItem(nil), wl.Items...)
	return &cp
}

// AddWishlistItem returns the item id and whether the product was already
// present.
func (s *Store) AddWishlistItem(owner, productID string) (string, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := lo.Find(s.products, func(p apix.Product) bool { return p.ID == productID })
	if !ok {
		return "", false, false
	}
	wl, exists := s.wishlists[owner]
	if !exists {
		wl = &apix.Wishlist{ID: uuid.NewString(), Name: "My Wishlist"}
		s.wishlists[owner] = wl
	}
	for _, it := range wl.Items {
		if it.ProductID == productID {
			return it.ID, true, true
		}
	}
	item := apix.WishlistItem{
		ID:           uuid.NewString(),
		ProductID:    p.ID,
		ProductTitle: p.Title,
		ProductSlug:  p.Slug,
		Price:        p.Price,
		AddedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	wl.Items = append(wl.Items, item)
	return item.ID, false, true
}

func (s *Store) RemoveWishlistItem(owner, itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	wl, ok := s.wishlists[owner]
	if !ok {
		return false
	}
	before := len(wl.Items)
	wl.Items = lo.Reject(wl.Items, func(it apix.WishlistItem, _ int) bool { return it.ID == itemID })
	return len(wl.Items) != before
}

func (s *Store) ClearWishlist(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wl, ok := s.wishlists[owner]; ok {
		wl.Items = nil
	}
}

// --- visitors ---

// IdentifyVisitor upserts the session and returns its visitor id.
func (s *Store) IdentifyVisitor(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if vid, ok := s.visitors[sessionID]; ok {
		s.visitorLastSeen[vid] = now
		return vid
	}
	vid := uuid.NewString()
	s.visitors[sessionID] = vid
	s.visitorFirstSeen[vid] = now
	s.visitorLastSeen[vid] = now
	return vid
}

// VisitorsMetrics aggregates the identify history into the public
// traffic counters.
func (s *Store) VisitorsMetrics() apix.VisitorsMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	m := apix.VisitorsMetrics{TotalVisitors: len(s.visitorFirstSeen)}
	for vid, last := range s.visitorLastSeen {
		if !last.Before(today) {
			m.VisitorsToday++
			if !s.visitorFirstSeen[vid].Before(today) {
				m.NewVisitorsToday++
			}
		}
	}
	return m
}

func (s *Store) RecordEvent(ev VisitorEvent) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev.ID = uuid.NewString()
	ev.At = time.Now().UTC()
	s.events = append(s.events, ev)
	return ev.ID
}

// --- orders ---

func (s *Store) PlaceOrder(userID string, cart *apix.Cart, notes string) *apix.OrderDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	order := &apix.OrderDetail{
		OrderSummary: apix.OrderSummary{
			ID:         uuid.NewString(),
			Status:     "placed",
			GrandTotal: cart.GrandTotal,
			PlacedAt:   now.Format(time.RFC3339),
		},
		Items: append([]apix.CartItem(nil), cart.Items...),
	}
	s.orders[order.ID] = order
	s.ordersByUser[userID] = append(s.ordersByUser[userID], order.ID)
	s.timelines[order.ID] = []apix.TimelineEntry{
		{Status: "placed", Note: notes, CreatedAt: now.Format(time.RFC3339)},
	}
	// drop the consumed cart
	if id, ok := s.cartByOwner["user:"+userID]; ok && id == cart.ID {
		delete(s.carts, id)
		delete(s.cartByOwner, "user:"+userID)
	}
	return order
}

func (s *Store) OrdersForUser(userID string) []apix.OrderSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.FilterMap(s.ordersByUser[userID], func(id string, _ int) (apix.OrderSummary, bool) {
		o, ok := s.orders[id]
		if !ok {
			return apix.OrderSummary{}, false
		}
		return o.OrderSummary, true
	})
}

func (s *Store) Order(userID, orderID string) (*apix.OrderDetail, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !lo.Contains(s.ordersByUser[userID], orderID) {
		return nil, false
	}
	o, ok := s.orders[orderID]
	return o, ok
}

func (s *Store) Timeline(userID, orderID string) ([]apix.TimelineEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !lo.Contains(s.ordersByUser[userID], orderID) {
		return nil, false
	}
	tl, ok := s.timelines[orderID]
	return append([]apix.TimelineEntry(nil), tl...), ok
}

func (s *Store) AppendTimeline(orderID string, entry apix.TimelineEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	s.timelines[orderID] = append(s.timelines[orderID], entry)
	if o, ok := s.orders[orderID]; ok {
		o.Status = entry.Status
	}
}

// --- addresses ---

func addressFromInput(in apix.AddressInput) apix.Address {
	return apix.Address{
		Label:             in.Label,
		FullName:          in.FullName,
		Phone:             in.Phone,
		Line1:             in.Line1,
		Line2:             in.Line2,
		City:              in.City,
		State:             in.State,
		PostalCode:        in.PostalCode,
		Country:           in.Country,
		IsDefaultBilling:  in.IsDefaultBilling,
		IsDefaultShipping: in.IsDefaultShipping,
		Metadata:          in.Metadata,
	}
}

// clearDefaultsLocked drops the default flags the incoming address claims,
// keeping at most one default per kind.
func (s *Store) clearDefaultsLocked(userID string, billing, shipping bool) {
	list := s.addresses[userID]
	for i := range list {
		if billing {
			list[i].IsDefaultBilling = false
		}
		if shipping {
			list[i].IsDefaultShipping = false
		}
	}
}

func (s *Store) Addresses(userID string) []apix.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]apix.Address(nil), s.addresses[userID]...)
}

func (s *Store) AddAddress(userID string, in apix.AddressInput) apix.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearDefaultsLocked(userID, in.IsDefaultBilling, in.IsDefaultShipping)
	addr := addressFromInput(in)
	addr.ID = uuid.NewString()
	s.addresses[userID] = append(s.addresses[userID], addr)
	return addr
}

func (s *Store) UpdateAddress(userID, id string, in apix.AddressInput) (apix.Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	idx := lo.IndexOf(lo.Map(list, func(a apix.Address, _ int) string { return a.ID }), id)
	if idx < 0 {
		return apix.Address{}, false
	}
	s.clearDefaultsLocked(userID, in.IsDefaultBilling, in.IsDefaultShipping)
	addr := addressFromInput(in)
	addr.ID = id
	list[idx] = addr
	return addr, true
}

func (s *Store) DeleteAddress(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.addresses[userID]
	next := lo.Reject(list, func(a apix.Address, _ int) bool { return a.ID == id })
	if len(next) == len(list) {
		return false
	}
	s.addresses[userID] = next
	return true
}

// AddressCount supports the account overview stats.
func (s *Store) AddressCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.addresses[userID])
}

// --- stock alerts / consents / promos ---

// RegisterStockAlert returns the alert id and whether it already existed.
func (s *Store) RegisterStockAlert(actor, productID string) (string, bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := lo.Find(s.products, func(p apix.Product) bool { return p.ID == productID }); !ok {
		return "", false, false
	}
	key := productID + "|" + actor
	if id, ok := s.stockAlerts[key]; ok {
		return id, true, true
	}
	id := uuid.NewString()
	s.stockAlerts[key] = id
	return id, false, true
}

func (s *Store) SaveConsent(visitorID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.consents[visitorID] = id
	return id
}

func (s *Store) PromoDiscount(code string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pct, ok := s.promos[code]
	return pct, ok
}

// WishlistCount supports the account overview stats.
func (s *Store) WishlistCount(owner string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if wl, ok := s.wishlists[owner]; ok {
		return len(wl.Items)
	}
	return 0
}

// OrderCount supports the account overview stats.
func (s *Store) OrderCount(userID string) (int, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.ordersByUser[userID]
	last := ""
	for _, id := range ids {
		if o, ok := s.orders[id]; ok && o.PlacedAt > last {
			last = o.PlacedAt
		}
	}
	return len(ids), last
}
