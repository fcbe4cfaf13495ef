// Package state holds the in-memory client snapshots of cart and auth
// state. Both stores are server-authoritative: every mutation replaces the
// whole local snapshot with what the server returned.
package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/apix"
	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
)

// Phase is the cart store lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Loading
	Ready
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

// CartStore owns the single cart snapshot. Mutations are serialized through
// an operation lock so two rapid clicks cannot interleave at the network
// layer and lose an update. On failure the last good snapshot is kept and
// the error is returned to the caller.
type CartStore struct {
	api *apix.CartAPI
	id  *identity.Store
	log *zap.Logger

	// opMu serializes network mutations; mu guards the snapshot fields.
	opMu sync.Mutex
	mu   sync.RWMutex

	cart  *apix.Cart
	phase Phase
}

func NewCartStore(api *apix.CartAPI, id *identity.Store) *CartStore {
	return &CartStore{
		api: api,
		id:  id,
		log: logx.GetScope("cart-store"),
	}
}

// Snapshot returns the current cart (possibly nil) and lifecycle phase.
func (s *CartStore) Snapshot() (*apix.Cart, Phase) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart, s.phase
}

func (s *CartStore) setLoading() {
	s.mu.Lock()
	s.phase = Loading
	s.mu.Unlock()
}

func (s *CartStore) setReady(cart *apix.Cart, replace bool) {
	s.mu.Lock()
	if replace {
		s.cart = cart
	}
	s.phase = Ready
	s.mu.Unlock()
}

// Init performs the initial fetch. Call once after construction.
func (s *CartStore) Init(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh refetches the cart and replaces the snapshot wholesale. An ok:false
// answer means "no cart yet" and clears the snapshot.
func (s *CartStore) Refresh(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading()
	res, err := s.api.Get(ctx)
	if err != nil {
		s.log.Warn("refresh failed", zap.Error(err))
		s.setReady(nil, false)
		return err
	}
	if !res.OK {
		s.setReady(nil, true)
		return nil
	}
	s.setReady(res.Cart, true)
	return nil
}

// AddItem adds a product and replaces the snapshot with the server's cart.
func (s *CartStore) AddItem(ctx context.Context, productID string, quantity int) (*apix.Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) (*apix.CartResponse, error) {
		return s.api.AddItem(ctx, productID, quantity)
	})
}

// UpdateItem changes a line's quantity.
func (s *CartStore) UpdateItem(ctx context.Context, itemID string, quantity int) (*apix.Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) (*apix.CartResponse, error) {
		return s.api.UpdateItem(ctx, itemID, quantity)
	})
}

// RemoveItem deletes a line.
func (s *CartStore) RemoveItem(ctx context.Context, itemID string) (*apix.Cart, error) {
	return s.mutate(ctx, func(ctx context.Context) (*apix.CartResponse, error) {
		return s.api.RemoveItem(ctx, itemID)
	})
}

func (s *CartStore) mutate(ctx context.Context, op func(context.Context) (*apix.CartResponse, error)) (*apix.Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.setLoading()
	res, err := op(ctx)
	if err != nil {
		s.log.Warn("cart mutation failed", zap.Error(err))
		// keep the last good snapshot
		s.setReady(nil, false)
		return s.current(), err
	}
	if !res.OK {
		s.log.Warn("cart mutation rejected by backend")
		s.setReady(nil, false)
		return s.current(), &apix.APIError{Status: 200, Code: "not_ok"}
	}
	s.setReady(res.Cart, true)
	s.rememberAnonCart(res.Cart)
	return res.Cart, nil
}

// rememberAnonCart persists the cart id as the anonymous-cart marker while
// logged out, so a later login can merge the cart into the account.
func (s *CartStore) rememberAnonCart(cart *apix.Cart) {
	if s.id == nil || cart == nil || cart.ID == "" {
		return
	}
	if s.id.Token() != "" {
		return
	}
	s.id.SetAnonCartID(cart.ID)
}

func (s *CartStore) current() *apix.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart
}

// Clear drops the local snapshot without touching the server (logout).
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.cart = nil
	s.phase = Ready
	s.mu.Unlock()
}
